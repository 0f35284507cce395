package dto

import (
	"github.com/skmtks/taskboard-api/internal/models"
	"github.com/skmtks/taskboard-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID              uint64          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Role            models.UserRole `json:"role"`
	ProfileImageURL string          `json:"profile_image_url,omitempty"`
}

// UserWithTaskCountsDTO is a user row in the admin listing, with the
// assigned-task breakdown by status.
type UserWithTaskCountsDTO struct {
	UserDTO
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		ProfileImageURL: user.ProfileImageURL,
	}
}

// ToUserWithTaskCountsDTO converts the service row to its response shape
func ToUserWithTaskCountsDTO(row services.UserWithTaskCounts) UserWithTaskCountsDTO {
	return UserWithTaskCountsDTO{
		UserDTO:         ToUserDTO(row.User),
		PendingTasks:    row.PendingCount,
		InProgressTasks: row.InProgressCount,
		CompletedTasks:  row.CompletedCount,
	}
}
