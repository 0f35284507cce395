package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/skmtks/taskboard-api/internal/models"
	"github.com/skmtks/taskboard-api/internal/policy"
	"github.com/skmtks/taskboard-api/internal/repository"
)

var (
	ErrUserForbidden   = errors.New("user management requires the admin role")
	ErrLastAdmin       = errors.New("the last remaining admin cannot be removed or downgraded")
	ErrSelfDelete      = errors.New("you cannot delete your own account")
	ErrSelfDowngrade   = errors.New("you cannot downgrade your own role")
	ErrInvalidUserRole = errors.New("invalid role")
	ErrUnassignFailed  = errors.New("failed to unassign user from tasks")
)

// UserService handles user management business logic.
type UserService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// UserWithTaskCounts is a user row enriched with their assigned-task counts
// broken down by status.
type UserWithTaskCounts struct {
	User            models.User
	PendingCount    int64
	InProgressCount int64
	CompletedCount  int64
}

// ListUsers returns all users with their task-status breakdown. Admin only.
func (s *UserService) ListUsers(p policy.Principal) ([]UserWithTaskCounts, error) {
	if !p.IsAdmin() {
		return nil, ErrUserForbidden
	}

	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]UserWithTaskCounts, 0, len(users))
	for _, u := range users {
		counts, err := s.userRepo.CountTasksByStatus(u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count tasks for user %d: %w", u.ID, err)
		}
		out = append(out, UserWithTaskCounts{
			User:            u,
			PendingCount:    counts[models.StatusPending],
			InProgressCount: counts[models.StatusInProgress],
			CompletedCount:  counts[models.StatusCompleted],
		})
	}

	return out, nil
}

// GetUser returns one user. Admin only.
func (s *UserService) GetUser(p policy.Principal, userID uint64) (*models.User, error) {
	if !p.IsAdmin() {
		return nil, ErrUserForbidden
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateRole changes a user's role. Admins cannot downgrade themselves, and
// the last remaining admin cannot be downgraded.
func (s *UserService) UpdateRole(p policy.Principal, userID uint64, role string) (*models.User, error) {
	if !p.IsAdmin() {
		return nil, ErrUserForbidden
	}

	newRole := models.UserRole(role)
	if newRole != models.RoleAdmin && newRole != models.RoleMember {
		return nil, ErrInvalidUserRole
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Role == newRole {
		return user, nil
	}

	if user.Role == models.RoleAdmin && newRole == models.RoleMember {
		if user.ID == p.ID {
			return nil, ErrSelfDowngrade
		}
		admins, err := s.userRepo.CountAdmins()
		if err != nil {
			return nil, fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return nil, ErrLastAdmin
		}
	}

	user.Role = newRole
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	return user, nil
}

// DeleteUserResult reports what a user deletion did.
type DeleteUserResult struct {
	Deleted         bool
	TasksUnassigned int64
}

// DeleteUser removes a user after running the unassignment cascade. Both
// happen in one transaction: if the cascade fails, the deletion fails with
// it and nothing is committed. Invariants are checked up front: no self
// deletion, and never the last remaining admin.
func (s *UserService) DeleteUser(p policy.Principal, userID uint64) (*DeleteUserResult, error) {
	if !p.IsAdmin() {
		return nil, ErrUserForbidden
	}
	if userID == p.ID {
		return nil, ErrSelfDelete
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Role == models.RoleAdmin {
		admins, err := s.userRepo.CountAdmins()
		if err != nil {
			return nil, fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return nil, ErrLastAdmin
		}
	}

	unassigned, err := s.userRepo.DeleteWithUnassign(userID)
	if err != nil {
		s.logger.Error("user deletion rolled back",
			zap.Uint64("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnassignFailed, err)
	}

	s.logger.Info("user deleted",
		zap.Uint64("user_id", userID),
		zap.Int64("tasks_unassigned", unassigned))

	return &DeleteUserResult{
		Deleted:         true,
		TasksUnassigned: unassigned,
	}, nil
}

// RemoveUserFromAllTasks runs the unassignment cascade on its own, returning
// the number of tasks rewritten.
func (s *UserService) RemoveUserFromAllTasks(userID uint64) (int64, error) {
	count, err := s.userRepo.RemoveUserFromAllTasks(userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnassignFailed, err)
	}
	return count, nil
}
