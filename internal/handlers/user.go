package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skmtks/taskboard-api/internal/dto"
	apierrors "github.com/skmtks/taskboard-api/internal/errors"
	"github.com/skmtks/taskboard-api/internal/middleware"
	"github.com/skmtks/taskboard-api/internal/services"
)

// UserHandler coordinates the admin user-management endpoints.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns all users with their assigned-task breakdown
func (h *UserHandler) ListUsers(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	rows, err := h.userService.ListUsers(principal)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	users := make([]dto.UserWithTaskCountsDTO, len(rows))
	for i, row := range rows {
		users[i] = dto.ToUserWithTaskCountsDTO(row)
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser returns one user
func (h *UserHandler) GetUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(principal, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateRole changes a user's role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateRoleRequest struct {
		Role string `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateRole(principal, userID, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser removes a user after unassigning them from every task
func (h *UserHandler) DeleteUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.userService.DeleteUser(principal, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "User deleted successfully",
		"tasks_unassigned": result.TasksUnassigned,
	})
}
