package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apierrors "github.com/skmtks/taskboard-api/internal/errors"
	"github.com/skmtks/taskboard-api/internal/services"
)

// respondServiceError maps service sentinel errors onto HTTP responses.
// Authorization failures stay generic; not-found stays distinguishable.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrFileNotFound),
		errors.Is(err, services.ErrCompanyNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrTaskForbidden),
		errors.Is(err, services.ErrUserForbidden):
		apierrors.Forbidden(c)

	case errors.Is(err, services.ErrLastAdmin),
		errors.Is(err, services.ErrSelfDelete),
		errors.Is(err, services.ErrSelfDowngrade),
		errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrDueDateRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidProgress),
		errors.Is(err, services.ErrInvalidAssignees),
		errors.Is(err, services.ErrChecklistManaged),
		errors.Is(err, services.ErrChecklistItemText),
		errors.Is(err, services.ErrInvalidUserRole),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrFileNameRequired),
		errors.Is(err, services.ErrCompanyNameRequired):
		apierrors.BadRequest(c, err.Error())

	default:
		apierrors.InternalError(c, "")
	}
}
