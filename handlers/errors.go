package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"studyplan-backend/middleware"
	"studyplan-backend/services"
	"studyplan-backend/utils"
)

// respondError maps a service error onto a status code. Anything unknown is
// logged, reported and hidden behind a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		utils.BadRequest(c, "Email already registered")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.BadRequest(c, "Invalid email or password")
	case errors.Is(err, services.ErrInvalidToken):
		utils.Unauthorized(c, "Invalid or expired token")
	case errors.Is(err, services.ErrDuplicateInvitation):
		utils.BadRequest(c, "User already invited")
	case errors.Is(err, services.ErrAlreadyMember):
		utils.BadRequest(c, "User is already a member of this plan")
	case errors.Is(err, services.ErrInvitationResolved):
		utils.BadRequest(c, "Invitation has already been answered")
	case errors.Is(err, services.ErrNotAMember):
		utils.BadRequest(c, "User is not a member of this plan")
	case errors.Is(err, services.ErrInvalidStatus):
		utils.BadRequest(c, "Invalid status")
	case errors.Is(err, services.ErrInvalidPriority):
		utils.BadRequest(c, "Invalid priority")
	case errors.Is(err, services.ErrInvalidDateRange):
		utils.BadRequest(c, "End date must not be before start date")
	case errors.Is(err, services.ErrPlanNotFound):
		utils.NotFound(c, "Study plan not found")
	case errors.Is(err, services.ErrTaskNotFound):
		utils.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrInvitationNotFound):
		utils.NotFound(c, "Invitation not found")
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFound(c, "User not found")
	case errors.Is(err, services.ErrPlanConflict):
		utils.Conflict(c, "Study plan was modified concurrently, try again")
	default:
		h.logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Msg("unexpected error")
		middleware.CaptureError(c, err)
		utils.InternalError(c)
	}
}

func (h *Handler) respondBindError(c *gin.Context, err error) {
	utils.BadRequest(c, utils.ValidationMessage(err))
}
