package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyplan-backend/utils"
)

// GET /api/activity
// Combined feed of every plan the caller belongs to.
func (h *Handler) ListActivity(c *gin.Context) {
	var pagination utils.PaginationQuery
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.respondBindError(c, err)
		return
	}

	activities, err := h.activity.ListForUser(c.Request.Context(), utils.GetCurrentUserID(c), pagination.Offset(), pagination.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

// GET /api/plans/:id/activity
func (h *Handler) ListPlanActivity(c *gin.Context) {
	var pagination utils.PaginationQuery
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.respondBindError(c, err)
		return
	}

	activities, err := h.activity.ListForPlan(c.Request.Context(), utils.GetCurrentUserID(c), c.Param("id"), pagination.Offset(), pagination.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}
