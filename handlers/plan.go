package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyplan-backend/models"
	"studyplan-backend/services"
	"studyplan-backend/utils"
)

type CreatePlanRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type RespondInvitationRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending completed"`
}

type AssignTaskRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// GET /api/plans
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context(), utils.GetCurrentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToPlanResponses(plans))
}

// GET /api/plans/invitations
func (h *Handler) PendingInvitations(c *gin.Context) {
	plans, err := h.plans.PendingInvitations(c.Request.Context(), utils.GetCurrentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToPlanResponses(plans))
}

// POST /api/plans
func (h *Handler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		utils.BadRequest(c, "startDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		utils.BadRequest(c, "endDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		return
	}

	plan, err := h.plans.Create(c.Request.Context(), utils.GetCurrentUserID(c), services.CreatePlanParams{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan.ToResponse())
}

// GET /api/plans/:id
func (h *Handler) GetPlan(c *gin.Context) {
	plan, err := h.plans.Get(c.Request.Context(), utils.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan.ToResponse())
}

// POST /api/plans/:id/invite
func (h *Handler) Invite(c *gin.Context) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	plan, err := h.plans.Invite(c.Request.Context(), utils.GetCurrentUserID(c), c.Param("id"), req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan.ToResponse())
}

// POST /api/plans/:id/invitations/:invitationId
func (h *Handler) RespondToInvitation(c *gin.Context) {
	var req RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	plan, err := h.plans.RespondToInvitation(
		c.Request.Context(),
		utils.GetCurrentUserID(c),
		c.Param("id"),
		c.Param("invitationId"),
		req.Status,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan.ToResponse())
}

// POST /api/plans/:id/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	due, err := utils.ParseDate(req.DueDate)
	if err != nil {
		utils.BadRequest(c, "dueDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		return
	}

	plan, err := h.plans.CreateTask(c.Request.Context(), utils.GetCurrentUserID(c), c.Param("id"), services.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Priority:    req.Priority,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan.ToResponse())
}

// PATCH /api/plans/:id/tasks/:taskId
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	plan, err := h.plans.UpdateTaskStatus(
		c.Request.Context(),
		utils.GetCurrentUserID(c),
		c.Param("id"),
		c.Param("taskId"),
		req.Status,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan.ToResponse())
}

// POST /api/plans/:id/tasks/:taskId/assign
func (h *Handler) AssignTask(c *gin.Context) {
	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	plan, err := h.plans.AssignTask(
		c.Request.Context(),
		utils.GetCurrentUserID(c),
		c.Param("id"),
		c.Param("taskId"),
		req.UserID,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan.ToResponse())
}
