package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"studyplan-backend/middleware"
	"studyplan-backend/services"
)

type Handler struct {
	logger   zerolog.Logger
	accounts *services.AccountService
	plans    *services.PlanService
	activity *services.ActivityService
	appName  string
}

func New(
	logger zerolog.Logger,
	accounts *services.AccountService,
	plans *services.PlanService,
	activity *services.ActivityService,
	appName string,
) *Handler {
	return &Handler{
		logger:   logger,
		accounts: accounts,
		plans:    plans,
		activity: activity,
		appName:  appName,
	}
}

// NewRouter wires middleware and every route onto a fresh gin engine.
func (h *Handler) NewRouter(corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestLogger(h.logger),
		middleware.Sentry(h.logger),
		middleware.CORS(corsOrigins),
	)

	r.GET("/health", h.Health)

	api := r.Group("/api")

	// ==========================================
	// AUTH ROUTES
	// ==========================================
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(h.logger, h.accounts))
	{
		protected.GET("/auth/me", h.Me)
		protected.PUT("/auth/me/fcm-token", h.UpdateFCMToken)

		// Plans
		protected.GET("/plans", h.ListPlans)
		protected.POST("/plans", h.CreatePlan)
		protected.GET("/plans/invitations", h.PendingInvitations)
		protected.GET("/plans/:id", h.GetPlan)
		protected.POST("/plans/:id/invite", h.Invite)
		protected.POST("/plans/:id/invitations/:invitationId", h.RespondToInvitation)

		// Tasks
		protected.POST("/plans/:id/tasks", h.CreateTask)
		protected.PATCH("/plans/:id/tasks/:taskId", h.UpdateTaskStatus)
		protected.POST("/plans/:id/tasks/:taskId/assign", h.AssignTask)

		// Activity
		protected.GET("/activity", h.ListActivity)
		protected.GET("/plans/:id/activity", h.ListPlanActivity)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	return r
}

// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.appName,
	})
}
