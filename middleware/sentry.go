package middleware

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"studyplan-backend/utils"
)

// Sentry attaches a per-request hub to the request context and turns panics
// into reported 500 responses. Without a configured client the hub is inert.
func Sentry(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		c.Request = c.Request.WithContext(sentry.SetHubOnContext(c.Request.Context(), hub))

		defer func() {
			if r := recover(); r != nil {
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetTag("route", c.FullPath())
					hub.RecoverWithContext(c.Request.Context(), r)
				})
				hub.Flush(2 * time.Second)

				logger.Error().
					Str("panic", fmt.Sprint(r)).
					Str("route", c.FullPath()).
					Msg("recovered from panic")
				if !c.Writer.Written() {
					utils.InternalError(c)
				}
			}
		}()

		c.Next()
	}
}

// CaptureError reports err on the request's hub, tagging the caller.
func CaptureError(c *gin.Context, err error) {
	hub := sentry.GetHubFromContext(c.Request.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("route", c.FullPath())
		if userID := utils.GetCurrentUserID(c); userID != "" {
			scope.SetUser(sentry.User{ID: userID})
		}
		hub.CaptureException(err)
	})
}
