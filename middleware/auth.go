package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"studyplan-backend/utils"
)

// TokenResolver maps a bearer token to the user id it was issued for.
type TokenResolver interface {
	Resolve(token string) (string, error)
}

// AuthRequired rejects requests without a valid bearer token and stores the
// caller's id under utils.UserIDKey.
func AuthRequired(logger zerolog.Logger, tokens TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			logger.Debug().Str("path", c.FullPath()).Msg("authorization header required")
			utils.Unauthorized(c, "Authorization header required")
			return
		}

		const bearerPrefix = "Bearer"
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) || strings.TrimSpace(parts[1]) == "" {
			logger.Debug().Msg("invalid authorization header")
			utils.Unauthorized(c, "Invalid authorization format")
			return
		}

		userID, err := tokens.Resolve(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Warn().Err(err).Msg("failed to resolve token")
			utils.Unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(utils.UserIDKey, userID)
		c.Next()
	}
}
