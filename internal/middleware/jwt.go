package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/nnptud/lms-backend/internal/response"
	"github.com/nnptud/lms-backend/internal/service"
)

const (
	// ContextKeyActor is the Gin context key for the authenticated actor.
	ContextKeyActor = "actor"
)

// Authenticator turns a bearer token into an actor.
type Authenticator interface {
	Authenticate(token string) (*model.Actor, error)
}

// RequireAuth validates the JWT from the Authorization header, falling back
// to the ?token= query parameter for WebSocket and EventSource clients.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := auth.Authenticate(extractToken(c))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenMissing):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			case errors.Is(err, service.ErrTokenExpired):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenExpired)
			default:
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			}
			return
		}

		c.Set(ContextKeyActor, actor)
		c.Next()
	}
}

// GetActor retrieves the authenticated actor from the Gin context.
func GetActor(c *gin.Context) *model.Actor {
	val, exists := c.Get(ContextKeyActor)
	if !exists {
		return nil
	}
	actor, ok := val.(*model.Actor)
	if !ok {
		return nil
	}
	return actor
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Browsers cannot set headers on WebSocket or EventSource requests.
	return c.Query("token")
}
