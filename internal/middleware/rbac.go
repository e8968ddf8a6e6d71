package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nnptud/lms-backend/internal/model"
	"github.com/nnptud/lms-backend/internal/response"
)

// RequireRole admits only actors holding one of roles. It must run after RequireAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !actor.HasRole(roles...) {
			code := response.ErrForbidden
			switch {
			case len(roles) == 1 && roles[0] == model.RoleAdmin:
				code = response.ErrAdminAccessOnly
			case len(roles) == 1 && roles[0] == model.RoleStudent:
				code = response.ErrStudentAccessOnly
			}
			response.AbortFail(c, http.StatusForbidden, code)
			return
		}

		c.Next()
	}
}
