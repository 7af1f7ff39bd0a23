package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin:
// - no session: 401 with auth prompt
// - session without the privilege flag: 403
// The privilege flag resolves asynchronously after sign-in, so a fresh
// admin session may briefly read as non-admin here. The 4-digit PIN
// gate lives in the handlers and never substitutes for this check.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := CurrentSession(c)
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":       "authentication required",
				"auth_prompt": true,
				"request_id":  GetRequestID(c),
			})
			return
		}

		if !snap.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "admin privilege required",
				"request_id": GetRequestID(c),
			})
			return
		}

		c.Next()
	}
}
