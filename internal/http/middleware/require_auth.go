package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth rejects unauthenticated requests with a 401 carrying an
// auth-prompt signal. The precondition is hard: guarded handlers never
// run, so no local state can change.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":       "authentication required",
			"auth_prompt": true,
			"request_id":  GetRequestID(c),
		})
	}
}
