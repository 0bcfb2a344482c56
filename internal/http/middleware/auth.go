// README: Auth middleware; trusts the identity headers set by the gateway in front of the API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	ctxUID  = "caller_uid"
	ctxRole = "caller_role"
)

// Auth rejects requests without a user id. Token verification happens upstream.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader(HeaderUserID)
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + HeaderUserID})
			return
		}
		c.Set(ctxUID, uid)
		c.Set(ctxRole, c.GetHeader(HeaderUserRole))
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: " + role + " role required"})
			return
		}
		c.Next()
	}
}

func CallerUID(c *gin.Context) string {
	return c.GetString(ctxUID)
}

func CallerRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}
