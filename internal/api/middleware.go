package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inkwell/internal/auth"
)

const contextUserIDKey = "user_id"

// RequireAuth validates the bearer token on protected routes and stores
// the token subject (the caller's user id) in the request context.
func RequireAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "authorization header is required")
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "authorization header format must be Bearer <token>")
			return
		}

		userID, err := issuer.ParseAccess(parts[1])
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status": "error",
		"reason": reason,
	})
}

// currentUserID returns the authenticated caller's user id set by
// RequireAuth.
func currentUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
