package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shwepos/internal/utils"
)

const (
	ContextOwnerID  = "owner_id"
	ContextUsername = "username"
)

// JWTAuth rejects requests without a valid bearer token and stores the
// claims on the gin context for handlers.
func JWTAuth(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authorization header required",
			})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authorization header must be a bearer token",
			})
			return
		}

		claims, err := tokens.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid or expired token",
			})
			return
		}

		c.Set(ContextOwnerID, claims.OwnerId)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}

// OwnerID reads the authenticated owner from the context. Zero means the
// request skipped JWTAuth, which is a routing bug.
func OwnerID(c *gin.Context) int64 {
	v, ok := c.Get(ContextOwnerID)
	if !ok {
		return 0
	}
	id, _ := v.(int64)
	return id
}
