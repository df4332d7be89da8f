package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "auth.userID"

// Required rejects requests without a valid Bearer token.
func Required(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseHeader(c, tokens)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// Optional records the caller's identity when a valid token is present and
// lets the request through either way. Order placement uses this to decide
// between the authenticated and guest paths.
func Optional(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseHeader(c, tokens); ok {
			c.Set(userIDKey, claims.UserID)
		}
		c.Next()
	}
}

// CallerUserID returns the authenticated caller's user id, or nil for guests.
func CallerUserID(c *gin.Context) *int64 {
	v, exists := c.Get(userIDKey)
	if !exists {
		return nil
	}
	id, ok := v.(int64)
	if !ok {
		return nil
	}
	return &id
}

func parseHeader(c *gin.Context, tokens *TokenManager) (*Claims, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}
