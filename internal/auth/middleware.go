package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	managerIDKey   = "manager_id"
	managerNameKey = "manager_name"
)

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is empty"})
			return
		}

		claims, err := ValidateToken(tokenString, secret)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or malformed token"})
			}
			return
		}

		c.Set(managerIDKey, claims.ManagerID)
		c.Set(managerNameKey, claims.Name)

		c.Next()
	}
}

func GetManagerID(c *gin.Context) (int, bool) {
	managerID, exists := c.Get(managerIDKey)
	if !exists {
		return 0, false
	}

	id, ok := managerID.(int)
	if !ok {
		return 0, false
	}

	return id, true
}

func GetManagerName(c *gin.Context) string {
	return c.GetString(managerNameKey)
}

// SetManager stores an authenticated manager on c, as AuthMiddleware does.
func SetManager(c *gin.Context, id int, name string) {
	c.Set(managerIDKey, id)
	c.Set(managerNameKey, name)
}
