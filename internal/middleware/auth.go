package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/abdbodara/taskora-backend/internal/constants"
	apierrors "github.com/abdbodara/taskora-backend/internal/errors"
)

// RequireAuth verifies the bearer token against the given secret and stores
// the subject id and role in the context. A missing token is 401; a
// malformed, expired or badly signed one is 403. The role is taken verbatim
// from the signed payload.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			apierrors.Unauthorized(c, "Token missing in Authorization header")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			apierrors.Forbidden(c, "Invalid or expired token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			apierrors.Forbidden(c, "Invalid or expired token")
			c.Abort()
			return
		}

		subjectID, ok := claims["id"].(float64)
		if !ok || subjectID < 0 {
			apierrors.Forbidden(c, "Invalid or expired token")
			c.Abort()
			return
		}
		role, _ := claims["role"].(string)

		c.Set(constants.ContextKeyUserID, uint64(subjectID))
		c.Set(constants.ContextKeyRole, role)
		c.Next()
	}
}

// RequireRole rejects subjects whose token role differs from the required one
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := GetRole(c)
		if current != role {
			apierrors.Forbidden(c, "You don't have permission to perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current subject id from context
func GetUserID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetRole retrieves the current subject role from context
func GetRole(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.ContextKeyRole)
	if !exists {
		return "", false
	}

	role, ok := value.(string)
	return role, ok
}
