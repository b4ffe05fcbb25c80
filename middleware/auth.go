package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"discovery-api/models"
	"discovery-api/services"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// TokenParser verifies bearer tokens. *services.TokenIssuer satisfies it.
type TokenParser interface {
	Parse(token string) (*services.Claims, models.Role, error)
}

// UserLookup loads the account behind a token. *services.UserService
// satisfies it.
type UserLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware validates JWT token
func AuthMiddleware(tokens TokenParser, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get token from header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		// Check Bearer prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, role, err := tokens.Parse(tokenString)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			c.Abort()
			return
		}

		// Check if user still exists and is active; the stored role wins over
		// the one baked into the token.
		if users != nil {
			user, err := users.Get(c.Request.Context(), claims.UserID)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				c.Abort()
				return
			}
			if user.Status != models.UserActive {
				c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive"})
				c.Abort()
				return
			}
			role = user.Role
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, role)

		c.Next()
	}
}

// CurrentUserID returns the authenticated user id.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// CurrentRole returns the authenticated role, empty when unauthenticated.
func CurrentRole(c *gin.Context) models.Role {
	if v, ok := c.Get(ContextRole); ok {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return ""
}

// CurrentScope builds the list-query scope of the caller.
func CurrentScope(c *gin.Context) services.Scope {
	return services.Scope{UserID: CurrentUserID(c), Role: CurrentRole(c)}
}

// RequireRole checks if user has specific role
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := CurrentRole(c)
		if userRole == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found"})
			c.Abort()
			return
		}

		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		c.Abort()
	}
}
