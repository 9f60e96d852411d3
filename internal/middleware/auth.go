package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"netrunner-rpg-backend/internal/models"
	"netrunner-rpg-backend/internal/services"
)

// AuthMiddleware validates the session token from the Authorization
// header or the token query parameter (the websocket path cannot set
// headers) and stashes the identity on the request context.
func AuthMiddleware(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
				c.Abort()
				return
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Query("token")
			if tokenString == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
				c.Abort()
				return
			}
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("is_admin", claims.IsAdmin)
		c.Set("session_id", claims.SessionID)

		c.Next()
	}
}

// RequireCharacter gates gameplay routes behind a completed character.
// The jack-in and privacy routes are mounted outside this middleware so
// new players can reach the creation flow and the consent screens.
func RequireCharacter(lifecycle *services.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		ok, err := lifecycle.HasCharacter(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check character"})
			c.Abort()
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "No character found. Jack in first, choom.",
				"code":  "NO_CHARACTER",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin admits token admins and configured owners. Moderation
// level access; the economy-sensitive operations use RequireOwner.
func RequireAdmin(ownerIDs []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool("is_admin") || isOwner(ownerIDs, c.GetString("user_id")) {
			c.Next()
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		c.Abort()
	}
}

// RequireOwner admits only identities from the configured owner set. An
// admin token alone is not enough for these routes.
func RequireOwner(ownerIDs []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isOwner(ownerIDs, c.GetString("user_id")) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Owner access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func isOwner(ownerIDs []string, userID string) bool {
	for _, id := range ownerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// RateLimiter is the slice of the store the rate-limit middleware needs.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, userID, action string, limit int, window time.Duration) (bool, error)
}

// RateLimitMiddleware throttles the hot gameplay routes per user. The
// bucket key is the route pattern, not the request path, so routes with
// parameters share one bucket across parameter values. Hack attempts
// are throttled inside the engine and stay out of this middleware.
func RateLimitMiddleware(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}

		route := c.FullPath()
		var limit int
		switch {
		case strings.Contains(route, "/upgrade"):
			limit = 60
		default:
			c.Next()
			return
		}

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), userID, route, limit, services.RateLimitWindow)
		if err != nil || !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       models.ErrRateLimited.Error(),
				"retry_after": services.RateLimitWindow.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
