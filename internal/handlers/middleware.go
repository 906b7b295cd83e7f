package handlers

import (
	"net/http"
	"strings"

	"storefront/internal/models"
	"storefront/internal/redis"

	"github.com/gin-gonic/gin"
)

const (
	actorKey = "actor"
	tokenKey = "session_token"
)

// RequireAuth resolves the bearer token into an Actor. Everything below the
// handler layer receives the actor explicitly; no service reads the session.
func RequireAuth(sessions *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		session, err := sessions.GetSession(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.Set(actorKey, models.Actor{
			UserID: session.UserID,
			Role:   models.UserRole(session.Role),
		})
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireRole guards a route group to the given roles. Runs after RequireAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentActor(c)
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

func CurrentActor(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}

func sessionToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
