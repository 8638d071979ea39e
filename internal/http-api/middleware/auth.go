package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/access"
	"reviewhub/internal/http-api/service"
)

const actorKey = "actor"

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// It checks for the presence and validity of a bearer token in the
// Authorization header and stores the resulting actor in the context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFromHeader(c, authService)
		if !ok {
			c.Abort()
			return
		}
		if !actor.Authenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// OptionalAuth resolves the actor when a token is present but lets
// anonymous requests through. Used on public read routes whose handlers
// still consult the access engine.
func OptionalAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFromHeader(c, authService)
		if !ok {
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// actorFromHeader parses the Authorization header. A missing header
// yields the anonymous actor; a malformed or invalid token is rejected
// outright (false return, response already written).
func actorFromHeader(c *gin.Context, authService service.AuthService) (access.Actor, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return access.Anonymous, true
	}

	// Extract token (format: "Bearer <token>")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
		return access.Anonymous, false
	}

	actor, err := authService.ValidateToken(parts[1])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return access.Anonymous, false
	}
	return actor, true
}

// ActorFromContext returns the actor resolved by the auth middleware,
// or the anonymous actor when none was set.
func ActorFromContext(c *gin.Context) access.Actor {
	if v, exists := c.Get(actorKey); exists {
		if actor, ok := v.(access.Actor); ok {
			return actor
		}
	}
	return access.Anonymous
}
