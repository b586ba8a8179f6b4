package middleware

import (
	"net/http"
	"strings"

	"deptbook/internal/domain"
	"deptbook/internal/pkg/jwt"
	"deptbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// JWTAuth validates the bearer token and stores the caller in the context
// under "user_id", "role" and "actor".
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		SetActor(c, ActorFromClaims(claims))
		c.Next()
	}
}

func ActorFromClaims(claims *jwt.Claims) domain.Actor {
	role := claims.Role
	if role == "" {
		role = domain.RoleMember
	}
	return domain.Actor{UserID: claims.UserID, Name: claims.Name, Role: role}
}

func SetActor(c *gin.Context, actor domain.Actor) {
	c.Set("user_id", actor.UserID)
	c.Set("role", actor.Role)
	c.Set(actorKey, actor)
}

func ActorFromContext(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok && actor.UserID != ""
}

// RequireActor returns the caller or writes a 401 and reports false.
func RequireActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := ActorFromContext(c)
	if !ok {
		response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return actor, ok
}
