package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/infrastructure/auth"
	"github.com/inkasso/backend/internal/interfaces/http/dto"
)

// Context keys set by the auth middleware
const (
	JWTClaimsKey  = "jwt_claims"
	ActorKey      = "actor"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTAuthMiddleware validates the bearer token and stores its claims in the
// request context. Paths in skipPaths pass through unauthenticated.
func JWTAuthMiddleware(jwtService *auth.JWTService, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, "Missing token")
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if err == auth.ErrExpiredToken {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Token validation failed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Next()
	}
}

// ActorMiddleware resolves the authenticated user into a scoping Actor and
// stores it in the request context. The user is loaded on every request so
// portfolio changes and deactivations take effect immediately.
func ActorMiddleware(userRepo identity.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.Next()
			return
		}

		userID, err := claims.GetUserUUID()
		if err != nil {
			abortUnauthorized(c, "Invalid user ID in token")
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			abortUnauthorized(c, "Unknown user")
			return
		}
		if !user.IsActive() {
			abortUnauthorized(c, "Account is not active")
			return
		}

		c.Set(ActorKey, collection.ActorFromUser(user))
		c.Next()
	}
}

// GetJWTClaims returns the validated claims, or nil on unauthenticated paths
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetActor returns the scoping actor set by ActorMiddleware
func GetActor(c *gin.Context) (collection.Actor, bool) {
	if v, ok := c.Get(ActorKey); ok {
		if actor, ok := v.(collection.Actor); ok {
			return actor, true
		}
	}
	return collection.Actor{}, false
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, GetRequestID(c)))
}
