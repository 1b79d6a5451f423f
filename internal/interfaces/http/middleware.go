package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/clematis-labs/justify-server/internal/application/service"
	"github.com/clematis-labs/justify-server/internal/domain/role"
)

// actorKey is the gin context key holding the resolved request actor.
const actorKey = "actor"

// claims are the JWT claims the server trusts: the subject is the user
// id, org_id the tenant context.
type claims struct {
	OrgID string `json:"org_id"`
	jwt.RegisteredClaims
}

// AuthMiddleware authenticates the Bearer token, resolves the caller's
// role within the token's organization and stores the actor on the
// request context. Tokens are only accepted when HMAC-signed.
func AuthMiddleware(secret string, resolver *role.Resolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortWithError(c, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "missing bearer token")
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		var tokenClaims claims
		token, err := jwt.ParseWithClaims(tokenString, &tokenClaims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.Debug("Token rejected", zap.Error(err))
			abortWithError(c, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "invalid or expired token")
			return
		}

		userID := tokenClaims.Subject
		if userID == "" {
			abortWithError(c, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "token carries no subject")
			return
		}
		if tokenClaims.OrgID == "" {
			abortWithError(c, http.StatusBadRequest, "ORGANIZATION_CONTEXT_MISSING", "token carries no organization")
			return
		}

		actor := service.Actor{
			UserID:         userID,
			OrganizationID: tokenClaims.OrgID,
			Role:           resolver.Resolve(c.Request.Context(), userID, tokenClaims.OrgID),
		}
		c.Set(actorKey, actor)

		c.Next()
	}
}

// requestActor returns the actor stored by AuthMiddleware.
func requestActor(c *gin.Context) service.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(service.Actor); ok {
			return actor
		}
	}
	return service.Actor{}
}
