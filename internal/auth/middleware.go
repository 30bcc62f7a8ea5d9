package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
)

const identityContextKey = "authIdentity"

// Middleware verifies externally issued bearer tokens and injects the caller
// identity into the gin context. Token issuance, sessions and revocation are
// owned by the external identity provider; requests without a valid token
// proceed without identity so public endpoints keep working, and protected
// handlers gate on Require.
type Middleware struct {
	signingSecret []byte
}

// NewMiddleware creates an identity middleware verifying tokens with the
// given shared secret.
func NewMiddleware(signingSecret string) *Middleware {
	return &Middleware{signingSecret: []byte(signingSecret)}
}

// Extract parses the Authorization header when present and stores the
// identity in the context.
func (m *Middleware) Extract() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.Next()
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := m.parseToken(tokenStr)
		if err != nil {
			log.WithFields(log.Fields{
				"path":  ctx.Request.URL.Path,
				"error": err,
			}).Warn("rejected bearer token")
			ctx.Next()
			return
		}

		ctx.Set(identityContextKey, &Identity{
			UserID: claims.UserUUID,
			Role:   claims.Role,
		})
		ctx.Next()
	}
}

// Require aborts with 401 when no identity was extracted, and with 403 when
// roles are given and the caller holds none of them.
func (m *Middleware) Require(roles ...Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity := GetIdentity(ctx)
		if identity == nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":      "error",
				"description": "authentication required",
			})
			return
		}
		if len(roles) > 0 && !hasRole(identity.Role, roles) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":      "error",
				"description": "insufficient role",
			})
			return
		}
		ctx.Next()
	}
}

// GetIdentity returns the caller identity, or nil when the request carried no
// valid token.
func GetIdentity(ctx *gin.Context) *Identity {
	value, exists := ctx.Get(identityContextKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*Identity)
	if !ok {
		return nil
	}
	return identity
}

func (m *Middleware) parseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.signingSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func hasRole(have Role, want []Role) bool {
	for _, role := range want {
		if have == role {
			return true
		}
	}
	return false
}
