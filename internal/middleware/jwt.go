package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edustack/lms-api/internal/service"
	appErrors "github.com/edustack/lms-api/pkg/errors"
	"github.com/edustack/lms-api/pkg/response"
)

// ContextClaimsKey is the gin context key storing verified token claims.
const ContextClaimsKey = "currentClaims"

// JWT protects routes by requiring a valid bearer token.
func JWT(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// Claims returns the verified claims stored on the context, if any.
func Claims(c *gin.Context) *service.TokenClaims {
	if v, exists := c.Get(ContextClaimsKey); exists {
		if claims, ok := v.(*service.TokenClaims); ok {
			return claims
		}
	}
	return nil
}
