package middleware

import (
	"strings"

	"tiketbus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const requestContextKey = "request_context"

// Identity parses a bearer token into the request context when present.
// Invalid tokens are ignored here; handlers that need an identity check it.
func Identity(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.Next()
			return
		}

		rc := domain.RequestContext{}
		if v, ok := claims["operator_id"].(float64); ok {
			rc.OperatorID = domain.ID(v)
		}
		if v, ok := claims["company_id"].(float64); ok {
			rc.CompanyID = domain.ID(v)
		}
		if v, ok := claims["role"].(string); ok {
			rc.Role = v
		}
		c.Set(requestContextKey, rc)
		c.Next()
	}
}

// GetRequestContext returns the parsed caller identity, zero when anonymous.
func GetRequestContext(c *gin.Context) domain.RequestContext {
	if v, ok := c.Get(requestContextKey); ok {
		if rc, ok := v.(domain.RequestContext); ok {
			return rc
		}
	}
	return domain.RequestContext{}
}
