package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ticketa/ticketa/pkg/response"
)

const (
	// ContextKeyUserID is the gin context key holding the caller's user id
	ContextKeyUserID = "user_id"
	// ContextKeyRole is the gin context key holding the caller's role
	ContextKeyRole = "role"
)

var (
	ErrMissingToken = errors.New("missing authorization token")
	ErrInvalidToken = errors.New("invalid authorization token")
)

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	Secret string
	Issuer string
}

// Claims are the JWT claims this service consumes. Tokens are minted by
// the identity service; this service only verifies them.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth returns a middleware that validates the bearer token and places
// the caller's user id and role in the gin context
func Auth(cfg *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(cfg.Secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, ErrInvalidToken.Error())
			return
		}

		if cfg.Issuer != "" {
			if issuer, err := claims.GetIssuer(); err != nil || issuer != cfg.Issuer {
				abortUnauthorized(c, ErrInvalidToken.Error())
				return
			}
		}

		if claims.Subject == "" || claims.Role == "" {
			abortUnauthorized(c, ErrInvalidToken.Error())
			return
		}

		c.Set(ContextKeyUserID, claims.Subject)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireRole returns a middleware that rejects callers without the role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextKeyRole) != role {
			abortForbidden(c)
			return
		}
		c.Next()
	}
}

// GetUserID extracts the authenticated user id from the gin context
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextKeyUserID)
	return userID, userID != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorBody("UNAUTHORIZED", message))
}

func abortForbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorBody("FORBIDDEN", "insufficient role"))
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
