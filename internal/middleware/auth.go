package middleware

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/BIJODEV/BibleQZ/internal/config"
)

const (
	userIDKey   = "user_id"
	userNameKey = "user_name"
)

// InitCasdoor wires the identity provider used for author endpoints. Returns
// false when no endpoint is configured; auth-required routes then reject all
// requests and anonymous routes keep working.
func InitCasdoor(cfg config.CasdoorConfig) bool {
	if cfg.Endpoint == "" {
		return false
	}
	casdoorsdk.InitConfig(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return true
}

// Auth resolves the caller's identity from a bearer token. With required set,
// requests without a valid token are rejected; otherwise they proceed
// anonymously. Participants never authenticate; identity only scopes the
// author's quiz history.
func Auth(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
				return
			}
			c.Next()
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
				return
			}
			c.Next()
			return
		}

		c.Set(userIDKey, claims.User.Id)
		c.Set(userNameKey, claims.User.DisplayName)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// CurrentUserID returns the authenticated caller's opaque id, empty when
// anonymous.
func CurrentUserID(c *gin.Context) string {
	if id, ok := c.Get(userIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
