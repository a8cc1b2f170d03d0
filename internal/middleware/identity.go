package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

const personIDKey = "person_id"

type IdentityClaims struct {
	PersonID string `json:"person_id"`
	jwt.RegisteredClaims
}

// IdentityMiddleware authenticates the request and stashes the acting
// person's id in the gin context. It makes no role decision; the services
// derive employee/manager from the target teammate.
type IdentityMiddleware struct {
	log          *logger.Logger
	jwtSecretKey string
}

func NewIdentityMiddleware(log *logger.Logger, jwtSecretKey string) *IdentityMiddleware {
	return &IdentityMiddleware{
		log:          log.With("Middleware", "IdentityMiddleware"),
		jwtSecretKey: jwtSecretKey,
	}
}

func (im *IdentityMiddleware) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}

		claims := &IdentityClaims{}
		parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(im.jwtSecretKey), nil
		})
		if err != nil || !parsed.Valid {
			im.log.Debug("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		raw := claims.PersonID
		if raw == "" {
			raw = claims.Subject
		}
		personID, err := uuid.Parse(raw)
		if err != nil || personID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set(personIDKey, personID)
		c.Next()
	}
}

// PersonID reads the authenticated person id placed by RequireIdentity.
func PersonID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(personIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	return ""
}
