package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"vidshare/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	IdentityKey = "identity"
	ClaimsKey   = "claims"
	UserIDKey   = "userID"

	authCookie = "auth_token"
)

type TokenDecoder interface {
	Decode(token string) (security.Identity, jwt.MapClaims, error)
}

// NewJWTMiddleware rejects requests without a valid access token. The token
// is read from the Authorization header, falling back to the auth_token
// cookie. On success the decoded identity and raw claims are stored in the
// context.
func NewJWTMiddleware(tokens TokenDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString(RequestIDKey)

		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			tokenStr, _ = c.Cookie(authCookie)
		}

		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Missing authorization token",
				"requestID": requestID,
			})
			return
		}

		id, claims, err := tokens.Decode(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authorization token invalid",
				"requestID": requestID,
			})

			zap.L().Debug("Failed to decode token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set(IdentityKey, id)
		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, strconv.FormatUint(uint64(id.ID), 10))
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

// IdentityFrom returns the identity stored by the JWT middleware
func IdentityFrom(c *gin.Context) security.Identity {
	return c.MustGet(IdentityKey).(security.Identity)
}

func ClaimsFrom(c *gin.Context) jwt.MapClaims {
	return c.MustGet(ClaimsKey).(jwt.MapClaims)
}
