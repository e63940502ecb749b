package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// UserIDKey is the context key for the authenticated admin's user ID.
	UserIDKey = "user_id"
	// AdminRole is the role claim value required for back-office routes.
	AdminRole = "admin"
)

// AdminRequired validates a Bearer JWT and ensures it carries the "admin"
// role before letting the request through. Token issuance happens in the
// identity service; this middleware only verifies signature and claims.
//
// On success the token subject is stored in the gin context under UserIDKey.
func AdminRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := extractBearerToken(c)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortAuth(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token expired")
				return
			}
			abortAuth(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			abortAuth(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid claims")
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			abortAuth(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing subject")
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != AdminRole {
			abortAuth(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
			return
		}

		c.Set(UserIDKey, sub)
		c.Next()
	}
}

// GetUserID retrieves the authenticated admin's user ID from the gin context.
// Returns an empty string if the request is unauthenticated.
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get(UserIDKey); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("malformed authorization header")
	}
	return parts[1], nil
}

// abortAuth writes an error response in the same shape as the errors
// package. Defined here because the errors package imports middleware.
func abortAuth(c *gin.Context, status int, code, message string) {
	if log := GetLogger(c); log != nil {
		log.Warn("Request rejected by auth", map[string]interface{}{
			"status": status,
			"path":   c.Request.URL.Path,
			"reason": message,
		})
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":       code,
			"message":    message,
			"request_id": GetRequestID(c),
		},
	})
}
