package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ConsultantContextKey is the key used to store consultant information in
// Gin context
const ConsultantContextKey = "consultant"

// ConsultantContext represents the authenticated consultant's information
type ConsultantContext struct {
	ConsultantID uuid.UUID `json:"consultant_id"`
	Email        string    `json:"email"`
}

// ConsultantClaims are the JWT claims issued to consultants
type ConsultantClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthMiddleware creates a middleware that validates consultant JWT tokens
func AuthMiddleware(secret string, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header is required",
				"code":    "MISSING_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid authorization header format. Expected: Bearer <token>",
				"code":    "INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		claims := &ConsultantClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))

		if err != nil || !token.Valid {
			logger.WithError(err).WithFields(logrus.Fields{
				"path": c.Request.URL.Path,
				"ip":   c.ClientIP(),
			}).Warn("Token validation failed")
			code := "INVALID_TOKEN"
			message := "Invalid access token"
			if err != nil && strings.Contains(err.Error(), "expired") {
				code = "TOKEN_EXPIRED"
				message = "Access token has expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": message,
				"code":    code,
			})
			c.Abort()
			return
		}

		consultantID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid access token",
				"code":    "INVALID_TOKEN",
			})
			c.Abort()
			return
		}

		c.Set(ConsultantContextKey, ConsultantContext{
			ConsultantID: consultantID,
			Email:        claims.Email,
		})
		c.Next()
	}
}

// GetConsultantContext retrieves the consultant context from Gin context
func GetConsultantContext(c *gin.Context) (ConsultantContext, bool) {
	value, exists := c.Get(ConsultantContextKey)
	if !exists {
		return ConsultantContext{}, false
	}

	ctx, ok := value.(ConsultantContext)
	if !ok {
		return ConsultantContext{}, false
	}
	return ctx, true
}
