package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"aurum_leasing/internal/models"
)

const sessionKey = "session"

var (
	secret   = []byte("supersecret")
	tokenTTL = 72 * time.Hour
)

// Configure sets the signing secret and token lifetime. Called once at startup.
func Configure(jwtSecret string, ttl time.Duration) {
	if jwtSecret != "" {
		secret = []byte(jwtSecret)
	}
	if ttl > 0 {
		tokenTTL = ttl
	}
}

type Claims struct {
	UserID   uint        `json:"user_id"`
	Role     models.Role `json:"role"`
	TenantID string      `json:"tenant_id,omitempty"`
	DriverID string      `json:"driver_id,omitempty"`
	jwt.RegisteredClaims
}

func GenerateToken(user models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	if user.TenantID != nil {
		claims.TenantID = *user.TenantID
	}
	if user.DriverID != nil {
		claims.DriverID = *user.DriverID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RequireAuth ensures a valid JWT is present and resolves the caller's session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		claims, err := ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if len(claims.Role.Capabilities()) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		session := models.NewSession(claims.UserID, claims.Role, claims.TenantID, claims.DriverID)
		c.Set(sessionKey, session)
		c.Set("user_id", claims.UserID)
		c.Set("role", string(claims.Role))
		if entry, ok := c.Get(loggerKey); ok {
			c.Set(loggerKey, entryWith(entry, "user_id", claims.UserID))
		}

		c.Next()
	}
}

// RequireCapability rejects callers whose role lacks capability. It must run after RequireAuth.
func RequireCapability(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if !session.Can(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func SessionFrom(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return models.Session{}, false
	}
	s, ok := v.(models.Session)
	return s, ok
}
