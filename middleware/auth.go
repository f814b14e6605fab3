package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"travel-friend/api/logger"
	"travel-friend/api/models"
)

// AuthMiddleware verifies bearer tokens and stores the claims in the gin
// context under "user".
func AuthMiddleware(c *gin.Context) {
	tokenString := extractToken(c.Request)
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Missing or invalid token"})
		c.Abort()
		return
	}

	claims, err := ParseClaims(tokenString)
	if err != nil {
		logger.Get().Warn("rejected token", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized: " + err.Error()})
		c.Abort()
		return
	}

	c.Set("user", claims)
	c.Next()
}

// ParseClaims validates the token signature and issuer and returns its
// claims. Shared with the SSE endpoint, which carries the token in a query
// parameter instead of a header.
func ParseClaims(tokenString string) (*models.AuthClaims, error) {
	claims := &models.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			return nil, fmt.Errorf("JWT_SECRET environment variable not set")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if issuer := os.Getenv("AUTH_ISSUER"); issuer != "" && claims.Issuer != issuer {
		return nil, fmt.Errorf("invalid token issuer")
	}
	return claims, nil
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}
