package models

import "github.com/golang-jwt/jwt/v5"

// AuthClaims are the JWT claims issued by the auth service.
type AuthClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Sub   string `json:"sub"`
	Name  string `json:"name"`
}
