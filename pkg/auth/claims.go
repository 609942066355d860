package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenPayload captures the data available when minting a storefront token.
type TokenPayload struct {
	UserID int64
	Email  string
	Name   string
	JTI    string
}

// TokenClaims is the JWT body carried by storefront tokens.
type TokenClaims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
