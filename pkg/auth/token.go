package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/shophub/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintToken issues a signed JWT for the provided payload using the configured TTL.
func MintToken(cfg config.AuthConfig, now time.Time, payload TokenPayload) (string, error) {
	if cfg.TokenSecret == "" {
		return "", fmt.Errorf("token secret is required")
	}
	if cfg.TokenIssuer == "" {
		return "", fmt.Errorf("token issuer is required")
	}
	if cfg.TokenTTL <= 0 {
		return "", fmt.Errorf("token ttl must be positive")
	}
	email := strings.TrimSpace(payload.Email)
	if email == "" {
		return "", fmt.Errorf("token subject email is required")
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	claims := TokenClaims{
		UserID: payload.UserID,
		Email:  email,
		Name:   payload.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.TokenIssuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.TokenSecret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseToken validates the JWT string and returns typed claims.
func ParseToken(cfg config.AuthConfig, tokenString string) (*TokenClaims, error) {
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("token secret is required")
	}

	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.TokenSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.TokenIssuer),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
