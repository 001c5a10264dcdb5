package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gosuda/seguro/internal/domain"
)

// Claims holds the JWT token payload.
type Claims struct {
	jwt.RegisteredClaims
	Username  string `json:"usr"`
	Role      string `json:"role"`
	TokenType string `json:"typ"` // "access" or "refresh"
}

// Identity returns the caller identity carried by the token.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{Username: c.Username, Role: domain.Role(c.Role)}
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	issuer = "seguro"
)

// ErrInvalidToken is returned when a JWT cannot be parsed or has expired.
var ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)

// IssueAccessToken creates a signed JWT access token.
func IssueAccessToken(secret string, id domain.Identity, ttl time.Duration) (string, error) {
	return issueToken(secret, id, tokenTypeAccess, ttl)
}

// IssueRefreshToken creates a signed JWT refresh token.
func IssueRefreshToken(secret string, id domain.Identity, ttl time.Duration) (string, error) {
	return issueToken(secret, id, tokenTypeRefresh, ttl)
}

func issueToken(secret string, id domain.Identity, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
		Username:  id.Username,
		Role:      string(id.Role),
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.issueToken: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT token string. Returns the embedded claims.
func ValidateToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("auth.ValidateToken: %w", errors.Join(ErrInvalidToken, err))
	}

	if !token.Valid {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	return claims, nil
}

// ValidateAccessToken validates tokenString and requires an access token.
func ValidateAccessToken(secret, tokenString string) (*Claims, error) {
	claims, err := ValidateToken(secret, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, fmt.Errorf("auth.ValidateAccessToken: %w", ErrInvalidToken)
	}
	return claims, nil
}
