package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/carepoint-health/carepoint-client/internal/constants"
)

// Claims are the access token claims the backend issues.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id,omitempty"`
	TokenType string `json:"token_type,omitempty"`
}

// TokenInfo summarises an access token without verifying its signature.
type TokenInfo struct {
	Subject   string
	UserID    string
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (i *TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// ExpiresIn returns the time left until expiry, negative once expired.
func (i *TokenInfo) ExpiresIn(now time.Time) time.Duration {
	return i.ExpiresAt.Sub(now)
}

// InspectToken decodes a JWT's claims without checking the signature.
func InspectToken(token string) (*TokenInfo, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, constants.BearerPrefix))
	if strings.Count(token, ".") != 2 {
		return nil, constants.ErrInvalidJWTFormat
	}

	claims := &Claims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	if claims.ExpiresAt == nil {
		return nil, constants.ErrNoExpirationClaim
	}

	info := &TokenInfo{
		Subject:   claims.Subject,
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}

	return info, nil
}
