package carepointclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carepoint-health/carepoint-client/internal/client"
	"github.com/carepoint-health/carepoint-client/internal/store"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired = errors.New("config is required")
	ErrTokensRequired = errors.New("access and refresh tokens are required")
)

// New creates a new Carepoint API client.
func New(ctx context.Context, config *carepoint.Config) (carepoint.Client, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	normalized := *config
	normalized.APIEndpoint = normalizeEndpoint(carepoint.ResolveAPIEndpoint(config.APIEndpoint))

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithEndpoint creates a client for endpoint with an in-memory store.
func NewWithEndpoint(ctx context.Context, endpoint string) (carepoint.Client, error) {
	return New(ctx, &carepoint.Config{APIEndpoint: endpoint})
}

// NewWithStore creates a client using tokenStore for credentials.
func NewWithStore(ctx context.Context, endpoint string, tokenStore carepoint.TokenStore) (carepoint.Client, error) {
	return New(ctx, &carepoint.Config{APIEndpoint: endpoint, TokenStore: tokenStore})
}

// NewWithSession creates a client whose in-memory store is seeded with an
// existing token pair.
func NewWithSession(ctx context.Context, endpoint, accessToken, refreshToken string) (carepoint.Client, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, ErrTokensRequired
	}

	tokenStore := store.NewMemoryStore()

	if err := tokenStore.Set(ctx, carepoint.KeyAccessToken, accessToken); err != nil {
		return nil, fmt.Errorf("seeding access token: %w", err)
	}

	if err := tokenStore.Set(ctx, carepoint.KeyRefreshToken, refreshToken); err != nil {
		return nil, fmt.Errorf("seeding refresh token: %w", err)
	}

	return NewWithStore(ctx, endpoint, tokenStore)
}

// normalizeEndpoint defaults a bare host to https.
func normalizeEndpoint(endpoint string) string {
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return "https://" + endpoint
	}

	return endpoint
}
