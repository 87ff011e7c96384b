package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// SaveSession persists the credential pair and the cached user.
func SaveSession(ctx context.Context, store carepoint.TokenStore, access, refresh string, user *carepoint.User) error {
	if access == "" || refresh == "" {
		return constants.ErrNoTokensInResponse
	}

	if err := store.Set(ctx, constants.KeyAccessToken, access); err != nil {
		return fmt.Errorf("storing access token: %w", err)
	}

	if err := store.Set(ctx, constants.KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("storing refresh token: %w", err)
	}

	if user == nil {
		return nil
	}

	return SaveUser(ctx, store, user)
}

// SaveUser replaces the cached user.
func SaveUser(ctx context.Context, store carepoint.TokenStore, user *carepoint.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	if err := store.Set(ctx, constants.KeyUser, string(data)); err != nil {
		return fmt.Errorf("storing user: %w", err)
	}

	return nil
}

// ClearSession removes every credential key.
func ClearSession(ctx context.Context, store carepoint.TokenStore) error {
	if err := store.MultiRemove(ctx, carepoint.CredentialKeys()...); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	return nil
}

// LoadUser returns the cached user, or nil when none is stored.
func LoadUser(ctx context.Context, store carepoint.TokenStore) (*carepoint.User, error) {
	data, err := store.Get(ctx, constants.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("reading user: %w", err)
	}

	if data == "" {
		return nil, nil
	}

	var user carepoint.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("decoding cached user: %w", err)
	}

	return &user, nil
}

// HasSession reports whether an access token is stored.
func HasSession(ctx context.Context, store carepoint.TokenStore) (bool, error) {
	token, err := store.Get(ctx, constants.KeyAccessToken)
	if err != nil {
		return false, fmt.Errorf("reading access token: %w", err)
	}

	return token != "", nil
}
