package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

const refreshFlightKey = "refresh"

// Doer sends a single HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Refresher mints new access tokens from the stored refresh token. At most
// one refresh is in flight per Refresher; concurrent callers share its result.
type Refresher struct {
	tokenURL string
	store    carepoint.TokenStore
	doer     Doer
	logger   carepoint.Logger
	timeout  time.Duration

	group singleflight.Group
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithRefreshLogger sets the logger.
func WithRefreshLogger(logger carepoint.Logger) RefresherOption {
	return func(r *Refresher) {
		r.logger = logger
	}
}

// WithRefreshTimeout bounds a single refresh call.
func WithRefreshTimeout(timeout time.Duration) RefresherOption {
	return func(r *Refresher) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// NewRefresher creates a refresher posting to {baseURL}/auth/token/refresh/.
func NewRefresher(baseURL string, store carepoint.TokenStore, doer Doer, opts ...RefresherOption) *Refresher {
	if doer == nil {
		doer = http.DefaultClient
	}

	refresher := &Refresher{
		tokenURL: strings.TrimSuffix(baseURL, "/") + constants.TokenRefreshPath,
		store:    store,
		doer:     doer,
		timeout:  constants.RefreshTimeout,
	}

	for _, opt := range opts {
		opt(refresher)
	}

	return refresher
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// RefreshAccessToken returns a fresh access token, or "" when the session
// cannot be refreshed. Any failure after the refresh token was found clears
// all stored credentials. The only error is the caller's own context ending
// while waiting; the shared refresh keeps running for the other waiters.
func (r *Refresher) RefreshAccessToken(ctx context.Context) (string, error) {
	result := r.group.DoChan(refreshFlightKey, func() (interface{}, error) {
		return r.refresh(context.WithoutCancel(ctx)), nil
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for token refresh: %w", ctx.Err())
	case res := <-result:
		token, _ := res.Val.(string)

		return token, nil
	}
}

func (r *Refresher) refresh(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	refreshToken, err := r.store.Get(ctx, constants.KeyRefreshToken)
	if err != nil {
		r.warn("Failed to read refresh token", map[string]interface{}{"error": err.Error()})

		return ""
	}

	if refreshToken == "" {
		return ""
	}

	access, err := r.exchange(ctx, refreshToken)
	if err != nil {
		r.warn("Token refresh failed, clearing credentials", map[string]interface{}{"error": err.Error()})
		r.clear(ctx)

		return ""
	}

	if err := r.store.Set(ctx, constants.KeyAccessToken, access.Access); err != nil {
		r.warn("Failed to persist refreshed access token", map[string]interface{}{"error": err.Error()})
		r.clear(ctx)

		return ""
	}

	// Rotating backends return a new refresh token alongside the access token.
	if access.Refresh != "" {
		if err := r.store.Set(ctx, constants.KeyRefreshToken, access.Refresh); err != nil {
			r.warn("Failed to persist rotated refresh token", map[string]interface{}{"error": err.Error()})
		}
	}

	if r.logger != nil {
		r.logger.Debug("Access token refreshed", nil)
	}

	return access.Access
}

func (r *Refresher) exchange(ctx context.Context, refreshToken string) (*refreshResponse, error) {
	payload, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("marshaling refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating refresh request: %w", err)
	}

	req.Header.Set("Content-Type", constants.ContentTypeJSON)
	req.Header.Set("Accept", constants.ContentTypeJSON)

	resp, err := r.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading refresh response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", constants.ErrRefreshFailed, resp.StatusCode)
	}

	var parsed refreshResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing refresh response: %w", err)
	}

	if strings.TrimSpace(parsed.Access) == "" {
		return nil, fmt.Errorf("%w: response has no access token", constants.ErrRefreshFailed)
	}

	return &parsed, nil
}

func (r *Refresher) clear(ctx context.Context) {
	if err := r.store.MultiRemove(ctx, carepoint.CredentialKeys()...); err != nil {
		r.warn("Failed to clear credentials", map[string]interface{}{"error": err.Error()})
	}
}

func (r *Refresher) warn(msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.Warn(msg, fields)
	}
}
