package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/carepoint-health/carepoint-client/internal/auth"
	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/internal/http"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// AuthClient implements carepoint.AuthClient.
type AuthClient struct {
	httpClient *http.Client
	tokenStore carepoint.TokenStore
	refresher  http.TokenRefresher
}

// NewAuthClient creates a new auth client.
func NewAuthClient(httpClient *http.Client, tokenStore carepoint.TokenStore, refresher http.TokenRefresher) *AuthClient {
	return &AuthClient{
		httpClient: httpClient,
		tokenStore: tokenStore,
		refresher:  refresher,
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

type googleAuthRequest struct {
	AccessToken string `json:"access_token"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// Register implements carepoint.AuthClient.Register
func (c *AuthClient) Register(ctx context.Context, request *carepoint.RegisterRequest) (*carepoint.RegisterResponse, error) {
	if request == nil || strings.TrimSpace(request.Email) == "" {
		return nil, constants.ErrEmailRequired
	}

	resp, err := c.httpClient.Post(ctx, "/auth/register/", request, http.WithoutAuth())
	if err != nil {
		return nil, fmt.Errorf("registering account: %w", err)
	}

	var result carepoint.RegisterResponse
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing register response: %w", err)
	}

	return &result, nil
}

// Login implements carepoint.AuthClient.Login. Tokens and user are persisted
// when the server returns them.
func (c *AuthClient) Login(ctx context.Context, request *carepoint.LoginRequest) (*carepoint.AuthResponse, error) {
	if request == nil || strings.TrimSpace(request.Email) == "" {
		return nil, constants.ErrEmailRequired
	}

	if request.Password == "" {
		return nil, constants.ErrPasswordRequired
	}

	return c.authenticate(ctx, "/auth/login/", request, "logging in")
}

// VerifyOTP implements carepoint.AuthClient.VerifyOTP
func (c *AuthClient) VerifyOTP(ctx context.Context, request *carepoint.VerifyOTPRequest) (*carepoint.AuthResponse, error) {
	if request == nil || strings.TrimSpace(request.Email) == "" {
		return nil, constants.ErrEmailRequired
	}

	return c.authenticate(ctx, "/auth/verify-otp/", request, "verifying OTP")
}

// GoogleAuth implements carepoint.AuthClient.GoogleAuth
func (c *AuthClient) GoogleAuth(ctx context.Context, accessToken string) (*carepoint.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/google/", googleAuthRequest{AccessToken: accessToken}, "signing in with Google")
}

func (c *AuthClient) authenticate(ctx context.Context, path string, body interface{}, action string) (*carepoint.AuthResponse, error) {
	resp, err := c.httpClient.Post(ctx, path, body, http.WithoutAuth())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	var result carepoint.AuthResponse
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing auth response: %w", err)
	}

	if result.Access != "" && result.Refresh != "" {
		if err := auth.SaveSession(ctx, c.tokenStore, result.Access, result.Refresh, result.User); err != nil {
			return nil, fmt.Errorf("saving session: %w", err)
		}
	}

	return &result, nil
}

// ResendVerification implements carepoint.AuthClient.ResendVerification
func (c *AuthClient) ResendVerification(ctx context.Context, email string) (*carepoint.MessageResponse, error) {
	return c.publicMessage(ctx, "/auth/resend-verification/", email, "resending verification")
}

// PasswordResetRequest implements carepoint.AuthClient.PasswordResetRequest
func (c *AuthClient) PasswordResetRequest(ctx context.Context, email string) (*carepoint.MessageResponse, error) {
	return c.publicMessage(ctx, "/auth/password-reset-request/", email, "requesting password reset")
}

func (c *AuthClient) publicMessage(ctx context.Context, path, email, action string) (*carepoint.MessageResponse, error) {
	if strings.TrimSpace(email) == "" {
		return nil, constants.ErrEmailRequired
	}

	resp, err := c.httpClient.Post(ctx, path, emailRequest{Email: email}, http.WithoutAuth())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	var result carepoint.MessageResponse
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return &result, nil
}

// PasswordResetConfirm implements carepoint.AuthClient.PasswordResetConfirm
func (c *AuthClient) PasswordResetConfirm(
	ctx context.Context,
	request *carepoint.PasswordResetConfirmRequest,
) (*carepoint.MessageResponse, error) {
	resp, err := c.httpClient.Post(ctx, "/auth/password-reset-confirm/", request, http.WithoutAuth())
	if err != nil {
		return nil, fmt.Errorf("confirming password reset: %w", err)
	}

	var result carepoint.MessageResponse
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing password reset response: %w", err)
	}

	return &result, nil
}

// Profile implements carepoint.AuthClient.Profile. It returns nil without an
// error when there is no session. A fetched profile refreshes the cached user.
func (c *AuthClient) Profile(ctx context.Context) (*carepoint.User, error) {
	resp, err := c.httpClient.Get(ctx, "/auth/profile/", nil)
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	if resp.Empty {
		return nil, nil
	}

	var user carepoint.User
	if err := resp.Decode(&user); err != nil {
		return nil, fmt.Errorf("parsing profile response: %w", err)
	}

	if err := auth.SaveUser(ctx, c.tokenStore, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateProfile implements carepoint.AuthClient.UpdateProfile. When the
// response omits the user, the profile is fetched again; the result is nil
// only if that read degrades too.
func (c *AuthClient) UpdateProfile(ctx context.Context, request *carepoint.UpdateProfileRequest) (*carepoint.User, error) {
	resp, err := c.httpClient.Patch(ctx, "/auth/profile/", request)
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	var result carepoint.UpdateProfileResponse
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing profile response: %w", err)
	}

	if result.User == nil {
		return c.Profile(ctx)
	}

	if err := auth.SaveUser(ctx, c.tokenStore, result.User); err != nil {
		return nil, err
	}

	return result.User, nil
}

// ChangePassword implements carepoint.AuthClient.ChangePassword
func (c *AuthClient) ChangePassword(ctx context.Context, request *carepoint.ChangePasswordRequest) (*carepoint.MessageResponse, error) {
	resp, err := c.httpClient.Post(ctx, "/auth/change-password/", request)
	if err != nil {
		return nil, fmt.Errorf("changing password: %w", err)
	}

	var result carepoint.MessageResponse
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing change password response: %w", err)
	}

	return &result, nil
}

// Logout implements carepoint.AuthClient.Logout. The stored session is
// cleared even when the server call fails; that failure is still returned.
func (c *AuthClient) Logout(ctx context.Context) error {
	refresh, err := c.tokenStore.Get(ctx, constants.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("reading refresh token: %w", err)
	}

	var callErr error

	if refresh != "" {
		if _, err := c.httpClient.Post(ctx, "/auth/logout/", logoutRequest{Refresh: refresh}); err != nil {
			callErr = fmt.Errorf("logging out: %w", err)
		}
	}

	if err := auth.ClearSession(ctx, c.tokenStore); err != nil {
		return err
	}

	return callErr
}

// DeleteAccount implements carepoint.AuthClient.DeleteAccount
func (c *AuthClient) DeleteAccount(ctx context.Context) error {
	if _, err := c.httpClient.Delete(ctx, "/auth/delete-account/"); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	return auth.ClearSession(ctx, c.tokenStore)
}

// RefreshToken implements carepoint.AuthClient.RefreshToken through the same
// coordinator the executor uses, so it joins any refresh already in flight.
func (c *AuthClient) RefreshToken(ctx context.Context) (string, error) {
	refresh, err := c.tokenStore.Get(ctx, constants.KeyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("reading refresh token: %w", err)
	}

	if refresh == "" {
		return "", constants.ErrNoRefreshToken
	}

	if c.refresher == nil {
		return "", constants.ErrRefreshFailed
	}

	token, err := c.refresher.RefreshAccessToken(ctx)
	if err != nil {
		return "", err
	}

	if token == "" {
		return "", constants.ErrRefreshFailed
	}

	return token, nil
}

// CurrentUser implements carepoint.AuthClient.CurrentUser from the cache,
// without a network call.
func (c *AuthClient) CurrentUser(ctx context.Context) (*carepoint.User, error) {
	return auth.LoadUser(ctx, c.tokenStore)
}
