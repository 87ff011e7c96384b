package commands

import (
	"context"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/carepoint-health/carepoint-client/internal/auth"
	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// TokenStatus describes the stored session.
type TokenStatus struct {
	LoggedIn     bool       `json:"logged_in"            yaml:"logged_in"`
	AccessToken  string     `json:"access_token"         yaml:"access_token"`
	HasRefresh   bool       `json:"has_refresh"          yaml:"has_refresh"`
	UserID       string     `json:"user_id,omitempty"    yaml:"user_id,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired      bool       `json:"expired"              yaml:"expired"`
	ExpiresIn    string     `json:"expires_in,omitempty" yaml:"expires_in,omitempty"`
	InspectError string     `json:"inspect_error,omitempty" yaml:"inspect_error,omitempty"`
}

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect and refresh the access token",
		Long:  "Show the stored session and mint a new access token from the refresh token",
	}

	cmd.AddCommand(newTokenStatusCommand())
	cmd.AddCommand(newTokenRefreshCommand())

	return cmd
}

func newTokenStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show token status",
		Long:  "Display whether a session is stored and when its access token expires",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				status, err := tokenStatus(ctx, client.TokenStore(), time.Now())
				if err != nil {
					return err
				}

				return render(cmd, status, func(table *tablewriter.Table) {
					_ = table.Append("Logged In", yesNo(status.LoggedIn))
					_ = table.Append("Access Token", status.AccessToken)
					_ = table.Append("Refresh Token", yesNo(status.HasRefresh))

					if status.UserID != "" {
						_ = table.Append("User", status.UserID)
					}

					if status.ExpiresAt != nil {
						_ = table.Append("Expires At", status.ExpiresAt.Format(time.RFC3339))
						_ = table.Append("Expires In", status.ExpiresIn)
					}

					if status.InspectError != "" {
						_ = table.Append("Claims", status.InspectError)
					}
				}, "Property", "Value")
			})
		},
	}
}

func tokenStatus(ctx context.Context, store carepoint.TokenStore, now time.Time) (*TokenStatus, error) {
	access, err := store.Get(ctx, constants.KeyAccessToken)
	if err != nil {
		return nil, err
	}

	refresh, err := store.Get(ctx, constants.KeyRefreshToken)
	if err != nil {
		return nil, err
	}

	status := &TokenStatus{
		LoggedIn:    access != "",
		AccessToken: tokenPreview(access),
		HasRefresh:  refresh != "",
	}

	if access == "" {
		return status, nil
	}

	info, err := auth.InspectToken(access)
	if err != nil {
		status.InspectError = err.Error()

		return status, nil
	}

	status.UserID = valueOr(info.UserID, info.Subject)
	status.ExpiresAt = &info.ExpiresAt
	status.Expired = info.Expired(now)
	status.ExpiresIn = info.ExpiresIn(now).Round(time.Second).String()

	return status, nil
}

func newTokenRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token",
		Long:  "Exchange the stored refresh token for a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				token, err := client.Auth().RefreshToken(ctx)
				if err != nil {
					return err
				}

				printf(cmd, "Access token refreshed: %s\n", tokenPreview(token))

				return nil
			})
		},
	}
}
