package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		email    string
		password string
		otp      string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Carepoint",
		Long:  "Authenticate with email and password, or complete a pending sign-up with --otp",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error

			if email == "" {
				email, err = promptLine(cmd, "Email: ")
				if err != nil {
					return err
				}
			}

			if email == "" {
				return constants.ErrEmailRequired
			}

			if otp == "" && password == "" {
				password, err = readSecret(cmd, "Password: ")
				if err != nil {
					return err
				}
			}

			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				var resp *carepoint.AuthResponse

				if otp != "" {
					resp, err = client.Auth().VerifyOTP(ctx, &carepoint.VerifyOTPRequest{Email: email, OTP: otp})
				} else {
					resp, err = client.Auth().Login(ctx, &carepoint.LoginRequest{Email: email, Password: password})
				}

				if err != nil {
					return err
				}

				if resp.Access == "" {
					printf(cmd, "%s\n", valueOr(resp.Message, "Check your email for a verification code, then run 'carepoint login --otp CODE'."))

					return nil
				}

				name := email
				if resp.User != nil && resp.User.FullName() != "" {
					name = resp.User.FullName()
				}

				printf(cmd, "Logged in as %s\n", name)

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time code from the verification email")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of Carepoint",
		Long:  "Revoke the refresh token and remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client carepoint.Client) error {
				if err := client.Auth().Logout(ctx); err != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: server logout failed: %v\n", err)
				}

				printf(cmd, "Logged out\n")

				return nil
			})
		},
	}
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), prompt)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func promptSecret(cmd *cobra.Command, in *os.File, prompt string) (string, error) {
	fd := int(in.Fd()) //nolint:gosec // file descriptors fit in int

	if cmd.InOrStdin() != os.Stdin || !term.IsTerminal(fd) {
		return promptLine(cmd, prompt)
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), prompt)

	secret, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(secret), nil
}
