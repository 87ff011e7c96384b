package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
	"github.com/carepoint-health/carepoint-client/pkg/carepointclient"
)

// newClient builds a client from the effective configuration.
func newClient(ctx context.Context, cmd *cobra.Command) (carepoint.Client, error) {
	config := loadConfig()

	clientConfig := &carepoint.Config{
		APIEndpoint: config.API,
		Store:       &config.Store,
		RetryMax:    config.RetryMax,
	}

	if config.RequestTimeout != "" {
		timeout, err := time.ParseDuration(config.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid request_timeout: %w", err)
		}

		clientConfig.RequestTimeout = timeout
	}

	if viper.GetBool("verbose") {
		handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
		clientConfig.Logger = carepoint.NewSlogLogger(slog.New(handler))
		clientConfig.Debug = true
	}

	client, err := carepointclient.New(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// withClient runs fn with a client and closes it afterwards.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client carepoint.Client) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := newClient(ctx, cmd)
	if err != nil {
		return err
	}

	defer func() { _ = client.Close() }()

	return fn(ctx, client)
}

// requireSession fails early when no credentials are stored.
func requireSession(ctx context.Context, client carepoint.Client) error {
	token, err := client.TokenStore().Get(ctx, carepoint.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("reading credentials: %w", err)
	}

	if token == "" {
		return constants.ErrNotLoggedIn
	}

	return nil
}

func isOutputFormat(format string) bool {
	switch format {
	case constants.FormatJSON, constants.FormatYAML, constants.FormatTable:
		return true
	default:
		return false
	}
}

// render writes value as JSON or YAML, or as a table filled by rows.
func render(cmd *cobra.Command, value interface{}, rows func(table *tablewriter.Table), header ...string) error {
	out := cmd.OutOrStdout()

	switch format := viper.GetString("output"); format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)

		return encoder.Encode(value)
	case constants.FormatTable, "":
		return renderTable(out, rows, header...)
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputValue, format)
	}
}

func renderTable(out io.Writer, rows func(table *tablewriter.Table), header ...string) error {
	table := tablewriter.NewWriter(out)
	if len(header) > 0 {
		headerArgs := make([]any, len(header))
		for i, h := range header {
			headerArgs[i] = h
		}

		table.Header(headerArgs...)
	}

	rows(table)

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}

func tokenPreview(token string) string {
	if token == "" {
		return constants.NotAvailable
	}

	if len(token) <= constants.TokenPreviewLength {
		return constants.MaskedSecret
	}

	return token[:constants.TokenPreviewLength] + "..."
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// readSecret reads a password without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	return promptSecret(cmd, os.Stdin, prompt)
}

func isTableOutput() bool {
	format := viper.GetString("output")

	return format == constants.FormatTable || format == ""
}
