package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/carepoint-health/carepoint-client/internal/auth"
	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/internal/http"
	"github.com/carepoint-health/carepoint-client/internal/store"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// Client implements the carepoint.Client interface.
type Client struct {
	httpClient *http.Client
	tokenStore carepoint.TokenStore
	refresher  *auth.Refresher
	logger     carepoint.Logger

	// ownedStore is closed by Close when the store was built from config.
	ownedStore store.Store

	// Resource clients
	auth              *AuthClient
	medications       *MedicationsClient
	healthRecords     *HealthRecordsClient
	emergencyContacts *EmergencyContactsClient
	medicalHistory    *MedicalHistoryClient
	notifications     *NotificationsClient
}

// New creates a client: credential store, retrying transport, refresh
// coordinator and the resource clients sharing them.
func New(ctx context.Context, config *carepoint.Config) (*Client, error) {
	if config == nil {
		return nil, constants.ErrAPIEndpointRequired
	}

	baseURL := carepoint.ResolveAPIEndpoint(config.APIEndpoint)

	tokenStore, owned, err := resolveTokenStore(ctx, config)
	if err != nil {
		return nil, err
	}

	transport := http.NewTransport(transportConfig(config))

	refresherOpts := []auth.RefresherOption{}
	if config.Logger != nil {
		refresherOpts = append(refresherOpts, auth.WithRefreshLogger(config.Logger))
	}

	refresher := auth.NewRefresher(baseURL, tokenStore, transport, refresherOpts...)

	httpOpts := createHTTPClientOptions(config)
	httpOpts = append(httpOpts, http.WithDoer(transport), http.WithRefresher(refresher))

	httpClient := http.NewClient(baseURL, tokenStore, httpOpts...)

	client := NewWithHTTPClient(httpClient, refresher)
	client.logger = config.Logger
	client.ownedStore = owned

	return client, nil
}

// NewWithHTTPClient builds the resource clients over an existing HTTP client.
func NewWithHTTPClient(httpClient *http.Client, refresher *auth.Refresher) *Client {
	tokenStore := httpClient.TokenStore()

	var tokenRefresher http.TokenRefresher
	if refresher != nil {
		tokenRefresher = refresher
	}

	return &Client{
		httpClient:        httpClient,
		tokenStore:        tokenStore,
		refresher:         refresher,
		auth:              NewAuthClient(httpClient, tokenStore, tokenRefresher),
		medications:       NewMedicationsClient(httpClient),
		healthRecords:     NewHealthRecordsClient(httpClient),
		emergencyContacts: NewEmergencyContactsClient(httpClient),
		medicalHistory:    NewMedicalHistoryClient(httpClient),
		notifications:     NewNotificationsClient(httpClient),
	}
}

func resolveTokenStore(ctx context.Context, config *carepoint.Config) (carepoint.TokenStore, store.Store, error) {
	if config.TokenStore != nil {
		return config.TokenStore, nil, nil
	}

	built, err := store.NewStoreFromConfig(ctx, config.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("creating token store: %w", err)
	}

	return built, built, nil
}

func transportConfig(config *carepoint.Config) http.TransportConfig {
	cfg := http.TransportConfig{
		RetryMax:     config.RetryMax,
		RetryWaitMin: constants.DefaultStatusRetryWaitMin,
		RetryWaitMax: constants.DefaultStatusRetryWaitMax,
		Logger:       config.Logger,
		Debug:        config.Debug,
	}

	if config.RetryWaitMin > 0 {
		cfg.RetryWaitMin = config.RetryWaitMin
	}

	if config.RetryWaitMax > 0 {
		cfg.RetryWaitMax = config.RetryWaitMax
	}

	return cfg
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *carepoint.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if ua := strings.TrimSpace(config.UserAgent); ua != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(ua))
	}

	requestTimeout := constants.DefaultRequestTimeout
	if config.RequestTimeout > 0 {
		requestTimeout = config.RequestTimeout
	}

	coldStartTimeout := constants.ColdStartTimeout
	if config.ColdStartTimeout > 0 {
		coldStartTimeout = config.ColdStartTimeout
	}

	httpOpts = append(httpOpts, http.WithTimeouts(requestTimeout, coldStartTimeout))

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultStatusRetryWaitMin
		retryWaitMax := constants.DefaultStatusRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// Auth implements carepoint.Client.Auth.
func (c *Client) Auth() carepoint.AuthClient {
	return c.auth
}

// Medications implements carepoint.Client.Medications.
func (c *Client) Medications() carepoint.MedicationsClient {
	return c.medications
}

// HealthRecords implements carepoint.Client.HealthRecords.
func (c *Client) HealthRecords() carepoint.HealthRecordsClient {
	return c.healthRecords
}

// EmergencyContacts implements carepoint.Client.EmergencyContacts.
func (c *Client) EmergencyContacts() carepoint.EmergencyContactsClient {
	return c.emergencyContacts
}

// MedicalHistory implements carepoint.Client.MedicalHistory.
func (c *Client) MedicalHistory() carepoint.MedicalHistoryClient {
	return c.medicalHistory
}

// Notifications implements carepoint.Client.Notifications.
func (c *Client) Notifications() carepoint.NotificationsClient {
	return c.notifications
}

// TokenStore implements carepoint.Client.TokenStore.
func (c *Client) TokenStore() carepoint.TokenStore {
	return c.tokenStore
}

// BaseURL returns the resolved API origin.
func (c *Client) BaseURL() string {
	return c.httpClient.BaseURL()
}

// Close releases a store built from configuration. A caller-supplied
// TokenStore is left alone.
func (c *Client) Close() error {
	if c.ownedStore == nil {
		return nil
	}

	if err := c.ownedStore.Close(); err != nil {
		return fmt.Errorf("closing token store: %w", err)
	}

	return nil
}
