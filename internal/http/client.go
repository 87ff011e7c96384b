package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenRefresher mints a new access token. An empty token with a nil error
// means the refresh failed and the caller should proceed unauthenticated.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context) (string, error)
}

// Client is the HTTP client for the CarePoint API. It owns header
// construction, the transport retry policy, 401 refresh-and-replay, and
// response interpretation.
type Client struct {
	baseURL    string
	tokenStore carepoint.TokenStore
	refresher  TokenRefresher
	doer       Doer
	logger     carepoint.Logger
	debug      bool
	userAgent  string

	requestTimeout   time.Duration
	coldStartTimeout time.Duration

	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	newRequestID func() string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger carepoint.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables backoff retries on 429 and 5xx responses.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithTimeouts sets the per-attempt timeout and the cold-start retry timeout.
// Zero values keep the defaults.
func WithTimeouts(request, coldStart time.Duration) Option {
	return func(c *Client) {
		if request > 0 {
			c.requestTimeout = request
		}

		if coldStart > 0 {
			c.coldStartTimeout = coldStart
		}
	}
}

// WithRefresher sets the token refresher used on 401 responses.
func WithRefresher(refresher TokenRefresher) Option {
	return func(c *Client) {
		c.refresher = refresher
	}
}

// WithDoer replaces the transport. The retry configuration is ignored when
// a Doer is supplied.
func WithDoer(doer Doer) Option {
	return func(c *Client) {
		c.doer = doer
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRequestIDGenerator overrides how X-Request-ID values are generated.
func WithRequestIDGenerator(generate func() string) Option {
	return func(c *Client) {
		if generate != nil {
			c.newRequestID = generate
		}
	}
}

// NewClient creates a new HTTP client. A nil tokenStore makes every request
// unauthenticated.
func NewClient(baseURL string, tokenStore carepoint.TokenStore, opts ...Option) *Client {
	client := &Client{
		baseURL:          strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		tokenStore:       tokenStore,
		userAgent:        constants.DefaultUserAgent,
		requestTimeout:   constants.DefaultRequestTimeout,
		coldStartTimeout: constants.ColdStartTimeout,
		retryWaitMin:     constants.DefaultStatusRetryWaitMin,
		retryWaitMax:     constants.DefaultStatusRetryWaitMax,
		newRequestID:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.doer == nil {
		client.doer = NewTransport(TransportConfig{
			RetryMax:     client.retryMax,
			RetryWaitMin: client.retryWaitMin,
			RetryWaitMax: client.retryWaitMax,
			Logger:       client.logger,
			Debug:        client.debug,
		})
	}

	return client
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TokenStore returns the credential store backing the client.
func (c *Client) TokenStore() carepoint.TokenStore {
	return c.tokenStore
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := c.baseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	return full
}

func (c *Client) debugf(msg string, fields map[string]interface{}) {
	if c.debug && c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

func (c *Client) warnf(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}
