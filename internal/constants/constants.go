package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and credential files.
	ConfigFilePerm = 0600
)

// API endpoint defaults.
const (
	// DefaultAPIEndpoint is the hosted backend used when nothing else is configured.
	DefaultAPIEndpoint = "https://youdoc.onrender.com"

	// APIEndpointEnvVar overrides the default backend.
	APIEndpointEnvVar = "CAREPOINT_API_BASE_URL"

	// TokenRefreshPath mints a new access token from a refresh token.
	TokenRefreshPath = "/auth/token/refresh/"

	// AuthPathMarker identifies auth-sensitive endpoints.
	AuthPathMarker = "/auth/"
)

// HTTP and network timeouts.
const (
	// DefaultRequestTimeout bounds a single first attempt.
	DefaultRequestTimeout = 30 * time.Second

	// ColdStartTimeout bounds the retry after a suspected backend cold start,
	// and the first attempt of auth-sensitive mutations.
	ColdStartTimeout = 90 * time.Second

	// RefreshTimeout bounds the token refresh call.
	RefreshTimeout = 30 * time.Second
)

// Retry limits.
const (
	// MaxTransportAttempts is the total number of transport attempts for one request.
	MaxTransportAttempts = 2

	// DefaultStatusRetryWaitMin is the minimum backoff for opt-in 429/5xx retries.
	DefaultStatusRetryWaitMin = 1 * time.Second

	// DefaultStatusRetryWaitMax is the maximum backoff for opt-in 429/5xx retries.
	DefaultStatusRetryWaitMax = 30 * time.Second
)

// Token store keys.
const (
	// KeyAccessToken holds the bearer credential.
	KeyAccessToken = "accessToken"

	// KeyRefreshToken holds the credential used to mint access tokens.
	KeyRefreshToken = "refreshToken"

	// KeyUser holds the cached user profile as JSON.
	KeyUser = "user"
)

// Header values.
const (
	// ContentTypeJSON is sent with JSON request bodies.
	ContentTypeJSON = "application/json"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// DefaultUserAgent identifies the client.
	DefaultUserAgent = "carepoint-client/1.0"
)

// Store defaults.
const (
	// DefaultNATSBucket is the JetStream key/value bucket for credentials.
	DefaultNATSBucket = "carepoint_credentials"

	// DefaultRedisPrefix namespaces credential keys in Redis.
	DefaultRedisPrefix = "carepoint:credentials:"

	// DefaultStoreFile is the credential file name under the config directory.
	DefaultStoreFile = "credentials.yml"

	// DefaultSQLiteFile is the SQLite database name under the config directory.
	DefaultSQLiteFile = "credentials.db"

	// ConfigDirName is the directory under $HOME holding CLI state.
	ConfigDirName = ".carepoint"
)

// Display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// TokenPreviewLength is how many token characters the CLI shows.
	TokenPreviewLength = 12

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)
