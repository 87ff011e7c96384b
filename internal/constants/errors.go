package constants

import "errors"

// Configuration errors.
var (
	ErrAPIEndpointRequired  = errors.New("API endpoint is required")
	ErrUnknownConfigKey     = errors.New("unknown configuration key")
	ErrUnsupportedStoreType = errors.New("unsupported token store type")
	ErrStoreConfigRequired  = errors.New("store configuration required")
)

// Session errors.
var (
	ErrNotLoggedIn        = errors.New("not logged in. Use 'carepoint login' to authenticate first")
	ErrNoRefreshToken     = errors.New("no refresh token available, please run 'carepoint login' again")
	ErrRefreshFailed      = errors.New("token refresh failed, credentials were cleared")
	ErrInvalidJWTFormat   = errors.New("invalid JWT format")
	ErrNoExpirationClaim  = errors.New("no expiration claim found")
	ErrNoTokensInResponse = errors.New("response did not include access and refresh tokens")
)

// Validation errors.
var (
	ErrEmailRequired       = errors.New("email is required")
	ErrPasswordRequired    = errors.New("password is required")
	ErrIDRequired          = errors.New("resource id is required")
	ErrNotRegularFile      = errors.New("path is not a regular file")
	ErrInvalidMonth        = errors.New("month must be between 1 and 12")
	ErrInvalidOutputValue  = errors.New("invalid output format")
	ErrNothingToUpdate     = errors.New("nothing to update: pass at least one field flag")
	ErrDeviceTokenRequired = errors.New("device token is required")
)
