package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// Header names emitted by the client.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderRequestID     = "X-Request-ID"
	HeaderUserAgent     = "User-Agent"
)

// Headers is the closed set of headers the client ever sends.
type Headers struct {
	Authorization string
	ContentType   string
	Accept        string
	RequestID     string
	UserAgent     string
}

// Map returns the non-empty headers keyed by canonical name.
func (h Headers) Map() map[string]string {
	out := make(map[string]string, 5)

	for name, value := range map[string]string{
		HeaderAuthorization: h.Authorization,
		HeaderContentType:   h.ContentType,
		HeaderAccept:        h.Accept,
		HeaderRequestID:     h.RequestID,
		HeaderUserAgent:     h.UserAgent,
	} {
		if value != "" {
			out[name] = value
		}
	}

	return out
}

// WithToken returns a copy carrying the given bearer token.
func (h Headers) WithToken(token string) Headers {
	h.Authorization = bearer(token)

	return h
}

func (h Headers) apply(req *http.Request) {
	for name, value := range h.Map() {
		req.Header.Set(name, value)
	}
}

// BuildHeaders derives request headers from the current token state.
//
// With a stored token, Authorization is always set. Without one, requiresAuth
// fails with an AuthenticationRequired error and nothing is sent. The result
// depends only on the stored token, so repeated calls agree. RequestID is
// left for the caller to fill once per logical request.
func (c *Client) BuildHeaders(ctx context.Context, needsContentType, requiresAuth bool) (Headers, error) {
	headers := Headers{
		Accept:    constants.ContentTypeJSON,
		UserAgent: c.userAgent,
	}

	if needsContentType {
		headers.ContentType = constants.ContentTypeJSON
	}

	if !requiresAuth {
		return headers, nil
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return Headers{}, carepoint.NewAPIError(carepoint.KindAuthenticationRequired, 0,
			carepoint.MessageAuthenticationRequired, nil).WithCause(err)
	}

	if token == "" {
		return Headers{}, carepoint.NewAPIError(carepoint.KindAuthenticationRequired, 0,
			carepoint.MessageAuthenticationRequired, nil)
	}

	return headers.WithToken(token), nil
}

// accessToken reads the stored access token. Every call hits the store.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.tokenStore == nil {
		return "", nil
	}

	token, err := c.tokenStore.Get(ctx, constants.KeyAccessToken)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(token), nil
}

func bearer(token string) string {
	return constants.BearerPrefix + strings.TrimSpace(token)
}
