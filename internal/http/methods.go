package http

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// RequestOption adjusts a single verb call.
type RequestOption func(*Request)

// WithoutAuth sends the request without credentials.
func WithoutAuth() RequestOption {
	return func(r *Request) {
		r.SkipAuth = true
	}
}

// WithTimeout overrides the first-attempt timeout.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(r *Request) {
		r.Timeout = timeout
	}
}

// WithQuery sets query parameters.
func WithQuery(query url.Values) RequestOption {
	return func(r *Request) {
		r.Query = query
	}
}

func (c *Client) call(ctx context.Context, method, path string, body interface{}, opts []RequestOption) (*Response, error) {
	req := &Request{
		Method: method,
		Path:   path,
		Body:   body,
	}

	for _, opt := range opts {
		opt(req)
	}

	return c.Do(ctx, req)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodGet, path, nil, append([]RequestOption{WithQuery(query)}, opts...))
}

// Post performs a POST request. body may be a *FormData.
func (c *Client) Post(ctx context.Context, path string, body interface{}, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodPost, path, body, opts)
}

// Put performs a PUT request. body may be a *FormData.
func (c *Client) Put(ctx context.Context, path string, body interface{}, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodPut, path, body, opts)
}

// Patch performs a PATCH request. body may be a *FormData.
func (c *Client) Patch(ctx context.Context, path string, body interface{}, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodPatch, path, body, opts)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.call(ctx, http.MethodDelete, path, nil, opts)
}
