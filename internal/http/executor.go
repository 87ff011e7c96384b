package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// MessageNetworkError is returned when the replay after a refresh cannot be sent.
const MessageNetworkError = "Network error. Please check your connection."

// Request represents an HTTP request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded, unless it is a *FormData.
	Body interface{}
	// SkipAuth sends the request without credentials, even when logged in.
	SkipAuth bool
	// Timeout of the first attempt. Zero picks the default for the endpoint.
	Timeout time.Duration
}

// failureKind classifies a transport attempt that produced no response.
type failureKind int

const (
	failureNone failureKind = iota
	failureNetwork
	failureTimeout
	failureCancelled
)

// retryAction is a row outcome of the retry policy table.
type retryAction int

const (
	actionFail retryAction = iota
	actionRetryColdStart
)

// retryPolicy is the single cold-start retry table:
//
//	first-attempt failure | endpoint       | action
//	network error         | any            | retry once, cold-start timeout
//	timeout               | auth-sensitive | retry once, cold-start timeout
//	timeout               | other          | fail Timeout
//	caller cancelled      | any            | fail, no retry
//	any, second attempt   | any            | fail
//
// A 401 answering the second attempt is interpreted without a refresh.
func retryPolicy(failure failureKind, attempt int, path string) retryAction {
	if attempt >= constants.MaxTransportAttempts {
		return actionFail
	}

	switch failure {
	case failureNetwork:
		return actionRetryColdStart
	case failureTimeout:
		if isAuthSensitive(path) {
			return actionRetryColdStart
		}

		return actionFail
	default:
		return actionFail
	}
}

func isAuthSensitive(path string) bool {
	return strings.Contains(path, constants.AuthPathMarker)
}

// preparedRequest is a request with its body rendered once, so every
// attempt sends identical bytes.
type preparedRequest struct {
	method      string
	path        string
	url         string
	body        []byte
	contentType string
	headers     Headers
	timeout     time.Duration
}

// Do executes the request: transport attempts with the cold-start policy,
// then at most one refresh-and-replay on 401, then interpretation.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	_, isForm := req.Body.(*FormData)
	needsContentType := method != http.MethodGet && !isForm

	headers, err := c.BuildHeaders(ctx, needsContentType, !req.SkipAuth)
	if err != nil {
		if method == http.MethodGet && carepoint.IsAuthenticationRequired(err) {
			c.debugf("Skipping unauthenticated read", map[string]interface{}{"path": req.Path})

			return emptyResponse(0), nil
		}

		return nil, err
	}

	headers.RequestID = c.newRequestID()

	prepared, err := c.prepare(method, req, headers)
	if err != nil {
		return nil, err
	}

	raw, attempts, err := c.execute(ctx, prepared)
	if err != nil {
		return nil, err
	}

	state := authState{}

	// Only a first-attempt 401 is refreshed; a cold-start retry never is.
	if raw.StatusCode == http.StatusUnauthorized && !req.SkipAuth && attempts == 1 {
		raw, state, err = c.refreshAndReplay(ctx, prepared, raw)
		if err != nil {
			return nil, err
		}
	}

	if raw.StatusCode == http.StatusUnauthorized && !state.replayed {
		token, _ := c.accessToken(ctx)
		state.tokenPresent = token != ""
	}

	return interpret(raw, method, state)
}

func (c *Client) defaultTimeout(method, path string) time.Duration {
	if method != http.MethodGet && method != http.MethodDelete && isAuthSensitive(path) {
		return c.coldStartTimeout
	}

	return c.requestTimeout
}

func (c *Client) prepare(method string, req *Request, headers Headers) (*preparedRequest, error) {
	prepared := &preparedRequest{
		method:  method,
		path:    req.Path,
		url:     c.buildURL(req.Path, req.Query),
		headers: headers,
		timeout: req.Timeout,
	}

	if prepared.timeout <= 0 {
		prepared.timeout = c.defaultTimeout(method, req.Path)
	}

	switch body := req.Body.(type) {
	case nil:
	case *FormData:
		data, contentType, err := body.encode()
		if err != nil {
			return nil, fmt.Errorf("encoding form data: %w", err)
		}

		prepared.body = data
		prepared.contentType = contentType
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		prepared.body = data
	}

	return prepared, nil
}

// execute runs the bounded transport loop and reports how many attempts it
// made.
func (c *Client) execute(ctx context.Context, prepared *preparedRequest) (*rawResponse, int, error) {
	var (
		failure failureKind
		lastErr error
	)

	timeout := prepared.timeout

	for attempt := 1; attempt <= constants.MaxTransportAttempts; attempt++ {
		if attempt > 1 {
			timeout = c.coldStartTimeout

			c.warnf("Retrying request after transport failure", map[string]interface{}{
				"method":  prepared.method,
				"path":    prepared.path,
				"attempt": attempt,
				"timeout": timeout.String(),
				"error":   lastErr.Error(),
			})
		}

		var raw *rawResponse

		raw, failure, lastErr = c.attempt(ctx, prepared, prepared.headers, timeout, attempt)
		if failure == failureNone {
			return raw, attempt, nil
		}

		if retryPolicy(failure, attempt, prepared.path) != actionRetryColdStart {
			return nil, attempt, transportError(failure, lastErr, prepared)
		}
	}

	return nil, constants.MaxTransportAttempts, transportError(failure, lastErr, prepared)
}

// attempt sends one request with its own deadline and reads the body fully.
func (c *Client) attempt(
	ctx context.Context,
	prepared *preparedRequest,
	headers Headers,
	timeout time.Duration,
	attempt int,
) (*rawResponse, failureKind, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if prepared.body != nil {
		body = bytes.NewReader(prepared.body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, prepared.method, prepared.url, body)
	if err != nil {
		return nil, failureNetwork, fmt.Errorf("creating request: %w", err)
	}

	headers.apply(httpReq)

	if prepared.contentType != "" {
		httpReq.Header.Set(HeaderContentType, prepared.contentType)
	}

	c.debugf("HTTP Request", map[string]interface{}{
		"method":     prepared.method,
		"url":        prepared.url,
		"attempt":    attempt,
		"timeout":    timeout.String(),
		"request_id": headers.RequestID,
		"has_body":   prepared.body != nil,
	})

	start := time.Now()

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, classifyFailure(ctx, attemptCtx, err), err
	}

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyFailure(ctx, attemptCtx, err), fmt.Errorf("reading response body: %w", err)
	}

	c.debugf("HTTP Response", map[string]interface{}{
		"status":     resp.StatusCode,
		"duration":   time.Since(start).String(),
		"request_id": headers.RequestID,
	})

	return &rawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, failureNone, nil
}

func classifyFailure(parent, attemptCtx context.Context, err error) failureKind {
	if parent.Err() != nil {
		return failureCancelled
	}

	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return failureTimeout
	}

	return failureNetwork
}

func transportError(failure failureKind, cause error, prepared *preparedRequest) error {
	details := map[string]interface{}{
		"url":    prepared.url,
		"method": prepared.method,
	}

	if cause != nil {
		details["originalError"] = cause.Error()
	}

	switch failure {
	case failureCancelled:
		return carepoint.NewAPIError(carepoint.KindTimeout, 0, carepoint.MessageCancelled, details).WithCause(cause)
	case failureTimeout:
		return carepoint.NewAPIError(carepoint.KindTimeout, 0, carepoint.MessageTimeout, details).WithCause(cause)
	default:
		return carepoint.NewAPIError(carepoint.KindNetworkUnavailable, 0, carepoint.MessageNetworkUnavailable, details).
			WithCause(cause)
	}
}

// refreshAndReplay handles a first 401: refresh once and, when that yields a
// token, re-send the identical request with the new Authorization header.
func (c *Client) refreshAndReplay(
	ctx context.Context,
	prepared *preparedRequest,
	original *rawResponse,
) (*rawResponse, authState, error) {
	current, err := c.accessToken(ctx)
	if err != nil || current == "" {
		return original, authState{}, nil
	}

	state := authState{}

	newToken := ""
	if bearer(current) != prepared.headers.Authorization {
		// Another caller already refreshed since this request was built.
		newToken = current
	} else if c.refresher != nil {
		newToken, err = c.refresher.RefreshAccessToken(ctx)
		if err != nil {
			return nil, state, transportError(failureCancelled, err, prepared)
		}
	}

	if newToken == "" {
		c.debugf("Token refresh yielded no token", map[string]interface{}{"path": prepared.path})

		// The 401 is classified against what is stored now.
		return original, state, nil
	}

	state.replayed = true
	state.tokenPresent = true

	raw, failure, err := c.attempt(ctx, prepared, prepared.headers.WithToken(newToken), prepared.timeout, 1)
	if failure != failureNone {
		if failure == failureCancelled {
			return nil, state, transportError(failure, err, prepared)
		}

		return nil, state, carepoint.NewAPIError(carepoint.KindNetworkUnavailable, 0, MessageNetworkError,
			map[string]interface{}{"url": prepared.url, "method": prepared.method}).WithCause(err)
	}

	return raw, state, nil
}
