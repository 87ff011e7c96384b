package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

var emptyObject = json.RawMessage(`{}`)

// Response represents an interpreted HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	// Body is always a JSON document. Non-JSON bodies are wrapped as
	// {"message": text}.
	Body json.RawMessage
	// Empty marks a read that degraded to "no data" instead of failing.
	Empty bool
}

// Decode unmarshals the body into out. Empty responses leave out untouched.
func (r *Response) Decode(out interface{}) error {
	if r == nil || r.Empty || out == nil {
		return nil
	}

	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("parsing response body: %w", err)
	}

	return nil
}

func emptyResponse(statusCode int) *Response {
	return &Response{StatusCode: statusCode, Body: emptyObject, Empty: true}
}

// rawResponse is a fully read response, detached from its connection.
type rawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// authState tells the interpreter how to classify a 401.
type authState struct {
	// replayed means the request was re-sent with a refreshed token.
	replayed bool
	// tokenPresent is the fresh store read taken after the final 401, or true
	// after a replay. Without a token a 401 reads as a missing login.
	tokenPresent bool
}

// payload parses the body: JSON when the content type says so, otherwise the
// text wrapped as {"message": text}, or {} when empty.
func payload(raw *rawResponse) json.RawMessage {
	trimmed := bytes.TrimSpace(raw.Body)

	if strings.Contains(raw.Header.Get(HeaderContentType), "application/json") {
		if len(trimmed) == 0 {
			return emptyObject
		}

		if json.Valid(trimmed) {
			return json.RawMessage(trimmed)
		}
	}

	if len(trimmed) == 0 {
		return emptyObject
	}

	wrapped, err := json.Marshal(map[string]string{"message": string(raw.Body)})
	if err != nil {
		return emptyObject
	}

	return wrapped
}

func isMutation(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// interpret classifies a response into a result, a silent empty read, or an
// APIError.
func interpret(raw *rawResponse, method string, state authState) (*Response, error) {
	body := payload(raw)

	if raw.StatusCode >= 200 && raw.StatusCode < 300 {
		return &Response{StatusCode: raw.StatusCode, Headers: raw.Header, Body: body}, nil
	}

	mutation := isMutation(method)
	fields := decodeObject(body)

	switch raw.StatusCode {
	case http.StatusNotFound:
		if !mutation {
			return emptyResponse(raw.StatusCode), nil
		}

		return nil, carepoint.NewAPIError(carepoint.KindNotFound, raw.StatusCode,
			serverMessage(fields, carepoint.MessageNotFound), details(fields))

	case http.StatusUnauthorized:
		if !state.tokenPresent {
			if !mutation {
				return emptyResponse(raw.StatusCode), nil
			}

			return nil, carepoint.NewAPIError(carepoint.KindAuthenticationRequired, raw.StatusCode,
				serverMessage(fields, carepoint.MessageAuthenticationRequired), details(fields))
		}

		return nil, carepoint.NewAPIError(carepoint.KindAuthenticationFailed, raw.StatusCode,
			serverMessage(fields, carepoint.MessageAuthenticationFailed), details(fields))
	}

	fallback := fmt.Sprintf("HTTP %d: %s", raw.StatusCode, http.StatusText(raw.StatusCode))

	return nil, carepoint.NewAPIError(carepoint.KindServerError, raw.StatusCode,
		serverMessage(fields, fallback), details(fields))
}

// decodeObject returns the body as an object. Non-object JSON is kept under
// "body".
func decodeObject(body json.RawMessage) map[string]interface{} {
	var object map[string]interface{}
	if err := json.Unmarshal(body, &object); err == nil && object != nil {
		return object
	}

	var value interface{}
	if err := json.Unmarshal(body, &value); err != nil {
		return map[string]interface{}{}
	}

	return map[string]interface{}{"body": value}
}

// serverMessage picks message, then error, then detail, then fallback.
func serverMessage(fields map[string]interface{}, fallback string) string {
	for _, key := range []string{"message", "error", "detail"} {
		if text, ok := fields[key].(string); ok && strings.TrimSpace(text) != "" {
			return text
		}
	}

	return fallback
}

// details prefers the server's "details" object, else the whole body.
func details(fields map[string]interface{}) map[string]interface{} {
	if nested, ok := fields["details"].(map[string]interface{}); ok {
		return nested
	}

	return fields
}
