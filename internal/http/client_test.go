package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepoint-health/carepoint-client/internal/auth"
	"github.com/carepoint-health/carepoint-client/internal/constants"
	cphttp "github.com/carepoint-health/carepoint-client/internal/http"
	"github.com/carepoint-health/carepoint-client/internal/store"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		out = append(out, entry["msg"].(string))
	}

	return out
}

// scriptedDoer replays transport outcomes and records what it was asked to send.
type scriptedDoer struct {
	mu        sync.Mutex
	requests  []*http.Request
	deadlines []time.Duration
	respond   func(n int, req *http.Request) (*http.Response, error)
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	d.requests = append(d.requests, req)

	if deadline, ok := req.Context().Deadline(); ok {
		d.deadlines = append(d.deadlines, time.Until(deadline))
	}

	n := len(d.requests)
	d.mu.Unlock()

	return d.respond(n, req)
}

func (d *scriptedDoer) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.requests)
}

var errConnectionRefused = errors.New("dial tcp: connection refused")

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func seedSession(t *testing.T, tokens carepoint.TokenStore, access, refresh string) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, tokens.Set(ctx, constants.KeyAccessToken, access))
	require.NoError(t, tokens.Set(ctx, constants.KeyRefreshToken, refresh))
	require.NoError(t, tokens.Set(ctx, constants.KeyUser, `{"email":"jane@example.com"}`))
}

func newAuthedClient(t *testing.T, baseURL string, opts ...cphttp.Option) (*cphttp.Client, *store.MemoryStore) {
	t.Helper()

	tokens := store.NewMemoryStore()
	seedSession(t, tokens, "old-token", "refresh-token")

	refresher := auth.NewRefresher(baseURL, tokens, http.DefaultClient)
	opts = append([]cphttp.Option{cphttp.WithRefresher(refresher)}, opts...)

	return cphttp.NewClient(baseURL, tokens, opts...), tokens
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/medications/today", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer old-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))
			assert.Empty(t, request.Header.Get("Content-Type"))
			assert.NotEmpty(t, request.Header.Get("X-Request-ID"))

			writer.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(writer).Encode([]map[string]string{{"id": "m-1", "name": "Ibuprofen"}})
		}))
		defer server.Close()

		client, _ := newAuthedClient(t, server.URL)

		resp, err := client.Do(context.Background(), &cphttp.Request{Method: "GET", Path: "/medications/today"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.False(t, resp.Empty)

		var result []map[string]string

		require.NoError(t, resp.Decode(&result))
		require.Len(t, result, 1)
		assert.Equal(t, "Ibuprofen", result[0]["name"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/medications/calendar", request.URL.Path)
			assert.Equal(t, "month=5&year=2024", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, _ := newAuthedClient(t, server.URL)

		resp, err := client.Get(context.Background(), "/medications/calendar", url.Values{"month": {"5"}, "year": {"2024"}})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "Ibuprofen", body["name"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client, _ := newAuthedClient(t, server.URL)

		resp, err := client.Post(context.Background(), "/medications", map[string]string{"name": "Ibuprofen"})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
		assert.JSONEq(t, `{}`, string(resp.Body))
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusBadRequest)
			_, _ = writer.Write([]byte(`{"message":"Invalid dosage","details":{"dosage_amount":["must be positive"]}}`))
		}))
		defer server.Close()

		client, _ := newAuthedClient(t, server.URL)

		resp, err := client.Post(context.Background(), "/medications", map[string]int{"dosage_amount": -1})
		require.Error(t, err)
		assert.Nil(t, resp)

		apiErr := &carepoint.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, carepoint.KindServerError, apiErr.Kind)
		assert.Equal(t, 400, apiErr.StatusCode)
		assert.Equal(t, "Invalid dosage", apiErr.Message)
		assert.Equal(t, []interface{}{"must be positive"}, apiErr.Details["dosage_amount"])
	})

	t.Run("without auth omits credentials", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Empty(t, request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, _ := newAuthedClient(t, server.URL)

		_, err := client.Post(context.Background(), "/auth/login/", map[string]string{"email": "a@b.c"}, cphttp.WithoutAuth())
		require.NoError(t, err)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client, _ := newAuthedClient(t, server.URL, cphttp.WithLogger(logger), cphttp.WithDebug(true))

		_, err := client.Get(context.Background(), "/auth/profile/", nil)
		require.NoError(t, err)

		messages := logger.messages()
		assert.Contains(t, messages, "HTTP Request")
		assert.Contains(t, messages, "HTTP Response")

		for _, entry := range logger.logs {
			fields, _ := entry["fields"].(map[string]interface{})
			for _, value := range fields {
				if text, ok := value.(string); ok {
					assert.NotContains(t, text, "old-token")
				}
			}
		}
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		method      string
		contentType string
		fn          func(*cphttp.Client, context.Context) (*cphttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *cphttp.Client, ctx context.Context) (*cphttp.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:        "POST",
			method:      "POST",
			contentType: "application/json",
			fn: func(c *cphttp.Client, ctx context.Context) (*cphttp.Response, error) {
				return c.Post(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:        "PUT",
			method:      "PUT",
			contentType: "application/json",
			fn: func(c *cphttp.Client, ctx context.Context) (*cphttp.Response, error) {
				return c.Put(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:        "PATCH",
			method:      "PATCH",
			contentType: "application/json",
			fn: func(c *cphttp.Client, ctx context.Context) (*cphttp.Response, error) {
				return c.Patch(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:        "DELETE",
			method:      "DELETE",
			contentType: "application/json",
			fn: func(c *cphttp.Client, ctx context.Context) (*cphttp.Response, error) {
				return c.Delete(ctx, "/test")
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				assert.Equal(t, testCase.contentType, request.Header.Get("Content-Type"))
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client, _ := newAuthedClient(t, server.URL)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				writer.WriteHeader(http.StatusServiceUnavailable)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client, _ := newAuthedClient(t, server.URL, cphttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client, _ := newAuthedClient(t, server.URL, cphttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	})

	t.Run("status retries are off by default", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client, _ := newAuthedClient(t, server.URL)

		_, err := client.Post(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, "HTTP 500: Internal Server Error", err.(*carepoint.APIError).Message)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)

			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client, _ := newAuthedClient(t, server.URL, cphttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		_, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 400, err.(*carepoint.APIError).StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts)) // Should not retry
	})
}

func TestClient_MissingCredentials(t *testing.T) {
	t.Parallel()

	t.Run("mutations fail locally", func(t *testing.T) {
		t.Parallel()

		for _, method := range []string{"POST", "PUT", "PATCH", "DELETE"} {
			doer := &scriptedDoer{respond: func(int, *http.Request) (*http.Response, error) {
				return jsonResponse(200, `{}`), nil
			}}
			client := cphttp.NewClient("https://api.example.com", store.NewMemoryStore(), cphttp.WithDoer(doer))

			_, err := client.Do(context.Background(), &cphttp.Request{Method: method, Path: "/medications/m-1", Body: map[string]string{}})
			require.Error(t, err, method)
			assert.True(t, carepoint.IsAuthenticationRequired(err), method)
			assert.Equal(t, carepoint.MessageAuthenticationRequired, err.(*carepoint.APIError).Message)
			assert.Equal(t, 0, doer.calls(), method)
		}
	})

	t.Run("reads degrade to empty", func(t *testing.T) {
		t.Parallel()

		doer := &scriptedDoer{respond: func(int, *http.Request) (*http.Response, error) {
			return jsonResponse(200, `[{"id":"m-1"}]`), nil
		}}
		client := cphttp.NewClient("https://api.example.com", store.NewMemoryStore(), cphttp.WithDoer(doer))

		resp, err := client.Get(context.Background(), "/medications/", nil)
		require.NoError(t, err)
		assert.True(t, resp.Empty)
		assert.JSONEq(t, `{}`, string(resp.Body))
		assert.Equal(t, 0, doer.calls())

		var meds []map[string]string

		require.NoError(t, resp.Decode(&meds))
		assert.Nil(t, meds)
	})

	t.Run("store is read once before failing", func(t *testing.T) {
		t.Parallel()

		tokens := &countingStore{MemoryStore: store.NewMemoryStore()}
		client := cphttp.NewClient("https://api.example.com", tokens)

		_, err := client.Post(context.Background(), "/medications", map[string]string{"name": "Aspirin"})
		require.Error(t, err)
		assert.True(t, carepoint.IsAuthenticationRequired(err))
		assert.Equal(t, int32(1), tokens.gets.Load())

		_, err = client.Get(context.Background(), "/medications/today", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(2), tokens.gets.Load())
	})
}

// countingStore counts reads of the wrapped store.
type countingStore struct {
	*store.MemoryStore
	gets atomic.Int32
}

func (s *countingStore) Get(ctx context.Context, key string) (string, error) {
	s.gets.Add(1)

	return s.MemoryStore.Get(ctx, key)
}

func TestClient_HeadersAreIdempotent(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []http.Header
	)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		mu.Lock()
		header := request.Header.Clone()
		header.Del("X-Request-Id")
		header.Del("Accept-Encoding")
		seen = append(seen, header)
		mu.Unlock()

		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL)

	first, err := client.BuildHeaders(context.Background(), false, true)
	require.NoError(t, err)

	second, err := client.BuildHeaders(context.Background(), false, true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, map[string]string{
		"Authorization": "Bearer old-token",
		"Accept":        "application/json",
		"User-Agent":    constants.DefaultUserAgent,
	}, first.Map())

	_, err = client.Get(context.Background(), "/medications/today", nil)
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "/medications/today", nil)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, seen[0], seen[1])
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RefreshOnUnauthorized(t *testing.T) {
	t.Parallel()

	t.Run("refreshes and retries exactly once", func(t *testing.T) {
		t.Parallel()

		var dataCalls, refreshCalls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")

			switch request.URL.Path {
			case constants.TokenRefreshPath:
				atomic.AddInt32(&refreshCalls, 1)
				assert.Empty(t, request.Header.Get("Authorization"))

				var body map[string]string

				_ = json.NewDecoder(request.Body).Decode(&body)
				assert.Equal(t, "refresh-token", body["refresh"])

				_, _ = writer.Write([]byte(`{"access":"new-token"}`))
			case "/medications":
				atomic.AddInt32(&dataCalls, 1)

				var body map[string]string

				_ = json.NewDecoder(request.Body).Decode(&body)
				assert.Equal(t, "Aspirin", body["name"])
				assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

				if request.Header.Get("Authorization") != "Bearer new-token" {
					writer.WriteHeader(http.StatusUnauthorized)
					_, _ = writer.Write([]byte(`{"detail":"Token expired"}`))

					return
				}

				writer.WriteHeader(http.StatusCreated)
				_, _ = writer.Write([]byte(`{"id":"m-9","name":"Aspirin"}`))
			}
		}))
		defer server.Close()

		client, tokens := newAuthedClient(t, server.URL)

		resp, err := client.Post(context.Background(), "/medications", map[string]string{"name": "Aspirin"})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
		assert.JSONEq(t, `{"id":"m-9","name":"Aspirin"}`, string(resp.Body))
		assert.Equal(t, int32(2), atomic.LoadInt32(&dataCalls))
		assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))

		stored, err := tokens.Get(context.Background(), constants.KeyAccessToken)
		require.NoError(t, err)
		assert.Equal(t, "new-token", stored)
	})

	t.Run("no second refresh when replay is rejected", func(t *testing.T) {
		t.Parallel()

		var dataCalls, refreshCalls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")

			if request.URL.Path == constants.TokenRefreshPath {
				atomic.AddInt32(&refreshCalls, 1)
				_, _ = writer.Write([]byte(`{"access":"new-token"}`))

				return
			}

			atomic.AddInt32(&dataCalls, 1)
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"detail":"User is inactive"}`))
		}))
		defer server.Close()

		client, _ := newAuthedClient(t, server.URL)

		_, err := client.Get(context.Background(), "/auth/profile/", nil)
		require.Error(t, err)
		assert.True(t, carepoint.IsAuthenticationFailed(err))
		assert.Equal(t, "User is inactive", err.(*carepoint.APIError).Message)
		assert.Equal(t, int32(2), atomic.LoadInt32(&dataCalls))
		assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
	})

	t.Run("failed refresh clears credentials", func(t *testing.T) {
		t.Parallel()

		var dataCalls, refreshCalls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")

			if request.URL.Path == constants.TokenRefreshPath {
				atomic.AddInt32(&refreshCalls, 1)
				writer.WriteHeader(http.StatusUnauthorized)
				_, _ = writer.Write([]byte(`{"detail":"Token is blacklisted"}`))

				return
			}

			atomic.AddInt32(&dataCalls, 1)
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
		}))
		defer server.Close()

		client, tokens := newAuthedClient(t, server.URL)

		_, err := client.Delete(context.Background(), "/medications/m-1")
		require.Error(t, err)
		assert.True(t, carepoint.IsAuthenticationRequired(err))
		assert.Equal(t, "Given token not valid for any token type", err.(*carepoint.APIError).Message)
		assert.Equal(t, int32(1), atomic.LoadInt32(&dataCalls))
		assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))

		for _, key := range carepoint.CredentialKeys() {
			value, getErr := tokens.Get(context.Background(), key)
			require.NoError(t, getErr)
			assert.Empty(t, value, key)
		}
	})

	t.Run("failed refresh degrades a read", func(t *testing.T) {
		t.Parallel()

		var refreshCalls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")

			if request.URL.Path == constants.TokenRefreshPath {
				atomic.AddInt32(&refreshCalls, 1)
			}

			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"detail":"expired"}`))
		}))
		defer server.Close()

		client, tokens := newAuthedClient(t, server.URL)

		resp, err := client.Get(context.Background(), "/medications/today", nil)
		require.NoError(t, err)
		assert.True(t, resp.Empty)
		assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))

		stored, err := tokens.Get(context.Background(), constants.KeyAccessToken)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("rejected without a refresh token keeps the session", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.NotEqual(t, constants.TokenRefreshPath, request.URL.Path)
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"detail":"expired"}`))
		}))
		defer server.Close()

		client, tokens := newAuthedClient(t, server.URL)
		require.NoError(t, tokens.MultiRemove(context.Background(), constants.KeyRefreshToken))

		_, err := client.Get(context.Background(), "/medications/today", nil)
		require.Error(t, err)
		assert.True(t, carepoint.IsAuthenticationFailed(err))
		assert.Equal(t, "expired", err.(*carepoint.APIError).Message)
	})

	t.Run("reuses a token refreshed by another caller", func(t *testing.T) {
		t.Parallel()

		tokens := store.NewMemoryStore()
		seedSession(t, tokens, "old-token", "refresh-token")

		doer := &scriptedDoer{respond: func(n int, req *http.Request) (*http.Response, error) {
			assert.NotEqual(t, constants.TokenRefreshPath, req.URL.Path)

			if n == 1 {
				assert.Equal(t, "Bearer old-token", req.Header.Get("Authorization"))
				// Another request rotated the token while this one was in flight.
				require.NoError(t, tokens.Set(context.Background(), constants.KeyAccessToken, "rotated-token"))

				return jsonResponse(401, `{"detail":"expired"}`), nil
			}

			assert.Equal(t, "Bearer rotated-token", req.Header.Get("Authorization"))

			return jsonResponse(200, `{"ok":true}`), nil
		}}

		refresher := auth.NewRefresher("https://api.example.com", tokens, doer)
		client := cphttp.NewClient("https://api.example.com", tokens,
			cphttp.WithDoer(doer), cphttp.WithRefresher(refresher))

		resp, err := client.Get(context.Background(), "/medications/today", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
		assert.Equal(t, 2, doer.calls())
	})

	t.Run("unauthenticated 401 on public mutation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"error":"Invalid credentials"}`))
		}))
		defer server.Close()

		client := cphttp.NewClient(server.URL, store.NewMemoryStore())

		_, err := client.Post(context.Background(), "/auth/login/", map[string]string{"email": "a@b.c"}, cphttp.WithoutAuth())
		require.Error(t, err)
		assert.True(t, carepoint.IsAuthenticationRequired(err))
		assert.Equal(t, "Invalid credentials", err.(*carepoint.APIError).Message)
	})
}

func TestClient_ConcurrentRefreshIsSingleFlight(t *testing.T) {
	t.Parallel()

	const callers = 2

	var refreshCalls int32

	arrived := make(chan struct{}, callers)
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")

		if request.URL.Path == constants.TokenRefreshPath {
			atomic.AddInt32(&refreshCalls, 1)
			time.Sleep(100 * time.Millisecond)
			_, _ = writer.Write([]byte(`{"access":"new-token"}`))

			return
		}

		if request.Header.Get("Authorization") == "Bearer new-token" {
			_, _ = writer.Write([]byte(`{"ok":true}`))

			return
		}

		// Hold every stale request until all callers have been rejected together.
		arrived <- struct{}{}
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}

		writer.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL)

	go func() {
		for i := 0; i < callers; i++ {
			<-arrived
		}

		close(release)
	}()

	var wg sync.WaitGroup

	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, errs[i] = client.Get(context.Background(), "/medications/today", nil)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_ColdStartRetry(t *testing.T) {
	t.Parallel()

	t.Run("second transport failure is final", func(t *testing.T) {
		t.Parallel()

		doer := &scriptedDoer{respond: func(int, *http.Request) (*http.Response, error) {
			return nil, errConnectionRefused
		}}
		client, _ := newAuthedClient(t, "https://api.example.com", cphttp.WithDoer(doer))

		_, err := client.Get(context.Background(), "/medications/today", nil)
		require.Error(t, err)
		assert.True(t, carepoint.IsNetworkUnavailable(err))
		assert.ErrorIs(t, err, errConnectionRefused)
		assert.Equal(t, carepoint.MessageNetworkUnavailable, err.(*carepoint.APIError).Message)

		require.Equal(t, 2, doer.calls())
		assert.InDelta(t, constants.DefaultRequestTimeout.Seconds(), doer.deadlines[0].Seconds(), 1)
		assert.InDelta(t, constants.ColdStartTimeout.Seconds(), doer.deadlines[1].Seconds(), 1)
	})

	t.Run("recovers on the retry", func(t *testing.T) {
		t.Parallel()

		doer := &scriptedDoer{respond: func(n int, req *http.Request) (*http.Response, error) {
			if n == 1 {
				return nil, errConnectionRefused
			}

			body, _ := io.ReadAll(req.Body)
			assert.JSONEq(t, `{"name":"Aspirin"}`, string(body))

			return jsonResponse(201, `{"id":"m-1"}`), nil
		}}
		client, _ := newAuthedClient(t, "https://api.example.com", cphttp.WithDoer(doer))

		resp, err := client.Post(context.Background(), "/medications", map[string]string{"name": "Aspirin"})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
		assert.Equal(t, 2, doer.calls())
	})

	t.Run("401 after a retry is not refreshed", func(t *testing.T) {
		t.Parallel()

		tokens := store.NewMemoryStore()
		seedSession(t, tokens, "old-token", "refresh-token")

		doer := &scriptedDoer{respond: func(n int, req *http.Request) (*http.Response, error) {
			assert.NotEqual(t, constants.TokenRefreshPath, req.URL.Path)

			if n == 1 {
				return nil, errConnectionRefused
			}

			return jsonResponse(401, `{"detail":"expired"}`), nil
		}}

		refresher := auth.NewRefresher("https://api.example.com", tokens, doer)
		client := cphttp.NewClient("https://api.example.com", tokens,
			cphttp.WithDoer(doer), cphttp.WithRefresher(refresher))

		_, err := client.Post(context.Background(), "/medications", map[string]string{"name": "Aspirin"})
		require.Error(t, err)
		assert.True(t, carepoint.IsAuthenticationFailed(err))
		assert.Equal(t, 2, doer.calls())

		stored, err := tokens.Get(context.Background(), constants.KeyRefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "refresh-token", stored)
	})

	t.Run("timeout on regular endpoint is not retried", func(t *testing.T) {
		t.Parallel()

		doer := &scriptedDoer{respond: func(_ int, req *http.Request) (*http.Response, error) {
			<-req.Context().Done()

			return nil, req.Context().Err()
		}}
		client, _ := newAuthedClient(t, "https://api.example.com",
			cphttp.WithDoer(doer), cphttp.WithTimeouts(20*time.Millisecond, 40*time.Millisecond))

		_, err := client.Get(context.Background(), "/medications/today", nil)
		require.Error(t, err)
		assert.True(t, carepoint.IsTimeout(err))
		assert.Equal(t, carepoint.MessageTimeout, err.(*carepoint.APIError).Message)
		assert.Equal(t, 1, doer.calls())
	})

	t.Run("timeout on auth endpoint is retried once", func(t *testing.T) {
		t.Parallel()

		doer := &scriptedDoer{respond: func(_ int, req *http.Request) (*http.Response, error) {
			<-req.Context().Done()

			return nil, req.Context().Err()
		}}
		client, _ := newAuthedClient(t, "https://api.example.com",
			cphttp.WithDoer(doer), cphttp.WithTimeouts(20*time.Millisecond, 40*time.Millisecond))

		_, err := client.Get(context.Background(), "/auth/profile/", nil)
		require.Error(t, err)
		assert.True(t, carepoint.IsTimeout(err))
		assert.Equal(t, 2, doer.calls())
	})

	t.Run("auth mutations start with the cold-start timeout", func(t *testing.T) {
		t.Parallel()

		doer := &scriptedDoer{respond: func(int, *http.Request) (*http.Response, error) {
			return jsonResponse(200, `{"message":"sent"}`), nil
		}}
		client, _ := newAuthedClient(t, "https://api.example.com", cphttp.WithDoer(doer))

		_, err := client.Post(context.Background(), "/auth/password-reset-request/", map[string]string{"email": "a@b.c"}, cphttp.WithoutAuth())
		require.NoError(t, err)
		require.Len(t, doer.deadlines, 1)
		assert.InDelta(t, constants.ColdStartTimeout.Seconds(), doer.deadlines[0].Seconds(), 1)
	})

	t.Run("caller cancellation is not retried", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		doer := &scriptedDoer{respond: func(_ int, req *http.Request) (*http.Response, error) {
			cancel()
			<-req.Context().Done()

			return nil, req.Context().Err()
		}}
		client, _ := newAuthedClient(t, "https://api.example.com", cphttp.WithDoer(doer))

		_, err := client.Get(ctx, "/medications/today", nil)
		require.Error(t, err)
		assert.True(t, carepoint.IsTimeout(err))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, doer.calls())
	})
}

func TestClient_FormData(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer old-token", request.Header.Get("Authorization"))
		assert.NotContains(t, request.Header.Get("Content-Type"), "application/json")
		assert.True(t, strings.HasPrefix(request.Header.Get("Content-Type"), "multipart/form-data; boundary="))

		if !assert.NoError(t, request.ParseMultipartForm(1<<20)) {
			return
		}

		assert.Equal(t, "Blood panel", request.FormValue("title"))

		file, header, err := request.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}

		defer func() { _ = file.Close() }()

		assert.Equal(t, "panel.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusCreated)
		_, _ = writer.Write([]byte(`{"id":"r-1"}`))
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL)

	form := cphttp.NewFormData().AddField("title", "Blood panel")
	require.NoError(t, form.AddFile("file", "panel.pdf", "application/pdf", strings.NewReader("%PDF-1.4")))

	resp, err := client.Post(context.Background(), "/health-records/", form)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	headers, err := client.BuildHeaders(context.Background(), false, true)
	require.NoError(t, err)
	assert.NotContains(t, headers.Map(), "Content-Type")
}

func TestClient_FormDataHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		skipAuth bool
		session  bool
		wantAuth string
	}{
		{"public post without session", http.MethodPost, true, false, ""},
		{"public post with session", http.MethodPost, true, true, ""},
		{"authenticated put", http.MethodPut, false, true, "Bearer old-token"},
		{"authenticated patch", http.MethodPatch, false, true, "Bearer old-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doer := &scriptedDoer{respond: func(int, *http.Request) (*http.Response, error) {
				return jsonResponse(200, `{"id":"r-1"}`), nil
			}}

			tokens := store.NewMemoryStore()
			if tt.session {
				seedSession(t, tokens, "old-token", "refresh-token")
			}

			client := cphttp.NewClient("https://api.example.com", tokens, cphttp.WithDoer(doer))

			form := cphttp.NewFormData().AddField("title", "Blood panel")

			var opts []cphttp.RequestOption
			if tt.skipAuth {
				opts = append(opts, cphttp.WithoutAuth())
			}

			var err error

			switch tt.method {
			case http.MethodPost:
				_, err = client.Post(context.Background(), "/health-records/", form, opts...)
			case http.MethodPut:
				_, err = client.Put(context.Background(), "/health-records/r-1", form, opts...)
			case http.MethodPatch:
				_, err = client.Patch(context.Background(), "/health-records/r-1", form, opts...)
			}

			require.NoError(t, err)
			require.Equal(t, 1, doer.calls())

			sent := doer.requests[0]
			assert.Equal(t, tt.method, sent.Method)
			assert.Equal(t, tt.wantAuth, sent.Header.Get("Authorization"))
			assert.True(t, strings.HasPrefix(sent.Header.Get("Content-Type"), "multipart/form-data; boundary="))
			assert.NotContains(t, sent.Header.Values("Content-Type"), "application/json")
		})
	}
}
