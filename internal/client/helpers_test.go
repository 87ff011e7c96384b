package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/carepoint-health/carepoint-client/internal/store"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// backend is a fake API server routed with gorilla/mux.
type backend struct {
	router *mux.Router
	server *httptest.Server
	store  *store.MemoryStore
	client *Client
}

func newBackend(t *testing.T) *backend {
	t.Helper()

	b := &backend{router: mux.NewRouter(), store: store.NewMemoryStore()}
	b.server = httptest.NewServer(b.router)
	t.Cleanup(b.server.Close)

	client, err := New(context.Background(), &carepoint.Config{
		APIEndpoint: b.server.URL,
		TokenStore:  b.store,
	})
	require.NoError(t, err)

	b.client = client

	return b
}

// login seeds a session without going through the login endpoint.
func (b *backend) login(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, b.store.Set(ctx, carepoint.KeyAccessToken, "access-token"))
	require.NoError(t, b.store.Set(ctx, carepoint.KeyRefreshToken, "refresh-token"))
}

func (b *backend) handle(path string, handler http.HandlerFunc) *mux.Route {
	return b.router.HandleFunc(path, handler)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()

	if r.Header.Get("Authorization") != "Bearer access-token" {
		t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
	}
}
