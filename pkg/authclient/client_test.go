package authclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmw "github.com/Skotchmaster/pokedex/pkg/middleware/auth"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /requestNewAccessToken", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get(authmw.HeaderRefreshToken) {
		case "good":
			w.Header().Set(authmw.HeaderAccessToken, "fresh-access")
			w.WriteHeader(http.StatusOK)
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "headerless":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	mux.HandleFunc("GET /health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRequestNewAccessToken(t *testing.T) {
	srv := newAuthServer(t)
	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	tok, err := c.RequestNewAccessToken(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", tok)

	_, err = c.RequestNewAccessToken(ctx, "stale")
	assert.ErrorIs(t, err, ErrRejected)

	_, err = c.RequestNewAccessToken(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)

	_, err = c.RequestNewAccessToken(ctx, "headerless")
	assert.Error(t, err)
}

func TestReady(t *testing.T) {
	srv := newAuthServer(t)
	assert.NoError(t, NewClient(srv.URL).Ready(context.Background()))

	srv.Close()
	assert.Error(t, NewClient(srv.URL).Ready(context.Background()))
}
