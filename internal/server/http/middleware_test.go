package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationIDMiddleware(t *testing.T) {
	t.Run("generates an ID when none is sent", func(t *testing.T) {
		srv := newTestServer(t, &mockSearcher{})

		rec := doRequest(t, srv, http.MethodGet, "/health")

		id := rec.Header().Get("X-Correlation-ID")
		require.NotEmpty(t, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("echoes the caller's ID", func(t *testing.T) {
		srv := newTestServer(t, &mockSearcher{})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Correlation-ID", "abc-123")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get("X-Correlation-ID"))
	})
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("preflight", func(t *testing.T) {
		searcher := &mockSearcher{}
		srv := newTestServer(t, searcher)

		req := httptest.NewRequest(http.MethodOptions, "/api/search/papers", nil)
		req.Header.Set("Origin", "https://frontend.example.org")
		req.Header.Set("Access-Control-Request-Method", "GET")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "GET")
		assert.Zero(t, searcher.calls)
	})

	t.Run("simple request", func(t *testing.T) {
		srv := newTestServer(t, &mockSearcher{})

		rec := doRequest(t, srv, http.MethodGet, "/api/search/papers?query=robotics")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("error responses carry the header too", func(t *testing.T) {
		srv := newTestServer(t, &mockSearcher{})

		rec := doRequest(t, srv, http.MethodGet, "/api/search/papers?query=x")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestAccessLog(t *testing.T) {
	var logs bytes.Buffer
	srv := NewServer(Config{}, &mockSearcher{}, zerolog.New(&logs), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search/papers?query=robotics", nil)
	req.Header.Set("X-Correlation-ID", "log-me")
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	out := logs.String()
	assert.Contains(t, out, `"message":"request completed"`)
	assert.Contains(t, out, `"request_id":"log-me"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"path":"/api/search/papers"`)
	assert.Contains(t, out, `"user_agent":"test-agent"`)
	assert.Contains(t, out, `"component":"http-server"`)
}
