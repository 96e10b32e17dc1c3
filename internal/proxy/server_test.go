// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package proxy_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/certrix/internal/platform/config"
	"github.com/taibuivan/certrix/internal/proxy"
)

func newTestServer(t *testing.T, upstreamURL string) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server, err := proxy.NewServer(ctx, &config.Proxy{
		ServerPort:     "0",
		UpstreamURL:    upstreamURL,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return server.Handler
}

func TestServer_HealthAnswersLocally(t *testing.T) {
	// Upstream is down; health must still answer.
	handler := newTestServer(t, "http://127.0.0.1:1")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"success":true,"message":"certrix proxy is healthy"}`, recorder.Body.String())
}

func TestServer_ForwardedRoutesCarryRequestID(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	handler := newTestServer(t, upstream.URL)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/templates", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}

func TestServer_UnknownRouteIs404(t *testing.T) {
	handler := newTestServer(t, "http://127.0.0.1:1")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
