// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package proxy_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/certrix/internal/proxy"
)

func newForwarder(t *testing.T, upstream string) *proxy.Forwarder {
	t.Helper()
	f, err := proxy.NewForwarder(upstream, nil)
	require.NoError(t, err)
	return f
}

func TestForward_StreamsUpstreamVerbatim(t *testing.T) {
	upstreamBody := `{"success":false,"message":"Template not found","data":null,"errorType":"NOT_FOUND"}`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/templates/99", r.URL.Path)
		assert.Equal(t, "status=DRAFT", r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream-Marker", "yes")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer upstream.Close()

	forwarder := newForwarder(t, upstream.URL)

	request := httptest.NewRequest(http.MethodGet, "http://edge.certrix.app/api/templates/99?status=DRAFT", nil)
	recorder := httptest.NewRecorder()
	forwarder.ServeHTTP(recorder, request)

	// Status, headers, and body bytes pass through unchanged — the proxy
	// never rewrites upstream failures into its own shape.
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "yes", recorder.Header().Get("X-Upstream-Marker"))
	assert.Equal(t, upstreamBody, recorder.Body.String())
}

func TestForward_RewritesForwardingHeaders(t *testing.T) {
	var seen http.Header
	var seenHost string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		seenHost = r.Host
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	forwarder := newForwarder(t, upstream.URL)

	request := httptest.NewRequest(http.MethodPost, "http://edge.certrix.app/auth/login", strings.NewReader(`{}`))
	request.RemoteAddr = "203.0.113.7:51544"
	request.Header.Set("X-Forwarded-For", "198.51.100.1")
	recorder := httptest.NewRecorder()
	forwarder.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, strings.TrimPrefix(upstream.URL, "http://"), seenHost)
	assert.Equal(t, "edge.certrix.app", seen.Get("X-Forwarded-Host"))
	assert.Equal(t, "http", seen.Get("X-Forwarded-Proto"))
	assert.Equal(t, "198.51.100.1, 203.0.113.7", seen.Get("X-Forwarded-For"))
}

func TestForward_ForwardsBodyAndMethod(t *testing.T) {
	var gotMethod, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
	}))
	defer upstream.Close()

	forwarder := newForwarder(t, upstream.URL)

	payload := `{"templateVersionId":7,"recipientData":{"name":"Ana"}}`
	request := httptest.NewRequest(http.MethodPost, "http://edge/api/certificates/generate", strings.NewReader(payload))
	recorder := httptest.NewRecorder()
	forwarder.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, payload, gotBody)
}

func TestForward_UnreachableUpstreamIs502Envelope(t *testing.T) {
	// A closed server: the dial fails before any response exists.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	forwarder := newForwarder(t, deadURL)

	request := httptest.NewRequest(http.MethodGet, "http://edge/api/templates", nil)
	recorder := httptest.NewRecorder()
	forwarder.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	assert.JSONEq(t, `{"success":false,"message":"Upstream API unreachable"}`, recorder.Body.String())
}

func TestForward_StripsHopByHopHeaders(t *testing.T) {
	var seen http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	forwarder := newForwarder(t, upstream.URL)

	request := httptest.NewRequest(http.MethodGet, "http://edge/api/templates", nil)
	request.Header.Set("Proxy-Connection", "keep-alive")
	request.Header.Set("Authorization", "Bearer tok-1")
	recorder := httptest.NewRecorder()
	forwarder.ServeHTTP(recorder, request)

	assert.Empty(t, seen.Get("Proxy-Connection"))
	assert.Equal(t, "Bearer tok-1", seen.Get("Authorization"))
}
