// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/certrix/internal/platform/ctxutil"
	"github.com/taibuivan/certrix/internal/platform/httpx"
)

// fakeSession is a minimal SessionSource with observable Clear calls.
type fakeSession struct {
	mu       sync.Mutex
	token    string
	tenantID *int64
	schema   string
	cleared  bool
}

func (f *fakeSession) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) TenantID() (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tenantID == nil {
		return 0, false
	}
	return *f.tenantID, true
}

func (f *fakeSession) TenantSchema() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.schema
}

func (f *fakeSession) ClearSession() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.tenantID = nil
	f.schema = ""
	f.cleared = true
}

type fakeNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (f *fakeNavigator) ToLogin(returnTarget string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, returnTarget)
}

func ptr(v int64) *int64 { return &v }

/*
TestAugmentor_TenantHeaderExclusivity verifies that no combination of
tenant id / tenant schema presence ever emits both headers on one request.
*/
func TestAugmentor_TenantHeaderExclusivity(t *testing.T) {
	tests := []struct {
		name       string
		tenantID   *int64
		schema     string
		wantID     string
		wantSchema string
	}{
		{"id_only", ptr(42), "", "42", ""},
		{"schema_only", nil, "acme_corp", "", "acme_corp"},
		{"id_wins_over_schema", ptr(7), "acme_corp", "7", ""},
		{"neither", nil, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID, gotSchema string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID = r.Header.Get("X-Tenant-Id")
				gotSchema = r.Header.Get("X-Tenant-Schema")
				_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{}}`))
			}))
			defer server.Close()

			session := &fakeSession{token: "tok", tenantID: tt.tenantID, schema: tt.schema}
			client := httpx.New(server.URL, httpx.NewAugmentor(nil, session, nil, nil))

			_, err := client.Get(context.Background(), "/api/templates", nil)
			require.NoError(t, err)

			assert.Equal(t, tt.wantID, gotID)
			assert.Equal(t, tt.wantSchema, gotSchema)
			assert.False(t, gotID != "" && gotSchema != "", "both tenant headers emitted")
		})
	}
}

func TestAugmentor_BearerAndRequestID(t *testing.T) {
	var auth, requestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{}}`))
	}))
	defer server.Close()

	session := &fakeSession{token: "jwt-abc"}
	client := httpx.New(server.URL, httpx.NewAugmentor(nil, session, nil, nil))

	_, err := client.Get(context.Background(), "/api/templates", nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer jwt-abc", auth)
	assert.NotEmpty(t, requestID)
}

func TestAugmentor_NoTokenNoBearer(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{}}`))
	}))
	defer server.Close()

	client := httpx.New(server.URL, httpx.NewAugmentor(nil, &fakeSession{}, nil, nil))
	_, err := client.Get(context.Background(), "/api/templates", nil)
	require.NoError(t, err)
	assert.Empty(t, auth)
}

/*
TestAugmentor_Unauthorized verifies the mandatory 401 side effects: the
session is cleared, login navigation fires with the originating path, and
the failure is still surfaced to the caller.
*/
func TestAugmentor_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Token expired"}`))
	}))
	defer server.Close()

	session := &fakeSession{token: "stale", tenantID: ptr(1)}
	navigator := &fakeNavigator{}
	client := httpx.New(server.URL, httpx.NewAugmentor(nil, session, navigator, nil))

	_, err := client.Get(context.Background(), "/api/certificates", nil)
	require.Error(t, err, "error must be re-raised, not swallowed")

	assert.True(t, session.cleared)
	assert.Empty(t, session.Token())
	require.Len(t, navigator.targets, 1)
	assert.Equal(t, "/api/certificates", navigator.targets[0])
}

func TestAugmentor_ForbiddenKeepsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"success":false,"message":"Not yours"}`))
	}))
	defer server.Close()

	session := &fakeSession{token: "valid", tenantID: ptr(1)}
	navigator := &fakeNavigator{}
	client := httpx.New(server.URL, httpx.NewAugmentor(nil, session, navigator, nil))

	_, err := client.Get(context.Background(), "/api/certificates", nil)
	require.Error(t, err)

	assert.False(t, session.cleared, "403 must not clear the session by default")
	assert.Empty(t, navigator.targets)
}

func TestAugmentor_ForbiddenTenantStrict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"success":false,"message":"Wrong tenant"}`))
	}))
	defer server.Close()

	session := &fakeSession{token: "valid", tenantID: ptr(1)}
	navigator := &fakeNavigator{}
	client := httpx.New(server.URL, httpx.NewAugmentor(nil, session, navigator, nil))

	ctx := ctxutil.WithTenantStrict(context.Background())
	_, err := client.Get(ctx, "/api/certificates", nil)
	require.Error(t, err)

	assert.True(t, session.cleared, "tenant-scoped-strict 403 takes the 401 path")
	assert.Len(t, navigator.targets, 1)
}

func TestAugmentor_PublicEndpointSkipsTenant(t *testing.T) {
	var gotID, gotSchema string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Tenant-Id")
		gotSchema = r.Header.Get("X-Tenant-Schema")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{}}`))
	}))
	defer server.Close()

	session := &fakeSession{token: "tok", tenantID: ptr(9)}
	client := httpx.New(server.URL, httpx.NewAugmentor(nil, session, nil, nil))

	ctx := ctxutil.WithPublicEndpoint(context.Background())
	_, err := client.Get(ctx, "/api/certificates/verify/abc", nil)
	require.NoError(t, err)

	assert.Empty(t, gotID)
	assert.Empty(t, gotSchema)
}
