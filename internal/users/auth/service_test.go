// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/certrix/internal/platform/httpx"
	"github.com/taibuivan/certrix/internal/users/auth"
)

// memStore is an in-memory Store for session lifecycle tests.
type memStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

const loginBody = `{
	"success": true,
	"message": "Authenticated",
	"data": {
		"token": "jwt-token-1",
		"tokenType": "Bearer",
		"userId": "u-100",
		"email": "ops@acme.test",
		"customerId": 55,
		"firstName": "Ana",
		"lastName": "Ops",
		"role": "ADMIN",
		"tenantSchema": "acme_corp",
		"authenticated": true
	}
}`

func newLoginServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" && r.Method == http.MethodPost {
			assert.Equal(t, "7", r.Header.Get("X-Tenant-Id"), "login must carry the explicit tenant header")
			_, _ = w.Write([]byte(loginBody))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"no route"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func newService(t *testing.T, store auth.Store) *auth.Service {
	t.Helper()
	server := newLoginServer(t)
	svc := auth.NewService(store, nil)
	// The augmentor reads the service it authenticates for.
	svc.AttachClient(httpx.New(server.URL, httpx.NewAugmentor(nil, svc, nil, nil)))
	return svc
}

/*
TestLoginLogout_PredicateWindow verifies that IsAuthenticated is true only
strictly between login and logout.
*/
func TestLoginLogout_PredicateWindow(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store)
	ctx := context.Background()

	assert.False(t, svc.IsAuthenticated(), "fresh service must be unauthenticated")

	session, err := svc.Login(ctx, 7, auth.Credentials{Email: "ops@acme.test", Password: "pw"})
	require.NoError(t, err)

	assert.True(t, svc.IsAuthenticated())
	assert.True(t, session.IsAuthenticated())
	assert.Equal(t, "jwt-token-1", svc.Token())
	assert.Equal(t, "acme_corp", svc.TenantSchema())

	id, ok := svc.TenantID()
	require.True(t, ok)
	assert.Equal(t, int64(7), id)

	// Durable mirror holds four independent entries.
	token, ok, _ := store.Get(ctx, "certmgmt_token")
	require.True(t, ok)
	assert.Equal(t, "jwt-token-1", token)
	_, ok, _ = store.Get(ctx, "certmgmt_user")
	assert.True(t, ok)
	_, ok, _ = store.Get(ctx, "certmgmt_tenant_id")
	assert.True(t, ok)
	_, ok, _ = store.Get(ctx, "certmgmt_tenant_schema")
	assert.True(t, ok)

	svc.Logout(ctx)
	assert.False(t, svc.IsAuthenticated())
	assert.Empty(t, svc.Token())

	_, ok, _ = store.Get(ctx, "certmgmt_token")
	assert.False(t, ok, "logout must purge durable storage")

	// Idempotent.
	svc.Logout(ctx)
	assert.False(t, svc.IsAuthenticated())
}

/*
TestReinitialize_NoClobber: rehydrating with a populated in-memory session is
a no-op for all storage contents.
*/
func TestReinitialize_NoClobber(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store)
	ctx := context.Background()

	_, err := svc.Login(ctx, 7, auth.Credentials{Email: "ops@acme.test", Password: "pw"})
	require.NoError(t, err)

	// Poison durable storage behind the live session's back.
	require.NoError(t, store.Set(ctx, "certmgmt_token", "stale-token"))
	require.NoError(t, store.Set(ctx, "certmgmt_user", `{"id":"u-stale","role":"VIEWER","customerId":1,"email":"x","active":true}`))

	require.NoError(t, svc.ReinitializeFromStorage(ctx))

	assert.Equal(t, "jwt-token-1", svc.Token(), "fresh login must not be clobbered by stale storage")
	assert.Equal(t, "u-100", svc.CurrentUser().ID)
}

func TestReinitialize_Rehydrates(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "certmgmt_token", "stored-token"))
	require.NoError(t, store.Set(ctx, "certmgmt_user", `{"id":"u-9","customerId":3,"email":"a@b.c","role":"EDITOR","active":true}`))
	require.NoError(t, store.Set(ctx, "certmgmt_tenant_id", "12"))
	require.NoError(t, store.Set(ctx, "certmgmt_tenant_schema", "tenant_twelve"))

	svc := newService(t, store)
	require.NoError(t, svc.ReinitializeFromStorage(ctx))

	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, "stored-token", svc.Token())
	id, ok := svc.TenantID()
	require.True(t, ok)
	assert.Equal(t, int64(12), id)
	assert.Equal(t, "tenant_twelve", svc.TenantSchema())
	assert.Equal(t, auth.RoleEditor, svc.CurrentUser().Role)
}

func TestReinitialize_EmptyStorageIsNotAnError(t *testing.T) {
	svc := newService(t, newMemStore())
	require.NoError(t, svc.ReinitializeFromStorage(context.Background()))
	assert.False(t, svc.IsAuthenticated())
}

/*
TestReinitialize_CorruptUser: a stored token with a malformed user entry is
treated as unauthenticated, purges the broken entries, and surfaces
ErrCorruptSession — distinct from a plain "not logged in".
*/
func TestReinitialize_CorruptUser(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "certmgmt_token", "valid-looking-token"))
	require.NoError(t, store.Set(ctx, "certmgmt_user", `{not json`))

	svc := newService(t, store)
	err := svc.ReinitializeFromStorage(ctx)

	require.ErrorIs(t, err, auth.ErrCorruptSession)
	assert.False(t, svc.IsAuthenticated())

	_, ok, _ := store.Get(ctx, "certmgmt_token")
	assert.False(t, ok, "corrupted session entries must be purged")
}

func TestHasAnyRole(t *testing.T) {
	store := newMemStore()
	svc := newService(t, store)
	ctx := context.Background()

	assert.False(t, svc.HasRole(auth.RoleAdmin))

	_, err := svc.Login(ctx, 7, auth.Credentials{Email: "ops@acme.test", Password: "pw"})
	require.NoError(t, err)

	assert.True(t, svc.HasRole(auth.RoleAdmin))
	assert.True(t, svc.HasAnyRole(auth.RoleViewer, auth.RoleAdmin))
	assert.False(t, svc.HasAnyRole(auth.RoleViewer, auth.RoleAPIClient))
}
