// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the operator session store and login lifecycle.

It holds the authenticated identity (token, user, tenant selectors) in
memory, mirrors every mutation into a durable key-value store, and exposes
the read accessors the request augmentor attaches to every outgoing call.

Architecture:

  - Service: Orchestrates login/logout and rehydration; the single owner of
    mutable session state.
  - Store: Abstracted durable storage with file and Redis implementations.
  - Session: Immutable snapshot handed to the guard and the console views.

Ordering rule: memory is always updated before durable storage, so readers
never observe a partially-written durable copy as canonical.
*/
package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/taibuivan/certrix/internal/platform/constants"
	"github.com/taibuivan/certrix/internal/platform/httpx"
)

// storeTimeout bounds durable-store I/O triggered from paths without a
// caller context (the augmentor's 401 handling).
const storeTimeout = 5 * time.Second

// Service owns the operator session.
//
// # Concurrency
//
// All state is guarded by one mutex; every read-then-write happens within a
// single critical section so no interleaving across async boundaries can
// observe a half-updated session.
type Service struct {
	mu      sync.RWMutex
	session Session

	api   *httpx.Client
	store Store
	log   *slog.Logger
}

// NewService constructs the session service.
//
// The HTTP client is attached afterwards via [Service.AttachClient]: the
// client's transport is the augmentor, and the augmentor reads this very
// service, so the two cannot be built in one expression.
func NewService(store Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log}
}

// AttachClient wires the envelope client used for the login call. Must be
// called once during composition, before Login.
func (s *Service) AttachClient(api *httpx.Client) {
	s.api = api
}

// # Login / Logout

// Login authenticates against the backend under the given tenant and, on
// success, installs the session in memory first and then in durable storage.
func (s *Service) Login(ctx context.Context, tenantID int64, creds Credentials) (Session, error) {
	env, err := s.api.Post(ctx, constants.AuthBasePath+"/login", creds,
		httpx.WithHeader(constants.HeaderTenantID, strconv.FormatInt(tenantID, 10)))
	if err != nil {
		return Session{}, err
	}

	loginResp, err := httpx.DecodeData[LoginResponse](env, "Login succeeded but returned no session")
	if err != nil {
		return Session{}, err
	}

	user := userFromLogin(loginResp)
	session := Session{
		Token:        loginResp.Token,
		User:         user,
		TenantID:     &tenantID,
		TenantSchema: loginResp.TenantSchema,
	}

	// Memory first.
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	// Then durable storage. Failure here degrades persistence, not the
	// in-process session; the operator just logs in again next run.
	if err := s.persist(ctx, session); err != nil {
		s.log.Warn("session_persist_failed", slog.Any("error", err))
	}

	s.log.Info("login_succeeded",
		slog.String("user_id", user.ID),
		slog.Int64("tenant_id", tenantID),
		slog.String("role", string(user.Role)),
	)
	return session, nil
}

// Logout clears memory and durable storage unconditionally. Idempotent.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()

	s.purge(ctx)
	s.log.Info("logged_out")
}

// # Rehydration

// ReinitializeFromStorage loads the session from durable storage, but only
// when memory is currently empty: it must never clobber a fresh in-memory
// login with stale durable data, nor resurrect durable data over an explicit
// logout (logout purges the durable copy first).
//
// A stored token whose companion user entry is malformed yields
// [ErrCorruptSession] and purges the broken entries; the operator is simply
// unauthenticated afterwards.
func (s *Service) ReinitializeFromStorage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.empty() {
		return nil
	}

	token, hasToken, err := s.store.Get(ctx, constants.StorageKeyToken)
	if err != nil {
		return err
	}

	userJSON, hasUser, err := s.store.Get(ctx, constants.StorageKeyUser)
	if err != nil {
		return err
	}

	if !hasToken || !hasUser {
		// Nothing (usable) stored: a plain unauthenticated start.
		return nil
	}

	var user User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil || user.ID == "" {
		s.log.Warn("stored_session_corrupted", slog.Any("error", err))
		s.purge(ctx)
		return ErrCorruptSession
	}

	session := Session{Token: token, User: &user}
	if raw, ok, _ := s.store.Get(ctx, constants.StorageKeyTenantID); ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			session.TenantID = &id
		}
	}
	if schema, ok, _ := s.store.Get(ctx, constants.StorageKeyTenantSchema); ok {
		session.TenantSchema = schema
	}

	s.session = session
	s.log.Info("session_rehydrated", slog.String("user_id", user.ID))
	return nil
}

// # Accessors

// Snapshot returns a copy of the current session.
func (s *Service) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// IsAuthenticated reports whether a complete identity is held.
func (s *Service) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// CurrentUser returns the logged-in operator, or nil.
func (s *Service) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User
}

// HasRole reports whether the current operator holds the given role.
func (s *Service) HasRole(role Role) bool {
	user := s.CurrentUser()
	return user != nil && user.Role == role
}

// HasAnyRole reports whether the current operator holds any of the roles.
func (s *Service) HasAnyRole(roles ...Role) bool {
	user := s.CurrentUser()
	if user == nil {
		return false
	}
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	return false
}

// # SessionSource (request augmentor contract)

// Token returns the bearer token, or "" when unauthenticated.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// TenantID returns the numeric tenant selector and whether one is set.
func (s *Service) TenantID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.TenantID == nil {
		return 0, false
	}
	return *s.session.TenantID, true
}

// TenantSchema returns the schema-name tenant selector, or "".
func (s *Service) TenantSchema() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.TenantSchema
}

// ClearSession wipes memory and durable storage. Invoked by the augmentor
// on a 401; equivalent to Logout with an internal timeout context.
func (s *Service) ClearSession() {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	s.Logout(ctx)
}

// # Durable Storage Plumbing

// persist mirrors the session into the four independent durable entries.
func (s *Service) persist(ctx context.Context, session Session) error {
	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, constants.StorageKeyToken, session.Token); err != nil {
		return err
	}
	if err := s.store.Set(ctx, constants.StorageKeyUser, string(userJSON)); err != nil {
		return err
	}
	if session.TenantID != nil {
		if err := s.store.Set(ctx, constants.StorageKeyTenantID, strconv.FormatInt(*session.TenantID, 10)); err != nil {
			return err
		}
	}
	if session.TenantSchema != "" {
		if err := s.store.Set(ctx, constants.StorageKeyTenantSchema, session.TenantSchema); err != nil {
			return err
		}
	}
	return nil
}

// purge removes all four durable entries, logging rather than failing:
// logout must succeed even when storage is briefly unavailable.
func (s *Service) purge(ctx context.Context) {
	for _, key := range []string{
		constants.StorageKeyToken,
		constants.StorageKeyUser,
		constants.StorageKeyTenantID,
		constants.StorageKeyTenantSchema,
	} {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("session_purge_failed", slog.String("key", key), slog.Any("error", err))
		}
	}
}
