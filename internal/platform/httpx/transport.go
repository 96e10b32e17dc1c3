// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/taibuivan/certrix/internal/platform/constants"
	"github.com/taibuivan/certrix/internal/platform/ctxutil"
)

// SessionSource is the read side of the session store the augmentor needs.
// Implemented by the auth service; defined here to keep the dependency arrow
// pointing from auth to httpx, never back.
type SessionSource interface {
	// Token returns the bearer token, or "" when unauthenticated.
	Token() string
	// TenantID returns the numeric tenant selector and whether one is set.
	TenantID() (int64, bool)
	// TenantSchema returns the schema-name tenant selector, or "".
	TenantSchema() string
	// ClearSession wipes the in-memory and durable session unconditionally.
	ClearSession()
}

// Navigator is invoked when an authorization failure forces the operator
// back to the login flow. The console implements it as a terminal notice;
// delivery semantics are outside this package's contract.
type Navigator interface {
	ToLogin(returnTarget string)
}

// Augmentor is an [http.RoundTripper] that attaches tenant and bearer
// context to every outgoing API call and reacts to authorization failures.
//
// # Behavior
//
//   - Tenant selection is mutually exclusive: a numeric tenant id wins and
//     sends X-Tenant-Id; otherwise a schema name sends X-Tenant-Schema;
//     never both.
//   - A bearer token is attached when present.
//   - A 401 response clears the session and navigates to login. A 403 is
//     logged only — unless the call is marked tenant-scoped-strict, in which
//     case it takes the 401 path.
//
// # Middleware Contract
//
// The augmentor never swallows anything: the response (or transport error)
// is always handed back to the caller after side effects, so resource
// clients still construct and surface their own errors.
type Augmentor struct {
	next      http.RoundTripper
	session   SessionSource
	navigator Navigator
	log       *slog.Logger
}

// NewAugmentor builds the augmentor chain head. next may be nil, selecting
// [http.DefaultTransport].
func NewAugmentor(next http.RoundTripper, session SessionSource, navigator Navigator, log *slog.Logger) *Augmentor {
	if next == nil {
		next = http.DefaultTransport
	}
	if log == nil {
		log = slog.Default()
	}
	return &Augmentor{next: next, session: session, navigator: navigator, log: log}
}

// RoundTrip implements [http.RoundTripper].
func (a *Augmentor) RoundTrip(request *http.Request) (*http.Response, error) {
	ctx := request.Context()

	// RoundTrippers must not mutate the caller's request.
	outgoing := request.Clone(ctx)

	// 1. Tenant selector — mutually exclusive, numeric id first.
	if !ctxutil.IsPublicEndpoint(ctx) && outgoing.Header.Get(constants.HeaderTenantID) == "" && outgoing.Header.Get(constants.HeaderTenantSchema) == "" {
		if id, ok := a.session.TenantID(); ok {
			outgoing.Header.Set(constants.HeaderTenantID, strconv.FormatInt(id, 10))
		} else if schema := a.session.TenantSchema(); schema != "" {
			outgoing.Header.Set(constants.HeaderTenantSchema, schema)
		}
	}

	// 2. Bearer token.
	if token := a.session.Token(); token != "" {
		outgoing.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	// 3. Correlation ID for log stitching across the proxy and backend.
	if outgoing.Header.Get(constants.HeaderXRequestID) == "" {
		outgoing.Header.Set(constants.HeaderXRequestID, newRequestID())
	}

	response, err := a.next.RoundTrip(outgoing)
	if err != nil {
		// Transport failure: no response, no session mutation.
		return nil, err
	}

	switch response.StatusCode {
	case http.StatusUnauthorized:
		a.expireSession(request)
	case http.StatusForbidden:
		if ctxutil.IsTenantStrict(ctx) {
			a.expireSession(request)
		} else {
			a.log.WarnContext(ctx, "access_forbidden",
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
			)
		}
	}

	// Original response is always re-raised to the caller.
	return response, nil
}

// expireSession performs the mandatory 401 side effects: wipe the session
// and send the operator back to login carrying the path they were after.
func (a *Augmentor) expireSession(request *http.Request) {
	a.log.WarnContext(request.Context(), "session_rejected",
		slog.String("method", request.Method),
		slog.String("path", request.URL.Path),
	)
	a.session.ClearSession()
	if a.navigator != nil {
		a.navigator.ToLogin(request.URL.Path)
	}
}

// newRequestID returns a time-sortable correlation ID, falling back to v4
// when the monotonic clock source errors.
func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}
