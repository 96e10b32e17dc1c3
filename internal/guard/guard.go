// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package guard decides whether an operator may reach a protected route or run
a protected command.

The decision is a pure function over snapshots. Side effects live at the call
site, explicitly sequenced: the caller first asks, and only on a deny does it
try one session rehydration, ask again, and finally follow the redirect. The
guard itself never touches storage and never navigates.
*/
package guard

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/certrix/internal/users/auth"
)

// LoginRoute is where denied operators are sent, with the original target
// carried as a return URL.
const LoginRoute = "/login"

// Durable is a point-in-time view of the persisted session entries. Values
// are raw: the token as stored, the user entry as its stored JSON.
type Durable struct {
	Token    string
	UserJSON string
}

// Input gathers everything one decision needs.
type Input struct {
	Session auth.Session // in-memory session snapshot
	Durable Durable      // durable store snapshot
	Target  string       // route or command the caller wants to reach
}

// Decision is the guard's answer.
type Decision struct {
	Allowed bool

	// RedirectURL is the login route carrying the denied target as a return
	// URL. Set only when Allowed is false.
	RedirectURL string
}

// Decide answers whether the input's session may reach the target.
//
// An authenticated in-memory session always passes. Without one, a durable
// {token, user} pair that is structurally valid passes optimistically — the
// server remains the authority and will 401 a stale token on first use. The
// one exception: a durable token that parses as a JWT with an already-expired
// exp claim is denied outright, since the server's verdict is a foregone
// conclusion. Opaque non-JWT tokens keep the optimistic path.
func Decide(in Input) Decision {
	if in.Session.IsAuthenticated() {
		return Decision{Allowed: true}
	}

	if durableUsable(in.Durable) {
		return Decision{Allowed: true}
	}

	return Decision{RedirectURL: redirectFor(in.Target)}
}

// durableUsable reports whether the persisted pair is worth an optimistic
// allow: non-empty token, user JSON carrying an id, and no provably expired
// JWT.
func durableUsable(d Durable) bool {
	if d.Token == "" || d.UserJSON == "" {
		return false
	}

	var user auth.User
	if err := json.Unmarshal([]byte(d.UserJSON), &user); err != nil || user.ID == "" {
		return false
	}

	return !provablyExpired(d.Token, time.Now())
}

// provablyExpired reports whether token is a parseable JWT whose exp claim is
// in the past. Signature verification is deliberately skipped; only the
// timestamp matters here, the server still verifies for real.
func provablyExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

// redirectFor builds the login redirect preserving the denied target.
func redirectFor(target string) string {
	if target == "" {
		return LoginRoute
	}
	return LoginRoute + "?returnUrl=" + url.QueryEscape(target)
}
