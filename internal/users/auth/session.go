// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// Session is an immutable snapshot of the operator's authentication state.
//
// Invariant: IsAuthenticated is true iff both Token and User are non-empty.
// TenantID and TenantSchema are mutually exclusive selectors on the wire but
// both may be held here; the request augmentor picks one per call.
type Session struct {
	Token        string
	User         *User
	TenantID     *int64
	TenantSchema string
}

// IsAuthenticated reports whether the session holds a complete identity.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// empty reports whether no session state is held at all.
func (s Session) empty() bool {
	return s.Token == "" && s.User == nil && s.TenantID == nil && s.TenantSchema == ""
}
