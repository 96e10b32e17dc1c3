// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
)

// ErrCorruptSession signals that durable storage held a token but the stored
// user entry was malformed. Distinct from plain "not logged in": the console
// reports it so the operator knows a previous session was discarded rather
// than never existed.
var ErrCorruptSession = errors.New("auth: stored session is corrupted")

// Store is the durable key-value session store.
//
// # Contract
//
// Four independent entries (token, user JSON, tenant id, tenant schema) are
// stored as separate keys, never one composite record: a malformed user
// entry must not prevent reading a valid token entry. Implementations must
// treat a missing key as (value "", ok false, err nil), reserving errors for
// real I/O failures.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
