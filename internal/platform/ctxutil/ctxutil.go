// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/certrix/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Outgoing Call Options

// WithPublicEndpoint marks the outgoing call as tenant-agnostic so the
// request augmentor does not attach a tenant header (e.g. public certificate
// verification).
func WithPublicEndpoint(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxkey.KeyPublicEndpoint, true)
}

// IsPublicEndpoint reports whether the call was marked tenant-agnostic.
func IsPublicEndpoint(ctx context.Context) bool {
	v, _ := ctx.Value(ctxkey.KeyPublicEndpoint).(bool)
	return v
}

// WithTenantStrict marks the outgoing call as tenant-scoped-strict: a 403
// response clears the session exactly like a 401 would.
func WithTenantStrict(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxkey.KeyTenantStrict, true)
}

// IsTenantStrict reports whether the call was marked tenant-scoped-strict.
func IsTenantStrict(ctx context.Context) bool {
	v, _ := ctx.Value(ctxkey.KeyTenantStrict).(bool)
	return v
}
