// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, polling policy, header names, and cross-cutting
keys that are shared between the console client and the edge proxy.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the proxy HTTP server.
  - Polling: Interval and attempt cap for certificate generation.
  - Headers: Multi-tenant and correlation header names.
  - Storage: Durable session key names.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "certrix"
	AppVersion = "0.1.0-dev"
)

// # Proxy Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Generous because the proxy streams slow PDF downloads from the upstream.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Certificate Generation Polling

const (
	// PollInterval is the fixed delay between certificate status fetches.
	PollInterval = 2 * time.Second

	// PollMaxAttempts caps the number of status fetches for one generation,
	// bounding the wait at 60 seconds of wall clock.
	PollMaxAttempts = 30
)

// # HTTP Client Timing

const (
	// DefaultRequestTimeout bounds a single console API call.
	DefaultRequestTimeout = 30 * time.Second
)

// # Rate Limiting (proxy)

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Wire Headers

const (
	// HeaderTenantID carries the numeric tenant selector on every API call.
	HeaderTenantID = "X-Tenant-Id"

	// HeaderTenantSchema carries the schema-name tenant selector.
	// Mutually exclusive with HeaderTenantID — never send both.
	HeaderTenantSchema = "X-Tenant-Schema"

	// HeaderAuthorization carries the bearer token.
	HeaderAuthorization = "Authorization"

	// HeaderXRequestID is the correlation ID propagated end-to-end.
	HeaderXRequestID = "X-Request-ID"

	HeaderXForwardedHost  = "X-Forwarded-Host"
	HeaderXForwardedProto = "X-Forwarded-Proto"
	HeaderXForwardedFor   = "X-Forwarded-For"
	HeaderXRealIP         = "X-Real-IP"
	HeaderOrigin          = "Origin"
)

// # API Paths

const (
	// APIBasePath prefixes tenant-scoped resource endpoints.
	APIBasePath = "/api"

	// AuthBasePath prefixes authentication endpoints.
	AuthBasePath = "/auth"
)

// # Durable Session Storage Keys
//
// Four independent entries, not one composite record: a malformed user entry
// must never prevent reading a valid token entry.

const (
	StorageKeyToken        = "certmgmt_token"
	StorageKeyUser         = "certmgmt_user"
	StorageKeyTenantID     = "certmgmt_tenant_id"
	StorageKeyTenantSchema = "certmgmt_tenant_schema"
)

// # Redis Prefixes (Session Taxonomy)

const (
	RedisPrefixSession = "console:session:"
)
