// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package proxy

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/certrix/internal/platform/config"
	"github.com/taibuivan/certrix/internal/platform/constants"
	"github.com/taibuivan/certrix/internal/platform/middleware"
	"github.com/taibuivan/certrix/internal/platform/obs"
)

// NewServer wires the router, middleware chain, and forwarder into a ready
// http.Server. ctx bounds the rate limiter's background sweep.
func NewServer(ctx context.Context, cfg *config.Proxy, log *slog.Logger) (*http.Server, error) {
	forwarder, err := NewForwarder(cfg.UpstreamURL, log)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID(),
		middleware.StructuredLogger(log),
		middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst),
		middleware.PanicRecovery(log),
		obs.Instrument,
	)

	// Operational endpoints answer locally; everything else is forwarded.
	router.Get("/health", healthHandler)
	router.Method(http.MethodGet, "/metrics", obs.Handler())

	router.Handle(constants.APIBasePath+"/*", forwarder)
	router.Handle(constants.AuthBasePath+"/*", forwarder)

	return &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadTimeout:       constants.DefaultReadTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
	}, nil
}

// healthHandler is the liveness probe. It must not touch the upstream:
// the proxy being up is a separate fact from the upstream being up.
func healthHandler(writer http.ResponseWriter, _ *http.Request) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte(`{"success":true,"message":"certrix proxy is healthy"}`))
}
