// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command console is the operator CLI for the Certrix certificate platform.
//
// # Startup Sequence
//
//  1. Initialize structured logger (stderr; stdout belongs to command output).
//  2. Load configuration from environment variables.
//  3. Wire the client stack (session store → service → clients → workflow).
//  4. Dispatch the subcommand and exit with its code.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/certrix/internal/console"
	"github.com/taibuivan/certrix/internal/platform/config"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Logs go to stderr as structured JSON; stdout carries command output so
	// the CLI stays pipeable.
	level := slog.LevelWarn
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", "certrix-console"))
	slog.SetDefault(log)

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadConsole()
	must(log, err, "load configuration")

	// Ctrl-C cancels in-flight calls and any running poll loop.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 3. Wiring ─────────────────────────────────────────────────────────
	app, err := console.New(ctx, cfg, log, os.Stdout)
	must(log, err, "wire console")

	// ── 4. Dispatch ───────────────────────────────────────────────────────
	// os.Exit skips defers, so teardown is explicit.
	code := app.Run(ctx, os.Args[1:])
	app.Close()
	stop()
	os.Exit(code)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
