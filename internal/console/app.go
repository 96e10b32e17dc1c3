// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package console implements the operator CLI for the Certrix platform.

One App instance wires the whole client stack: durable session store →
session service → augmented HTTP client → resource clients → generation
workflow. Commands are thin: parse flags, check the route guard, call a
client, print the result.
*/
package console

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/taibuivan/certrix/internal/core/certificate"
	"github.com/taibuivan/certrix/internal/core/customer"
	"github.com/taibuivan/certrix/internal/core/template"
	"github.com/taibuivan/certrix/internal/platform/config"
	"github.com/taibuivan/certrix/internal/platform/httpx"
	platformredis "github.com/taibuivan/certrix/internal/platform/redis"
	"github.com/taibuivan/certrix/internal/users/auth"
)

// App holds the fully wired client stack for one CLI invocation.
type App struct {
	cfg *config.Console
	log *slog.Logger
	out io.Writer

	store        auth.Store
	session      *auth.Service
	templates    *template.Client
	certificates *certificate.Client
	customers    *customer.Client
	workflow     *certificate.Workflow

	closeStore func()
}

// New wires the App from configuration.
//
// The session service and the HTTP client depend on each other (the augmentor
// reads the session; the session logs in over the client), so construction
// happens in two steps: service first, client attached after.
func New(ctx context.Context, cfg *config.Console, log *slog.Logger, out io.Writer) (*App, error) {
	store, closeStore, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	session := auth.NewService(store, log)

	navigator := &printNavigator{out: out}
	augmentor := httpx.NewAugmentor(nil, session, navigator, log)
	api := httpx.New(cfg.APIBaseURL, augmentor)
	session.AttachClient(api)

	app := &App{
		cfg:          cfg,
		log:          log,
		out:          out,
		store:        store,
		session:      session,
		templates:    template.NewClient(api),
		certificates: certificate.NewClient(api),
		customers:    customer.NewClient(api),
		workflow:     certificate.NewWorkflow(certificate.NewClient(api), &printNotifier{out: out}, log),
		closeStore:   closeStore,
	}
	return app, nil
}

// newSessionStore selects the durable backend from configuration.
func newSessionStore(ctx context.Context, cfg *config.Console, log *slog.Logger) (auth.Store, func(), error) {
	switch cfg.SessionBackend {
	case "redis":
		client, err := platformredis.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}
		return auth.NewRedisStore(client, ""), func() { _ = client.Close() }, nil
	default:
		store, err := auth.NewFileStore(cfg.StateDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// Close releases the durable store backend.
func (a *App) Close() {
	if a.closeStore != nil {
		a.closeStore()
	}
}

// Run dispatches one CLI invocation. The returned code is the process exit
// code: 0 for success (including the deliberate POLL_TIMEOUT notice), 1 for
// any failure.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return 1
	}

	var err error
	switch args[0] {
	case "help":
		a.usage()
		return 0
	case "login":
		err = a.cmdLogin(ctx, args[1:])
	case "logout":
		err = a.cmdLogout(ctx)
	case "whoami":
		err = a.cmdWhoami(ctx)
	case "template":
		err = a.cmdTemplate(ctx, args[1:])
	case "certificate":
		return a.runCertificate(ctx, args[1:])
	case "customer":
		err = a.cmdCustomer(ctx, args[1:])
	case "verify":
		err = a.cmdVerify(ctx, args[1:])
	default:
		fmt.Fprintf(a.out, "unknown command %q\n\n", args[0])
		a.usage()
		return 1
	}

	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(a.out, "error:", err)
		return 1
	}
	return 0
}

func (a *App) usage() {
	fmt.Fprint(a.out, `Certrix operator console.

Usage:
  console login --tenant <id> --email <email> --password <password>
  console logout
  console whoami
  console template list
  console template create --customer <id> --name <name> [--code <code>]
  console template versions --template <id>
  console template publish --template <id> --version <id>
  console certificate list [--status <status>]
  console certificate generate --template-version <id> --data <json> [--sync] [--number <n>]
  console certificate revoke --id <id> [--reason <text>]
  console certificate download-url --id <id>
  console verify --hash <signedHash>
  console customer list
  console customer create --name <name> --email <email>
  console customer suspend --id <id>
  console customer activate --id <id>
`)
}

// printNavigator satisfies the augmentor's navigation hook. A CLI cannot
// redirect a browser; it tells the operator what to do instead.
type printNavigator struct {
	out io.Writer
}

func (n *printNavigator) ToLogin(returnTarget string) {
	if returnTarget != "" {
		fmt.Fprintf(n.out, "session expired — run 'console login' and retry %s\n", returnTarget)
		return
	}
	fmt.Fprintln(n.out, "session expired — run 'console login'")
}

// printNotifier renders workflow outcomes for the operator.
type printNotifier struct {
	out io.Writer
}

func (n *printNotifier) GenerationIssued(cert *certificate.Certificate) {
	fmt.Fprintf(n.out, "certificate %s issued\n", cert.CertificateNumber)
}

func (n *printNotifier) GenerationFailed(cert *certificate.Certificate, err error) {
	if cert != nil {
		fmt.Fprintf(n.out, "certificate %s failed: %v\n", cert.CertificateNumber, err)
		return
	}
	fmt.Fprintf(n.out, "certificate generation failed: %v\n", err)
}

func (n *printNotifier) GenerationTimedOut(cert *certificate.Certificate, attempts int) {
	number := ""
	if cert != nil {
		number = cert.CertificateNumber
	}
	fmt.Fprintf(n.out, "certificate %s still processing after %d checks — outcome unknown, check again later\n",
		number, attempts)
}
