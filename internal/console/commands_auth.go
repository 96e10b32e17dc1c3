// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package console

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/taibuivan/certrix/internal/guard"
	"github.com/taibuivan/certrix/internal/platform/constants"
	"github.com/taibuivan/certrix/internal/users/auth"
)

// # Session Commands

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	flags.SetOutput(a.out)
	tenantID := flags.Int64("tenant", 0, "numeric tenant id")
	email := flags.String("email", "", "operator email")
	password := flags.String("password", "", "operator password")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *tenantID == 0 || *email == "" || *password == "" {
		return errors.New("login requires --tenant, --email and --password")
	}

	session, err := a.session.Login(ctx, *tenantID, auth.Credentials{
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "logged in as %s (%s)\n", session.User.Email, session.User.Role)
	return nil
}

func (a *App) cmdLogout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *App) cmdWhoami(ctx context.Context) error {
	if err := a.requireSession(ctx, "whoami"); err != nil {
		return err
	}

	user := a.session.CurrentUser()
	snapshot := a.session.Snapshot()

	fmt.Fprintf(a.out, "user:   %s %s <%s>\n", user.FirstName, user.LastName, user.Email)
	fmt.Fprintf(a.out, "role:   %s\n", user.Role)
	if snapshot.TenantID != nil {
		fmt.Fprintf(a.out, "tenant: %d\n", *snapshot.TenantID)
	} else if snapshot.TenantSchema != "" {
		fmt.Fprintf(a.out, "tenant: %s\n", snapshot.TenantSchema)
	}
	return nil
}

// # Access Gate

// requireSession gates a protected command. The sequencing is deliberate:
// decide on what is in memory, rehydrate from storage exactly once on a deny,
// decide again, and only then surface the redirect.
func (a *App) requireSession(ctx context.Context, target string) error {
	decide := func() guard.Decision {
		return guard.Decide(guard.Input{
			Session: a.session.Snapshot(),
			Durable: a.durableSnapshot(ctx),
			Target:  target,
		})
	}

	decision := decide()
	if decision.Allowed {
		return nil
	}

	if err := a.session.ReinitializeFromStorage(ctx); err == nil {
		if decision = decide(); decision.Allowed {
			return nil
		}
	}

	return fmt.Errorf("not logged in — run 'console login' (%s)", decision.RedirectURL)
}

// durableSnapshot reads the persisted token and user entries for the guard.
// Read failures degrade to an absent pair; the guard denies, the operator
// logs in again.
func (a *App) durableSnapshot(ctx context.Context) guard.Durable {
	token, _, _ := a.store.Get(ctx, constants.StorageKeyToken)
	userJSON, _, _ := a.store.Get(ctx, constants.StorageKeyUser)
	return guard.Durable{Token: token, UserJSON: userJSON}
}
