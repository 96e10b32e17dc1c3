// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package console

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/taibuivan/certrix/internal/core/customer"
)

// # Customer Commands (platform admin)

func (a *App) cmdCustomer(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("customer requires a subcommand: list, create, suspend, activate")
	}

	if err := a.requireSession(ctx, "customer "+args[0]); err != nil {
		return err
	}

	switch args[0] {
	case "list":
		return a.customerList(ctx)
	case "create":
		return a.customerCreate(ctx, args[1:])
	case "suspend":
		return a.customerSetStatus(ctx, args[1:], true)
	case "activate":
		return a.customerSetStatus(ctx, args[1:], false)
	default:
		return fmt.Errorf("unknown customer subcommand %q", args[0])
	}
}

func (a *App) customerList(ctx context.Context) error {
	customers, err := a.customers.List(ctx)
	if err != nil {
		return err
	}

	table := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tNAME\tSCHEMA\tSTATUS")
	for _, cust := range customers {
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\n", cust.ID, cust.Name, cust.SchemaName, cust.Status)
	}
	return table.Flush()
}

func (a *App) customerCreate(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("customer create", flag.ContinueOnError)
	flags.SetOutput(a.out)
	name := flags.String("name", "", "organization name")
	email := flags.String("email", "", "contact email")
	plan := flags.String("plan", "", "subscription plan")
	if err := flags.Parse(args); err != nil {
		return err
	}

	created, err := a.customers.Create(ctx, customer.CreateRequest{
		Name:         *name,
		ContactEmail: *email,
		Plan:         *plan,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "customer %d created (schema %s)\n", created.ID, created.SchemaName)
	return nil
}

func (a *App) customerSetStatus(ctx context.Context, args []string, suspend bool) error {
	verb := "activate"
	if suspend {
		verb = "suspend"
	}

	flags := flag.NewFlagSet("customer "+verb, flag.ContinueOnError)
	flags.SetOutput(a.out)
	id := flags.Int64("id", 0, "customer id")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("customer %s requires --id", verb)
	}

	cust, err := a.customers.GetByID(ctx, *id)
	if err != nil {
		return err
	}

	var updated *customer.Customer
	if suspend {
		updated, err = a.customers.Suspend(ctx, cust)
	} else {
		updated, err = a.customers.Activate(ctx, cust)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "customer %d is now %s\n", updated.ID, updated.Status)
	return nil
}
