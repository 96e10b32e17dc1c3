// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package console

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/taibuivan/certrix/internal/core/template"
	"github.com/taibuivan/certrix/pkg/pointer"
)

// # Template Commands

func (a *App) cmdTemplate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("template requires a subcommand: list, create, versions, publish")
	}

	if err := a.requireSession(ctx, "template "+args[0]); err != nil {
		return err
	}

	switch args[0] {
	case "list":
		return a.templateList(ctx)
	case "create":
		return a.templateCreate(ctx, args[1:])
	case "versions":
		return a.templateVersions(ctx, args[1:])
	case "publish":
		return a.templatePublish(ctx, args[1:])
	default:
		return fmt.Errorf("unknown template subcommand %q", args[0])
	}
}

func (a *App) templateList(ctx context.Context) error {
	templates, err := a.templates.List(ctx)
	if err != nil {
		return err
	}

	table := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tCODE\tNAME\tCURRENT")
	for _, tpl := range templates {
		current := "-"
		if tpl.CurrentVersion != nil {
			current = fmt.Sprintf("v%d", *tpl.CurrentVersion)
		}
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\n", tpl.ID, tpl.Code, tpl.Name, current)
	}
	return table.Flush()
}

func (a *App) templateCreate(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("template create", flag.ContinueOnError)
	flags.SetOutput(a.out)
	customerID := flags.Int64("customer", 0, "owning customer id")
	name := flags.String("name", "", "template name")
	code := flags.String("code", "", "template code (derived from name when empty)")
	description := flags.String("description", "", "template description")
	if err := flags.Parse(args); err != nil {
		return err
	}

	req := template.CreateRequest{
		CustomerID: *customerID,
		Name:       *name,
		Code:       *code,
	}
	if *description != "" {
		req.Description = pointer.To(*description)
	}
	created, err := a.templates.Create(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "template %d created (code %s)\n", created.ID, created.Code)
	return nil
}

func (a *App) templateVersions(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("template versions", flag.ContinueOnError)
	flags.SetOutput(a.out)
	templateID := flags.Int64("template", 0, "template id")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *templateID == 0 {
		return errors.New("template versions requires --template")
	}

	versions, err := a.templates.ListVersions(ctx, *templateID)
	if err != nil {
		return err
	}

	table := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tVERSION\tSTATUS")
	for _, version := range versions {
		fmt.Fprintf(table, "%d\t%d\t%s\n", version.ID, version.Version, version.Status)
	}
	return table.Flush()
}

func (a *App) templatePublish(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("template publish", flag.ContinueOnError)
	flags.SetOutput(a.out)
	templateID := flags.Int64("template", 0, "template id")
	versionID := flags.Int64("version", 0, "version id")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *templateID == 0 || *versionID == 0 {
		return errors.New("template publish requires --template and --version")
	}

	versions, err := a.templates.ListVersions(ctx, *templateID)
	if err != nil {
		return err
	}

	for i := range versions {
		if versions[i].ID == *versionID {
			published, err := a.templates.PublishVersion(ctx, &versions[i])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "version %d of template %d is now %s\n",
				published.Version, *templateID, published.Status)
			return nil
		}
	}
	return fmt.Errorf("version %d not found on template %d", *versionID, *templateID)
}
