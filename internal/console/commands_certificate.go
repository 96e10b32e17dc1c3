// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package console

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/taibuivan/certrix/internal/core/certificate"
)

// # Certificate Commands

// runCertificate dispatches with its own exit code because generate has a
// three-way ending: success, failure, and the deliberate timeout notice.
func (a *App) runCertificate(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "certificate requires a subcommand: list, generate, revoke, download-url")
		return 1
	}

	if err := a.requireSession(ctx, "certificate "+args[0]); err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return 1
	}

	var err error
	switch args[0] {
	case "list":
		err = a.certificateList(ctx, args[1:])
	case "generate":
		return a.certificateGenerate(ctx, args[1:])
	case "revoke":
		err = a.certificateRevoke(ctx, args[1:])
	case "download-url":
		err = a.certificateDownloadURL(ctx, args[1:])
	default:
		err = fmt.Errorf("unknown certificate subcommand %q", args[0])
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(a.out, "error:", err)
		return 1
	}
	return 0
}

func (a *App) certificateList(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("certificate list", flag.ContinueOnError)
	flags.SetOutput(a.out)
	status := flags.String("status", "", "filter by status (PENDING, PROCESSING, ISSUED, FAILED, REVOKED)")
	templateVersion := flags.Int64("template-version", 0, "filter by template version id")
	if err := flags.Parse(args); err != nil {
		return err
	}

	certificates, err := a.certificates.List(ctx, certificate.ListFilter{
		Status:            certificate.Status(*status),
		TemplateVersionID: *templateVersion,
	})
	if err != nil {
		return err
	}

	table := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tNUMBER\tSTATUS\tISSUED AT")
	for _, cert := range certificates {
		issuedAt := "-"
		if cert.IssuedAt != nil {
			issuedAt = cert.IssuedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\n", cert.ID, cert.CertificateNumber, cert.Status, issuedAt)
	}
	return table.Flush()
}

// certificateGenerate runs the full workflow. A POLL_TIMEOUT exits 0: the
// outcome is unknown, not failed, and scripts must not retry blindly.
func (a *App) certificateGenerate(ctx context.Context, args []string) int {
	flags := flag.NewFlagSet("certificate generate", flag.ContinueOnError)
	flags.SetOutput(a.out)
	templateVersion := flags.Int64("template-version", 0, "template version id to render")
	data := flags.String("data", "", "recipient data as a JSON object")
	number := flags.String("number", "", "explicit certificate number (assigned when empty)")
	sync := flags.Bool("sync", false, "ask the server to render inline")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *templateVersion == 0 || *data == "" {
		fmt.Fprintln(a.out, "error: certificate generate requires --template-version and --data")
		return 1
	}

	var recipientData map[string]any
	if err := json.Unmarshal([]byte(*data), &recipientData); err != nil {
		fmt.Fprintln(a.out, "error: --data must be a JSON object:", err)
		return 1
	}

	result, err := a.workflow.Generate(ctx, certificate.GenerateRequest{
		TemplateVersionID: *templateVersion,
		CertificateNumber: *number,
		RecipientData:     recipientData,
		Synchronous:       *sync,
	})
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return 1
	}

	// The notifier already printed the outcome line.
	switch result.Outcome {
	case certificate.OutcomeIssued:
		return 0
	case certificate.OutcomePollTimeout:
		return 0
	default:
		return 1
	}
}

func (a *App) certificateRevoke(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("certificate revoke", flag.ContinueOnError)
	flags.SetOutput(a.out)
	id := flags.Int64("id", 0, "certificate id")
	reason := flags.String("reason", "", "revocation reason")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("certificate revoke requires --id")
	}

	cert, err := a.certificates.GetByID(ctx, *id)
	if err != nil {
		return err
	}

	revoked, err := a.certificates.Revoke(ctx, cert, *reason)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "certificate %s revoked\n", revoked.CertificateNumber)
	return nil
}

func (a *App) certificateDownloadURL(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("certificate download-url", flag.ContinueOnError)
	flags.SetOutput(a.out)
	id := flags.Int64("id", 0, "certificate id")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("certificate download-url requires --id")
	}

	link, err := a.certificates.DownloadURL(ctx, *id)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, link.URL)
	if link.ExpiresAt != nil {
		fmt.Fprintf(a.out, "expires at %s\n", link.ExpiresAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// cmdVerify is the public verification path: no session, no tenant.
func (a *App) cmdVerify(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("verify", flag.ContinueOnError)
	flags.SetOutput(a.out)
	hash := flags.String("hash", "", "signed hash printed on the certificate")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *hash == "" {
		return errors.New("verify requires --hash")
	}

	result, err := a.certificates.Verify(ctx, *hash)
	if err != nil {
		return err
	}

	if !result.Valid {
		fmt.Fprintln(a.out, "INVALID:", result.Message)
		return nil
	}
	fmt.Fprintf(a.out, "VALID: certificate %s", result.CertificateNumber)
	if result.IssuedAt != nil {
		fmt.Fprintf(a.out, ", issued %s", result.IssuedAt.Format("2006-01-02"))
	}
	fmt.Fprintln(a.out)
	return nil
}
