// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package certificate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/certrix/internal/platform/constants"
	"github.com/taibuivan/certrix/pkg/certnum"
)

// # Generation Workflow
//
// The workflow drives one generation end to end: assign a certificate number,
// submit, and — when the server queues the work instead of rendering inline —
// poll the record at a fixed interval until it turns terminal or the attempt
// budget runs out.
//
// Phases: IDLE → SUBMITTING → POLLING → IDLE. A synchronous render skips
// POLLING entirely.

// ErrCancelled is returned by Generate when the run was cancelled, either by
// Cancel or by a newer Generate taking over. A cancelled run produces no
// outcome and notifies nobody.
var ErrCancelled = errors.New("certificate: generation cancelled")

// Phase is the workflow's current activity.
type Phase string

const (
	PhaseIdle       Phase = "IDLE"
	PhaseSubmitting Phase = "SUBMITTING"
	PhasePolling    Phase = "POLLING"
)

// Outcome is the terminal result of one generation run.
type Outcome string

const (
	OutcomeIssued Outcome = "ISSUED"
	OutcomeFailed Outcome = "FAILED"

	// OutcomePollTimeout means the attempt budget ran out while the record was
	// still in flight. The certificate may well issue later — this outcome is
	// "unknown", not an error.
	OutcomePollTimeout Outcome = "POLL_TIMEOUT"
)

// Result is what a completed (non-cancelled) run produced.
type Result struct {
	Outcome     Outcome
	Certificate *Certificate // last record seen; nil when submit never produced one
	Err         error        // cause, set for OutcomeFailed
	Attempts    int          // status fetches performed while polling
}

// API is the slice of the certificate client the workflow needs.
type API interface {
	Generate(ctx context.Context, req GenerateRequest) (*Certificate, error)
	GetByID(ctx context.Context, id int64) (*Certificate, error)
}

// Notifier receives terminal transitions. Implementations must not block;
// delivery order across overlapping runs is not guaranteed.
type Notifier interface {
	GenerationIssued(cert *Certificate)
	GenerationFailed(cert *Certificate, err error)
	GenerationTimedOut(cert *Certificate, attempts int)
}

type nopNotifier struct{}

func (nopNotifier) GenerationIssued(*Certificate)        {}
func (nopNotifier) GenerationFailed(*Certificate, error) {}
func (nopNotifier) GenerationTimedOut(*Certificate, int) {}

// Workflow runs certificate generations one at a time. Starting a new run
// cancels any run still in flight.
//
// # Concurrency
//
// Generate blocks the calling goroutine for the whole run; Cancel and Phase
// may be called from any goroutine.
type Workflow struct {
	api      API
	notifier Notifier
	log      *slog.Logger

	interval    time.Duration
	maxAttempts int

	mu     sync.Mutex
	phase  Phase
	epoch  uint64
	cancel context.CancelFunc
}

// Option adjusts workflow policy. Used by tests to shrink the poll clock.
type Option func(*Workflow)

// WithPollPolicy overrides the poll interval and attempt budget.
func WithPollPolicy(interval time.Duration, maxAttempts int) Option {
	return func(w *Workflow) {
		w.interval = interval
		w.maxAttempts = maxAttempts
	}
}

// NewWorkflow constructs a Workflow. A nil notifier is replaced with a no-op;
// a nil logger falls back to [slog.Default].
func NewWorkflow(api API, notifier Notifier, log *slog.Logger, opts ...Option) *Workflow {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = slog.Default()
	}
	w := &Workflow{
		api:         api,
		notifier:    notifier,
		log:         log,
		interval:    constants.PollInterval,
		maxAttempts: constants.PollMaxAttempts,
		phase:       PhaseIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Phase reports the workflow's current activity.
func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Cancel stops the active run, if any. The run's Generate call returns
// [ErrCancelled]; an in-flight status fetch completes but its result is
// discarded and no terminal notification fires.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.phase = PhaseIdle
}

/*
Generate runs one generation to completion.

Parameters:
  - req: generation payload. An empty CertificateNumber gets a fresh
    10-digit number assigned before submit.

Returns:
  - *Result: the terminal outcome (ISSUED, FAILED, or POLL_TIMEOUT). FAILED
    and POLL_TIMEOUT are results, not errors.
  - error: [ErrCancelled] when the run was cancelled, or a validation error
    when the payload was rejected before submit. An error means no outcome
    was produced.
*/
func (w *Workflow) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	runCtx, done := w.begin(ctx)
	defer done()

	if req.CertificateNumber == "" {
		req.CertificateNumber = certnum.New()
	}
	req.RecipientData = withRecipientShim(req.RecipientData)

	w.log.Info("submitting certificate generation",
		slog.String("certificate_number", req.CertificateNumber),
		slog.Int64("template_version_id", req.TemplateVersionID),
		slog.Bool("synchronous", req.Synchronous))

	cert, err := w.api.Generate(runCtx, req)
	if runCtx.Err() != nil {
		return nil, ErrCancelled
	}
	if err != nil {
		return w.finish(&Result{Outcome: OutcomeFailed, Err: err}), nil
	}

	switch cert.Status {
	case StatusIssued:
		return w.finish(&Result{Outcome: OutcomeIssued, Certificate: cert}), nil
	case StatusFailed:
		return w.finish(&Result{Outcome: OutcomeFailed, Certificate: cert,
			Err: errors.New("certificate: generation failed on submit")}), nil
	}

	return w.poll(runCtx, cert)
}

// poll re-fetches the record at a fixed interval until terminal or exhausted.
func (w *Workflow) poll(runCtx context.Context, cert *Certificate) (*Result, error) {
	w.setPhase(PhasePolling)

	// One timer handle reused across ticks; it is stopped on every exit path.
	timer := time.NewTimer(w.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		select {
		case <-runCtx.Done():
			return nil, ErrCancelled
		case <-timer.C:
		}

		latest, err := w.api.GetByID(runCtx, cert.ID)
		if runCtx.Err() != nil {
			// Cancelled mid-fetch: the fetch completed, its result is dropped.
			return nil, ErrCancelled
		}
		if err != nil {
			// A flaky tick spends an attempt but does not end the run.
			w.log.Warn("certificate status fetch failed",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
		} else {
			cert = latest
			switch cert.Status {
			case StatusIssued:
				w.log.Info("certificate issued",
					slog.String("certificate_number", cert.CertificateNumber),
					slog.Int("attempts", attempt))
				return w.finish(&Result{Outcome: OutcomeIssued, Certificate: cert, Attempts: attempt}), nil
			case StatusFailed:
				return w.finish(&Result{Outcome: OutcomeFailed, Certificate: cert, Attempts: attempt,
					Err: errors.New("certificate: generation failed")}), nil
			}
		}

		if attempt < w.maxAttempts {
			timer.Reset(w.interval)
		}
	}

	return w.finish(&Result{Outcome: OutcomePollTimeout, Certificate: cert, Attempts: w.maxAttempts}), nil
}

// begin cancels any prior run, installs this run's cancel handle, and moves
// the workflow into SUBMITTING. The returned done func releases the handle
// unless a newer run has already replaced it.
func (w *Workflow) begin(ctx context.Context) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.epoch++
	mine := w.epoch
	w.cancel = cancel
	w.phase = PhaseSubmitting
	w.mu.Unlock()

	return runCtx, func() {
		w.mu.Lock()
		// Only release state still owned by this run; a newer run may have
		// taken over already.
		if w.epoch == mine {
			w.cancel = nil
			w.phase = PhaseIdle
		}
		w.mu.Unlock()
		cancel()
	}
}

func (w *Workflow) setPhase(p Phase) {
	w.mu.Lock()
	w.phase = p
	w.mu.Unlock()
}

// finish fires the terminal notification for a completed run.
func (w *Workflow) finish(res *Result) *Result {
	switch res.Outcome {
	case OutcomeIssued:
		w.notifier.GenerationIssued(res.Certificate)
	case OutcomeFailed:
		w.notifier.GenerationFailed(res.Certificate, res.Err)
	case OutcomePollTimeout:
		w.notifier.GenerationTimedOut(res.Certificate, res.Attempts)
	}
	return res
}

// withRecipientShim returns a copy of the recipient data with the whole map
// duplicated under a nested "recipient" key. Template placeholders address
// fields both flat and via the recipient prefix; sending both keeps every
// published template rendering. The caller's map is never mutated.
func withRecipientShim(data map[string]any) map[string]any {
	merged := make(map[string]any, len(data)+1)
	nested := make(map[string]any, len(data))
	for k, v := range data {
		merged[k] = v
		nested[k] = v
	}
	merged["recipient"] = nested
	return merged
}
