// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package certificate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/certrix/internal/core/certificate"
	"github.com/taibuivan/certrix/pkg/certnum"
)

// stubAPI scripts the submit status and a fetch status sequence; the last
// fetch status repeats forever.
type stubAPI struct {
	mu           sync.Mutex
	submitStatus certificate.Status
	submitPlan   []certificate.Status // when set, consumed one per submit
	submits      int
	fetchPlan    []certificate.Status
	fetches      int
	lastRequest  certificate.GenerateRequest
	fetchGate    chan struct{} // when non-nil, each fetch waits on it
}

func (s *stubAPI) Generate(_ context.Context, req certificate.GenerateRequest) (*certificate.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRequest = req
	s.submits++
	status := s.submitStatus
	if len(s.submitPlan) > 0 {
		status = s.submitPlan[len(s.submitPlan)-1]
		if s.submits <= len(s.submitPlan) {
			status = s.submitPlan[s.submits-1]
		}
	}
	return &certificate.Certificate{
		ID:                42,
		CertificateNumber: req.CertificateNumber,
		Status:            status,
	}, nil
}

func (s *stubAPI) GetByID(_ context.Context, id int64) (*certificate.Certificate, error) {
	if s.fetchGate != nil {
		<-s.fetchGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	status := s.fetchPlan[len(s.fetchPlan)-1]
	if s.fetches <= len(s.fetchPlan) {
		status = s.fetchPlan[s.fetches-1]
	}
	return &certificate.Certificate{ID: id, CertificateNumber: "1000000042", Status: status}, nil
}

func (s *stubAPI) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// recorder captures terminal notifications.
type recorder struct {
	mu       sync.Mutex
	issued   int
	failed   int
	timedOut int
	attempts int
}

func (r *recorder) GenerationIssued(*certificate.Certificate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
}

func (r *recorder) GenerationFailed(*certificate.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
}

func (r *recorder) GenerationTimedOut(_ *certificate.Certificate, attempts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timedOut++
	r.attempts = attempts
}

func (r *recorder) counts() (issued, failed, timedOut int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.issued, r.failed, r.timedOut
}

func fastWorkflow(api certificate.API, notifier certificate.Notifier, maxAttempts int) *certificate.Workflow {
	return certificate.NewWorkflow(api, notifier, nil,
		certificate.WithPollPolicy(time.Millisecond, maxAttempts))
}

func asyncRequest() certificate.GenerateRequest {
	return certificate.GenerateRequest{
		TemplateVersionID: 7,
		RecipientData:     map[string]any{"name": "Ana"},
	}
}

func TestGenerate_ExhaustsBudgetThenTimesOut(t *testing.T) {
	api := &stubAPI{submitStatus: certificate.StatusPending, fetchPlan: []certificate.Status{certificate.StatusPending}}
	notes := &recorder{}
	w := fastWorkflow(api, notes, 30)

	res, err := w.Generate(context.Background(), asyncRequest())
	require.NoError(t, err)

	assert.Equal(t, certificate.OutcomePollTimeout, res.Outcome)
	assert.Equal(t, 30, res.Attempts)
	assert.Equal(t, 30, api.fetchCount())

	// No 31st fetch after the run ended.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 30, api.fetchCount())
	assert.Equal(t, certificate.PhaseIdle, w.Phase())

	_, _, timedOut := notes.counts()
	assert.Equal(t, 1, timedOut)
	assert.Equal(t, 30, notes.attempts)
}

func TestGenerate_TerminalStatusStopsPolling(t *testing.T) {
	api := &stubAPI{
		submitStatus: certificate.StatusPending,
		fetchPlan: []certificate.Status{
			certificate.StatusPending,
			certificate.StatusPending,
			certificate.StatusIssued,
		},
	}
	notes := &recorder{}
	w := fastWorkflow(api, notes, 30)

	res, err := w.Generate(context.Background(), asyncRequest())
	require.NoError(t, err)

	assert.Equal(t, certificate.OutcomeIssued, res.Outcome)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, api.fetchCount())

	// Timer is gone: no further fetches.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, api.fetchCount())
	assert.Equal(t, certificate.PhaseIdle, w.Phase())

	issued, _, _ := notes.counts()
	assert.Equal(t, 1, issued)
}

// The operator scenario: queued submit, PROCESSING on the first poll, ISSUED
// on the second.
func TestGenerate_AsyncScenario(t *testing.T) {
	api := &stubAPI{
		submitStatus: certificate.StatusPending,
		fetchPlan: []certificate.Status{
			certificate.StatusProcessing,
			certificate.StatusIssued,
		},
	}
	w := fastWorkflow(api, nil, 30)

	res, err := w.Generate(context.Background(), asyncRequest())
	require.NoError(t, err)

	assert.Equal(t, certificate.OutcomeIssued, res.Outcome)
	assert.Equal(t, 2, api.fetchCount())
}

func TestGenerate_SynchronousSkipsPolling(t *testing.T) {
	api := &stubAPI{submitStatus: certificate.StatusIssued, fetchPlan: []certificate.Status{certificate.StatusPending}}
	notes := &recorder{}
	w := fastWorkflow(api, notes, 30)

	req := asyncRequest()
	req.Synchronous = true
	res, err := w.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, certificate.OutcomeIssued, res.Outcome)
	assert.Zero(t, api.fetchCount())

	issued, _, _ := notes.counts()
	assert.Equal(t, 1, issued)
}

func TestGenerate_FailedSubmitIsTerminal(t *testing.T) {
	api := &stubAPI{submitStatus: certificate.StatusFailed, fetchPlan: []certificate.Status{certificate.StatusPending}}
	notes := &recorder{}
	w := fastWorkflow(api, notes, 30)

	res, err := w.Generate(context.Background(), asyncRequest())
	require.NoError(t, err)

	assert.Equal(t, certificate.OutcomeFailed, res.Outcome)
	require.Error(t, res.Err)
	assert.Zero(t, api.fetchCount())

	_, failed, _ := notes.counts()
	assert.Equal(t, 1, failed)
}

func TestGenerate_AssignsNumberAndRecipientShim(t *testing.T) {
	api := &stubAPI{submitStatus: certificate.StatusIssued, fetchPlan: []certificate.Status{certificate.StatusPending}}
	w := fastWorkflow(api, nil, 30)

	caller := map[string]any{"name": "Ana", "email": "ana@acme.test"}
	_, err := w.Generate(context.Background(), certificate.GenerateRequest{
		TemplateVersionID: 7,
		RecipientData:     caller,
	})
	require.NoError(t, err)

	sent := api.lastRequest
	assert.True(t, certnum.Valid(sent.CertificateNumber), "number %q", sent.CertificateNumber)

	nested, ok := sent.RecipientData["recipient"].(map[string]any)
	require.True(t, ok, "recipient shim missing")
	assert.Equal(t, "Ana", nested["name"])
	assert.Equal(t, "Ana", sent.RecipientData["name"])

	// Caller's map stays untouched.
	assert.NotContains(t, caller, "recipient")
}

func TestGenerate_ExplicitNumberIsKept(t *testing.T) {
	api := &stubAPI{submitStatus: certificate.StatusIssued, fetchPlan: []certificate.Status{certificate.StatusPending}}
	w := fastWorkflow(api, nil, 30)

	req := asyncRequest()
	req.CertificateNumber = "9123456789"
	_, err := w.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "9123456789", api.lastRequest.CertificateNumber)
}

func TestCancel_DiscardsInFlightRun(t *testing.T) {
	api := &stubAPI{
		submitStatus: certificate.StatusPending,
		fetchPlan:    []certificate.Status{certificate.StatusIssued},
		fetchGate:    make(chan struct{}),
	}
	notes := &recorder{}
	w := fastWorkflow(api, notes, 30)

	results := make(chan error, 1)
	go func() {
		_, err := w.Generate(context.Background(), asyncRequest())
		results <- err
	}()

	// Let the run reach its in-flight fetch, then cancel and release the
	// fetch afterwards: the completed fetch result must be discarded.
	time.Sleep(10 * time.Millisecond)
	w.Cancel()
	close(api.fetchGate)

	select {
	case err := <-results:
		assert.ErrorIs(t, err, certificate.ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("cancelled run did not return")
	}

	assert.Equal(t, certificate.PhaseIdle, w.Phase())
	issued, failed, timedOut := notes.counts()
	assert.Zero(t, issued+failed+timedOut, "cancelled run must not notify")
}

func TestGenerate_NewRunCancelsPrior(t *testing.T) {
	api := &stubAPI{
		submitPlan: []certificate.Status{
			certificate.StatusPending, // first run polls until cancelled
			certificate.StatusIssued,  // second run issues at submit
		},
		fetchPlan: []certificate.Status{certificate.StatusPending},
	}
	w := fastWorkflow(api, nil, 1000)

	first := make(chan error, 1)
	go func() {
		_, err := w.Generate(context.Background(), asyncRequest())
		first <- err
	}()
	time.Sleep(10 * time.Millisecond)

	// The second run takes over the single poll slot; the prior run must be
	// cancelled rather than left ticking alongside it.
	res, err := w.Generate(context.Background(), asyncRequest())

	select {
	case firstErr := <-first:
		assert.ErrorIs(t, firstErr, certificate.ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("first run did not get cancelled")
	}
	require.NoError(t, err)
	assert.Equal(t, certificate.OutcomeIssued, res.Outcome)
}
