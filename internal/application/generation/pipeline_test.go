package generation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/cmdgen/internal/application/prompt"
	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/infrastructure/ai"
	"github.com/doeshing/cmdgen/internal/infrastructure/security"
	"github.com/doeshing/cmdgen/internal/pkg/logger"
	"github.com/doeshing/cmdgen/internal/ports"
)

var fixedTime = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newPipeline(t *testing.T, backend ports.Backend, history *memHistory) *Pipeline {
	t.Helper()
	policy, err := security.DefaultPolicy()
	if err != nil {
		t.Fatalf("DefaultPolicy error: %v", err)
	}
	return &Pipeline{
		Composer:    prompt.MustDefault(),
		Backend:     backend,
		Validator:   security.NewValidator(policy),
		History:     history,
		Context:     stubCollector{osCtx: domain.OSContext{Platform: "Linux", Distribution: "Test OS"}},
		Logger:      logger.NewNop(),
		Temperature: 0.7,
		MaxTokens:   64,
		Clock:       func() time.Time { return fixedTime },
		NewID:       func() string { return "rec-1" },
	}
}

func TestGenerateAcceptsWhitelistedCommand(t *testing.T) {
	history := &memHistory{}
	backend := &stubBackend{responses: []string{"ls -la"}}
	p := newPipeline(t, backend, history)

	var stages []Stage
	p.OnStage = func(s Stage) { stages = append(stages, s) }

	rec, err := p.Generate(context.Background(), "list files in the current directory")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !rec.Success || rec.Command != "ls -la" || rec.Error != "" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.ID != "rec-1" || !rec.Timestamp.Equal(fixedTime) {
		t.Fatalf("id/time not applied: %+v", rec)
	}
	if rec.Backend != "stub" || rec.System != "Linux (Test OS)" {
		t.Fatalf("unexpected provenance %+v", rec)
	}
	if len(history.records) != 1 || history.records[0].Command != "ls -la" {
		t.Fatalf("record not appended: %+v", history.records)
	}
	if !strings.Contains(backend.lastInstruction, "list files in the current directory") {
		t.Fatalf("instruction missing description: %q", backend.lastInstruction)
	}
	want := []Stage{StageComposing, StageInvoking, StageExtracting, StageValidating, StageAccepted}
	if !reflect.DeepEqual(stages, want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
}

func TestGenerateRejectsDangerousCommand(t *testing.T) {
	history := &memHistory{}
	p := newPipeline(t, &stubBackend{responses: []string{"rm -rf /"}}, history)

	rec, err := p.Generate(context.Background(), "free up all space")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if rec.Success || rec.Command != "" {
		t.Fatalf("dangerous command must not succeed: %+v", rec)
	}
	if rec.Error != "rejected: dangerous-pattern" {
		t.Fatalf("unexpected error kind %q", rec.Error)
	}
	if !strings.Contains(rec.Detail, "rm -rf /") {
		t.Fatalf("candidate should be kept in detail: %q", rec.Detail)
	}
	if len(history.records) != 1 || history.records[0].Success {
		t.Fatalf("rejection not recorded: %+v", history.records)
	}
}

func TestGenerateRejectsMultiStatement(t *testing.T) {
	p := newPipeline(t, &stubBackend{responses: []string{"ls; cat /etc/passwd"}}, &memHistory{})

	rec, err := p.Generate(context.Background(), "list and show passwords")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if rec.Error != "rejected: multi-statement" {
		t.Fatalf("unexpected error kind %q", rec.Error)
	}
}

func TestGenerateBlankBackendExhaustsRetries(t *testing.T) {
	history := &memHistory{}
	backend := &stubBackend{responses: []string{"", "", ""}}
	retry := ai.NewRetryClient(backend, ai.RetryPolicy{MaxRetries: 3, Delay: time.Millisecond, Timeout: time.Second}, logger.NewNop())
	p := newPipeline(t, retry, history)

	rec, err := p.Generate(context.Background(), "list files")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if rec.Success || rec.Error != domain.FailureBackendExhausted {
		t.Fatalf("expected backend-exhausted, got %+v", rec)
	}
	if backend.calls != 3 || retry.Attempts() != 3 {
		t.Fatalf("expected 3 attempts, got calls=%d attempts=%d", backend.calls, retry.Attempts())
	}
	if len(history.records) != 1 {
		t.Fatalf("failure not recorded")
	}
}

func TestGenerateNothingExtractable(t *testing.T) {
	p := newPipeline(t, &stubBackend{responses: []string{"```\nbash\n```"}}, &memHistory{})

	rec, err := p.Generate(context.Background(), "list files")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if rec.Error != domain.FailureNoCommandExtracted {
		t.Fatalf("expected no-command-extracted, got %q", rec.Error)
	}
}

func TestGenerateEmptyDescription(t *testing.T) {
	history := &memHistory{}
	backend := &stubBackend{responses: []string{"ls"}}
	p := newPipeline(t, backend, history)

	rec, err := p.Generate(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if rec.Error != domain.FailureEmptyDescription {
		t.Fatalf("expected empty-description, got %q", rec.Error)
	}
	if backend.calls != 0 {
		t.Fatal("backend must not be invoked for an empty description")
	}
	if len(history.records) != 1 {
		t.Fatal("empty description must still be recorded")
	}
}

func TestGenerateDegradesWhenHistoryFails(t *testing.T) {
	history := &memHistory{err: domain.ErrHistoryPersistence.WithMessage("disk full")}
	p := newPipeline(t, &stubBackend{responses: []string{"pwd"}}, history)

	rec, err := p.Generate(context.Background(), "where am i")
	if err != nil {
		t.Fatalf("history failure must not fail generation: %v", err)
	}
	if !rec.Success || rec.Command != "pwd" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestGenerateCancelledAppendsNothing(t *testing.T) {
	history := &memHistory{}
	ctx, cancel := context.WithCancel(context.Background())
	backend := &stubBackend{invoke: func(ctx context.Context) (string, error) {
		cancel()
		return "", ctx.Err()
	}}
	p := newPipeline(t, backend, history)

	_, err := p.Generate(ctx, "list files")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(history.records) != 0 {
		t.Fatalf("cancelled generation must not be recorded: %+v", history.records)
	}

	_, err = p.Generate(ctx, "list files")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled before start, got %v", err)
	}
}

func TestGenerateMissingDependency(t *testing.T) {
	p := &Pipeline{}
	_, err := p.Generate(context.Background(), "list files")
	if !errors.Is(err, domain.ErrMissingDependency) {
		t.Fatalf("expected ErrMissingDependency, got %v", err)
	}
}

type stubBackend struct {
	responses       []string
	invoke          func(context.Context) (string, error)
	calls           int
	lastInstruction string
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Invoke(ctx context.Context, req ports.BackendRequest) (string, error) {
	s.calls++
	s.lastInstruction = req.Instruction
	if s.invoke != nil {
		return s.invoke(ctx)
	}
	if len(s.responses) == 0 {
		return "", domain.ErrBackendUnavailable
	}
	out := s.responses[0]
	s.responses = s.responses[1:]
	return out, nil
}

type stubCollector struct {
	osCtx domain.OSContext
}

func (s stubCollector) Collect(context.Context) (domain.OSContext, error) {
	return s.osCtx, nil
}

type memHistory struct {
	records []domain.InteractionRecord
	err     error
}

func (m *memHistory) Append(_ context.Context, rec domain.InteractionRecord) error {
	if m.err != nil {
		return m.err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	m.records = append(m.records, rec.Clone())
	return nil
}

func (m *memHistory) LoadAll(context.Context) ([]domain.InteractionRecord, error) {
	return m.records, m.err
}

func (m *memHistory) UpdateLastFeedback(context.Context, int) error { return m.err }

func (m *memHistory) RecordExecution(context.Context, string, int) error { return m.err }

func (m *memHistory) Path() string { return "memory" }
