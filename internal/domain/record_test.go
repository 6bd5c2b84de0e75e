package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/doeshing/cmdgen/internal/domain"
)

func TestInteractionRecord_Validate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bad := 9

	tests := []struct {
		name    string
		record  domain.InteractionRecord
		wantErr bool
	}{
		{"success", domain.NewSuccessRecord("a", "list files", "ls -la", now), false},
		{"failure", domain.NewFailureRecord("b", "", domain.FailureEmptyDescription, now), false},
		{"rejection", domain.NewFailureRecord("c", "wipe", domain.RejectedFailure(domain.RejectDangerousPattern), now), false},
		{"success without command", domain.InteractionRecord{ID: "d", Success: true}, true},
		{"failure with command", domain.InteractionRecord{ID: "e", Command: "ls", Error: "x"}, true},
		{"failure without error", domain.InteractionRecord{ID: "f"}, true},
		{"missing id", domain.InteractionRecord{Success: true, Command: "ls"}, true},
		{"feedback out of range", domain.InteractionRecord{ID: "g", Success: true, Command: "ls", Feedback: &bad}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidRecord) {
					t.Fatalf("expected ErrInvalidRecord, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestInteractionRecord_WithFeedback(t *testing.T) {
	rec := domain.NewSuccessRecord("a", "p", "ls", time.Now())

	rated, err := rec.WithFeedback(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rated.Feedback == nil || *rated.Feedback != 4 {
		t.Fatalf("feedback not applied: %+v", rated.Feedback)
	}
	if rec.Feedback != nil {
		t.Fatal("original record must not change")
	}

	if _, err := rec.WithFeedback(0); !errors.Is(err, domain.ErrInvalidFeedback) {
		t.Fatalf("expected ErrInvalidFeedback, got %v", err)
	}
}

func TestInteractionRecord_CloneIsDeep(t *testing.T) {
	rec := domain.NewSuccessRecord("a", "p", "ls", time.Now()).WithExecution(2)
	clone := rec.Clone()
	*clone.ExitCode = 7

	if *rec.ExitCode != 2 {
		t.Fatalf("clone shares exit code pointer")
	}
	if !rec.Executed {
		t.Fatal("expected executed flag")
	}
}

func TestRecord_IsRejection(t *testing.T) {
	rej := domain.NewFailureRecord("a", "p", domain.RejectedFailure(domain.RejectMultiStatement), time.Now())
	if !rej.IsRejection() {
		t.Fatal("expected rejection")
	}
	if rej.Error != "rejected: multi-statement" {
		t.Fatalf("error = %q", rej.Error)
	}
	other := domain.NewFailureRecord("b", "p", domain.FailureBackendExhausted, time.Now())
	if other.IsRejection() {
		t.Fatal("backend failure is not a rejection")
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	cause := errors.New("connection refused")
	err := domain.ErrBackendExhausted.Wrap(domain.ErrBackendUnavailable.Wrap(cause))

	if !errors.Is(err, domain.ErrBackendExhausted) {
		t.Fatal("expected exhausted")
	}
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatal("expected wrapped unavailable")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected root cause")
	}
	if errors.Is(err, domain.ErrBackendTimeout) {
		t.Fatal("unexpected timeout match")
	}
}

func TestOSContext_String(t *testing.T) {
	if got := (domain.OSContext{Platform: "Linux", Distribution: "Ubuntu 22.04"}).String(); got != "Linux (Ubuntu 22.04)" {
		t.Errorf("got %q", got)
	}
	if got := (domain.OSContext{}).String(); got != "unknown" {
		t.Errorf("got %q", got)
	}
}

func TestIsConsent(t *testing.T) {
	for _, answer := range []string{"yes", "YES", " yes\n"} {
		if !domain.IsConsent(answer) {
			t.Errorf("%q should be consent", answer)
		}
	}
	for _, answer := range []string{"", "y", "no", "yes please", "ok"} {
		if domain.IsConsent(answer) {
			t.Errorf("%q should not be consent", answer)
		}
	}
}
