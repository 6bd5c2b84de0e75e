package domain

import (
	"strings"
	"time"
)

// Failure kinds stored in InteractionRecord.Error.
const (
	FailureEmptyDescription   = "empty-description"
	FailureBackendExhausted   = "backend-exhausted"
	FailureNoCommandExtracted = "no-command-extracted"
	failureRejectedPrefix     = "rejected: "
)

// Feedback bounds.
const (
	MinFeedback = 1
	MaxFeedback = 5
)

// InteractionRecord is one generation attempt as persisted in history.
// A record is successful exactly when it carries a command and no error.
type InteractionRecord struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Command   string    `json:"command,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Backend   string    `json:"backend,omitempty"`
	System    string    `json:"system,omitempty"`
	Feedback  *int      `json:"feedback,omitempty"`
	Executed  bool      `json:"executed,omitempty"`
	ExitCode  *int      `json:"exit_code,omitempty"`
}

// NewSuccessRecord builds a record for an accepted command.
func NewSuccessRecord(id, prompt, command string, at time.Time) InteractionRecord {
	return InteractionRecord{
		ID:        id,
		Prompt:    prompt,
		Command:   command,
		Timestamp: at,
		Success:   true,
	}
}

// NewFailureRecord builds a record for a failed attempt. The failure kind must be non-empty.
func NewFailureRecord(id, prompt, failure string, at time.Time) InteractionRecord {
	if strings.TrimSpace(failure) == "" {
		failure = "unknown"
	}
	return InteractionRecord{
		ID:        id,
		Prompt:    prompt,
		Timestamp: at,
		Error:     failure,
	}
}

// RejectedFailure formats the error field for a policy rejection.
func RejectedFailure(reason RejectReason) string {
	return failureRejectedPrefix + string(reason)
}

// IsRejection reports whether the record failed validation.
func (r InteractionRecord) IsRejection() bool {
	return strings.HasPrefix(r.Error, failureRejectedPrefix)
}

// Validate enforces the success/command/error invariant.
func (r InteractionRecord) Validate() error {
	if r.ID == "" {
		return ErrInvalidRecord.WithMessage("missing id")
	}
	if r.Success {
		if r.Command == "" || r.Error != "" {
			return ErrInvalidRecord.WithMessagef("record %s: success requires a command and no error", r.ID)
		}
	} else if r.Command != "" || r.Error == "" {
		return ErrInvalidRecord.WithMessagef("record %s: failure requires an error and no command", r.ID)
	}
	if r.Feedback != nil && !ValidFeedback(*r.Feedback) {
		return ErrInvalidRecord.WithMessagef("record %s: feedback %d out of range", r.ID, *r.Feedback)
	}
	return nil
}

// Clone returns a deep copy.
func (r InteractionRecord) Clone() InteractionRecord {
	out := r
	if r.Feedback != nil {
		v := *r.Feedback
		out.Feedback = &v
	}
	if r.ExitCode != nil {
		v := *r.ExitCode
		out.ExitCode = &v
	}
	return out
}

// WithFeedback returns a copy carrying the rating.
func (r InteractionRecord) WithFeedback(rating int) (InteractionRecord, error) {
	if !ValidFeedback(rating) {
		return r, ErrInvalidFeedback.WithMessagef("rating %d not in %d-%d", rating, MinFeedback, MaxFeedback)
	}
	out := r.Clone()
	out.Feedback = &rating
	return out, nil
}

// WithExecution returns a copy marked as executed with the given exit code.
func (r InteractionRecord) WithExecution(exitCode int) InteractionRecord {
	out := r.Clone()
	out.Executed = true
	out.ExitCode = &exitCode
	return out
}

// ValidFeedback reports whether rating is within bounds.
func ValidFeedback(rating int) bool {
	return rating >= MinFeedback && rating <= MaxFeedback
}
