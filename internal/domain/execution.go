package domain

import "strings"

// ExecutionStatus is the terminal state of an execution request.
type ExecutionStatus string

const (
	ExecutionSucceeded   ExecutionStatus = "succeeded"
	ExecutionFailed      ExecutionStatus = "failed"
	ExecutionNotExecuted ExecutionStatus = "not-executed"
	ExecutionRejected    ExecutionStatus = "rejected"
)

// ExecutionOutcome reports what happened to a command handed to the gate.
type ExecutionOutcome struct {
	Status     ExecutionStatus
	Ran        bool
	ExitCode   int
	Stdout     string
	Stderr     string
	DurationMS int64
	TimedOut   bool
	// Reason explains a rejection or a declined confirmation.
	Reason string
}

// CommandResult is the raw result of running a process.
type CommandResult struct {
	ExitCode   int
	Stdout     string
	Stderr     string
	DurationMS int64
	TimedOut   bool
}

// IsConsent reports whether a confirmation answer approves execution.
// Only the word "yes" counts; "y", "ok" and the empty answer do not.
func IsConsent(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), ConfirmationToken)
}
