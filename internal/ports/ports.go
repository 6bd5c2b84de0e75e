// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The generation pipeline and the execution gate only
// ever see these interfaces, so backends, history stores, and the process runner
// can be swapped without touching application code.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Backend, HistoryStore)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/cmdgen/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.cmdgen/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ContextCollector reports the platform the generated command should target.
type ContextCollector interface {
	Collect(context.Context) (domain.OSContext, error)
}

// BackendRequest carries one fully composed instruction to a backend.
type BackendRequest struct {
	Instruction string
	Temperature float64
	MaxTokens   int
}

// Backend is a text-generation service. Failures are domain errors of kind
// backend-unavailable, backend-timeout or backend-malformed.
type Backend interface {
	Name() string
	Invoke(context.Context, BackendRequest) (string, error)
}

// BackendFactory builds the backend named in configuration.
type BackendFactory interface {
	ForConfig(domain.Config) (Backend, error)
}

// HealthChecker is implemented by backends that can probe their own reachability.
type HealthChecker interface {
	Check(context.Context) error
}

// PromptComposer turns a description and platform into the instruction text.
type PromptComposer interface {
	Compose(description string, osContext domain.OSContext) (string, error)
}

// SafetyValidator decides whether a command may ever be executed.
// Implementations must be pure: the same command always yields the same verdict.
type SafetyValidator interface {
	Validate(command string) domain.Verdict
}

// HistoryStore persists interaction records. Stores hand out copies; records
// are only amended through the targeted feedback and execution operations.
type HistoryStore interface {
	Append(context.Context, domain.InteractionRecord) error
	LoadAll(context.Context) ([]domain.InteractionRecord, error)
	UpdateLastFeedback(ctx context.Context, rating int) error
	RecordExecution(ctx context.Context, id string, exitCode int) error
	Path() string
}

// CommandRunner runs one already-validated command in the configured shell.
// A nonzero exit is reported in the result, not as an error.
type CommandRunner interface {
	Run(ctx context.Context, command string) (domain.CommandResult, error)
}

// ConfirmationPrompter asks the user to approve execution of a command.
// Only the exact answer "yes" counts as consent.
type ConfirmationPrompter interface {
	Confirm(command string) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
