package domain

import (
	"fmt"
	"time"
)

// Accessors below fall back to package defaults for zero values so callers
// never have to repeat the defaulting logic.

// GetBackendName returns the configured backend, defaulting to ollama.
func (c *Config) GetBackendName() string {
	if c.Backend.Name == "" {
		return BackendOllama
	}
	return c.Backend.Name
}

// GetModel returns the model name for the configured backend.
func (c *Config) GetModel() string {
	if c.Backend.Model != "" {
		return c.Backend.Model
	}
	if model, ok := DefaultModels[c.GetBackendName()]; ok {
		return model
	}
	return ""
}

// GetMaxTokens returns the generation token cap.
func (c *Config) GetMaxTokens() int {
	if c.Backend.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.Backend.MaxTokens
}

// GetMaxRetries returns the number of backend attempts per request.
func (c *Config) GetMaxRetries() int {
	if c.Generation.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return c.Generation.MaxRetries
}

// GetRetryDelay returns the pause between backend attempts.
func (c *Config) GetRetryDelay() time.Duration {
	if c.Generation.RetryDelayMS <= 0 {
		return DefaultRetryDelay
	}
	return time.Duration(c.Generation.RetryDelayMS) * time.Millisecond
}

// GetBackendTimeout returns the per-attempt backend deadline.
func (c *Config) GetBackendTimeout() time.Duration {
	if c.Generation.TimeoutSeconds <= 0 {
		return DefaultBackendTimeout
	}
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}

// ShouldConfirmBeforeExecution checks if user confirmation is required before execution
func (c *Config) ShouldConfirmBeforeExecution() bool {
	return c.Execution.ConfirmBeforeExecute
}

// GetExecutionShell returns the configured shell for command execution
// Returns the default shell if not configured
func (c *Config) GetExecutionShell() string {
	if c.Execution.Shell == "" {
		return DefaultShell
	}
	return c.Execution.Shell
}

// GetExecutionTimeout returns the wall-clock limit for a spawned command.
func (c *Config) GetExecutionTimeout() time.Duration {
	if c.Execution.TimeoutSeconds <= 0 {
		return DefaultExecutionTimeout
	}
	return time.Duration(c.Execution.TimeoutSeconds) * time.Second
}

// GetHistoryBackend returns jsonl or sqlite.
func (c *Config) GetHistoryBackend() string {
	if c.History.Backend == "" {
		return HistoryBackendJSONL
	}
	return c.History.Backend
}

// ValidateConsistency checks the internal consistency of the configuration
func (c *Config) ValidateConsistency() error {
	if !IsKnownBackend(c.GetBackendName()) {
		return fmt.Errorf("unknown backend %q", c.Backend.Name)
	}
	switch c.GetHistoryBackend() {
	case HistoryBackendJSONL, HistoryBackendSQLite:
	default:
		return fmt.Errorf("unknown history backend %q", c.History.Backend)
	}
	if c.GetBackendName() != BackendOffline && c.GetModel() == "" {
		return fmt.Errorf("backend %s requires a model", c.GetBackendName())
	}
	return nil
}
