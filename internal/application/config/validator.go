package config

import (
	"fmt"
	"strings"

	"github.com/doeshing/cmdgen/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	if err := validateBackend(cfg.Backend); err != nil {
		return err
	}
	if err := validateGeneration(cfg.Generation); err != nil {
		return err
	}
	if err := validateExecution(cfg.Execution); err != nil {
		return err
	}
	return nil
}

func validateBackend(b domain.BackendSettings) error {
	if b.Temperature < 0 || b.Temperature > 1 {
		return fmt.Errorf("backend.temperature must be within [0, 1], got %g", b.Temperature)
	}
	if b.MaxTokens < 0 {
		return fmt.Errorf("backend.max_tokens must be >= 0")
	}
	if b.Endpoint != "" && !strings.HasPrefix(b.Endpoint, "http://") && !strings.HasPrefix(b.Endpoint, "https://") {
		return fmt.Errorf("backend.endpoint must be an http(s) URL, got %s", b.Endpoint)
	}
	return nil
}

func validateGeneration(g domain.GenerationSettings) error {
	if g.MaxRetries < 1 {
		return fmt.Errorf("generation.max_retries must be >= 1")
	}
	if g.RetryDelayMS < 0 {
		return fmt.Errorf("generation.retry_delay_ms must be >= 0")
	}
	if g.TimeoutSeconds <= 0 {
		return fmt.Errorf("generation.timeout must be > 0")
	}
	return nil
}

func validateExecution(e domain.ExecutionSettings) error {
	if e.TimeoutSeconds <= 0 {
		return fmt.Errorf("execution.timeout must be > 0")
	}
	if strings.ContainsAny(e.Shell, " \t") {
		return fmt.Errorf("execution.shell must be a single executable, got %q", e.Shell)
	}
	return nil
}
