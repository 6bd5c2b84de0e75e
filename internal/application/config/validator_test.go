package config

import (
	"testing"

	"github.com/doeshing/cmdgen/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		Backend:    domain.BackendSettings{Name: "ollama", Model: "llama3.2", Endpoint: "http://localhost:11434", Temperature: 0.7},
		Generation: domain.GenerationSettings{MaxRetries: 3, RetryDelayMS: 1000, TimeoutSeconds: 30},
		Execution:  domain.ExecutionSettings{Shell: "sh", TimeoutSeconds: 60},
		History:    domain.HistorySettings{Backend: "jsonl"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*domain.Config) {}},
		{name: "zero temperature", mutate: func(c *domain.Config) { c.Backend.Temperature = 0 }},
		{name: "temperature too high", mutate: func(c *domain.Config) { c.Backend.Temperature = 1.5 }, wantErr: true},
		{name: "negative temperature", mutate: func(c *domain.Config) { c.Backend.Temperature = -0.1 }, wantErr: true},
		{name: "no retries", mutate: func(c *domain.Config) { c.Generation.MaxRetries = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *domain.Config) { c.Generation.TimeoutSeconds = 0 }, wantErr: true},
		{name: "zero exec timeout", mutate: func(c *domain.Config) { c.Execution.TimeoutSeconds = 0 }, wantErr: true},
		{name: "unknown backend", mutate: func(c *domain.Config) { c.Backend.Name = "skynet" }, wantErr: true},
		{name: "unknown history", mutate: func(c *domain.Config) { c.History.Backend = "csv" }, wantErr: true},
		{name: "bad endpoint", mutate: func(c *domain.Config) { c.Backend.Endpoint = "localhost:11434" }, wantErr: true},
		{name: "shell with args", mutate: func(c *domain.Config) { c.Execution.Shell = "bash -x" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
