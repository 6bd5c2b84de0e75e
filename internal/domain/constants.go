package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Backend names
const (
	BackendOllama    = "ollama"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendGemini    = "gemini"
	BackendOffline   = "offline"
)

// KnownBackends lists every backend the factory can build.
var KnownBackends = []string{BackendOllama, BackendOpenAI, BackendAnthropic, BackendGemini, BackendOffline}

// DefaultModels maps a backend to the model used when none is configured.
var DefaultModels = map[string]string{
	BackendOllama:    "llama3.2",
	BackendOpenAI:    "gpt-4o-mini",
	BackendAnthropic: "claude-3-5-haiku-latest",
	BackendGemini:    "gemini-2.0-flash",
}

// IsKnownBackend reports whether name is a supported backend.
func IsKnownBackend(name string) bool {
	for _, b := range KnownBackends {
		if b == name {
			return true
		}
	}
	return false
}

// History store kinds
const (
	HistoryBackendJSONL  = "jsonl"
	HistoryBackendSQLite = "sqlite"
)

// Generation defaults
const (
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = time.Second
	DefaultBackendTimeout = 30 * time.Second
	DefaultTemperature    = 0.7
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 256
)

// Execution defaults
const (
	DefaultShell            = "sh"
	DefaultExecutionTimeout = 60 * time.Second
	// ConfirmationToken is the only answer accepted as consent to execute.
	ConfirmationToken = "yes"
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultProbeTimeout bounds doctor reachability checks
	DefaultProbeTimeout = 3 * time.Second
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 10
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
