package domain

// Config mirrors ~/.cmdgen/config.yaml.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	Backend             BackendSettings    `yaml:"backend"`
	Generation          GenerationSettings `yaml:"generation"`
	Execution           ExecutionSettings  `yaml:"execution"`
	History             HistorySettings    `yaml:"history"`
	Security            SecuritySettings   `yaml:"security"`
}

// BackendSettings selects and tunes the inference backend.
type BackendSettings struct {
	Name        string  `yaml:"name"`
	Model       string  `yaml:"model"`
	Endpoint    string  `yaml:"endpoint"`
	AuthEnvVar  string  `yaml:"auth_env_var"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// GenerationSettings bounds backend invocation.
type GenerationSettings struct {
	MaxRetries     int `yaml:"max_retries"`
	RetryDelayMS   int `yaml:"retry_delay_ms"`
	TimeoutSeconds int `yaml:"timeout"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Shell                string `yaml:"shell"`
	ConfirmBeforeExecute bool   `yaml:"confirm_before_execute"`
	TimeoutSeconds       int    `yaml:"timeout"`
}

// HistorySettings picks the history store.
type HistorySettings struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Lock    bool   `yaml:"lock"`
}

// SecuritySettings points at the validation policy.
type SecuritySettings struct {
	PolicyFile string `yaml:"policy_file"`
}
