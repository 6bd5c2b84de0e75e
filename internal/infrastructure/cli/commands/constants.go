package commands

// History display defaults
const (
	DefaultHistoryLimit = 10
	DefaultTopCommands  = 5
)

// Export formats
const (
	FormatJSONL = "jsonl"
	FormatYAML  = "yaml"
)

// Error messages
const (
	ErrHistoryStoreUnavailable  = "history store unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrKeyRequired              = "--key is required"
)

// Success messages
const (
	MsgConfigurationValid = "Configuration valid"
	MsgNoHistoryRecorded  = "No history recorded yet."
	MsgRunWithExecute     = "Run again with --execute to run it."
)
