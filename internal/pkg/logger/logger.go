// Package logger implements ports.Logger on top of charmbracelet/log.
package logger

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/doeshing/cmdgen/internal/domain"
)

// Options configures a Logger.
type Options struct {
	Level string
	// File, when set, receives log output instead of stderr.
	File   string
	Prefix string
}

// Logger adapts charmbracelet/log to the field-map logging port.
type Logger struct {
	base   *log.Logger
	closer io.Closer
}

// New creates a Logger. An unknown level falls back to warn so that normal
// runs only surface degraded conditions.
func New(opts Options) (*Logger, error) {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer
	)
	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.SecureFilePermissions)
		if err != nil {
			return nil, err
		}
		out, closer = file, file
	}

	base := log.NewWithOptions(out, log.Options{
		Level:  ParseLevel(opts.Level),
		Prefix: opts.Prefix,
	})
	base.SetTimeFormat("")
	base.SetStyles(styles())
	return &Logger{base: base, closer: closer}, nil
}

// NewWriter creates a Logger writing to w, mainly for tests.
func NewWriter(w io.Writer, level string) *Logger {
	base := log.NewWithOptions(w, log.Options{Level: ParseLevel(level)})
	base.SetTimeFormat("")
	return &Logger{base: base}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return NewWriter(io.Discard, "fatal")
}

// ParseLevel converts a level name to a log level.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
	}
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.base.Debug(msg, keyvals(fields)...)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.base.Info(msg, keyvals(fields)...)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.base.Warn(msg, keyvals(fields)...)
}

func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	kv := keyvals(fields)
	if err != nil {
		kv = append([]interface{}{"error", err}, kv...)
	}
	l.base.Error(msg, kv...)
}

// keyvals flattens fields in key order so output is stable.
func keyvals(fields map[string]interface{}) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, k, fields[k])
	}
	return out
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	s.Keys["command"] = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	s.Keys["stage"] = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	s.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	return s
}
