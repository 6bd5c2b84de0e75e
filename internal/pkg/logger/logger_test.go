package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn")

	l.Debug("hidden", nil)
	l.Info("hidden too", nil)
	l.Warn("history degraded", map[string]interface{}{"path": "/tmp/h.jsonl"})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "history degraded")
	assert.Contains(t, out, "path=/tmp/h.jsonl")
}

func TestLoggerErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug")

	l.Error("append failed", errors.New("disk full"), map[string]interface{}{"b": 2, "a": 1})

	out := buf.String()
	assert.Contains(t, out, "disk full")
	assert.Less(t, strings.Index(out, "a=1"), strings.Index(out, "b=2"))
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Error("ignored", errors.New("x"), nil)
	assert.NoError(t, l.Close())
}
