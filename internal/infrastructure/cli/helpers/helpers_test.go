package helpers

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/cmdgen/internal/domain"
)

func intp(v int) *int { return &v }

func sampleRecords() []domain.InteractionRecord {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	ok1 := domain.NewSuccessRecord("1", "list", "ls -la", now)
	ok1.Executed, ok1.ExitCode, ok1.Feedback = true, intp(0), intp(5)
	ok2 := domain.NewSuccessRecord("2", "list again", "ls -la", now)
	ok3 := domain.NewSuccessRecord("3", "remove build", "rm -r build", now)
	ok3.Executed, ok3.ExitCode, ok3.Feedback = true, intp(1), intp(2)
	rejected := domain.NewFailureRecord("4", "wipe", domain.RejectedFailure(domain.RejectDangerousPattern), now)
	failed := domain.NewFailureRecord("5", "???", domain.FailureNoCommandExtracted, now)
	return []domain.InteractionRecord{ok1, ok2, ok3, rejected, failed}
}

func TestAnalyzeHistory(t *testing.T) {
	stats := AnalyzeHistory(sampleRecords(), 1)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Accepted)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, stats.Executed)
	assert.Equal(t, 1, stats.ExecutedOK)
	assert.InDelta(t, 3.5, stats.AverageFeedback(), 1e-9)
	assert.Equal(t, []CommandStatistic{{Command: "ls -la", Count: 2}}, stats.TopCommands)
	assert.Equal(t, 1, stats.FailureKind["rejected: dangerous-pattern"])
}

func TestCalculateTopCommandsOrdersByCountThenName(t *testing.T) {
	got := CalculateTopCommands(map[string]int{"pwd": 2, "ls": 2, "df -h": 5}, 0)
	assert.Equal(t, []CommandStatistic{{"df -h", 5}, {"ls", 2}, {"pwd", 2}}, got)
}

func TestCalculateSuccessRate(t *testing.T) {
	assert.Zero(t, CalculateSuccessRate(3, 0))
	assert.InDelta(t, 50.0, CalculateSuccessRate(1, 2), 1e-9)
}

func TestDeriveUndoHintsOnlyForExecuted(t *testing.T) {
	hints := DeriveUndoHints(sampleRecords())
	assert.Len(t, hints, 1)
	assert.Contains(t, hints[0], "backups")
}

func TestRendererWithoutTerminalIsPlain(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Record(sampleRecords()[0])
	r.Record(sampleRecords()[3])
	r.Outcome(domain.ExecutionOutcome{Status: domain.ExecutionNotExecuted, Reason: "declined by user"})
	r.Outcome(domain.ExecutionOutcome{Status: domain.ExecutionFailed, Ran: true, ExitCode: 2, Stdout: "x", DurationMS: 3})

	out := buf.String()
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "Generated command:\n  ls -la\n")
	assert.Contains(t, out, "No command: rejected: dangerous-pattern")
	assert.Contains(t, out, "Not executed: declined by user")
	assert.True(t, strings.HasSuffix(out, "x\nexit 2 in 3ms\n"), out)
}

func TestSpinnerInactiveOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)
	s.SetLabel("invoking")
	s.Start()
	s.Stop()
	assert.Empty(t, buf.String())
}

func TestPromptHelpers(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("skynet\ngemini\n\nY\nllama3.1\n"))

	assert.Equal(t, "gemini", PromptForChoice(&out, reader, "Backend", []string{"ollama", "gemini"}, "ollama"))
	assert.Contains(t, out.String(), "Please choose one of: ollama, gemini")
	assert.False(t, PromptForYesNo(&out, reader, "Confirm?", false))
	assert.True(t, PromptForYesNo(&out, reader, "Confirm?", false))
	assert.Equal(t, "llama3.1", PromptForString(&out, reader, "Model", "llama3.2"))
	assert.Equal(t, "llama3.2", PromptForString(&out, reader, "Model", "llama3.2"))
}
