package helpers

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/cmdgen/internal/domain"
)

// Renderer prints pipeline results. Colours are only emitted when the
// writer is a terminal that supports them.
type Renderer struct {
	out io.Writer

	command lipgloss.Style
	label   lipgloss.Style
	good    lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	faint   lipgloss.Style
}

// NewRenderer creates a renderer bound to out.
func NewRenderer(out io.Writer) *Renderer {
	r := lipgloss.NewRenderer(out)
	return &Renderer{
		out:     out,
		command: r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		label:   r.NewStyle().Bold(true),
		good:    r.NewStyle().Foreground(lipgloss.Color("10")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("11")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("9")),
		faint:   r.NewStyle().Faint(true),
	}
}

// Record prints a generated command or the reason there is none.
func (r *Renderer) Record(rec domain.InteractionRecord) {
	if rec.Success {
		fmt.Fprintf(r.out, "%s\n  %s\n", r.label.Render("Generated command:"), r.command.Render(rec.Command))
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", r.bad.Render("No command:"), rec.Error)
	if rec.Detail != "" {
		fmt.Fprintf(r.out, "  %s\n", r.faint.Render(rec.Detail))
	}
}

// Outcome prints the result of an execution request.
func (r *Renderer) Outcome(o domain.ExecutionOutcome) {
	switch o.Status {
	case domain.ExecutionRejected:
		fmt.Fprintf(r.out, "%s %s\n", r.bad.Render("Refused:"), o.Reason)
		return
	case domain.ExecutionNotExecuted:
		fmt.Fprintf(r.out, "%s %s\n", r.warn.Render("Not executed:"), o.Reason)
		return
	}

	if o.Stdout != "" {
		fmt.Fprint(r.out, ensureNewline(o.Stdout))
	}
	if o.Stderr != "" {
		fmt.Fprint(r.out, r.faint.Render(ensureNewline(o.Stderr)))
	}
	summary := fmt.Sprintf("exit %d in %dms", o.ExitCode, o.DurationMS)
	if o.TimedOut {
		summary += ", timed out"
	}
	if o.Status == domain.ExecutionSucceeded {
		fmt.Fprintln(r.out, r.good.Render(summary))
	} else {
		fmt.Fprintln(r.out, r.bad.Render(summary))
	}
}

// Verdict prints a standalone validation result.
func (r *Renderer) Verdict(command string, v domain.Verdict) {
	if v.Accepted {
		fmt.Fprintf(r.out, "%s %s\n", r.good.Render("Accepted:"), command)
		return
	}
	fmt.Fprintf(r.out, "%s %s (%s)\n", r.bad.Render("Rejected:"), command, v.Err())
}

// DoctorReport prints one line per check.
func (r *Renderer) DoctorReport(report domain.HealthReport) {
	for _, check := range report.Checks {
		tag := "[" + strings.ToUpper(string(check.Status)) + "]"
		switch check.Status {
		case domain.HealthOK:
			tag = r.good.Render(tag)
		case domain.HealthWarn:
			tag = r.warn.Render(tag)
		default:
			tag = r.bad.Render(tag)
		}
		fmt.Fprintf(r.out, "%s %s - %s\n", tag, check.Name, check.Details)
	}
}

// HistoryLine prints a single record as one row.
func (r *Renderer) HistoryLine(rec domain.InteractionRecord) {
	status := r.good.Render("ok  ")
	text := rec.Command
	if !rec.Success {
		status = r.bad.Render("fail")
		text = rec.Error
	}
	extra := ""
	if rec.Executed && rec.ExitCode != nil {
		extra += fmt.Sprintf(" exit=%d", *rec.ExitCode)
	}
	if rec.Feedback != nil {
		extra += fmt.Sprintf(" rating=%d", *rec.Feedback)
	}
	fmt.Fprintf(r.out, "%s | %s | %s | %s%s\n",
		rec.Timestamp.Local().Format(domain.TimestampFormat),
		status,
		rec.Prompt,
		text,
		r.faint.Render(extra))
}

// Stats prints aggregated history statistics.
func (r *Renderer) Stats(stats HistoryStatistics, hints []string) {
	fmt.Fprintf(r.out, "Entries analyzed: %d\n", stats.Total)
	fmt.Fprintf(r.out, "Accepted: %d (%.1f%%)\n", stats.Accepted, CalculateSuccessRate(stats.Accepted, stats.Total))
	fmt.Fprintf(r.out, "Rejected: %d\nOther failures: %d\n", stats.Rejected, stats.Failed)
	fmt.Fprintf(r.out, "Executed: %d (%.1f%% exit 0)\n", stats.Executed, CalculateSuccessRate(stats.ExecutedOK, stats.Executed))
	if stats.Rated > 0 {
		fmt.Fprintf(r.out, "Average rating: %.2f from %d ratings\n", stats.AverageFeedback(), stats.Rated)
	}

	if len(stats.TopCommands) > 0 {
		fmt.Fprintln(r.out, r.label.Render("Top commands:"))
		for _, stat := range stats.TopCommands {
			fmt.Fprintf(r.out, "  %s (%d)\n", stat.Command, stat.Count)
		}
	}
	if len(stats.FailureKind) > 0 {
		fmt.Fprintln(r.out, r.label.Render("Failures:"))
		for _, stat := range CalculateTopCommands(stats.FailureKind, 0) {
			fmt.Fprintf(r.out, "  %s: %d\n", stat.Command, stat.Count)
		}
	}
	if len(hints) > 0 {
		fmt.Fprintln(r.out, r.label.Render("Undo hints:"))
		for _, hint := range hints {
			fmt.Fprintf(r.out, "  - %s\n", hint)
		}
	}
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
