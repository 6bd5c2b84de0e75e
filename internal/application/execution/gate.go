// Package execution runs validated commands behind explicit confirmation.
package execution

import (
	"context"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/ports"
)

// Reasons reported on outcomes that never ran.
const (
	ReasonDeclined           = "declined by user"
	ReasonNoPrompter         = "confirmation required but no interactive prompt is available"
	ReasonConfirmationFailed = "confirmation could not be read"
	ReasonInterrupted        = "interrupted"
)

// Request describes one execution attempt.
type Request struct {
	Command string
	// Confirmed skips the prompt when the caller already has consent.
	Confirmed bool
	// RecordID, when set, receives the execution outcome in history.
	RecordID string
}

// Gate re-validates, confirms and runs a command exactly once.
type Gate struct {
	Validator ports.SafetyValidator
	Runner    ports.CommandRunner
	Prompter  ports.ConfirmationPrompter
	History   ports.HistoryStore
	Logger    ports.Logger

	RequireConfirmation bool
}

// Execute never spawns a process for a rejected or unconfirmed command.
// A nonzero exit is a failed outcome, not an error; the error is reserved
// for missing dependencies and for commands that could not be started.
func (g *Gate) Execute(ctx context.Context, req Request) (domain.ExecutionOutcome, error) {
	if g.Validator == nil || g.Runner == nil || g.Logger == nil {
		return domain.ExecutionOutcome{}, domain.ErrMissingDependency.WithMessage("execution.Gate")
	}

	verdict := g.Validator.Validate(req.Command)
	if !verdict.Accepted {
		g.Logger.Info("execution refused", map[string]interface{}{
			"command": req.Command,
			"reason":  string(verdict.Reason),
		})
		return domain.ExecutionOutcome{
			Status: domain.ExecutionRejected,
			Reason: verdict.Err().Error(),
		}, nil
	}

	if g.RequireConfirmation && !req.Confirmed {
		if reason, ok := g.confirm(req.Command); !ok {
			return domain.ExecutionOutcome{Status: domain.ExecutionNotExecuted, Reason: reason}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return domain.ExecutionOutcome{Status: domain.ExecutionNotExecuted, Reason: err.Error()}, err
	}

	g.Logger.Debug("running command", map[string]interface{}{"command": req.Command})
	result, err := g.Runner.Run(ctx, req.Command)
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		g.Logger.Info("command interrupted", map[string]interface{}{"command": req.Command})
		return domain.ExecutionOutcome{Status: domain.ExecutionNotExecuted, Reason: ReasonInterrupted}, ctxErr
	}
	if err != nil {
		g.Logger.Error("command could not start", err, map[string]interface{}{"command": req.Command})
		return domain.ExecutionOutcome{Status: domain.ExecutionFailed, Reason: err.Error()},
			domain.ErrExecutionFailed.Wrap(err)
	}

	outcome := domain.ExecutionOutcome{
		Status:     domain.ExecutionSucceeded,
		Ran:        true,
		ExitCode:   result.ExitCode,
		Stdout:     result.Stdout,
		Stderr:     result.Stderr,
		DurationMS: result.DurationMS,
		TimedOut:   result.TimedOut,
	}
	if result.ExitCode != 0 || result.TimedOut {
		outcome.Status = domain.ExecutionFailed
		if result.TimedOut {
			outcome.Reason = "timed out"
		}
	}

	g.record(ctx, req.RecordID, result.ExitCode)
	return outcome, nil
}

func (g *Gate) confirm(command string) (string, bool) {
	if g.Prompter == nil || !g.Prompter.Enabled() {
		return ReasonNoPrompter, false
	}
	approved, err := g.Prompter.Confirm(command)
	if err != nil {
		g.Logger.Warn("confirmation failed", map[string]interface{}{"error": err.Error()})
		return ReasonConfirmationFailed, false
	}
	if !approved {
		return ReasonDeclined, false
	}
	return "", true
}

func (g *Gate) record(ctx context.Context, id string, exitCode int) {
	if id == "" || g.History == nil {
		return
	}
	if err := g.History.RecordExecution(ctx, id, exitCode); err != nil {
		g.Logger.Warn("execution outcome not persisted", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
	}
}
