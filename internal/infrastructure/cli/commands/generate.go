package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/doeshing/cmdgen/internal/app"
	"github.com/doeshing/cmdgen/internal/application/execution"
	"github.com/doeshing/cmdgen/internal/application/generation"
	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/infrastructure/cli/helpers"
)

// GenerateOptions controls one generate run.
type GenerateOptions struct {
	Execute     bool
	AssumeYes   bool
	CommandOnly bool
}

// RunGenerate turns description into a command and, when asked, hands it to
// the execution gate. Progress goes to errOut so out only carries results.
func RunGenerate(ctx context.Context, out, errOut io.Writer, c *app.Container, description string, opts GenerateOptions) (domain.InteractionRecord, error) {
	pipeline, err := c.Generator()
	if err != nil {
		return domain.InteractionRecord{}, err
	}

	spinner := helpers.NewSpinner(errOut)
	pipeline.OnStage = func(stage generation.Stage) {
		spinner.SetLabel(string(stage))
	}
	spinner.Start()
	rec, err := pipeline.Generate(ctx, description)
	spinner.Stop()
	pipeline.OnStage = nil
	if err != nil {
		return rec, err
	}

	if opts.CommandOnly {
		if !rec.Success {
			return rec, &ExitError{Code: 1, Err: fmt.Errorf("%w: %s", ErrNoCommand, rec.Error)}
		}
		fmt.Fprintln(out, rec.Command)
		return rec, nil
	}

	renderer := helpers.NewRenderer(out)
	renderer.Record(rec)
	if !rec.Success {
		return rec, &ExitError{Code: 1, Err: fmt.Errorf("%w: %s", ErrNoCommand, rec.Error)}
	}
	if !opts.Execute {
		fmt.Fprintln(errOut, MsgRunWithExecute)
		return rec, nil
	}

	outcome, err := c.Gate.Execute(ctx, execution.Request{
		Command:   rec.Command,
		Confirmed: opts.AssumeYes,
		RecordID:  rec.ID,
	})
	renderer.Outcome(outcome)
	if err != nil {
		return rec, err
	}
	return rec, outcomeError(outcome)
}

// outcomeError maps a failed run onto the command's own exit status.
func outcomeError(outcome domain.ExecutionOutcome) error {
	if outcome.Status != domain.ExecutionFailed {
		return nil
	}
	code := outcome.ExitCode
	if code <= 0 {
		code = 1
	}
	return &ExitError{Code: code}
}
