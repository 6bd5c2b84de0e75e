package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/ports"
)

// waitDelay bounds how long Wait blocks on pipes held open by grandchildren
// after the shell itself was killed.
const waitDelay = 2 * time.Second

// LocalExecutor runs commands on the host shell.
type LocalExecutor struct {
	shell   string
	timeout time.Duration
}

// NewLocalExecutor builds a new executor, shell defaults to sh.
func NewLocalExecutor(shell string, timeout time.Duration) *LocalExecutor {
	if shell == "" {
		shell = domain.DefaultShell
	}
	if timeout <= 0 {
		timeout = domain.DefaultExecutionTimeout
	}
	return &LocalExecutor{shell: shell, timeout: timeout}
}

// Shell returns the interpreter used for commands.
func (e *LocalExecutor) Shell() string {
	return e.shell
}

// Run implements ports.CommandRunner. The command runs once via "<shell> -c".
func (e *LocalExecutor) Run(ctx context.Context, command string) (domain.CommandResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	c := exec.CommandContext(runCtx, e.shell, "-c", command)
	c.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	result := domain.CommandResult{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: time.Since(start).Milliseconds(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		result.ExitCode = -1
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, err
}

var _ ports.CommandRunner = (*LocalExecutor)(nil)
