package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/doeshing/cmdgen/internal/app"
)

// ContainerSource resolves the container once flags have been parsed.
type ContainerSource func(ctx context.Context) (*app.Container, error)

// ErrNoCommand marks a generation that ended without an accepted command.
var ErrNoCommand = errors.New("no command generated")

// ExitError carries a process exit status up to main.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
