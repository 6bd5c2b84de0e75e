package ai

import (
	"context"
	"errors"
	"net"

	"github.com/doeshing/cmdgen/internal/domain"
)

// classify maps a transport or SDK error onto the backend error kinds.
// Errors that already carry a domain kind pass through unchanged.
func classify(backend string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrBackendTimeout.WithMessage(backend).Wrap(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrBackendTimeout.WithMessage(backend).Wrap(err)
	}
	return domain.ErrBackendUnavailable.WithMessage(backend).Wrap(err)
}

func malformed(backend, msg string) error {
	return domain.ErrBackendMalformed.WithMessagef("%s: %s", backend, msg)
}
