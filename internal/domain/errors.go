package domain

import "fmt"

// ErrorKind classifies a failure. Two errors with the same kind match under errors.Is.
type ErrorKind string

const (
	KindBackendUnavailable   ErrorKind = "backend-unavailable"
	KindBackendTimeout       ErrorKind = "backend-timeout"
	KindBackendMalformed     ErrorKind = "backend-malformed"
	KindBackendExhausted     ErrorKind = "backend-exhausted"
	KindNoCommandExtracted   ErrorKind = "no-command-extracted"
	KindValidationRejected   ErrorKind = "validation-rejected"
	KindExecutionFailed      ErrorKind = "execution-failed"
	KindHistoryPersistence   ErrorKind = "history-persistence-failed"
	KindEmptyDescription     ErrorKind = "empty-description"
	KindMissingDependency    ErrorKind = "missing-dependency"
	KindInvalidFeedback      ErrorKind = "invalid-feedback"
	KindInvalidRecord        ErrorKind = "invalid-record"
	KindInvalidPolicy        ErrorKind = "invalid-policy"
	KindNoHistory            ErrorKind = "no-history"
	KindUnsupportedBackend   ErrorKind = "unsupported-backend"
	KindConfirmationDeclined ErrorKind = "confirmation-declined"
)

// Error is a kind-tagged error. Message and Err are optional detail.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

// WithMessage returns a copy of e with the given message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Message: msg, Err: e.Err}
}

// WithMessagef is WithMessage with formatting.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// Wrap returns a copy of e wrapping cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: cause}
}

var (
	ErrBackendUnavailable   = &Error{Kind: KindBackendUnavailable}
	ErrBackendTimeout       = &Error{Kind: KindBackendTimeout}
	ErrBackendMalformed     = &Error{Kind: KindBackendMalformed}
	ErrBackendExhausted     = &Error{Kind: KindBackendExhausted}
	ErrNoCommandExtracted   = &Error{Kind: KindNoCommandExtracted}
	ErrValidationRejected   = &Error{Kind: KindValidationRejected}
	ErrExecutionFailed      = &Error{Kind: KindExecutionFailed}
	ErrHistoryPersistence   = &Error{Kind: KindHistoryPersistence}
	ErrEmptyDescription     = &Error{Kind: KindEmptyDescription}
	ErrMissingDependency    = &Error{Kind: KindMissingDependency}
	ErrInvalidFeedback      = &Error{Kind: KindInvalidFeedback}
	ErrInvalidRecord        = &Error{Kind: KindInvalidRecord}
	ErrInvalidPolicy        = &Error{Kind: KindInvalidPolicy}
	ErrNoHistory            = &Error{Kind: KindNoHistory}
	ErrUnsupportedBackend   = &Error{Kind: KindUnsupportedBackend}
	ErrConfirmationDeclined = &Error{Kind: KindConfirmationDeclined}
)
