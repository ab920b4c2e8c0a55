package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrMalformedInput  = errors.New("malformed input")
	ErrUnknownVariant  = errors.New("unknown index variant")
	ErrUnknownStemmer  = errors.New("unknown stemmer")
	ErrNotFound        = errors.New("not found")
	ErrSinkUnavailable = errors.New("sink unavailable")
	ErrInternal        = errors.New("internal error")
)

// Exit codes returned by the CLI.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUsage      = 2
	ExitBadInput   = 3
	ExitSinkFailed = 4
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

// MalformedInputError reports a document whose field could not be read.
type MalformedInputError struct {
	DocIndex int
	Field    string
	Reason   string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed document %d: field %q %s", e.DocIndex, e.Field, e.Reason)
}

func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

func NewMalformedInput(docIndex int, field, reason string) *MalformedInputError {
	return &MalformedInputError{DocIndex: docIndex, Field: field, Reason: reason}
}

// ExitCode maps an error onto the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrMalformedInput), errors.Is(err, ErrInvalidInput):
		return ExitBadInput
	case errors.Is(err, ErrUnknownVariant), errors.Is(err, ErrUnknownStemmer):
		return ExitUsage
	case errors.Is(err, ErrSinkUnavailable):
		return ExitSinkFailed
	default:
		return ExitFailure
	}
}
