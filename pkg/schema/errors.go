package schema

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the analysis pipeline. Callers branch on them with
// errors.Is; every error returned by the pipeline wraps exactly one of these.
var (
	// ErrValidation is returned for malformed or missing required input fields.
	ErrValidation = errors.New("validation error")

	// ErrSourceUnavailable is returned when a local knowledge base cannot be
	// read or parsed.
	ErrSourceUnavailable = errors.New("knowledge base source unavailable")

	// ErrRemoteResolution is returned when a remote knowledge base or analysis
	// endpoint answers with a non-success status or cannot be reached.
	ErrRemoteResolution = errors.New("remote resolution failed")

	// ErrInvalidReference is returned when a document URL does not contain a
	// recognizable token.
	ErrInvalidReference = errors.New("invalid document reference")

	// ErrFilesystem is returned when materialization fails to create a
	// directory or write a file.
	ErrFilesystem = errors.New("filesystem error")
)

// RemoteError describes a failed remote call. Status is the HTTP status code,
// or 0 when the request never produced a response.
type RemoteError struct {
	URL    string
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrRemoteResolution, e.URL)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the error kind and the underlying cause.
func (e *RemoteError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRemoteResolution}
	}
	return []error{ErrRemoteResolution, e.Err}
}

// Validationf builds an ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
