package common

import (
	"errors"
	"fmt"
)

// Error kinds the pipeline distinguishes. Callers match with errors.Is;
// none of these are retried automatically except ErrRateLimited, which the
// model client wraps in a bounded backoff.
var (
	// ErrExtraction marks a format-specific reader failure (corrupt file,
	// unreadable image). The original cause is always attached.
	ErrExtraction = errors.New("content extraction failed")

	// ErrMalformedModelOutput marks a model response that is not valid JSON
	// or not shaped as the expected envelope. Deterministic enough to fail
	// fast; never retried.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrCredentialMissing means no API key could be resolved. Fatal for
	// document transformation; categorization degrades instead.
	ErrCredentialMissing = errors.New("model credential missing")

	// ErrRateLimited marks an HTTP 429 from the model service.
	ErrRateLimited = errors.New("model service rate limited")

	// ErrAuth marks a 401/403 from the model service (bad or revoked key).
	ErrAuth = errors.New("model service rejected credentials")

	// ErrModelService marks any other non-2xx model service failure.
	ErrModelService = errors.New("model service error")
)

// UnsupportedFileTypeError is returned for extensions outside the supported
// set, before any file read happens.
type UnsupportedFileTypeError struct {
	Ext string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %q", e.Ext)
}

// AppError carries a stable code alongside a human message and the original
// cause, for log lines and collaborator-facing text.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// WrapExtraction attaches the extraction kind to a reader failure so every
// extractor surfaces the same typed error with its original cause intact.
func WrapExtraction(err error, detail string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrExtraction, detail, err)
}

// WrapMalformedOutput marks a model response that failed parsing.
func WrapMalformedOutput(detail string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedModelOutput, detail, cause)
	}
	return fmt.Errorf("%w: %s", ErrMalformedModelOutput, detail)
}
