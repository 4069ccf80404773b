package common

import (
	"context"
	"errors"
	"fmt"
)

// AppError represents application-specific errors
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

// ErrInvalidInput marks configuration and setup errors caused by the caller.
var ErrInvalidInput = errors.New("invalid input")

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Per-card failure kinds. A card that fails with one of these is skipped; the batch goes on.
const (
	KindImageDecode     = "image_decode"
	KindFieldExtraction = "field_extraction"
	KindSinkWrite       = "sink_write"
	KindCanceled        = "canceled"
	KindUnknown         = "unknown"
)

// ImageDecodeError means the image could not be read, decoded, or OCR'd. Not retried.
type ImageDecodeError struct {
	Path  string
	Stage string // "decode" | "ocr"
	Cause error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("image %s failed at %s: %v", e.Path, e.Stage, e.Cause)
}

func (e *ImageDecodeError) Unwrap() error { return e.Cause }

// RetryExhaustedError carries the last cause once the attempt cap is reached.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempt(s): %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// FieldExtractionError means one field could not be extracted; the whole card is dropped.
type FieldExtractionError struct {
	Field string
	Cause error
}

func (e *FieldExtractionError) Error() string {
	return fmt.Sprintf("extract field %q: %v", e.Field, e.Cause)
}

func (e *FieldExtractionError) Unwrap() error { return e.Cause }

// SinkWriteError means a completed record could not be appended to the output.
type SinkWriteError struct {
	Cause error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("write record: %v", e.Cause)
}

func (e *SinkWriteError) Unwrap() error { return e.Cause }

// ClassifyCardError returns the failure kind for logs and the ledger.
func ClassifyCardError(err error) string {
	var (
		decodeErr *ImageDecodeError
		fieldErr  *FieldExtractionError
		sinkErr   *SinkWriteError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &decodeErr):
		return KindImageDecode
	case errors.As(err, &fieldErr):
		return KindFieldExtraction
	case errors.As(err, &sinkErr):
		return KindSinkWrite
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// LastRetryCause digs the final underlying error out of a retry exhaustion, if any.
func LastRetryCause(err error) (error, bool) {
	var re *RetryExhaustedError
	if errors.As(err, &re) {
		return re.Last, true
	}
	return nil, false
}
