package scanning

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineUnavailable means the OCR backend could not be located or started.
	ErrEngineUnavailable = errors.New("ocr engine unavailable")

	// ErrImageDecode means the upload is not an image we can read.
	ErrImageDecode = errors.New("image decode failed")

	// ErrRecognition means the engine ran but text recognition failed.
	ErrRecognition = errors.New("ocr recognition failed")
)

// Error wraps a failure with the operation that produced it and one of the
// sentinel kinds above, so callers can use errors.Is on either.
type Error struct {
	Op      string
	Kind    error
	Err     error
	Details string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func newError(op string, kind, err error, details string) *Error {
	return &Error{Op: op, Kind: kind, Err: err, Details: details}
}
