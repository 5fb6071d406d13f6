package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation     Kind = "validation"
	KindUnauthorized   Kind = "unauthorized"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindUpstream       Kind = "upstream"
	KindInternal       Kind = "internal"
	KindPartialFailure Kind = "partial_failure"
)

// Exception is an error that knows how it should be surfaced to a caller.
// Message is safe to return; Err carries detail for the server log only.
type Exception struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Exception) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Exception) Unwrap() error {
	return e.Err
}

// Is matches sentinel exceptions by kind and message so wrapped copies still
// compare equal.
func (e *Exception) Is(target error) bool {
	var t *Exception
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// Public returns the message that may be shown to a client.
func (e *Exception) Public() string {
	switch e.Kind {
	case KindInternal:
		return "internal server error"
	case KindPartialFailure:
		return "operation partially applied; it has been logged for reconciliation"
	}
	return e.Message
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func KindOf(err error) Kind {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Validation(format string, args ...any) *Exception {
	return &Exception{
		Kind:       KindValidation,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusBadRequest,
	}
}

func Unauthorized(format string, args ...any) *Exception {
	return &Exception{
		Kind:       KindUnauthorized,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusUnauthorized,
	}
}

func NotFound(format string, args ...any) *Exception {
	return &Exception{
		Kind:       KindNotFound,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusNotFound,
	}
}

func Conflict(format string, args ...any) *Exception {
	return &Exception{
		Kind:       KindConflict,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusConflict,
	}
}

func Upstream(message string, err error) *Exception {
	return &Exception{
		Kind:       KindUpstream,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Err:        err,
	}
}

func Internal(err error) *Exception {
	return &Exception{
		Kind:       KindInternal,
		Message:    "internal error",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// PartialFailure marks a multi-step operation where an irreversible step
// (for example a provider payout) succeeded and a later step did not.
func PartialFailure(message string, err error) *Exception {
	return &Exception{
		Kind:       KindPartialFailure,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// Wrap keeps an Exception as-is and classifies anything else as internal.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Exception
	if errors.As(err, &appErr) {
		return err
	}
	return Internal(err)
}
