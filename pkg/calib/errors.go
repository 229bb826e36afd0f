package calib

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies a failure returned across the command channel.
type Code string

const (
	CodeParse             Code = "ParseError"
	CodeIO                Code = "IoError"
	CodeEntityNotFound    Code = "EntityNotFound"
	CodeValidation        Code = "ValidationError"
	CodeNoDatasetLoaded   Code = "NoDatasetLoaded"
	CodeUnsupportedFormat Code = "UnsupportedFormat"
	CodeInternal          Code = "Internal"
)

// Error is the typed failure every command returns.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so the sentinels below work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrParse             = &Error{Code: CodeParse}
	ErrIO                = &Error{Code: CodeIO}
	ErrEntityNotFound    = &Error{Code: CodeEntityNotFound}
	ErrValidation        = &Error{Code: CodeValidation}
	ErrNoDatasetLoaded   = &Error{Code: CodeNoDatasetLoaded, Message: "no dataset loaded"}
	ErrUnsupportedFormat = &Error{Code: CodeUnsupportedFormat}
)

// Errorf builds a typed error.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts the typed error from err's chain. Untyped errors become
// CodeInternal so nothing crosses the channel without a code.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Code: CodeInternal, Message: err.Error()}
}

// CodeOf returns the code of err, or "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return AsError(err).Code
}
