// Package apperr defines the error taxonomy shared by the analytics engine and
// its HTTP surface.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Code string

const (
	CodeInvalidMetric          Code = "INVALID_METRIC"
	CodeInvalidComparisonLevel Code = "INVALID_COMPARISON_LEVEL"
	CodeInvalidSegment         Code = "INVALID_SEGMENT"
	CodeInvalidRange           Code = "INVALID_RANGE"
	CodeMissingParameter       Code = "MISSING_PARAMETER"
	CodeInvalidDate            Code = "INVALID_DATE"
	CodeInvalidFilter          Code = "INVALID_FILTER"
	CodeNoData                 Code = "NO_DATA"
)

// Error is a domain error raised before any query reaches the fact store.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on code so callers can use errors.Is with the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrInvalidMetric          = &Error{Code: CodeInvalidMetric}
	ErrInvalidComparisonLevel = &Error{Code: CodeInvalidComparisonLevel}
	ErrInvalidSegment         = &Error{Code: CodeInvalidSegment}
	ErrInvalidRange           = &Error{Code: CodeInvalidRange}
	ErrMissingParameter       = &Error{Code: CodeMissingParameter}
	ErrInvalidDate            = &Error{Code: CodeInvalidDate}
	ErrInvalidFilter          = &Error{Code: CodeInvalidFilter}
	ErrNoData                 = &Error{Code: CodeNoData}
)

func InvalidMetric(name string, valid []string) error {
	return &Error{
		Code:    CodeInvalidMetric,
		Message: fmt.Sprintf("invalid metric %q, use: %s", name, strings.Join(valid, ", ")),
	}
}

func InvalidComparisonLevel(level string, valid []string) error {
	return &Error{
		Code:    CodeInvalidComparisonLevel,
		Message: fmt.Sprintf("invalid comparison_level %q, use: %s", level, strings.Join(valid, ", ")),
	}
}

func InvalidSegment(segment string, valid []string) error {
	return &Error{
		Code:    CodeInvalidSegment,
		Message: fmt.Sprintf("invalid segment_by %q, use: %s", segment, strings.Join(valid, ", ")),
	}
}

func InvalidRange(msg string) error {
	return &Error{Code: CodeInvalidRange, Message: msg}
}

func MissingParameter(name string) error {
	return &Error{Code: CodeMissingParameter, Message: name + " is required"}
}

func InvalidDate(value string) error {
	return &Error{
		Code:    CodeInvalidDate,
		Message: fmt.Sprintf("invalid date %q, use YYYY-MM-DD", value),
	}
}

func InvalidFilter(field, value string) error {
	return &Error{
		Code:    CodeInvalidFilter,
		Message: fmt.Sprintf("invalid %s value %q", field, value),
	}
}

func NoData(msg string) error {
	return &Error{Code: CodeNoData, Message: msg}
}

// IsClient reports whether err was caused by the caller's input.
func IsClient(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code != CodeNoData
}
