package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation         Kind = "validation"
	KindTopicDenied        Kind = "topic_denied"
	KindUpstream           Kind = "upstream"
	KindUpstreamTimeout    Kind = "upstream_timeout"
	KindNothingToReport    Kind = "nothing_to_report"
	KindIncompleteReport   Kind = "incomplete_report"
	KindInconsistentReport Kind = "inconsistent_report"
	KindReportFailed       Kind = "report_failed"
	KindNotFound           Kind = "not_found"
	KindInternal           Kind = "internal"
)

// Error is the error type services hand back to the HTTP layer.
// Message is safe to show to clients; Err is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail returns the same error with an extra client-visible field.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

// KindOf reports the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
