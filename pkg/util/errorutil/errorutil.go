package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes understood by the interaction middleware.
const (
	CodeNotTicketChannel     = "NOT_TICKET_CHANNEL"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
	CodeMissingConfiguration = "MISSING_CONFIGURATION"
	CodeInternal             = "INTERNAL_ERROR"
)

// GenericFailureMessage is shown to the invoker when the cause must not leak.
const GenericFailureMessage = "Something went wrong while handling your request."

// DomainError standardizes application errors. Message is safe to show to the
// invoking user.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details}
}

func NewNotTicketChannel(channelName string) error {
	return NewDomainError(CodeNotTicketChannel, "This is not a ticket channel.", map[string]any{"channel": channelName})
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, details)
}

// NewMissingConfiguration reports a configured platform resource that no longer resolves.
func NewMissingConfiguration(resource string, err error) error {
	return &DomainError{
		Code:    CodeMissingConfiguration,
		Message: GenericFailureMessage,
		Details: map[string]any{"resource": resource},
		Err:     err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:    CodeInternal,
		Message: GenericFailureMessage,
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: GenericFailureMessage,
		Err:     err,
	}
}

// IsUserError reports whether err is caused by the invoker rather than the system.
func IsUserError(err error) bool {
	de := ToDomainError(err)
	if de == nil {
		return false
	}
	switch de.Code {
	case CodeNotTicketChannel, CodeForbidden, CodeConflict:
		return true
	}
	return false
}

// HTTPStatus maps the error code to a response status for the HTTP surface.
func (e *DomainError) HTTPStatus() int {
	switch e.Code {
	case CodeNotTicketChannel:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeMissingConfiguration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
