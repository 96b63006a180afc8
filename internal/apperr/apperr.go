package apperr

import "errors"

// Kinds. Match with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication required")
	ErrAuthorization  = errors.New("not authorized")
	ErrNotFound       = errors.New("not found")
	ErrParse          = errors.New("parse error")
	ErrStorage        = errors.New("storage error")
)

// Error carries a user-visible message next to the diagnostic cause.
// Message is safe to return to a client; Err is for logs only.
type Error struct {
	Kind    error
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(field, message string) error {
	return &Error{Kind: ErrValidation, Field: field, Message: message}
}

func Conflict(field, message string) error {
	return &Error{Kind: ErrConflict, Field: field, Message: message}
}

func Authentication(message string) error {
	return &Error{Kind: ErrAuthentication, Message: message}
}

func Authorization(message string) error {
	return &Error{Kind: ErrAuthorization, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func Parse(message string, cause error) error {
	return &Error{Kind: ErrParse, Message: message, Err: cause}
}

func Storage(message string, cause error) error {
	return &Error{Kind: ErrStorage, Message: message, Err: cause}
}

// MessageOf returns the client-safe message of err. Errors that did not go
// through this package get a generic message so internals never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Something went wrong. Please try again."
}

// FieldOf returns the offending request field, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
