package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return err.Fields[0].Field + ": " + err.Fields[0].Error
	}
	return ""
}

// FieldMap indexes the field errors by field name; the first error of a field wins.
func (err ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		if _, ok := m[f.Field]; !ok {
			m[f.Field] = f.Error
		}
	}
	return m
}

// AsValidationError unwraps err down to a *ValidationError, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	vErr, ok := errors.Cause(err).(*ValidationError)
	return vErr, ok
}

// userMessenger is implemented by errors carrying a message meant for end users,
// e.g. the `message` returned by the remote API.
type userMessenger interface {
	UserMessage() string
}

// UserMessage returns the end-user message carried by err, or fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if um, ok := errors.Cause(err).(userMessenger); ok {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
