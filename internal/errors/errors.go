package errors

import (
	"errors"
	"fmt"
	"io/fs"
)

// ValidationError represents an input validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// UserError represents an error caused by user input or configuration.
// Suggestion can provide a concrete fix for the user.
type UserError struct {
	Message    string
	Suggestion string
	Err        error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a UserError with a message and optional suggestion.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion}
}

// WrapUserError wraps an underlying error with a user-facing message and suggestion.
func WrapUserError(err error, message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion, Err: err}
}

// SourceError ties a loading failure to the data source it came from.
// Path is "-" for stdin.
type SourceError struct {
	Path string
	Err  error
}

// WrapSource wraps err with the source path. Returns nil if err is nil.
func WrapSource(path string, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Path: path, Err: err}
}

func (e *SourceError) Error() string {
	if e.Path == "-" {
		return fmt.Sprintf("source <stdin>: %s", e.Err)
	}
	return fmt.Sprintf("source %s: %s", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Type checkers
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

func IsSourceError(err error) bool {
	var e *SourceError
	return errors.As(err, &e)
}

// IsNotFound reports whether err was caused by a missing file.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// UserSuggestion returns a suggestion string if err is a UserError.
func UserSuggestion(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Suggestion
	}
	return ""
}

// SourceNotFoundError creates a user-friendly error for a data source that does not exist.
func SourceNotFoundError(path string, err error) error {
	return WrapUserError(
		WrapSource(path, err),
		fmt.Sprintf("source file %q not found", path),
		"Pass --source <file.json>, set UTL_SOURCE, or run 'utl config set source <file.json>'",
	)
}
