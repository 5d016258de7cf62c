package registry

import "fmt"

// ConfigurationError indicates the identity source is missing or unreadable.
// It is fatal and aborts the run before any test executes.
type ConfigurationError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity source %s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("identity source %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ValidationError indicates that a loaded identity record violates the schema.
// It names the offending record by index and display name, and the specific
// field, so that the source can be fixed without rerunning with extra logging.
type ValidationError struct {
	Index   int
	Name    string
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	name := e.Name
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("identity at index %d (%s): field %q: %s", e.Index, name, e.Field, e.Message)
}

func newValidationError(index int, name, field, message string) *ValidationError {
	return &ValidationError{Index: index, Name: name, Field: field, Message: message}
}
