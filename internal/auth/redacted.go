package auth

import "fmt"

// RedactedToken wraps a sensitive token string to prevent accidental logging.
//
// The type implements fmt.Stringer to return "[REDACTED]" instead of the
// actual value, so a token can never leak through log messages, error strings
// or debug output. Use Value only at the point where the token goes into an
// Authorization header.
type RedactedToken struct {
	value string
}

// NewRedactedToken creates a RedactedToken wrapping the given value.
func NewRedactedToken(value string) RedactedToken {
	return RedactedToken{value: value}
}

// Value returns the actual token value. Never log the result of this method.
func (t RedactedToken) Value() string {
	return t.value
}

// IsEmpty returns true if the token value is empty.
func (t RedactedToken) IsEmpty() bool {
	return t.value == ""
}

// String implements fmt.Stringer, returning "[REDACTED]".
func (t RedactedToken) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (t RedactedToken) GoString() string {
	return "auth.RedactedToken{[REDACTED]}"
}

// MarshalText implements encoding.TextMarshaler, returning "[REDACTED]".
func (t RedactedToken) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// MarshalJSON implements json.Marshaler, returning "[REDACTED]".
func (t RedactedToken) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// Preview returns a short redacted preview of the token suitable for triage
// output: the first and last few characters with the middle elided. Short
// values are fully redacted.
func (t RedactedToken) Preview() string {
	if t.value == "" {
		return "[unset]"
	}
	if len(t.value) <= 16 {
		return "[REDACTED]"
	}
	return fmt.Sprintf("%s...%s", t.value[:8], t.value[len(t.value)-4:])
}
