package auth

import (
	"fmt"
	"strings"
)

// CheckedRef records one environment reference inspected during credential
// resolution, with a redacted preview of its current value. It makes
// remediation of missing-credential failures unambiguous without leaking
// secrets into test output.
type CheckedRef struct {
	Name  string
	Value RedactedToken
}

func (r CheckedRef) String() string {
	return fmt.Sprintf("%s=%s", r.Name, r.Value.Preview())
}

// AuthenticationError indicates that credential resolution failed: either a
// required environment or configuration reference is absent, or the token
// endpoint could not be reached after exhausting the retry budget.
type AuthenticationError struct {
	// Identity is the id of the identity being resolved.
	Identity string

	// Message describes the failure.
	Message string

	// Refs lists the environment references that were checked, redacted.
	Refs []CheckedRef

	// Status and Body carry the last HTTP response observed, if any.
	Status int
	Body   string

	// Attempts is the number of acquisition attempts made.
	Attempts int

	// Err is the last underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "authentication failed for identity %q: %s", e.Identity, e.Message)
	if len(e.Refs) > 0 {
		previews := make([]string, len(e.Refs))
		for i, ref := range e.Refs {
			previews[i] = ref.String()
		}
		fmt.Fprintf(&b, " (checked %s)", strings.Join(previews, ", "))
	}
	if e.Attempts > 0 {
		fmt.Fprintf(&b, " after %d attempt(s)", e.Attempts)
	}
	if e.Status > 0 {
		fmt.Fprintf(&b, ": HTTP %d: %s", e.Status, e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
