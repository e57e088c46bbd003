// GO TESTING BASICS:
// 1. Test files MUST end in _test.go — Go's tooling auto-discovers them
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v  (-v = verbose, shows each test name)
package apperror

import (
	"errors"
	"testing"
)

// TABLE-DRIVEN TESTS:
// Go's idiomatic pattern for testing multiple cases: define a slice of test
// cases and loop over them. Adding a case = adding one struct to the slice,
// and every case gets a name that shows up in the test output.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string // Descriptive name for test output
		err       error  // The error to test
		target    error  // What we expect it to match
		wantMatch bool   // Should errors.Is() return true?
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("memory", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("content", "content is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Upstream wraps ErrUpstream",
			err:       Upstream("GitHub token exchange failed", errors.New("connection refused")),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("memory", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "ValidationFailed does NOT match ErrNotFound",
			err:       ValidationFailed("content", "too long"),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("memory", "abc123"),
			wantMessage: "memory not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("content", "content is required"),
			wantMessage: "content is required",
		},
		{
			name:        "Upstream uses custom message",
			err:         Upstream("GitHub /user returned status 503", errors.New("service unavailable")),
			wantMessage: "GitHub /user returned status 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUpstreamKeepsCause(t *testing.T) {
	// The original cause must stay in the chain so logs can show what
	// actually went wrong, even though the client only sees the message.
	cause := errors.New("dial tcp: connection refused")
	err := Upstream("GitHub token exchange failed", cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
}

func TestValidationFailedField(t *testing.T) {
	// The Field lets handlers tell the frontend WHICH field was invalid.
	err := ValidationFailed("coverUrl", "coverUrl is required")

	if err.Field != "coverUrl" {
		t.Errorf("Field = %q, want %q", err.Field, "coverUrl")
	}
}
