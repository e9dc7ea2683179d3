package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorCode_ExitCode(t *testing.T) {
	tests := []struct {
		name     string
		code     ErrorCode
		expected int
	}{
		{"NoStagedChanges", ErrNoStagedChanges, 1},
		{"InvalidConfig", ErrInvalidConfig, 1},
		{"AuthenticationMissing", ErrAuthenticationMissing, 1},
		{"Cancelled", ErrCancelled, 1},
		{"ExecutableNotFound", ErrExecutableNotFound, 127},
		{"UnderlyingToolFailure", ErrUnderlyingToolFailure, 2},
		{"FileSystemError", ErrFileSystemError, 2},
		{"NetworkFailure", ErrNetworkFailure, 3},
		{"MalformedAPIResponse", ErrMalformedAPIResponse, 3},
		{"AuthenticationFailed", ErrAuthenticationFailed, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestErrorCode_String(t *testing.T) {
	if got := ErrMalformedAPIResponse.String(); got != "MalformedAPIResponse" {
		t.Errorf("String() = %q", got)
	}
	if got := ErrorCode(9999).String(); got != "Unknown" {
		t.Errorf("String() = %q, want Unknown", got)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name: "without cause",
			err: &AppError{
				Code:    ErrNoStagedChanges,
				Message: "no staged changes",
			},
			expected: "no staged changes",
		},
		{
			name: "with cause",
			err: &AppError{
				Code:    ErrNetworkFailure,
				Message: "connection failed",
				Cause:   errors.New("dial tcp: connection refused"),
			},
			expected: "connection failed: dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Is(t *testing.T) {
	err := fmt.Errorf("collecting diff: %w", NewNoStagedChangesError())

	if !errors.Is(err, New(ErrNoStagedChanges, "")) {
		t.Error("errors.Is should match an AppError with the same code")
	}
	if errors.Is(err, New(ErrCancelled, "")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestAppError_WithContext(t *testing.T) {
	err := New(ErrUnderlyingToolFailure, "git failed")
	err.WithContext("command", "git commit")
	err.WithContext("exit_code", 1)

	if err.Context["command"] != "git commit" {
		t.Errorf("Context[command] = %v, want 'git commit'", err.Context["command"])
	}
	if err.Context["exit_code"] != 1 {
		t.Errorf("Context[exit_code] = %v, want 1", err.Context["exit_code"])
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	wrapped := Wrap(cause, ErrFileSystemError, "write failed")

	if wrapped.Code != ErrFileSystemError {
		t.Errorf("Code = %v, want %v", wrapped.Code, ErrFileSystemError)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("Wrapped error should contain the cause")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewAuthenticationMissingError())

	if !HasCode(err, ErrAuthenticationMissing) {
		t.Error("HasCode should find the code through wrapping")
	}
	if HasCode(errors.New("plain"), ErrAuthenticationMissing) {
		t.Error("HasCode should be false for plain errors")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil",
			err:      nil,
			expected: 0,
		},
		{
			name:     "app error user",
			err:      NewNoStagedChangesError(),
			expected: 1,
		},
		{
			name:     "tool failure keeps child status",
			err:      NewToolFailureError("git", 128, ""),
			expected: 128,
		},
		{
			name:     "tool failure wrapped",
			err:      fmt.Errorf("commit: %w", NewToolFailureError("git", 5, "")),
			expected: 5,
		},
		{
			name:     "executable not found",
			err:      NewExecutableNotFoundError("git", errors.New("not in PATH")),
			expected: 127,
		},
		{
			name:     "app error external",
			err:      NewNetworkError(errors.New("refused")),
			expected: 3,
		},
		{
			name:     "regular error",
			err:      errors.New("regular error"),
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.expected {
				t.Errorf("GetExitCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConstructorsCarrySuggestions(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
	}{
		{"no staged changes", NewNoStagedChangesError(), ErrNoStagedChanges},
		{"auth missing", NewAuthenticationMissingError(), ErrAuthenticationMissing},
		{"auth failed", NewAuthenticationError("OpenAI"), ErrAuthenticationFailed},
		{"network", NewNetworkError(errors.New("x")), ErrNetworkFailure},
		{"timeout", NewTimeoutError(errors.New("x")), ErrNetworkFailure},
		{"malformed", NewMalformedResponseError("no choices"), ErrMalformedAPIResponse},
		{"not found", NewExecutableNotFoundError("gh", nil), ErrExecutableNotFound},
		{"no branch changes", NewNoBranchChangesError("main", "feature"), ErrNoBranchChanges},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.Suggestion == "" {
				t.Error("Suggestion should not be empty")
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "nil error",
			err:      nil,
			contains: []string{},
		},
		{
			name: "app error with suggestion",
			err: &AppError{
				Code:       ErrNoStagedChanges,
				Message:    "no staged changes",
				Suggestion: "Use git add",
			},
			contains: []string{"Error:", "no staged changes", "Suggestion:", "Use git add"},
		},
		{
			name:     "regular error",
			err:      errors.New("regular error"),
			contains: []string{"Error:", "regular error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatError(tt.err)
			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("FormatError() should contain %q, got %q", s, result)
				}
			}
		})
	}
}

func TestFormatErrorVerbose_IncludesCodeAndContext(t *testing.T) {
	err := NewToolFailureError("git", 1, "fatal: not a git repository")

	out := FormatErrorVerbose(err)

	if !strings.Contains(out, "[UnderlyingToolFailure]") {
		t.Errorf("expected code in output, got %q", out)
	}
	if !strings.Contains(out, "fatal: not a git repository") {
		t.Errorf("expected stderr context in output, got %q", out)
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	msg := "bad key sk-proj-abcdefghijklmnopqrstuvwxyz1234 rejected"

	got := SanitizeErrorMessage(msg)

	if strings.Contains(got, "abcdefghijklmnop") {
		t.Errorf("key not masked: %q", got)
	}
	if !strings.HasSuffix(strings.TrimSuffix(got, " rejected"), "1234") {
		t.Errorf("last four characters should stay visible: %q", got)
	}
}
