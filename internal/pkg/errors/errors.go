// Package errors provides error types, exit codes and logging for gait.
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrorCode represents the category of an error.
type ErrorCode int

const (
	// User errors (Exit Code 1)
	ErrNoStagedChanges ErrorCode = iota + 100
	ErrInvalidConfig
	ErrAuthenticationMissing
	ErrInvalidArguments
	ErrCancelled
	ErrNoBranchChanges

	// System errors (Exit Code 2)
	ErrExecutableNotFound ErrorCode = iota + 200
	ErrUnderlyingToolFailure
	ErrFileSystemError

	// External errors (Exit Code 3)
	ErrNetworkFailure ErrorCode = iota + 300
	ErrAuthenticationFailed
	ErrMalformedAPIResponse
	ErrAIProviderFailed
)

// ExitCodeExecutableNotFound mirrors the shell's "command not found" status.
const ExitCodeExecutableNotFound = 127

// ExitCode returns the appropriate exit code for an error code.
func (c ErrorCode) ExitCode() int {
	switch {
	case c == ErrExecutableNotFound:
		return ExitCodeExecutableNotFound
	case c >= 100 && c < 200:
		return 1 // User errors
	case c >= 200 && c < 300:
		return 2 // System errors
	case c >= 300:
		return 3 // External errors
	default:
		return 1
	}
}

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrNoStagedChanges:
		return "NoStagedChanges"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrAuthenticationMissing:
		return "AuthenticationMissing"
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrCancelled:
		return "Cancelled"
	case ErrNoBranchChanges:
		return "NoBranchChanges"
	case ErrExecutableNotFound:
		return "ExecutableNotFound"
	case ErrUnderlyingToolFailure:
		return "UnderlyingToolFailure"
	case ErrFileSystemError:
		return "FileSystemError"
	case ErrNetworkFailure:
		return "NetworkFailure"
	case ErrAuthenticationFailed:
		return "AuthenticationFailed"
	case ErrMalformedAPIResponse:
		return "MalformedAPIResponse"
	case ErrAIProviderFailed:
		return "AIProviderFailed"
	default:
		return "Unknown"
	}
}

// AppError represents an application error with context.
type AppError struct {
	Code       ErrorCode
	Message    string
	Cause      error
	Context    map[string]interface{}
	Suggestion string
	// ExitStatus is the wrapped tool's exit code for ErrUnderlyingToolFailure.
	ExitStatus int
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *AppError with the same code.
// It lets callers match on a sentinel built with New.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// ExitCode returns the process exit code for this error.
func (e *AppError) ExitCode() int {
	if e.Code == ErrUnderlyingToolFailure && e.ExitStatus > 0 {
		return e.ExitStatus
	}
	return e.Code.ExitCode()
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with context.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// GetExitCode returns the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr.ExitCode()
	}
	return 1 // Default to user error
}

// Common error constructors with suggestions

// NewNoStagedChangesError creates an error for no staged changes.
func NewNoStagedChangesError() *AppError {
	return &AppError{
		Code:       ErrNoStagedChanges,
		Message:    "no staged changes found",
		Suggestion: "Use 'gait add <files>' to stage changes before running 'gait commit --ai'",
	}
}

// NewNoBranchChangesError creates an error for a branch without pushed changes.
func NewNoBranchChangesError(base, head string) *AppError {
	return &AppError{
		Code:       ErrNoBranchChanges,
		Message:    fmt.Sprintf("no changes detected between origin/%s and origin/%s", base, head),
		Suggestion: "Make sure you have committed your changes and pushed them to the remote",
	}
}

// NewAuthenticationMissingError creates an error for a missing API key.
func NewAuthenticationMissingError() *AppError {
	return &AppError{
		Code:       ErrAuthenticationMissing,
		Message:    "OPENAI_API_KEY not found in environment variables",
		Suggestion: "Set OPENAI_API_KEY in your environment or in a .env file, or run 'gait ai config set provider.api_key <your-key>'",
	}
}

// NewInvalidConfigError creates an error for invalid configuration.
func NewInvalidConfigError(message string) *AppError {
	return &AppError{
		Code:       ErrInvalidConfig,
		Message:    message,
		Suggestion: "Run 'gait ai config init' to create a valid configuration file",
	}
}

// NewExecutableNotFoundError creates an error for a wrapped tool missing from PATH.
func NewExecutableNotFoundError(executable string, err error) *AppError {
	return &AppError{
		Code:       ErrExecutableNotFound,
		Message:    fmt.Sprintf("%s executable not found", executable),
		Cause:      err,
		Suggestion: fmt.Sprintf("Install %s and make sure it is on your PATH", executable),
	}
}

// NewToolFailureError creates an error for a wrapped tool that exited non-zero.
// The tool's own output has already reached the operator, so the message stays short.
func NewToolFailureError(executable string, exitStatus int, stderr string) *AppError {
	appErr := &AppError{
		Code:       ErrUnderlyingToolFailure,
		Message:    fmt.Sprintf("%s exited with status %d", executable, exitStatus),
		ExitStatus: exitStatus,
	}
	if stderr != "" {
		appErr.Context = map[string]interface{}{
			"stderr": stderr,
		}
	}
	return appErr
}

// NewNetworkError creates an error for network failures.
func NewNetworkError(err error) *AppError {
	return &AppError{
		Code:       ErrNetworkFailure,
		Message:    "connection to the AI API failed",
		Cause:      err,
		Suggestion: "Please check your internet connection and try again",
	}
}

// NewTimeoutError creates an error for requests that ran past their deadline.
func NewTimeoutError(err error) *AppError {
	return &AppError{
		Code:       ErrNetworkFailure,
		Message:    "request to the AI API timed out",
		Cause:      err,
		Suggestion: "Please check your network connection or raise provider.timeout_seconds",
	}
}

// NewAuthenticationError creates an error for authentication failures.
func NewAuthenticationError(provider string) *AppError {
	return &AppError{
		Code:       ErrAuthenticationFailed,
		Message:    fmt.Sprintf("authentication failed with %s", provider),
		Suggestion: "Please check your OpenAI API key is valid and has not expired",
	}
}

// NewMalformedResponseError creates an error for an unusable API response.
func NewMalformedResponseError(reason string) *AppError {
	return &AppError{
		Code:       ErrMalformedAPIResponse,
		Message:    fmt.Sprintf("AI response was malformed: %s", reason),
		Suggestion: "Try again, or check that the configured model supports chat completions",
	}
}

// NewAIProviderError creates an error for AI provider failures.
func NewAIProviderError(provider string, err error) *AppError {
	return &AppError{
		Code:       ErrAIProviderFailed,
		Message:    fmt.Sprintf("%s provider error", provider),
		Cause:      err,
		Suggestion: "Please check that you have access to the specified model",
	}
}

// NewCancelledError creates an error for an operation the operator aborted.
func NewCancelledError(message string) *AppError {
	return &AppError{
		Code:    ErrCancelled,
		Message: message,
	}
}

// FormatError formats an error for user display.
// API keys and other sensitive data are automatically masked.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(appErr.Message))

		if appErr.Cause != nil {
			sb.WriteString("\n  Cause: ")
			sb.WriteString(SanitizeErrorMessage(appErr.Cause.Error()))
		}

		if appErr.Suggestion != "" {
			sb.WriteString("\n  Suggestion: ")
			sb.WriteString(appErr.Suggestion)
		}
	} else {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(err.Error()))
	}

	return sb.String()
}

// FormatErrorVerbose formats an error with full details for verbose mode.
// API keys and other sensitive data are automatically masked.
func FormatErrorVerbose(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString(fmt.Sprintf("Error [%s]: %s\n", appErr.Code.String(), SanitizeErrorMessage(appErr.Message)))

		if appErr.Cause != nil {
			sb.WriteString(fmt.Sprintf("  Cause: %v\n", SanitizeErrorMessage(appErr.Cause.Error())))
			sb.WriteString("  Error chain:\n")
			printErrorChain(&sb, appErr.Cause, 2)
		}

		if len(appErr.Context) > 0 {
			sb.WriteString("  Context:\n")
			for k, v := range appErr.Context {
				sb.WriteString(fmt.Sprintf("    %s: %v\n", k, SanitizeErrorMessage(fmt.Sprintf("%v", v))))
			}
		}

		if appErr.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", appErr.Suggestion))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %v\n", SanitizeErrorMessage(err.Error())))
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, err, 2)
	}

	return sb.String()
}

// printErrorChain prints the error chain with indentation.
func printErrorChain(sb *strings.Builder, err error, indent int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	errMsg := SanitizeErrorMessage(err.Error())
	sb.WriteString(fmt.Sprintf("%s- %T: %v\n", prefix, err, errMsg))

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		printErrorChain(sb, unwrapped, indent+1)
	}
}

// SanitizeErrorMessage masks any API keys or sensitive data in error messages.
func SanitizeErrorMessage(msg string) string {
	return apiKeyPattern.ReplaceAllStringFunc(msg, func(match string) string {
		if len(match) <= 4 {
			return "****"
		}
		return strings.Repeat("*", len(match)-4) + match[len(match)-4:]
	})
}

// apiKeyPattern matches OpenAI style keys, including project keys (sk-proj-...).
var apiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`)
