// Package github drives the GitHub CLI (gh) for pull request creation.
package github

import (
	"context"
	"strings"

	apperrors "github.com/gait/gait/internal/pkg/errors"
	"github.com/gait/gait/internal/pkg/tool"
)

// DefaultExecutable is the GitHub CLI executable looked up on PATH.
const DefaultExecutable = "gh"

// Client defines the GitHub CLI operations gait needs.
type Client interface {
	// AuthStatus reports whether gh is installed and logged in.
	AuthStatus(ctx context.Context) error
	// CreatePullRequest runs gh pr create with the given title, body and extra flags.
	CreatePullRequest(ctx context.Context, title, body string, extraArgs ...string) error
}

// CLIClient implements Client on top of a tool.Runner.
type CLIClient struct {
	runner *tool.Runner
}

// NewClient creates a CLIClient for executable, wired to the process's streams.
func NewClient(executable string) *CLIClient {
	if executable == "" {
		executable = DefaultExecutable
	}
	return NewClientWithRunner(tool.NewRunner(executable))
}

// NewClientWithRunner creates a CLIClient around an existing runner.
func NewClientWithRunner(r *tool.Runner) *CLIClient {
	return &CLIClient{runner: r}
}

// AuthStatus runs `gh auth status`.
func (c *CLIClient) AuthStatus(ctx context.Context) error {
	_, err := c.runner.Capture(ctx, "auth", "status")
	if err == nil {
		return nil
	}

	if apperrors.HasCode(err, apperrors.ErrExecutableNotFound) {
		return apperrors.GetAppError(err).
			WithSuggestion("Install the GitHub CLI from https://cli.github.com and run 'gh auth login'")
	}

	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Code == apperrors.ErrUnderlyingToolFailure {
		stderr, _ := appErr.Context["stderr"].(string)
		return apperrors.Wrap(err, apperrors.ErrAuthenticationMissing, "GitHub CLI is not authenticated").
			WithContext("stderr", stderr).
			WithSuggestion("Run 'gh auth login' and try again")
	}

	return err
}

// CreatePullRequest runs `gh pr create --title title --body body extraArgs...` in
// stream mode so gh can print the new pull request URL or ask its own questions.
func (c *CLIClient) CreatePullRequest(ctx context.Context, title, body string, extraArgs ...string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.New(apperrors.ErrInvalidArguments, "pull request title cannot be empty")
	}

	args := append([]string{"pr", "create", "--title", title, "--body", body}, extraArgs...)
	code, err := c.runner.Stream(ctx, args...)
	if err != nil {
		return err
	}
	if code != 0 {
		return apperrors.NewToolFailureError(c.runner.Executable, code, "")
	}
	return nil
}
