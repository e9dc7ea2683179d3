// Package git provides the git operations gait delegates to the git executable.
package git

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/gait/gait/internal/pkg/errors"
	"github.com/gait/gait/internal/pkg/tool"
)

// DefaultExecutable is the git executable looked up on PATH.
const DefaultExecutable = "git"

// fallbackBaseBranches are tried in order when origin/HEAD is not set.
var fallbackBaseBranches = []string{"main", "master"}

// Client defines the interface for Git operations.
type Client interface {
	// Forward runs git with args verbatim and returns git's exit code.
	Forward(ctx context.Context, args []string) (int, error)
	// StagedDiff returns the unified diff of staged changes.
	StagedDiff(ctx context.Context) (string, error)
	// Commit runs git commit with message and any extra commit flags.
	Commit(ctx context.Context, message string, extraArgs ...string) error
	GetCurrentBranch(ctx context.Context) (string, error)
	GetDefaultBranch(ctx context.Context) (string, error)
	BranchDiff(ctx context.Context, base, head string) (string, error)
	BranchLog(ctx context.Context, base, head string) (string, error)
}

// DefaultClient implements the Client interface on top of a tool.Runner.
type DefaultClient struct {
	runner *tool.Runner
}

// NewClient creates a DefaultClient for the git on PATH, wired to the process's streams.
func NewClient() *DefaultClient {
	return NewClientWithRunner(tool.NewRunner(DefaultExecutable))
}

// NewClientWithWorkDir creates a DefaultClient that runs git in workDir.
func NewClientWithWorkDir(workDir string) *DefaultClient {
	r := tool.NewRunner(DefaultExecutable)
	r.Dir = workDir
	return NewClientWithRunner(r)
}

// NewClientWithRunner creates a DefaultClient around an existing runner.
func NewClientWithRunner(r *tool.Runner) *DefaultClient {
	return &DefaultClient{runner: r}
}

// Forward runs git with the identical argument vector in stream mode.
// Git's exit code is returned as is; err is only set when git could not be started.
func (c *DefaultClient) Forward(ctx context.Context, args []string) (int, error) {
	return c.runner.Stream(ctx, args...)
}

// StagedDiff runs `git diff --staged` and returns its output.
// An empty diff yields ErrNoStagedChanges.
func (c *DefaultClient) StagedDiff(ctx context.Context) (string, error) {
	out, err := c.runner.Capture(ctx, "diff", "--staged")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", apperrors.NewNoStagedChangesError()
	}
	return out, nil
}

// Commit runs `git commit -m message extraArgs...` in stream mode so the
// operator sees git's own output and hooks.
func (c *DefaultClient) Commit(ctx context.Context, message string, extraArgs ...string) error {
	if strings.TrimSpace(message) == "" {
		return apperrors.New(apperrors.ErrInvalidArguments, "commit message cannot be empty")
	}

	args := append([]string{"commit", "-m", message}, extraArgs...)
	code, err := c.runner.Stream(ctx, args...)
	if err != nil {
		return err
	}
	if code != 0 {
		return apperrors.NewToolFailureError(DefaultExecutable, code, "")
	}
	return nil
}

// GetCurrentBranch returns the name of the current branch.
func (c *DefaultClient) GetCurrentBranch(ctx context.Context) (string, error) {
	out, err := c.runner.Capture(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// GetDefaultBranch returns the remote's default branch name without the
// "origin/" prefix. It reads origin/HEAD first, then probes main and master,
// and finally assumes "main".
func (c *DefaultClient) GetDefaultBranch(ctx context.Context) (string, error) {
	out, err := c.runner.Capture(ctx, "rev-parse", "--abbrev-ref", "origin/HEAD")
	if err == nil {
		return strings.TrimPrefix(strings.TrimSpace(out), "origin/"), nil
	}
	if apperrors.HasCode(err, apperrors.ErrExecutableNotFound) {
		return "", err
	}

	for _, branch := range fallbackBaseBranches {
		if _, err := c.runner.Capture(ctx, "rev-parse", "--verify", "--quiet", "origin/"+branch); err == nil {
			return branch, nil
		}
	}

	apperrors.Warn("Could not determine default branch. Using 'main'")
	return fallbackBaseBranches[0], nil
}

// BranchDiff returns the diff of origin/head against its merge base with origin/base.
func (c *DefaultClient) BranchDiff(ctx context.Context, base, head string) (string, error) {
	return c.runner.Capture(ctx, "diff", fmt.Sprintf("origin/%s...origin/%s", base, head))
}

// BranchLog returns the subjects of commits on origin/head that are not on origin/base.
func (c *DefaultClient) BranchLog(ctx context.Context, base, head string) (string, error) {
	return c.runner.Capture(ctx, "log", fmt.Sprintf("origin/%s..origin/%s", base, head), "--pretty=format:%s")
}
