// Package ai provides the AI provider interface and its OpenAI-compatible implementation.
package ai

import (
	"context"
	"time"
)

// PullRequest is a generated pull request title and markdown body.
type PullRequest struct {
	Title string
	Body  string
}

// ProviderConfig contains configuration for an AI provider.
type ProviderConfig struct {
	APIKey      string
	Model       string
	Endpoint    string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Provider defines the interface for AI providers.
type Provider interface {
	// GenerateCommitMessage returns a single commit message line for diff.
	GenerateCommitMessage(ctx context.Context, diff string) (string, error)
	// GeneratePullRequest drafts a pull request from a branch diff and its commit subjects.
	GeneratePullRequest(ctx context.Context, diff, commits string) (*PullRequest, error)
	// Ping checks that the endpoint is reachable and the credential is accepted.
	Ping(ctx context.Context) error
	Model() string
	Name() string
}
