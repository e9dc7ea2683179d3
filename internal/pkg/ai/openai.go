package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/gait/gait/internal/pkg/errors"
)

const (
	// DefaultOpenAIModel is the default model for OpenAI.
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultMaxTokens is the default max tokens for AI generation.
	DefaultMaxTokens = 4000

	// DefaultTimeout is the default timeout for API calls.
	DefaultTimeout = 30 * time.Second
)

const providerName = "openai"

// OpenAIProvider implements the Provider interface for OpenAI and
// OpenAI-compatible endpoints. Every call makes exactly one request.
type OpenAIProvider struct {
	client       *openai.Client
	config       ProviderConfig
	commitPrompt *PromptTemplate
	prPrompt     *PromptTemplate
}

// NewOpenAIProvider creates a new OpenAI provider.
// An empty API key is accepted here and reported on first use, before any request is sent.
func NewOpenAIProvider(config ProviderConfig) *OpenAIProvider {
	if config.Model == "" {
		config.Model = DefaultOpenAIModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	clientConfig := openai.DefaultConfig(config.APIKey)

	// Support custom endpoints (for OpenAI-compatible APIs)
	if config.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.Endpoint, "/")
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout:   config.Timeout,
		Transport: transport,
	}

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(clientConfig),
		config:       config,
		commitPrompt: NewCommitPromptTemplate(),
		prPrompt:     NewPullRequestPromptTemplate(),
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return providerName
}

// Model returns the model requests are sent to.
func (p *OpenAIProvider) Model() string {
	return p.config.Model
}

// SetCommitPromptTemplate replaces the commit prompt template.
func (p *OpenAIProvider) SetCommitPromptTemplate(pt *PromptTemplate) {
	if pt != nil {
		p.commitPrompt = pt
	}
}

// GenerateCommitMessage generates a commit message for diff.
func (p *OpenAIProvider) GenerateCommitMessage(ctx context.Context, diff string) (string, error) {
	userPrompt, err := p.commitPrompt.RenderUserPrompt(&PromptData{Diff: diff})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	return p.complete(ctx, p.commitPrompt.GetSystemPrompt(), userPrompt, p.config.MaxTokens)
}

// GeneratePullRequest generates a pull request title and body.
func (p *OpenAIProvider) GeneratePullRequest(ctx context.Context, diff, commits string) (*PullRequest, error) {
	userPrompt, err := p.prPrompt.RenderUserPrompt(&PromptData{Diff: diff, Commits: commits})
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	// The body length is left to the model.
	content, err := p.complete(ctx, p.prPrompt.GetSystemPrompt(), userPrompt, 0)
	if err != nil {
		return nil, err
	}

	return ParsePullRequest(content)
}

// Ping lists the models visible to the credential.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if p.config.APIKey == "" {
		return apperrors.NewAuthenticationMissingError()
	}

	apperrors.LogAPIRequest(providerName, p.endpoint(), p.config.Model, 0)
	startTime := time.Now()

	models, err := p.client.ListModels(ctx)
	if err != nil {
		return wrapAPIError(ctx, err)
	}

	apperrors.LogAPIResponse(providerName, len(models.Models), time.Since(startTime))
	return nil
}

// complete sends one chat completion request and returns the trimmed first choice.
func (p *OpenAIProvider) complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if p.config.APIKey == "" {
		return "", apperrors.NewAuthenticationMissingError()
	}

	chatReq := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: requestTemperature(p.config.Temperature),
		MaxTokens:   maxTokens,
	}

	apperrors.LogAPIRequest(providerName, p.endpoint(), p.config.Model, len(userPrompt))
	startTime := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", wrapAPIError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewMalformedResponseError("response contained no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	apperrors.LogAPIResponse(providerName, len(content), time.Since(startTime))

	if content == "" {
		return "", apperrors.NewMalformedResponseError("response content was empty")
	}

	return content, nil
}

func (p *OpenAIProvider) endpoint() string {
	if p.config.Endpoint == "" {
		return "default"
	}
	return p.config.Endpoint
}

// requestTemperature maps a zero temperature to the smallest positive value;
// go-openai omits a zero temperature from the request, which would fall back to
// the API default of 1.
func requestTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// wrapAPIError maps a go-openai error onto the application error taxonomy.
func wrapAPIError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return apperrors.Wrap(err, apperrors.ErrCancelled, "request cancelled")
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return wrapStatusError(err, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return wrapStatusError(err, reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode))
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewTimeoutError(err)
	}

	return apperrors.NewNetworkError(err)
}

func wrapStatusError(err error, status int, message string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.NewAuthenticationError("OpenAI")
	case http.StatusBadRequest:
		return apperrors.Wrap(err, apperrors.ErrAIProviderFailed, fmt.Sprintf("invalid request: %s", message))
	default:
		return apperrors.Wrap(err, apperrors.ErrAIProviderFailed, fmt.Sprintf("API error (status %d): %s", status, message))
	}
}
