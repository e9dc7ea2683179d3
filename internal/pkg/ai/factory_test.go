package ai

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gait/gait/internal/pkg/config"
	apperrors "github.com/gait/gait/internal/pkg/errors"
)

func TestNewProvider_NilConfig(t *testing.T) {
	_, err := NewProvider(nil)

	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidConfig))
}

func TestNewProvider_MapsConfig(t *testing.T) {
	cfg := &config.Config{
		Provider: config.ProviderConfig{
			APIKey:         testAPIKey,
			Model:          "gpt-4o",
			Endpoint:       "https://llm.internal.example/v1/",
			Temperature:    0.7,
			MaxTokens:      256,
			TimeoutSeconds: 12,
		},
	}

	p, err := NewProvider(cfg)
	require.NoError(t, err)

	oa, ok := p.(*OpenAIProvider)
	require.True(t, ok)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "gpt-4o", p.Model())
	assert.Equal(t, float32(0.7), oa.config.Temperature)
	assert.Equal(t, 256, oa.config.MaxTokens)
	assert.Equal(t, "12s", oa.config.Timeout.String())
	assert.Equal(t, "https://llm.internal.example/v1/", oa.endpoint())
}

func TestNewProvider_InvalidCommitTemplate(t *testing.T) {
	cfg := &config.Config{
		Prompt: config.PromptConfig{CommitTemplate: "{{.Diff"},
	}

	_, err := NewProvider(cfg)

	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidConfig))
}

func TestNewProvider_CustomPromptsReachTheRequest(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "Add feature")
	})

	cfg := &config.Config{
		Provider: config.ProviderConfig{
			APIKey:         testAPIKey,
			Endpoint:       api.srv.URL + "/v1",
			TimeoutSeconds: 2,
		},
		Prompt: config.PromptConfig{
			System:         "You write terse commit subjects.",
			CommitTemplate: "Summarize:\n{{.Diff}}",
		},
	}

	p, err := NewProvider(cfg)
	require.NoError(t, err)

	msg, err := p.GenerateCommitMessage(context.Background(), "+new line")
	require.NoError(t, err)
	assert.Equal(t, "Add feature", msg)

	req, _ := api.request()
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "You write terse commit subjects.", req.Messages[0].Content)
	assert.Equal(t, "Summarize:\n+new line", req.Messages[1].Content)
}

func TestNewProvider_SystemPromptOnlyKeepsDefaultTemplate(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "Add feature")
	})

	cfg := &config.Config{
		Provider: config.ProviderConfig{APIKey: testAPIKey, Endpoint: api.srv.URL + "/v1", TimeoutSeconds: 2},
		Prompt:   config.PromptConfig{System: "Be brief."},
	}

	p, err := NewProvider(cfg)
	require.NoError(t, err)

	_, err = p.GenerateCommitMessage(context.Background(), "+x")
	require.NoError(t, err)

	req, _ := api.request()
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "Be brief.", req.Messages[0].Content)
	assert.Contains(t, req.Messages[1].Content, "Git diff:\n+x")
}
