package ai

import (
	"text/template"
	"time"

	"github.com/gait/gait/internal/pkg/config"
	apperrors "github.com/gait/gait/internal/pkg/errors"
)

// NewProvider creates the AI provider described by the configuration.
func NewProvider(cfg *config.Config) (Provider, error) {
	if cfg == nil {
		return nil, apperrors.NewInvalidConfigError("configuration is required")
	}

	provider := NewOpenAIProvider(ProviderConfig{
		APIKey:      cfg.Provider.APIKey,
		Model:       cfg.Provider.Model,
		Endpoint:    cfg.Provider.Endpoint,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
		Timeout:     time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	})

	if cfg.Prompt.System != "" || cfg.Prompt.CommitTemplate != "" {
		if _, err := template.New("commit").Parse(cfg.Prompt.CommitTemplate); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "invalid prompt.commit_template")
		}
		provider.SetCommitPromptTemplate(NewPromptTemplateWithCustom(
			NewCommitPromptTemplate(), cfg.Prompt.System, cfg.Prompt.CommitTemplate))
	}

	return provider, nil
}
