// Package config provides configuration management for gait.
package config

import (
	"fmt"

	apperrors "github.com/gait/gait/internal/pkg/errors"
)

// Config represents the complete gait configuration.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Prompt   PromptConfig   `mapstructure:"prompt"`
	Git      GitConfig      `mapstructure:"git"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	UI       UIConfig       `mapstructure:"ui"`
	History  HistoryConfig  `mapstructure:"history"`
	Security SecurityConfig `mapstructure:"security"`
}

// ProviderConfig contains AI provider settings.
type ProviderConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Endpoint       string  `mapstructure:"endpoint"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// PromptConfig overrides the commit message prompt. Empty fields keep the built-in prompt.
type PromptConfig struct {
	System         string `mapstructure:"system"`
	CommitTemplate string `mapstructure:"commit_template"`
}

// GitConfig contains Git-related settings.
type GitConfig struct {
	Executable string `mapstructure:"executable"`
}

// GitHubConfig contains GitHub CLI settings.
type GitHubConfig struct {
	Executable string `mapstructure:"executable"`
}

// UIConfig contains UI-related settings.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
	Spinner      bool `mapstructure:"spinner"`
}

// HistoryConfig contains history-related settings.
type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	MaxEntries int    `mapstructure:"max_entries"`
	FilePath   string `mapstructure:"file_path"`
}

// SecurityConfig contains security-related settings.
type SecurityConfig struct {
	// WarningAcknowledged is set once the first-use notice about sending diffs has been shown.
	WarningAcknowledged bool `mapstructure:"warning_acknowledged"`
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	if c.Provider.TimeoutSeconds <= 0 {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("provider.timeout_seconds must be positive, got %d", c.Provider.TimeoutSeconds))
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("provider.temperature must be between 0 and 2, got %v", c.Provider.Temperature))
	}
	if c.Provider.MaxTokens < 0 {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("provider.max_tokens must not be negative, got %d", c.Provider.MaxTokens))
	}
	if c.History.MaxEntries < 0 {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("history.max_entries must not be negative, got %d", c.History.MaxEntries))
	}
	return nil
}

// Manager defines the interface for configuration management.
type Manager interface {
	Load() (*Config, error)
	Set(key string, value string) error
	Get(key string) (string, error)
	Init() error
	List() map[string]interface{}
	GetConfigPath() string
}
