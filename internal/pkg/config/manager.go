package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigDir is the directory under the home directory holding gait's files.
	DefaultConfigDir = ".gait"
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = "config.yaml"
	// DefaultConfigFileExt is the default config file extension.
	DefaultConfigFileExt = "yaml"
	// DotEnvFileName is loaded from the working directory before the environment is read.
	DotEnvFileName = ".env"
)

// envBindings maps config keys to the environment variables that set them.
// Names earlier in a list take precedence.
var envBindings = map[string][]string{
	"provider.api_key":         {"GAIT_PROVIDER_API_KEY", "OPENAI_API_KEY"},
	"provider.model":           {"GAIT_PROVIDER_MODEL", "OPENAI_MODEL"},
	"provider.endpoint":        {"GAIT_PROVIDER_ENDPOINT", "OPENAI_BASE_URL"},
	"provider.temperature":     {"GAIT_PROVIDER_TEMPERATURE"},
	"provider.max_tokens":      {"GAIT_PROVIDER_MAX_TOKENS"},
	"provider.timeout_seconds": {"GAIT_PROVIDER_TIMEOUT_SECONDS"},

	"prompt.system":          {"GAIT_PROMPT_SYSTEM"},
	"prompt.commit_template": {"GAIT_PROMPT_COMMIT_TEMPLATE"},

	"git.executable":    {"GAIT_GIT_EXECUTABLE"},
	"github.executable": {"GAIT_GITHUB_EXECUTABLE"},

	"ui.color_enabled": {"GAIT_UI_COLOR_ENABLED"},
	"ui.spinner":       {"GAIT_UI_SPINNER"},

	"history.enabled":     {"GAIT_HISTORY_ENABLED"},
	"history.max_entries": {"GAIT_HISTORY_MAX_ENTRIES"},
	"history.file_path":   {"GAIT_HISTORY_FILE_PATH"},

	"security.warning_acknowledged": {"GAIT_SECURITY_WARNING_ACKNOWLEDGED"},
}

// ViperManager implements the Manager interface using Viper.
type ViperManager struct {
	v          *viper.Viper
	configPath string
}

// NewManager creates a new configuration manager.
// If configPath is empty, it uses the default path (~/.gait/config.yaml).
func NewManager(configPath string) (*ViperManager, error) {
	if configPath == "" {
		path, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = path
	}

	v := newFileViper(configPath)

	// Explicitly bind environment variables for nested keys
	for key, names := range envBindings {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	return &ViperManager{
		v:          v,
		configPath: configPath,
	}, nil
}

// newFileViper returns a viper instance that knows only the defaults and the file.
func newFileViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigType(DefaultConfigFileExt)
	v.SetConfigFile(configPath)
	setDefaults(v, filepath.Dir(configPath))
	return v
}

// DefaultConfigPath returns ~/.gait/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFileName), nil
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper, configDir string) {
	// Provider defaults
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.model", "gpt-4o-mini")
	v.SetDefault("provider.endpoint", "")
	v.SetDefault("provider.temperature", 0.0)
	v.SetDefault("provider.max_tokens", 4000)
	v.SetDefault("provider.timeout_seconds", 30)

	v.SetDefault("prompt.system", "")
	v.SetDefault("prompt.commit_template", "")

	v.SetDefault("git.executable", "git")
	v.SetDefault("github.executable", "gh")

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.spinner", true)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.max_entries", 1000)
	v.SetDefault("history.file_path", filepath.Join(configDir, "history.json"))

	v.SetDefault("security.warning_acknowledged", false)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set are left alone, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// readConfig reads the config file; a missing file is not an error.
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load loads the configuration from file, environment, and defaults.
// Priority: overrides > env > file > defaults
func (m *ViperManager) Load() (*Config, error) {
	if err := readConfig(m.v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Init creates a new configuration file with default values.
// Sets file permissions to 0600 for security.
func (m *ViperManager) Init() error {
	if _, err := os.Stat(m.configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", m.configPath)
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Only defaults are written; environment values such as the API key stay out of the file.
	if err := newFileViper(m.configPath).WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// Set persists a configuration value by key, creating the file if needed.
// Supports nested keys using dot notation (e.g., "provider.model").
func (m *ViperManager) Set(key string, value string) error {
	if _, known := envBindings[key]; !known {
		return fmt.Errorf("unknown config key: %s", key)
	}

	fv := newFileViper(m.configPath)
	if err := readConfig(fv); err != nil {
		return err
	}

	// The target type comes from the defaults: a file value such as
	// "temperature: 0" reads back as an int.
	convertedValue, err := convertValue(value, newFileViper(m.configPath).Get(key))
	if err != nil {
		return fmt.Errorf("failed to convert value for key %s: %w", key, err)
	}
	fv.Set(key, convertedValue)

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := fv.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	// Keep this manager's view in sync for the rest of the run.
	return readConfig(m.v)
}

// convertValue converts a string value to the type of the key's default value.
func convertValue(value string, existingValue interface{}) (interface{}, error) {
	if existingValue == nil {
		return value, nil
	}

	switch existingValue.(type) {
	case bool:
		return strconv.ParseBool(value)
	case int, int64:
		return strconv.ParseInt(value, 10, 64)
	case float32, float64:
		return strconv.ParseFloat(value, 64)
	default:
		return value, nil
	}
}

// Get retrieves a configuration value by key.
func (m *ViperManager) Get(key string) (string, error) {
	if err := readConfig(m.v); err != nil {
		return "", err
	}

	if !m.v.IsSet(key) {
		return "", fmt.Errorf("key not found: %s", key)
	}

	return fmt.Sprintf("%v", m.v.Get(key)), nil
}

// List returns all configuration values as a map.
func (m *ViperManager) List() map[string]interface{} {
	// Load config first (ignore errors, use defaults)
	_ = readConfig(m.v)

	return m.v.AllSettings()
}

// Keys returns every configuration key that Set accepts.
func Keys() []string {
	keys := make([]string, 0, len(envBindings))
	for k := range envBindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvVars returns every environment variable the configuration reads, sorted.
func EnvVars() []string {
	var names []string
	for _, list := range envBindings {
		names = append(names, list...)
	}
	sort.Strings(names)
	return names
}

// SetOverride sets a temporary override for a configuration key.
// This is used for command-line flag overrides that shouldn't persist.
func (m *ViperManager) SetOverride(key string, value interface{}) {
	m.v.Set(key, value)
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// AcknowledgeSecurityWarning marks the security warning as acknowledged.
func (m *ViperManager) AcknowledgeSecurityWarning() error {
	return m.Set("security.warning_acknowledged", "true")
}

// IsSecurityWarningAcknowledged checks if the security warning has been acknowledged.
func (m *ViperManager) IsSecurityWarningAcknowledged() bool {
	_ = readConfig(m.v)
	return m.v.GetBool("security.warning_acknowledged")
}

