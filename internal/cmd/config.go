package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gait/gait/internal/pkg/config"
	apperrors "github.com/gait/gait/internal/pkg/errors"
	"github.com/gait/gait/internal/pkg/security"
)

// newConfigCmd creates the config command and its subcommands.
func (a *App) newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gait configuration",
		Long: `Manage gait configuration settings.

Configuration is stored in ~/.gait/config.yaml by default. Environment
variables (OPENAI_API_KEY, OPENAI_MODEL, OPENAI_BASE_URL and GAIT_*) take
precedence over the file and are never written to it.`,
	}

	configCmd.AddCommand(a.newConfigInitCmd())
	configCmd.AddCommand(a.newConfigSetCmd())
	configCmd.AddCommand(a.newConfigListCmd())

	return configCmd
}

func (a *App) newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long: `Create a new configuration file with default values.

The file is created with permissions 0600 (user read/write only)
because it may contain an API key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.setup(optionsFromFlags(cmd))
			if err != nil {
				return err
			}

			if err := mgr.Init(); err != nil {
				return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to initialize config")
			}

			fmt.Fprintf(a.Out, "Configuration file created at %s\n", mgr.GetConfigPath())
			fmt.Fprintln(a.Out, "Run 'gait ai setup' or 'gait ai config set provider.api_key <key>' next.")
			return nil
		},
	}
}

func (a *App) newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value by key, creating the file if needed.

Keys: ` + strings.Join(config.Keys(), ", ") + `

Examples:
  gait ai config set provider.model gpt-4o
  gait ai config set provider.endpoint http://localhost:11434/v1
  gait ai config set history.enabled false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			mgr, err := a.setup(optionsFromFlags(cmd))
			if err != nil {
				return err
			}

			if err := mgr.Set(key, value); err != nil {
				return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to set "+key)
			}

			fmt.Fprintf(a.Out, "Set %s = %s\n", key, displayValue(key, value))
			return nil
		},
	}
}

func (a *App) newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `Display the effective configuration values.

API keys are masked, showing only the last 4 characters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.setup(optionsFromFlags(cmd))
			if err != nil {
				return err
			}

			printSettings(a.Out, "", mgr.List())
			return nil
		},
	}
}

func displayValue(key, value string) string {
	if strings.Contains(strings.ToLower(key), "api_key") && value != "" {
		return security.MaskAPIKey(value)
	}
	return value
}

// printSettings prints nested settings in sorted order, one level of indent per section.
func printSettings(w io.Writer, indent string, settings map[string]interface{}) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := settings[key].(type) {
		case map[string]interface{}:
			fmt.Fprintf(w, "%s%s:\n", indent, key)
			printSettings(w, indent+"  ", v)
		default:
			fmt.Fprintf(w, "%s%s: %s\n", indent, key, displayValue(key, fmt.Sprintf("%v", v)))
		}
	}
}
