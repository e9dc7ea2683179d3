package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gait/gait/internal/pkg/ui"
)

// newAICmd groups gait's own management commands so they never shadow git's.
func (a *App) newAICmd() *cobra.Command {
	aiCmd := &cobra.Command{
		Use:     "ai",
		Short:   "Manage gait configuration, setup and history",
		Version: Version,
	}

	aiCmd.AddCommand(a.newConfigCmd())
	aiCmd.AddCommand(a.newSetupCmd())
	aiCmd.AddCommand(a.newHistoryCmd())

	return aiCmd
}

func (a *App) newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactively configure the API endpoint, key and model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.setup(optionsFromFlags(cmd))
			if err != nil {
				return err
			}
			return ui.RunInteractiveSetup(mgr, a.Out)
		},
	}
}
