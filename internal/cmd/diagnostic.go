package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gait/gait/internal/pkg/ai"
)

// ConnectionSuccessFormat is printed by gait test when the API answers.
const ConnectionSuccessFormat = "API connection successful! Using model: %s"

func (a *App) newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Check the connection to the AI API",
		Long: `List the models available to the configured credential to verify
that the API key, endpoint and network path all work. Nothing else is changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := a.loadConfig(optionsFromFlags(cmd))
			if err != nil {
				return err
			}

			provider, err := ai.NewProvider(cfg)
			if err != nil {
				return err
			}

			spinner := a.prompter(cfg).ShowSpinner("Testing API connection...")
			spinner.Start()
			err = provider.Ping(cmd.Context())
			spinner.Stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(a.Out, ConnectionSuccessFormat+"\n", provider.Model())
			return nil
		},
	}
}
