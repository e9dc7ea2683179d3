package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gait/gait/internal/app"
	"github.com/gait/gait/internal/pkg/ai"
	"github.com/gait/gait/internal/pkg/git"
	"github.com/gait/gait/internal/pkg/github"
)

func (a *App) newPullRequestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pr --ai [gh pr create args...]",
		Short: "Open a pull request with an AI-drafted title and body",
		Long: `Draft a pull request title and body from the diff and commit log of the
current branch against the remote default branch, review it, then run
gh pr create --title <title> --body <body> with any remaining arguments.

Requires the GitHub CLI (gh) to be installed and authenticated.

Examples:
  gait pr --ai
  gait pr create --ai --draft --reviewer octocat`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, rest, err := splitGaitFlags(args)
			if err != nil {
				return err
			}

			mgr, cfg, err := a.loadConfig(opts)
			if err != nil {
				return err
			}

			provider, err := ai.NewProvider(cfg)
			if err != nil {
				return err
			}

			service := app.NewPullRequestService(
				git.NewClientWithRunner(a.runner(cfg.Git.Executable)),
				github.NewClientWithRunner(a.runner(cfg.GitHub.Executable)),
				provider,
				a.prompter(cfg),
				a.historyManager(cfg),
				mgr,
				cfg,
			)

			return service.Run(cmd.Context(), &app.PullRequestOptions{Args: rest})
		},
	}
}
