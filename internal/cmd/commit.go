package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gait/gait/internal/app"
	"github.com/gait/gait/internal/pkg/ai"
	"github.com/gait/gait/internal/pkg/config"
	apperrors "github.com/gait/gait/internal/pkg/errors"
	"github.com/gait/gait/internal/pkg/git"
	"github.com/gait/gait/internal/pkg/history"
	"github.com/gait/gait/internal/pkg/ui"
)

const aiFlag = "--ai"

// splitGaitFlags removes --ai and gait's global options from a raw argument
// vector and returns the rest for the wrapped tool. Everything after "--" is
// left alone. Short flags are never taken, so -v still reaches git.
func splitGaitFlags(args []string) (globalOptions, []string, error) {
	var opts globalOptions
	rest := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = append(rest, args[i:]...)
			break
		}

		switch {
		case arg == aiFlag:
		case arg == "--verbose":
			opts.verbose = true
		case arg == "--config" || arg == "--model":
			if i+1 >= len(args) {
				return opts, nil, apperrors.New(apperrors.ErrInvalidArguments, "flag needs an argument: "+arg)
			}
			i++
			opts.set(arg, args[i])
		case strings.HasPrefix(arg, "--config=") || strings.HasPrefix(arg, "--model="):
			name, value, _ := strings.Cut(arg, "=")
			opts.set(name, value)
		default:
			rest = append(rest, arg)
		}
	}

	return opts, rest, nil
}

func (o *globalOptions) set(flag, value string) {
	switch flag {
	case "--config":
		o.configPath = value
	case "--model":
		o.model = value
	}
}

func (a *App) newCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit --ai [git commit args...]",
		Short: "Commit staged changes with an AI-generated message",
		Long: `Generate a commit message from the staged diff, review it, then run
git commit -m <message> with any remaining arguments.

Examples:
  gait commit --ai
  gait commit --ai --no-verify
  gait commit --ai --model gpt-4o`,
		// git commit flags must reach git untouched.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, rest, err := splitGaitFlags(args)
			if err != nil {
				return err
			}
			return a.runCommit(cmd, opts, rest)
		},
	}
}

func (a *App) runCommit(cmd *cobra.Command, opts globalOptions, gitArgs []string) error {
	mgr, cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}

	provider, err := ai.NewProvider(cfg)
	if err != nil {
		return err
	}

	service := app.NewCommitService(
		git.NewClientWithRunner(a.runner(cfg.Git.Executable)),
		provider,
		a.prompter(cfg),
		a.historyManager(cfg),
		mgr,
		cfg,
	)

	return service.Run(cmd.Context(), &app.CommitOptions{ExtraArgs: gitArgs})
}

func (a *App) prompter(cfg *config.Config) *ui.Prompter {
	return ui.NewPrompter(a.In, a.Out, cfg.UI.ColorEnabled, cfg.UI.Spinner)
}

func (a *App) historyManager(cfg *config.Config) history.Manager {
	if !cfg.History.Enabled {
		return nil
	}
	return history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries)
}
