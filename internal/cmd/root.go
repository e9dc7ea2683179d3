// Package cmd contains the CLI entry point for gait: argument routing,
// the gait-owned commands and error reporting.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gait/gait/internal/pkg/config"
	apperrors "github.com/gait/gait/internal/pkg/errors"
	"github.com/gait/gait/internal/pkg/git"
	"github.com/gait/gait/internal/pkg/security"
	"github.com/gait/gait/internal/pkg/tool"
)

// Version is set via ldflags during build.
var Version = "dev"

const usage = `Usage: gait <git-command> [args...]

Any git command is forwarded to git unchanged. gait adds:
  gait commit --ai [git commit args]   generate the commit message with AI
  gait pr --ai [gh pr create args]     draft a pull request with AI
  gait test                            check the AI API connection
  gait ai config|setup|history         manage gait's own settings`

// App runs gait with a fixed set of standard streams and working directory.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Dir is the working directory for git, gh and .env lookup; empty means the current one.
	Dir string

	verbose bool
}

// NewApp creates an App wired to the process's standard streams.
func NewApp() *App {
	return &App{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Run executes gait with args (without the program name) and returns the exit code.
func Run(ctx context.Context, args []string) int {
	return NewApp().Run(ctx, args)
}

// Run routes args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	apperrors.SetOutput(a.Err)

	if len(args) == 0 {
		fmt.Fprintln(a.Err, usage)
		return 1
	}

	if !isGaitCommand(args) {
		return a.forward(ctx, args)
	}

	root := a.NewRootCmd()
	root.SetArgs(args)
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	return a.report(root.ExecuteContext(ctx))
}

// isGaitCommand reports whether gait handles args itself rather than git.
// commit and pr are only taken over when --ai appears among their options.
func isGaitCommand(args []string) bool {
	switch args[0] {
	case "commit", "pr":
		return hasAIFlag(valueOptions[args[0]], args[1:])
	case "test", "ai":
		return true
	default:
		return false
	}
}

// valueOptions lists the options of commit (git) and pr (gh) whose value may
// be given as the next argument, along with gait's own --model and --config.
var valueOptions = map[string]map[string]bool{
	"commit": {
		"-m": true, "-F": true, "-C": true, "-c": true, "-t": true,
		"--message": true, "--file": true, "--reuse-message": true, "--reedit-message": true,
		"--author": true, "--date": true, "--cleanup": true, "--fixup": true, "--squash": true,
		"--template": true, "--trailer": true, "--pathspec-from-file": true,
		"--model": true, "--config": true,
	},
	"pr": {
		"-t": true, "-b": true, "-B": true, "-H": true, "-F": true, "-a": true,
		"-l": true, "-m": true, "-p": true, "-r": true, "-T": true, "-R": true,
		"--title": true, "--body": true, "--base": true, "--head": true, "--body-file": true,
		"--assignee": true, "--label": true, "--milestone": true, "--project": true,
		"--reviewer": true, "--template": true, "--repo": true,
		"--model": true, "--config": true,
	},
}

// hasAIFlag looks for --ai before any "--" separator, skipping the values of
// options in valueOpts so that "commit -m --ai" stays a plain git commit.
func hasAIFlag(valueOpts map[string]bool, args []string) bool {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return false
		}
		if a == aiFlag {
			return true
		}
		if takesNextArg(valueOpts, a) {
			i++
		}
	}
	return false
}

// takesNextArg reports whether opt expects its value in the following
// argument. Short options may be grouped ("-am"); only the last one in a group
// can take the next argument, an earlier one takes the rest of the group.
func takesNextArg(valueOpts map[string]bool, opt string) bool {
	if strings.HasPrefix(opt, "--") {
		return valueOpts[opt]
	}
	if len(opt) < 2 || opt[0] != '-' {
		return false
	}
	for i := 1; i < len(opt); i++ {
		if valueOpts["-"+opt[i:i+1]] {
			return i == len(opt)-1
		}
	}
	return false
}

// forward hands args to git verbatim and returns git's exit code.
func (a *App) forward(ctx context.Context, args []string) int {
	code, err := git.NewClientWithRunner(a.runner(git.DefaultExecutable)).Forward(ctx, args)
	if err != nil {
		return a.report(err)
	}
	return code
}

func (a *App) runner(executable string) *tool.Runner {
	return &tool.Runner{
		Executable: executable,
		Dir:        a.Dir,
		Stdin:      a.In,
		Stdout:     a.Out,
		Stderr:     a.Err,
	}
}

// report prints err and maps it to an exit code. A failing tool has already
// shown its own output in stream mode; captured stderr is replayed instead.
func (a *App) report(err error) int {
	if err == nil {
		return 0
	}

	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Code == apperrors.ErrUnderlyingToolFailure {
		if stderr, ok := appErr.Context["stderr"].(string); ok && stderr != "" {
			fmt.Fprintln(a.Err, stderr)
		}
		if a.verbose {
			fmt.Fprint(a.Err, apperrors.FormatErrorVerbose(err))
		}
		return appErr.ExitCode()
	}

	if a.verbose {
		fmt.Fprint(a.Err, apperrors.FormatErrorVerbose(err))
	} else {
		fmt.Fprintln(a.Err, apperrors.FormatError(err))
	}
	return apperrors.GetExitCode(err)
}

// NewRootCmd creates the cobra tree for the commands gait owns.
func (a *App) NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gait",
		Short:         "A git wrapper that writes commit messages and pull requests with AI",
		Long:          usage,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.gait/config.yaml)")
	rootCmd.PersistentFlags().String("model", "", "AI model to use")

	rootCmd.AddCommand(a.newCommitCmd())
	rootCmd.AddCommand(a.newPullRequestCmd())
	rootCmd.AddCommand(a.newTestCmd())
	rootCmd.AddCommand(a.newAICmd())

	return rootCmd
}

// globalOptions are the settings every gait-owned command accepts.
type globalOptions struct {
	verbose    bool
	configPath string
	model      string
}

func optionsFromFlags(cmd *cobra.Command) globalOptions {
	verbose, _ := cmd.Flags().GetBool("verbose")
	configPath, _ := cmd.Flags().GetString("config")
	model, _ := cmd.Flags().GetString("model")
	return globalOptions{verbose: verbose, configPath: configPath, model: model}
}

// setup applies the logging options and opens the configuration manager.
func (a *App) setup(opts globalOptions) (*config.ViperManager, error) {
	a.verbose = opts.verbose
	apperrors.SetVerbose(opts.verbose)

	if err := config.LoadDotEnv(filepath.Join(a.Dir, config.DotEnvFileName)); err != nil {
		apperrors.Warn("%v", err)
	}

	mgr, err := config.NewManager(opts.configPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to create config manager")
	}
	if opts.configPath != "" {
		apperrors.Debug("Using custom config path: %s", opts.configPath)
	}
	return mgr, nil
}

// loadConfig builds the validated configuration; flags override env, file and defaults.
func (a *App) loadConfig(opts globalOptions) (*config.ViperManager, *config.Config, error) {
	mgr, err := a.setup(opts)
	if err != nil {
		return nil, nil, err
	}

	if opts.model != "" {
		mgr.SetOverride("provider.model", opts.model)
		apperrors.Debug("Model overridden via flag: %s", opts.model)
	}

	cfg, err := mgr.Load()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	apperrors.Info("Using model: %s", cfg.Provider.Model)
	if cfg.Provider.Endpoint != "" {
		apperrors.Info("Using endpoint: %s", cfg.Provider.Endpoint)
	}
	if cfg.Provider.APIKey != "" {
		apperrors.Info("API key: %s", security.MaskAPIKey(cfg.Provider.APIKey))
	}

	return mgr, cfg, nil
}
