package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gait/gait/internal/pkg/history"
)

// DefaultHistoryLimit is the default number of history entries to display.
const DefaultHistoryLimit = 20

func (a *App) newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "View generated commit messages and pull requests",
		Long: `View the history of generated commit messages and pull requests.

Examples:
  gait ai history            # Show last 20 entries
  gait ai history --limit 5  # Show last 5 entries
  gait ai history clear      # Clear all history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			_, cfg, err := a.loadConfig(optionsFromFlags(cmd))
			if err != nil {
				return err
			}

			if !cfg.History.Enabled {
				fmt.Fprintln(a.Out, "History is disabled. Enable it with: gait ai config set history.enabled true")
				return nil
			}

			entries, err := history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries).List(limit)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(a.Out, "No history entries found.")
				return nil
			}

			fmt.Fprintf(a.Out, "Showing %d most recent entries:\n\n", len(entries))
			for i := len(entries) - 1; i >= 0; i-- {
				printHistoryEntry(a.Out, entries[i], len(entries)-i)
			}
			return nil
		},
	}

	historyCmd.Flags().IntP("limit", "l", DefaultHistoryLimit, "Number of entries to display")
	historyCmd.AddCommand(a.newHistoryClearCmd())

	return historyCmd
}

// printHistoryEntry formats and prints a single history entry.
func printHistoryEntry(w io.Writer, entry *history.Entry, index int) {
	status := "not committed"
	if entry.Committed {
		status = "committed"
		if entry.Kind == history.KindPullRequest {
			status = "created"
		}
	}

	fmt.Fprintf(w, "[%d] %s %s (%s, %s)\n", index, entry.Timestamp.Format(time.RFC3339), entry.Kind, entry.Decision, status)
	if entry.Model != "" {
		fmt.Fprintf(w, "    Model: %s\n", entry.Model)
	}

	printIndented(w, "Generated:", entry.Generated)
	if entry.Final != "" && entry.Final != entry.Generated {
		printIndented(w, "Final:", entry.Final)
	}
	fmt.Fprintln(w)
}

func printIndented(w io.Writer, label, text string) {
	fmt.Fprintf(w, "    %s\n", label)
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(w, "      %s\n", line)
	}
}

func (a *App) newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all history entries",
		Long: `Delete all entries from the history file.

This action cannot be undone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := a.loadConfig(optionsFromFlags(cmd))
			if err != nil {
				return err
			}

			if err := history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries).Clear(); err != nil {
				return err
			}

			fmt.Fprintln(a.Out, "History cleared successfully.")
			return nil
		},
	}
}
