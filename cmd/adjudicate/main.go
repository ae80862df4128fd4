// cmd/adjudicate/main.go
//
// Entry point for the adjudicate CLI. Running `adjudicate` with no
// subcommand opens the review TUI in the project root; the subcommands
// inspect upload files and past exports without starting it.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/adjudicate/internal/config"
	"github.com/kingrea/adjudicate/internal/tui"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "adjudicate [file]",
		Short: "Resolve disagreements between two annotators",
		Long: `adjudicate walks through records labelled by two annotators and lets an
adjudicator choose the final emotion, sentiment, hate speech and cyberbully
labels for each one.

Decisions are exported as CSV or JSON into the project's export directory.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var initial string
			if len(args) == 1 {
				initial = args[0]
			}
			return runTUI(cmd, initial)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newValidateCmd(),
		newSummaryCmd(),
		newExportsCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "adjudicate version %s\n", version)
			return nil
		},
	}
}

func runTUI(cmd *cobra.Command, initialPath string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if initialPath != "" {
		if initialPath, err = filepath.Abs(initialPath); err != nil {
			return fmt.Errorf("resolve %s: %w", initialPath, err)
		}
	}
	app, err := tui.NewApp(cfg, tui.WithInitialPath(initialPath))
	if err != nil {
		return err
	}
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// loadConfig initializes the project directory under --root and loads its
// config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	root, _ := cmd.Flags().GetString("root")
	if err := config.InitDir(root); err != nil {
		return nil, fmt.Errorf("error initializing %s directory: %w", config.ProjectDirName, err)
	}
	return config.NewConfig(root)
}

func jsonOutput(cmd *cobra.Command) bool {
	on, _ := cmd.Flags().GetBool("json")
	return on
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
