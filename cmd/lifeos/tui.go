package main

import (
	"fmt"
	"os"

	"lifeos/internal/ui"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// runTUI opens the interactive dashboard.
func runTUI(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("the dashboard needs a terminal; see 'lifeos --help' for commands")
	}
	cfg := &ui.AppConfig{
		Keys:                  &appConfig.Keys,
		ConfirmDeletions:      appConfig.UX.ConfirmDeletions,
		ShowOnboarding:        true,
		NarrowLayoutThreshold: appConfig.UX.NarrowLayoutThreshold,
		MetricsWindows:        appConfig.MetricsWindows(),
		Notifier:              notifier,
	}
	return ui.Run(sess, ui.NewStyles(appConfig, sess.Snapshot().User.Settings.Theme), cfg)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard (default)",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
