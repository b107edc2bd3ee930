// Package main is the entry point for lifeos.
// It loads configuration, opens the session and dispatches subcommands.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"lifeos/internal/calendar"
	"lifeos/internal/config"
	"lifeos/internal/notify"
	"lifeos/internal/session"
	"lifeos/internal/state"
	"lifeos/internal/storage"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	// Global flags
	dataDirFlag string
	backendFlag string
	jsonOutput  bool
	noColor     bool

	// Global dependencies
	appConfig *config.Config
	sess      *session.Session
	store     *storage.Storage
	notifier  *notify.Notifier
	logger    *log.Logger

	// now is the clock every command reads "today" from.
	now = time.Now
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lifeos",
	Short: "lifeos - journal, mood, habits, goals and focus in your terminal",
	Long: `lifeos tracks your days: a journal entry, mood and rating, tasks,
alarms and habit completions per day, goals linked to habits, and a focus
timer. Everything lives in one local document.

Run "lifeos" with no arguments to open the interactive dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanup()
	},
	RunE: runTUI,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	// PersistentPostRunE is skipped when a command fails.
	_ = cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (default: ~/.lifeos or data_dir from config)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend: file or sqlite")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	rootCmd.SetVersionTemplate("lifeos {{.Version}}\n")
}

// initialize loads configuration and opens the session shared by all
// subcommands.
func initialize(cmd *cobra.Command) error {
	var err error
	appConfig, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDirFlag != "" {
		appConfig.DataDir = dataDirFlag
	}
	if backendFlag != "" {
		appConfig.Storage.Backend = backendFlag
		if err := appConfig.Validate(); err != nil {
			return err
		}
	}

	if noColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger = log.New(cmd.ErrOrStderr(), "Warning: ", 0)

	store, err = storage.Open(appConfig.Storage.Backend, appConfig.GetDataDir())
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	sess, err = session.Open(ctxOf(cmd), store, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to open session: %w", err)
	}

	notifier = notify.New(notify.Config{
		Enabled: appConfig.Notifications.Enabled,
		Sound:   appConfig.Notifications.Sound,
	})
	return nil
}

// cleanup closes the session and its storage.
func cleanup() error {
	if sess == nil {
		return nil
	}
	err := sess.Close()
	sess, store = nil, nil
	return err
}

// ctxOf returns the command context, falling back to Background.
func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// today returns the current local date key.
func today() string {
	return calendar.Today(now())
}

// dateOr validates a --date value, defaulting to today.
func dateOr(value string) (string, error) {
	switch value {
	case "", "today":
		return today(), nil
	case "yesterday":
		return calendar.PreviousDate(today()), nil
	case "tomorrow":
		return calendar.NextDate(today()), nil
	}
	if !calendar.Valid(value) {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", value)
	}
	return value, nil
}

// apply runs fn through the session and reports whether it changed
// anything. The session logs a failed save as a warning.
func apply(cmd *cobra.Command, desc string, fn session.Mutation) (bool, error) {
	changed, err := sess.Apply(ctxOf(cmd), desc, fn)
	if err != nil && !changed {
		return false, err
	}
	return changed, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// Styles shared by command output.
var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	streakStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
)

func checkmark(done bool) string {
	if done {
		return doneStyle.Render("[✓]")
	}
	return mutedStyle.Render("[ ]")
}

func scoreText(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d/%d", *v, state.MaxScore)
}
