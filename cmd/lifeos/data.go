package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lifeos/internal/backup"
	"lifeos/internal/fsutil"
	"lifeos/internal/importer"
	"lifeos/internal/session"
	"lifeos/internal/state"
	"lifeos/internal/storage"

	"github.com/spf13/cobra"
)

var (
	exportOutput  string
	importForce   bool
	restoreLatest bool
	restoreForce  bool
	pruneKeep     int
	tasksDryRun   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all data as a JSON document",
	Long: `Export all data as a JSON document that "lifeos import" accepts.
Without --output the document is written to lifeos-backup-YYYY-MM-DD.json
in the current directory. Use --output - for stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := storage.Encode(sess.Snapshot())
		if err != nil {
			return err
		}

		if exportOutput == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		path := exportOutput
		if path == "" {
			path = storage.ExportFilename(now())
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := fsutil.WriteFileAtomic(path, data, 0600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all data with an exported document",
	Long: `Replace all data with an exported document. The document is checked
in full before anything changes; a malformed document leaves your data
untouched. The import can be undone from the dashboard.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		snap, err := storage.ParseImport(data)
		if err != nil {
			return err
		}

		if !importForce {
			fmt.Fprintf(cmd.OutOrStdout(), "Import %d days, %d habits and %d goals, replacing current data.\n",
				len(snap.Days), len(snap.Habits), len(snap.Goals))
			ok, err := confirm(cmd, "Continue?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		if err := sess.Replace(ctxOf(cmd), "Imported "+filepath.Base(args[0]), snap); err != nil {
			return fmt.Errorf("failed to save import: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Import complete")
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a backup of the stored data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := backupManager()
		name, err := mgr.Create(ctxOf(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Backup created: %s\n", name)

		if keep := appConfig.Backup.Keep; keep > 0 {
			deleted, err := mgr.Prune(keep)
			if err != nil {
				logger.Printf("prune failed: %v", err)
			} else if deleted > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  Pruned %d old backups\n", deleted)
			}
		}
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List backups, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backups, err := backupManager().List()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), backups)
		}
		if len(backups) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No backups found.")
			return nil
		}
		for _, b := range backups {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
				b.Name, b.CreatedAt.Local().Format("2006-01-02 15:04:05"), mutedStyle.Render(statsText(b.Stats)))
		}
		return nil
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keep := pruneKeep
		if !cmd.Flags().Changed("keep") {
			keep = appConfig.Backup.Keep
		}
		deleted, err := backupManager().Prune(keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d backups, kept %d\n", deleted, keep)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore [backup]",
	Short: "Restore data from a backup",
	Long: `Restore data from a named backup or, with --latest, the newest one.
A safety backup of the current data is taken first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := backupManager()

		var name string
		switch {
		case restoreLatest && len(args) == 0:
			backups, err := mgr.List()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				return backup.ErrNoBackups
			}
			name = backups[0].Name
		case len(args) == 1 && !restoreLatest:
			name = args[0]
			if _, err := mgr.GetBackup(name); err != nil {
				return err
			}
		default:
			return errors.New("name a backup or pass --latest (see 'lifeos backup list')")
		}

		if !restoreForce {
			ok, err := confirm(cmd, fmt.Sprintf("Replace current data with backup %s?", name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		if _, err := mgr.Restore(ctxOf(cmd), name); err != nil {
			return err
		}
		if err := sess.Reload(ctxOf(cmd)); err != nil {
			return fmt.Errorf("restored %s but failed to reload: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored from %s\n", name)
		return nil
	},
}

var taskImportCmd = &cobra.Command{
	Use:   "import <format> <file>",
	Short: "Import tasks from Todoist or Taskwarrior",
	Long: `Import tasks from another to-do app. Each task is added to the day it
was due, or to --date (default today) when it had none. Tasks already
present on their day are skipped, so an import can be repeated safely.

Formats:
  todoist      CSV file from a Todoist backup
  taskwarrior  output of "task export" (JSON array or one task per line)`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		imp := importer.Get(args[0])
		if imp == nil {
			return fmt.Errorf("unknown format %q (supported: %s)", args[0], strings.Join(importer.SupportedFormats(), ", "))
		}
		fallback, err := dateOr(dayDate)
		if err != nil {
			return err
		}

		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		tasks, err := imp.Parse(f)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[1], err)
		}

		w := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(w, "No tasks found to import.")
			return nil
		}

		if tasksDryRun {
			_, res := importer.Apply(sess.Snapshot(), tasks, fallback)
			fmt.Fprintf(w, "Preview: %d tasks to import, %d already present\n", res.Imported, res.Skipped)
			for _, t := range tasks[:min(len(tasks), 20)] {
				due := t.Due
				if due == "" {
					due = fallback
				}
				fmt.Fprintf(w, "  %s %s %s\n", due, checkmark(t.Done), t.Text)
			}
			if len(tasks) > 20 {
				fmt.Fprintf(w, "  ... and %d more\n", len(tasks)-20)
			}
			fmt.Fprintln(w, "\nRun without --dry-run to import.")
			return nil
		}

		res, err := session.Update(ctxOf(cmd), sess, "Imported tasks from "+imp.Name(), func(s *state.Snapshot) (*state.Snapshot, importer.Result) {
			return importer.Apply(s, tasks, fallback)
		})
		if err != nil {
			logger.Printf("tasks imported but not saved: %v", err)
		}
		fmt.Fprintf(w, "✓ Imported %d tasks into %d days\n", res.Imported, len(res.Days))
		if res.Skipped > 0 {
			fmt.Fprintf(w, "  Skipped %d already present\n", res.Skipped)
		}
		for _, e := range res.Errors {
			fmt.Fprintf(w, "  Error: %s\n", e)
		}
		return nil
	},
}

func backupManager() *backup.Manager {
	return backup.NewManager(store, appConfig.GetDataDir(), version)
}

func statsText(stats map[string]int) string {
	parts := make([]string, 0, 4)
	for _, k := range []string{"days", "habits", "goals", "tasks"} {
		if n, ok := stats[k]; ok {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	return strings.Join(parts, ", ")
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file, or - for stdout")
	importCmd.Flags().BoolVarP(&importForce, "force", "f", false, "Skip confirmation prompt")
	backupPruneCmd.Flags().IntVar(&pruneKeep, "keep", 10, "Number of backups to keep")
	restoreCmd.Flags().BoolVar(&restoreLatest, "latest", false, "Restore the newest backup")
	restoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false, "Skip confirmation prompt")
	taskImportCmd.Flags().BoolVar(&tasksDryRun, "dry-run", false, "Preview without importing")

	backupCmd.AddCommand(backupListCmd, backupPruneCmd)
	taskCmd.AddCommand(taskImportCmd)
	rootCmd.AddCommand(exportCmd, importCmd, backupCmd, restoreCmd)
}
