package main

import (
	"fmt"
	"strconv"

	"lifeos/internal/config"
	"lifeos/internal/session"
	"lifeos/internal/state"

	"github.com/spf13/cobra"
)

var (
	settingTheme     string
	settingWeekStart string
	settingNotify    string
	settingName      string
	settingSound     string
	settingKeep      int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change your preferences",
	Long: `Show or change the preferences stored with your data. Without flags the
current settings are printed. --sound and --backup-keep are written to the
config file, whose location is shown too; its other options (data directory,
backend, keys, colors) are edited by hand.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var fns []session.Mutation
		if cmd.Flags().Changed("theme") {
			theme := state.Theme(settingTheme)
			if theme != state.ThemeDark && theme != state.ThemeLight {
				return fmt.Errorf("invalid theme %q: must be dark or light", settingTheme)
			}
			fns = append(fns, func(s *state.Snapshot) *state.Snapshot { return state.SetTheme(s, theme) })
		}
		if cmd.Flags().Changed("week-start") {
			ws := state.WeekStart(settingWeekStart)
			if ws != state.WeekStartMonday && ws != state.WeekStartSunday {
				return fmt.Errorf("invalid week start %q: must be monday or sunday", settingWeekStart)
			}
			fns = append(fns, func(s *state.Snapshot) *state.Snapshot { return state.SetWeekStart(s, ws) })
		}
		if cmd.Flags().Changed("notifications") {
			on, err := strconv.ParseBool(settingNotify)
			if err != nil {
				return fmt.Errorf("invalid notifications value %q: want true or false", settingNotify)
			}
			fns = append(fns, func(s *state.Snapshot) *state.Snapshot { return state.SetNotifications(s, on) })
		}
		if cmd.Flags().Changed("name") {
			name, err := state.CleanName(settingName, state.MaxUserNameLen)
			if err != nil {
				return fmt.Errorf("invalid name: %w", err)
			}
			fns = append(fns, func(s *state.Snapshot) *state.Snapshot { return state.SetUserName(s, name) })
		}

		var edits []func(*config.Config)
		if cmd.Flags().Changed("sound") {
			on, err := strconv.ParseBool(settingSound)
			if err != nil {
				return fmt.Errorf("invalid sound value %q: want true or false", settingSound)
			}
			edits = append(edits, func(c *config.Config) { c.Notifications.Sound = on })
		}
		if cmd.Flags().Changed("backup-keep") {
			if settingKeep < 1 {
				return fmt.Errorf("invalid backup count %d: must be at least 1", settingKeep)
			}
			keep := settingKeep
			edits = append(edits, func(c *config.Config) { c.Backup.Keep = keep })
		}

		if len(edits) > 0 {
			if err := saveConfig(edits); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Config saved to %s\n", config.Path())
		}

		if len(fns) > 0 {
			changed, err := apply(cmd, "Changed settings", func(s *state.Snapshot) *state.Snapshot {
				for _, fn := range fns {
					s = fn(s)
				}
				return s
			})
			if err != nil {
				return err
			}
			if !changed && len(edits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Settings unchanged.")
				return nil
			}
			if changed {
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Settings updated")
			}
		}

		u := sess.Snapshot().User
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"user":       u,
				"configFile": config.Path(),
				"storage":    sess.Location(),
				"sound":      appConfig.Notifications.Sound,
				"backupKeep": appConfig.Backup.Keep,
			})
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Name:          %s\n", u.Name)
		fmt.Fprintf(w, "Theme:         %s\n", u.Settings.Theme)
		fmt.Fprintf(w, "Week starts:   %s\n", u.Settings.WeekStart)
		fmt.Fprintf(w, "Notifications: %t\n", u.Settings.Notifications)
		fmt.Fprintf(w, "Sound:         %t\n", appConfig.Notifications.Sound)
		fmt.Fprintf(w, "Backups kept:  %d\n", appConfig.Backup.Keep)
		fmt.Fprintf(w, "Config file:   %s\n", mutedStyle.Render(config.Path()))
		fmt.Fprintf(w, "Data:          %s\n", mutedStyle.Render(sess.Location()))
		return nil
	},
}

// saveConfig applies edits to the config file's own values and to the
// running config. Environment and flag overrides stay out of the file.
func saveConfig(edits []func(*config.Config)) error {
	cfg, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	for _, edit := range edits {
		edit(cfg)
		edit(appConfig)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func init() {
	settingsCmd.Flags().StringVar(&settingTheme, "theme", "", "Theme: dark or light")
	settingsCmd.Flags().StringVar(&settingWeekStart, "week-start", "", "First day of the week: monday or sunday")
	settingsCmd.Flags().StringVar(&settingNotify, "notifications", "", "Desktop notifications: true or false")
	settingsCmd.Flags().StringVar(&settingName, "name", "", "Display name")
	settingsCmd.Flags().StringVar(&settingSound, "sound", "", "Notification sound, saved to the config file: true or false")
	settingsCmd.Flags().IntVar(&settingKeep, "backup-keep", 0, "Backups kept when pruning, saved to the config file")
	rootCmd.AddCommand(settingsCmd)
}
