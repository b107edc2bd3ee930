// Package config handles configuration loading and defaults for lifeos.
// Configuration is loaded from XDG-compliant paths (typically
// ~/.config/lifeos/config.yaml) and then overridden from LIFEOS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"lifeos/internal/fsutil"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.lifeos)
	DataDir string `yaml:"data_dir,omitempty"`

	Storage   StorageConfig   `yaml:"storage,omitempty"`
	Dashboard DashboardConfig `yaml:"dashboard,omitempty"`
	Theme     ThemeConfig     `yaml:"theme,omitempty"`
	Keys      KeysConfig      `yaml:"keys,omitempty"`

	// UX and Notifications hold booleans whose false must survive a save.
	UX            UXConfig           `yaml:"ux"`
	Notifications NotificationConfig `yaml:"notifications"`
	Backup        BackupConfig       `yaml:"backup,omitempty"`
}

// StorageConfig selects where the snapshot is kept.
type StorageConfig struct {
	// Backend is "file" or "sqlite"
	Backend string `yaml:"backend,omitempty"`
}

// DashboardConfig controls the metrics shown on the dashboard.
type DashboardConfig struct {
	// Windows are the day counts metrics are computed over
	Windows []int `yaml:"windows,omitempty"`
}

// NotificationConfig defines desktop notification settings.
type NotificationConfig struct {
	Enabled bool `yaml:"enabled"`
	Sound   bool `yaml:"sound"`
}

// BackupConfig defines backup retention.
type BackupConfig struct {
	// Keep is how many backups prune leaves behind
	Keep int `yaml:"keep,omitempty"`
}

// ThemeConfig defines color settings (hex, e.g. "#FF5733").
type ThemeConfig struct {
	Primary string `yaml:"primary,omitempty"`
	Accent  string `yaml:"accent,omitempty"`
	Muted   string `yaml:"muted,omitempty"`
	Warning string `yaml:"warning,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings,
// e.g. "q,ctrl+c" or "j,down". Empty means the built-in default.
type KeysConfig struct {
	Quit     string `yaml:"quit,omitempty"`
	Help     string `yaml:"help,omitempty"`
	NextPane string `yaml:"next_pane,omitempty"`
	Up       string `yaml:"up,omitempty"`
	Down     string `yaml:"down,omitempty"`

	Add    string `yaml:"add,omitempty"`
	Toggle string `yaml:"toggle,omitempty"`
	Delete string `yaml:"delete,omitempty"`

	Journal    string `yaml:"journal,omitempty"`
	MoodUp     string `yaml:"mood_up,omitempty"`
	MoodDown   string `yaml:"mood_down,omitempty"`
	RatingUp   string `yaml:"rating_up,omitempty"`
	RatingDown string `yaml:"rating_down,omitempty"`

	ToggleTimer string `yaml:"toggle_timer,omitempty"`
	ResetTimer  string `yaml:"reset_timer,omitempty"`

	PrevDay string `yaml:"prev_day,omitempty"`
	NextDay string `yaml:"next_day,omitempty"`

	Confirm string `yaml:"confirm,omitempty"`
	Cancel  string `yaml:"cancel,omitempty"`
	Undo    string `yaml:"undo,omitempty"`
	Redo    string `yaml:"redo,omitempty"`
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// ConfirmDeletions asks before deleting habits and goals
	ConfirmDeletions bool `yaml:"confirm_deletions"`

	// NarrowLayoutThreshold is the terminal width below which panes stack
	NarrowLayoutThreshold int `yaml:"narrow_layout_threshold,omitempty"`
}

// envOverrides holds the LIFEOS_* variables applied after the file.
type envOverrides struct {
	DataDir        string `env:"LIFEOS_DATA_DIR"`
	Backend        string `env:"LIFEOS_BACKEND"`
	Notifications  string `env:"LIFEOS_NOTIFICATIONS"`
	MetricsWindows []int  `env:"LIFEOS_METRICS_WINDOWS" envSeparator:","`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir:   defaultDataDir(),
		Storage:   StorageConfig{Backend: "file"},
		Dashboard: DashboardConfig{Windows: []int{7, 30}},
		Theme: ThemeConfig{
			Primary: "#7C3AED", // Violet
			Accent:  "#10B981", // Emerald
			Muted:   "#6B7280", // Gray
			Warning: "#F59E0B", // Amber
		},
		UX: UXConfig{
			ConfirmDeletions:      true,
			NarrowLayoutThreshold: 80,
		},
		Notifications: NotificationConfig{Enabled: true},
		Backup:        BackupConfig{Keep: 10},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lifeos"
	}
	return filepath.Join(home, ".lifeos")
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lifeos")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lifeos")
}

// Path returns the config file path, or "" when no home directory exists.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from disk, merges it onto the defaults and then
// applies environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile is Load without environment overrides or validation: the
// defaults merged with the config file. It is what Save should be given when
// changing one option, so overrides never end up in the file.
func LoadFile() (*Config, error) {
	cfg := Default()
	path := Path()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.mergeYAML(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeYAML(data []byte) error {
	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return err
	}
	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; without it only non-empty values merge
	c.mergeFromYAML(&userCfg, &doc)
	return nil
}

// mergeNonEmpty applies non-empty strings and positive ints from other.
// Booleans and slices need presence-aware merging and are left alone.
func (c *Config) mergeNonEmpty(other *Config) {
	setString(&c.DataDir, other.DataDir)
	setString(&c.Storage.Backend, other.Storage.Backend)

	setString(&c.Theme.Primary, other.Theme.Primary)
	setString(&c.Theme.Accent, other.Theme.Accent)
	setString(&c.Theme.Muted, other.Theme.Muted)
	setString(&c.Theme.Warning, other.Theme.Warning)

	k, o := &c.Keys, other.Keys
	for dst, v := range map[*string]string{
		&k.Quit: o.Quit, &k.Help: o.Help, &k.NextPane: o.NextPane,
		&k.Up: o.Up, &k.Down: o.Down,
		&k.Add: o.Add, &k.Toggle: o.Toggle, &k.Delete: o.Delete,
		&k.Journal: o.Journal, &k.MoodUp: o.MoodUp, &k.MoodDown: o.MoodDown,
		&k.RatingUp: o.RatingUp, &k.RatingDown: o.RatingDown,
		&k.ToggleTimer: o.ToggleTimer, &k.ResetTimer: o.ResetTimer,
		&k.PrevDay: o.PrevDay, &k.NextDay: o.NextDay,
		&k.Confirm: o.Confirm, &k.Cancel: o.Cancel,
		&k.Undo: o.Undo, &k.Redo: o.Redo,
	} {
		setString(dst, v)
	}

	if other.UX.NarrowLayoutThreshold > 0 {
		c.UX.NarrowLayoutThreshold = other.UX.NarrowLayoutThreshold
	}
	if other.Backup.Keep > 0 {
		c.Backup.Keep = other.Backup.Keep
	}
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)

	// Without a node tree only non-empty slices are trusted.
	if doc == nil || len(doc.Content) == 0 {
		if len(other.Dashboard.Windows) > 0 {
			c.Dashboard.Windows = other.Dashboard.Windows
		}
		return
	}

	if yamlHasPath(doc, "ux", "confirm_deletions") {
		c.UX.ConfirmDeletions = other.UX.ConfirmDeletions
	}
	if yamlHasPath(doc, "notifications", "enabled") {
		c.Notifications.Enabled = other.Notifications.Enabled
	}
	if yamlHasPath(doc, "notifications", "sound") {
		c.Notifications.Sound = other.Notifications.Sound
	}
	if yamlHasPath(doc, "dashboard", "windows") {
		c.Dashboard.Windows = other.Dashboard.Windows
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

func (c *Config) applyEnv() error {
	var raw envOverrides
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString(&c.DataDir, raw.DataDir)
	setString(&c.Storage.Backend, raw.Backend)
	if raw.Notifications != "" {
		enabled, err := strconv.ParseBool(raw.Notifications)
		if err != nil {
			return fmt.Errorf("parse env: LIFEOS_NOTIFICATIONS: %w", err)
		}
		c.Notifications.Enabled = enabled
	}
	if len(raw.MetricsWindows) > 0 {
		c.Dashboard.Windows = raw.MetricsWindows
	}
	return nil
}

// Validate rejects settings the rest of the program cannot use.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "", "file", "sqlite":
	default:
		return fmt.Errorf("storage.backend %q: must be file or sqlite", c.Storage.Backend)
	}
	if slices.ContainsFunc(c.Dashboard.Windows, func(n int) bool { return n < 1 }) {
		return fmt.Errorf("dashboard.windows %v: every window must be at least 1 day", c.Dashboard.Windows)
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("backup.keep %d: must not be negative", c.Backup.Keep)
	}
	return nil
}

// MetricsWindows returns the configured dashboard windows, falling back to
// 7 and 30 days.
func (c *Config) MetricsWindows() []int {
	if len(c.Dashboard.Windows) == 0 {
		return []int{7, 30}
	}
	return c.Dashboard.Windows
}

// Save writes the configuration to disk. The default data directory is left
// out so the file keeps following the home directory.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return errors.New("no config directory")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	out := *c
	if out.DataDir == defaultDataDir() {
		out.DataDir = ""
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	if c.DataDir == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return c.DataDir
	}
	if strings.HasPrefix(c.DataDir, "~/") || strings.HasPrefix(c.DataDir, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, c.DataDir[2:])
		}
	}
	return c.DataDir
}
