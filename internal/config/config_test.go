package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// writeConfig points XDG_CONFIG_HOME at a temp dir and writes content as
// the config file.
func writeConfig(t *testing.T, content string) {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	if content == "" {
		return
	}
	dir := filepath.Join(tempDir, "lifeos")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("Storage.Backend = %q, want file", cfg.Storage.Backend)
	}
	if !reflect.DeepEqual(cfg.Dashboard.Windows, []int{7, 30}) {
		t.Errorf("Dashboard.Windows = %v, want [7 30]", cfg.Dashboard.Windows)
	}
	if !cfg.Notifications.Enabled {
		t.Error("notifications should default to enabled")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	writeConfig(t, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Theme.Primary != "#7C3AED" {
		t.Errorf("Theme.Primary = %q, want #7C3AED", cfg.Theme.Primary)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	writeConfig(t, `
data_dir: /custom/data
storage:
  backend: sqlite
dashboard:
  windows: [14]
theme:
  primary: "#FF0000"
keys:
  journal: "J"
backup:
  keep: 3
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DataDir != "/custom/data" {
		t.Errorf("DataDir = %q, want /custom/data", cfg.DataDir)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Storage.Backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if !reflect.DeepEqual(cfg.MetricsWindows(), []int{14}) {
		t.Errorf("MetricsWindows() = %v, want [14]", cfg.MetricsWindows())
	}
	if cfg.Keys.Journal != "J" {
		t.Errorf("Keys.Journal = %q, want J", cfg.Keys.Journal)
	}
	if cfg.Backup.Keep != 3 {
		t.Errorf("Backup.Keep = %d, want 3", cfg.Backup.Keep)
	}
	// Muted should still be default
	if cfg.Theme.Muted != "#6B7280" {
		t.Errorf("Theme.Muted = %q, want #6B7280", cfg.Theme.Muted)
	}
}

func TestLoad_MissingBoolKeysDoesNotClobberDefaults(t *testing.T) {
	writeConfig(t, `
theme:
  primary: "#FF0000"
notifications:
  sound: true
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Notifications.Sound {
		t.Error("Notifications.Sound = false, want true")
	}
	if !cfg.Notifications.Enabled {
		t.Error("Notifications.Enabled clobbered by omitted key")
	}
	if !cfg.UX.ConfirmDeletions {
		t.Error("UX.ConfirmDeletions clobbered by omitted key")
	}
}

func TestLoad_ExplicitFalseOverridesDefault(t *testing.T) {
	writeConfig(t, `
ux:
  confirm_deletions: false
notifications:
  enabled: false
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UX.ConfirmDeletions {
		t.Error("UX.ConfirmDeletions = true, want false")
	}
	if cfg.Notifications.Enabled {
		t.Error("Notifications.Enabled = true, want false")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	writeConfig(t, `
data_dir: /from/file
storage:
  backend: file
`)
	t.Setenv("LIFEOS_DATA_DIR", "/from/env")
	t.Setenv("LIFEOS_BACKEND", "sqlite")
	t.Setenv("LIFEOS_NOTIFICATIONS", "false")
	t.Setenv("LIFEOS_METRICS_WINDOWS", "3,90")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != "/from/env" {
		t.Errorf("DataDir = %q, want /from/env", cfg.DataDir)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Storage.Backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Notifications.Enabled {
		t.Error("LIFEOS_NOTIFICATIONS=false ignored")
	}
	if !reflect.DeepEqual(cfg.Dashboard.Windows, []int{3, 90}) {
		t.Errorf("Dashboard.Windows = %v, want [3 90]", cfg.Dashboard.Windows)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "bad yaml", content: "theme: [unclosed"},
		{name: "unknown backend", content: "storage:\n  backend: postgres\n"},
		{name: "zero window", content: "dashboard:\n  windows: [0]\n"},
		{name: "bad bool env", env: map[string]string{"LIFEOS_NOTIFICATIONS": "sometimes"}},
		{name: "bad window env", env: map[string]string{"LIFEOS_METRICS_WINDOWS": "7,x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.content)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestMergeNonEmpty(t *testing.T) {
	base := Default()
	base.mergeNonEmpty(&Config{
		DataDir: "/override/path",
		Theme:   ThemeConfig{Primary: "#CUSTOM"},
		Keys:    KeysConfig{Undo: "z"},
	})

	if base.DataDir != "/override/path" {
		t.Errorf("DataDir = %q, want /override/path", base.DataDir)
	}
	if base.Theme.Primary != "#CUSTOM" {
		t.Errorf("Theme.Primary = %q, want #CUSTOM", base.Theme.Primary)
	}
	if base.Keys.Undo != "z" {
		t.Errorf("Keys.Undo = %q, want z", base.Keys.Undo)
	}
	if base.Theme.Accent != "#10B981" {
		t.Errorf("Theme.Accent = %q, want #10B981", base.Theme.Accent)
	}
}

func TestGetDataDir(t *testing.T) {
	if got := (&Config{}).GetDataDir(); filepath.Base(got) != ".lifeos" {
		t.Errorf("GetDataDir() = %q, want to end with .lifeos", got)
	}
	if got := (&Config{DataDir: "/custom/path"}).GetDataDir(); got != "/custom/path" {
		t.Errorf("GetDataDir() = %q, want /custom/path", got)
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		t.Skip("no home directory")
	}
	if got := (&Config{DataDir: "~"}).GetDataDir(); got != home {
		t.Errorf("GetDataDir(~) = %q, want %q", got, home)
	}
	if got := (&Config{DataDir: "~/mydata"}).GetDataDir(); got != filepath.Join(home, "mydata") {
		t.Errorf("GetDataDir(~/mydata) = %q", got)
	}
}

func TestSave(t *testing.T) {
	writeConfig(t, "")

	cfg := Default()
	cfg.DataDir = "/saved/path"
	cfg.Notifications.Enabled = false

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(Path()); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DataDir != "/saved/path" {
		t.Errorf("loaded DataDir = %q, want /saved/path", loaded.DataDir)
	}
	if loaded.Notifications.Enabled {
		t.Error("saved false was not reloaded")
	}
}

func TestSave_AllFalseNotificationsAndDefaultDataDir(t *testing.T) {
	writeConfig(t, "")

	cfg := Default()
	cfg.Notifications = NotificationConfig{}
	cfg.Backup.Keep = 4
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(Path())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "data_dir") {
		t.Errorf("default data_dir was written:\n%s", data)
	}
	if !strings.Contains(string(data), "enabled: false") {
		t.Errorf("notifications.enabled missing:\n%s", data)
	}

	loaded, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Notifications.Enabled || loaded.Backup.Keep != 4 {
		t.Errorf("reloaded = %+v %+v", loaded.Notifications, loaded.Backup)
	}
	if loaded.DataDir != Default().DataDir {
		t.Errorf("DataDir = %q, want default", loaded.DataDir)
	}

	cfg.Backup.Keep = -1
	if err := cfg.Save(); err == nil {
		t.Error("Save() accepted a negative backup.keep")
	}
}

func TestLoadFile_IgnoresEnv(t *testing.T) {
	writeConfig(t, "data_dir: /from/file\n")
	t.Setenv("LIFEOS_DATA_DIR", "/from/env")
	t.Setenv("LIFEOS_NOTIFICATIONS", "false")

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.DataDir != "/from/file" || !cfg.Notifications.Enabled {
		t.Errorf("LoadFile() applied env: DataDir=%q Notifications=%+v", cfg.DataDir, cfg.Notifications)
	}
}
