// Package backup manages timestamped copies of the persisted snapshot.
// Each backup is a directory under <data_dir>/backups holding the raw state
// document and a manifest with summary counts.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"lifeos/internal/fsutil"
	"lifeos/internal/state"
	"lifeos/internal/storage"
)

const (
	ManifestVersion = "1.0"
	ManifestFile    = "manifest.json"
	StateFile       = "state.json"
	BackupsDir      = "backups"
)

// ErrNoBackups is returned by RestoreLatest when nothing has been backed up.
var ErrNoBackups = errors.New("no backups available")

// Manager handles backup and restore operations.
type Manager struct {
	store      *storage.Storage
	backupDir  string
	appVersion string
	now        func() time.Time
}

// Manifest contains metadata about a backup.
type Manifest struct {
	Version    string         `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Source     string         `json:"source"`
	Stats      map[string]int `json:"stats"`
}

// BackupInfo contains summary information about a backup.
type BackupInfo struct {
	Name      string         // Directory name (2025-12-15_143022_123)
	Path      string         // Full path to backup directory
	CreatedAt time.Time      // When the backup was created
	Stats     map[string]int // days, habits, goals, tasks
}

// NewManager creates a backup manager that copies from store into
// <dataDir>/backups.
func NewManager(store *storage.Storage, dataDir, appVersion string) *Manager {
	return &Manager{
		store:      store,
		backupDir:  filepath.Join(dataDir, BackupsDir),
		appVersion: appVersion,
		now:        time.Now,
	}
}

// Dir returns the directory backups are written to.
func (m *Manager) Dir() string {
	return m.backupDir
}

// Create writes a backup of the currently persisted document and returns
// its name.
func (m *Manager) Create(ctx context.Context) (string, error) {
	data, err := m.store.ReadRaw(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("nothing to back up: %w", err)
		}
		return "", fmt.Errorf("failed to read state: %w", err)
	}

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Names have millisecond resolution; step forward on a collision.
	now := m.now()
	var name, backupPath string
	for {
		name = fmt.Sprintf("%s_%03d", now.Format("2006-01-02_150405"), now.Nanosecond()/1e6)
		backupPath = filepath.Join(m.backupDir, name)
		err := os.Mkdir(backupPath, 0700)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create backup: %w", err)
		}
		now = now.Add(time.Millisecond)
	}

	if err := fsutil.WriteFileAtomic(filepath.Join(backupPath, StateFile), data, 0600); err != nil {
		_ = os.RemoveAll(backupPath)
		return "", fmt.Errorf("failed to copy state: %w", err)
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Source:     m.store.Location(),
		Stats:      countItems(data),
	}
	if err := fsutil.WriteJSON(filepath.Join(backupPath, ManifestFile), manifest, 0600); err != nil {
		_ = os.RemoveAll(backupPath)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return name, nil
}

// List returns all available backups, newest first.
func (m *Manager) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.info(entry.Name())
		if err != nil {
			continue // not one of ours
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// GetBackup returns information about a specific backup.
func (m *Manager) GetBackup(name string) (*BackupInfo, error) {
	if err := validateBackupName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(m.backupDir, name)); os.IsNotExist(err) {
		return nil, fmt.Errorf("backup not found: %s", name)
	}
	return m.info(name)
}

func (m *Manager) info(name string) (*BackupInfo, error) {
	backupPath := filepath.Join(m.backupDir, name)

	var manifest Manifest
	if err := fsutil.ReadJSON(filepath.Join(backupPath, ManifestFile), &manifest); err != nil {
		createdAt, parseErr := parseBackupName(name)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid backup: %s", name)
		}
		manifest.CreatedAt = createdAt
		manifest.Stats = make(map[string]int)
	}

	return &BackupInfo{
		Name:      name,
		Path:      backupPath,
		CreatedAt: manifest.CreatedAt,
		Stats:     manifest.Stats,
	}, nil
}

// Restore replaces the persisted snapshot with the one in the named backup
// and returns it. The backup is parsed before anything is touched, and a
// safety backup of the current document is taken first.
func (m *Manager) Restore(ctx context.Context, name string) (*state.Snapshot, error) {
	if err := validateBackupName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(m.backupDir, name, StateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("backup not found: %s", name)
		}
		return nil, err
	}
	snap, err := storage.ParseImport(data)
	if err != nil {
		return nil, fmt.Errorf("backup %s is invalid: %w", name, err)
	}

	safetyName, err := m.Create(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to create safety backup: %w", err)
	}

	if err := m.store.Save(ctx, snap); err != nil {
		if safetyName != "" {
			return nil, fmt.Errorf("failed to restore %s (safety backup: %s): %w", name, safetyName, err)
		}
		return nil, fmt.Errorf("failed to restore %s: %w", name, err)
	}
	return snap, nil
}

// RestoreLatest restores from the most recent backup.
func (m *Manager) RestoreLatest(ctx context.Context) (*state.Snapshot, string, error) {
	backups, err := m.List()
	if err != nil {
		return nil, "", err
	}
	if len(backups) == 0 {
		return nil, "", ErrNoBackups
	}
	snap, err := m.Restore(ctx, backups[0].Name)
	return snap, backups[0].Name, err
}

// Delete removes a specific backup.
func (m *Manager) Delete(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}
	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}
	return os.RemoveAll(backupPath)
}

// Prune removes old backups, keeping only the keep most recent.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative")
	}

	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, b := range backups[keep:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// countItems summarizes a state document for the manifest. A document that
// does not decode yields empty stats rather than failing the backup.
func countItems(data []byte) map[string]int {
	stats := make(map[string]int)
	snap, _, err := storage.Decode(data)
	if err != nil {
		return stats
	}
	stats["days"] = len(snap.Days)
	stats["habits"] = len(snap.Habits)
	stats["goals"] = len(snap.Goals)
	tasks := 0
	for _, d := range snap.Days {
		tasks += len(d.Tasks)
	}
	stats["tasks"] = tasks
	return stats
}

func validateBackupName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name is required")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseBackupName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

// parseBackupName parses a backup directory name (2006-01-02_150405_mmm)
// into a timestamp. Names without the millisecond suffix are accepted too.
func parseBackupName(name string) (time.Time, error) {
	const layout = "2006-01-02_150405"
	if len(name) != len(layout)+4 {
		return time.Parse(layout, name)
	}
	base, err := time.Parse(layout, name[:len(layout)])
	if err != nil {
		return time.Time{}, err
	}
	if name[len(layout)] != '_' {
		return time.Time{}, fmt.Errorf("invalid backup format")
	}
	ms, err := strconv.Atoi(name[len(layout)+1:])
	if err != nil || ms < 0 || ms > 999 {
		return time.Time{}, fmt.Errorf("invalid milliseconds")
	}
	return base.Add(time.Duration(ms) * time.Millisecond), nil
}
