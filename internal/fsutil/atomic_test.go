package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	if err := WriteFileAtomic(path, []byte("one"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic() overwrite error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "two" {
		t.Errorf("contents = %q, want two", got)
	}

	leftovers, _ := filepath.Glob(path + ".tmp-*")
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestWriteAtomicFailureKeepsOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := WriteFileAtomic(path, []byte("original"), 0600); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := WriteAtomic(path, 0600, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WriteAtomic() error = %v, want boom", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Errorf("contents after failed write = %q, want original", got)
	}
	leftovers, _ := filepath.Glob(path + ".tmp-*")
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestJSONHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	in := map[string]int{"days": 3}
	if err := WriteJSON(path, in, 0600); err != nil {
		t.Fatal(err)
	}
	var out map[string]int
	if err := ReadJSON(path, &out); err != nil {
		t.Fatal(err)
	}
	if out["days"] != 3 {
		t.Errorf("ReadJSON() = %v", out)
	}
}

func TestBestEffortBackupAndQuarantine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	// Missing source is ignored.
	BestEffortBackup(path, 0600)
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Fatalf("backup created for missing file: %v", err)
	}

	if err := os.WriteFile(path, []byte("data"), 0600); err != nil {
		t.Fatal(err)
	}
	BestEffortBackup(path, 0600)
	if got, _ := os.ReadFile(path + ".bak"); string(got) != "data" {
		t.Errorf("backup contents = %q", got)
	}

	moved, err := Quarantine(path, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if moved != path+".corrupt.20250102-030405" {
		t.Errorf("quarantine path = %q", moved)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("original still present after quarantine")
	}
}
