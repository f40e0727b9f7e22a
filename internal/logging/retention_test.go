package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tutorec/internal/logging"
)

func TestCleanupOldLogsRemovesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "tutorec-2024-01-01.log")
	fresh := filepath.Join(dir, "tutorec.log")

	for _, path := range []string{stale, fresh} {
		if err := os.WriteFile(path, []byte("line\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	old := time.Now().AddDate(0, 0, -90)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("age file: %v", err)
	}

	logging.CleanupOldLogs(logging.NewNop(), 30, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "tutorec*.log",
		Exclude: []string{fresh},
	})

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale log removed, stat err=%v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("expected fresh log kept: %v", err)
	}
}

func TestCleanupOldLogsDisabled(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "tutorec-old.log")
	if err := os.WriteFile(stale, []byte("line\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	old := time.Now().AddDate(0, 0, -365)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("age file: %v", err)
	}

	logging.CleanupOldLogs(logging.NewNop(), 0, logging.RetentionTarget{Dir: dir, Pattern: "*.log"})

	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("expected file kept when retention disabled: %v", err)
	}
}
