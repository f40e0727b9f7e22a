package testsupport

import (
	"context"
	"testing"
	"time"

	"tutorec/internal/config"
	"tutorec/internal/library"
	"tutorec/internal/media"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordSession catalogs a finished session for tests using the provided
// store. The metadata spans one minute ending now.
func RecordSession(t testing.TB, store *library.Store, project, folder string) *library.Recording {
	t.Helper()

	stop := time.Now().UTC().Truncate(time.Second)
	meta := media.Metadata{
		ProjectName:    project,
		StartTimestamp: stop.Add(-time.Minute),
		StopTimestamp:  stop,
		Recordings:     []string{"mic1", "webcam", "screen"},
	}
	rec, err := store.RecordSession(context.Background(), meta, folder)
	if err != nil {
		t.Fatalf("store.RecordSession: %v", err)
	}
	if rec == nil {
		t.Fatal("store.RecordSession returned no entry")
	}
	return rec
}
