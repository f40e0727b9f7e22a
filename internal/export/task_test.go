package export_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tutorec/internal/export"
	"tutorec/internal/media"
)

func waitForTask(t *testing.T, task *export.Task) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not settle")
	}
}

func TestTaskLifecycle(t *testing.T) {
	folder := writeProjectFolder(t, 1, 10*time.Second)
	fake := &fakeExecutor{
		writeOutput: true,
		lines:       []string{"out_time_ms=5000000"},
	}
	exporter := newExporter(t, fake)

	task := exporter.Begin(context.Background(), folder, media.LayoutDownRight)
	if task.ID() == "" {
		t.Fatal("expected a task id")
	}
	waitForTask(t, task)

	if task.Running() {
		t.Fatal("expected task to be settled")
	}
	status := task.Status()
	if status.State != export.TaskSucceeded {
		t.Fatalf("expected succeeded state, got %q (%s)", status.State, status.Error)
	}
	if status.Percent != 100 {
		t.Fatalf("expected 100 percent on success, got %d", status.Percent)
	}
	if status.Layout != media.LayoutDownRight || status.Folder != folder {
		t.Fatalf("unexpected status identity: %+v", status)
	}
	want := filepath.Join(folder, "demo_down_right.mp4")
	if status.OutputPath != want {
		t.Fatalf("expected output %q, got %q", want, status.OutputPath)
	}
	if status.Error != "" {
		t.Fatalf("expected no error, got %q", status.Error)
	}
}

func TestTaskFailureCarriesMessage(t *testing.T) {
	folder := writeProjectFolder(t, 0, 10*time.Second)
	if err := os.Remove(filepath.Join(folder, "screen.mp4")); err != nil {
		t.Fatalf("remove screen: %v", err)
	}
	exporter := newExporter(t, &fakeExecutor{})

	task := exporter.Begin(context.Background(), folder, media.LayoutTopLeft)
	waitForTask(t, task)

	status := task.Status()
	if status.State != export.TaskFailed {
		t.Fatalf("expected failed state, got %q", status.State)
	}
	if status.Error == "" {
		t.Fatal("expected a failure message")
	}
	if status.OutputPath != "" {
		t.Fatalf("expected no output path on failure, got %q", status.OutputPath)
	}
}

func TestTaskCancel(t *testing.T) {
	folder := writeProjectFolder(t, 1, 10*time.Second)
	fake := &fakeExecutor{
		writeOutput: true,
		blockOnCtx:  true,
		started:     make(chan struct{}),
	}
	exporter := newExporter(t, fake)

	task := exporter.Begin(context.Background(), folder, media.LayoutVerticalBottom)
	<-fake.started
	task.Cancel()
	waitForTask(t, task)

	status := task.Status()
	if status.State != export.TaskCanceled {
		t.Fatalf("expected canceled state, got %q (%s)", status.State, status.Error)
	}
	partial := filepath.Join(folder, "demo_vertical_bottom.mp4")
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Fatalf("expected partial output removed, stat returned %v", err)
	}
}
