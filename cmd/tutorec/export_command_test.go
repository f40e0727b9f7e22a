package main

import (
	"path/filepath"
	"testing"
	"time"

	"tutorec/internal/media"
	"tutorec/internal/testsupport"
)

func seedProjectFolder(t *testing.T, projectsDir string) string {
	t.Helper()
	folder := filepath.Join(projectsDir, "demo")
	testsupport.WriteFile(t, filepath.Join(folder, "screen.mp4"), 4096)
	testsupport.WriteFile(t, filepath.Join(folder, "webcam.mp4"), 2048)
	testsupport.WriteFile(t, filepath.Join(folder, "mic1.wav"), 1024)
	meta := media.Metadata{
		ProjectName:    "demo",
		StartTimestamp: time.Now().Add(-45 * time.Second),
		StopTimestamp:  time.Now(),
		Recordings:     []string{"mic1", "webcam", "screen"},
	}
	if err := meta.Save(filepath.Join(folder, media.MetadataFileName)); err != nil {
		t.Fatalf("save metadata: %v", err)
	}
	return folder
}

func TestExportCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	folder := seedProjectFolder(t, env.cfg.Paths.ProjectsDir)

	out, _, err := runCLI(t, []string{"export", folder, "--layout", "down_right"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	requireContains(t, out, "Merging")
	requireContains(t, out, "Down Right")
	requireContains(t, out, "Export complete:")

	out, _, err = runCLI(t, []string{"export", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("export status: %v", err)
	}
	requireContains(t, out, "succeeded")
}

func TestExportByProjectName(t *testing.T) {
	env := setupCLITestEnv(t)
	seedProjectFolder(t, env.cfg.Paths.ProjectsDir)

	out, _, err := runCLI(t, []string{"export", "demo", "--layout", "top left"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("export by name: %v\n%s", err, out)
	}
	requireContains(t, out, "Export complete:")
}

func TestExportRequiresLayout(t *testing.T) {
	socket, configPath, _ := setupOfflineConfig(t)

	_, _, err := runCLI(t, []string{"export", "somewhere"}, socket, configPath)
	if err == nil {
		t.Fatal("expected missing layout error")
	}
	requireContains(t, err.Error(), "--layout is required")

	out, _, err := runCLI(t, []string{"export"}, socket, configPath)
	if err != nil {
		t.Fatalf("bare export: %v", err)
	}
	requireContains(t, out, "Merge a recorded project folder")
}

func TestExportCancelWithoutTask(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"export", "cancel"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected cancel without a task to fail")
	}
}
