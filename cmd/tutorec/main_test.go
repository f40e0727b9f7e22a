package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"

	"tutorec/internal/ipc"
	"tutorec/internal/recording"
	"tutorec/internal/testsupport"
)

func TestRecordLifecycleCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	projectPath := writeDemoProject(t, env.baseDir)

	out, _, err := runCLI(t, []string{"record", "start", projectPath}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("record start: %v", err)
	}
	requireContains(t, out, "Recording Demo")
	requireContains(t, out, "Staging folder:")
	requireContains(t, out, "(pid 5000)")

	out, _, err = runCLI(t, []string{"record", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("record status: %v", err)
	}
	requireContains(t, out, "recording")

	out, _, err = runCLI(t, []string{"record", "pause"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("record pause: %v", err)
	}
	requireContains(t, out, "Recording Demo paused")

	out, _, err = runCLI(t, []string{"record", "status", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("record status --json: %v", err)
	}
	var session ipc.SessionStatus
	if err := json.Unmarshal([]byte(out), &session); err != nil {
		t.Fatalf("unmarshal session: %v (%q)", err, out)
	}
	if session.State != string(recording.StatePaused) {
		t.Fatalf("state = %q, want paused", session.State)
	}
	if len(session.PauseEvents) != 1 {
		t.Fatalf("pause events = %d, want 1", len(session.PauseEvents))
	}

	out, _, err = runCLI(t, []string{"record", "resume"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("record resume: %v", err)
	}
	requireContains(t, out, "Recording Demo resumed")

	out, _, err = runCLI(t, []string{"record", "stop"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("record stop: %v", err)
	}
	requireContains(t, out, "Recording stopped after")
	requireContains(t, out, "Project folder:")
	requireContains(t, out, "Library entry: 1")

	out, _, err = runCLI(t, []string{"record", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("record status after stop: %v", err)
	}
	requireContains(t, out, "No active recording session")

	out, _, err = runCLI(t, []string{"library", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "Demo")
	requireContains(t, out, "recorded")

	out, _, err = runCLI(t, []string{"library", "remove", "1"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("library remove: %v", err)
	}
	requireContains(t, out, "Removed entry 1")

	out, _, err = runCLI(t, []string{"library", "remove", "1"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("library remove repeat: %v", err)
	}
	requireContains(t, out, "Entry 1 not found")

	out, _, err = runCLI(t, []string{"library", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("library list after remove: %v", err)
	}
	requireContains(t, out, "Library is empty")
}

func TestRecordPauseWithoutSession(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"record", "pause"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected pause without a session to fail")
	}
	requireContains(t, err.Error(), "no active recording session")
}

func TestRecordStartWithoutDaemon(t *testing.T) {
	socket, configPath, _ := setupOfflineConfig(t)
	projectPath := writeDemoProject(t, t.TempDir())

	_, _, err := runCLI(t, []string{"record", "start", projectPath}, socket, configPath)
	if err == nil {
		t.Fatal("expected error when daemon is down")
	}
	requireContains(t, err.Error(), "daemon is not running")
}

func TestDevicesCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"devices"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	requireContains(t, out, "USB Microphone")
	requireContains(t, out, "X11 display :0")
	requireContains(t, out, "screen")

	out, _, err = runCLI(t, []string{"devices", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("devices --json: %v", err)
	}
	var inventory ipc.DevicesResponse
	if err := json.Unmarshal([]byte(out), &inventory); err != nil {
		t.Fatalf("unmarshal inventory: %v (%q)", err, out)
	}
	if len(inventory.AudioInputs) != 1 || len(inventory.VideoInputs) != 1 {
		t.Fatalf("unexpected inventory: %#v", inventory)
	}
	if inventory.Screen == nil || inventory.Screen.ID != ":0" {
		t.Fatalf("screen = %#v, want :0", inventory.Screen)
	}
}

func TestLibraryCommandsWithoutDaemon(t *testing.T) {
	socket, configPath, cfg := setupOfflineConfig(t)

	out, _, err := runCLI(t, []string{"library", "list"}, socket, configPath)
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "Library is empty")

	store := testsupport.MustOpenStore(t, cfg)
	folder := filepath.Join(cfg.Paths.ProjectsDir, "offline_demo")
	testsupport.WriteFile(t, filepath.Join(folder, "screen.mp4"), 2048)
	rec := testsupport.RecordSession(t, store, "offline_demo", folder)

	out, _, err = runCLI(t, []string{"library", "list"}, socket, configPath)
	if err != nil {
		t.Fatalf("library list seeded: %v", err)
	}
	requireContains(t, out, "Offline Demo")
	requireContains(t, out, "recorded")
	requireContains(t, out, "1:00")

	out, _, err = runCLI(t, []string{"library", "remove", strconv.FormatInt(rec.ID, 10)}, socket, configPath)
	if err != nil {
		t.Fatalf("library remove: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Removed entry %d", rec.ID))
}

func TestLayoutsCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"layouts"}, "", "")
	if err != nil {
		t.Fatalf("layouts: %v", err)
	}
	requireContains(t, out, "Vertical Bottom")
	requireContains(t, out, "vertical_bottom")
	requireContains(t, out, "1080x1920")
	requireContains(t, out, "Top Left")
	requireContains(t, out, "1920x1080")
}

func TestDoctorCommand(t *testing.T) {
	socket, configPath, _ := setupOfflineConfig(t)

	out, _, err := runCLI(t, []string{"doctor"}, socket, configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Platform")
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "Storage")
	requireContains(t, out, "All checks passed")
}

func TestRootShowsHelpWithoutArgs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, _, err := runCLI(t, nil, "", "")
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	requireContains(t, out, "Usage:")
	requireContains(t, out, "record")
	requireContains(t, out, "export")
}
