package main

import (
	"encoding/json"
	"testing"

	"tutorec/internal/ipc"
)

func TestDaemonStatusRunning(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"daemon", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("daemon status: %v", err)
	}
	requireContains(t, out, "Running (pid")
	requireContains(t, out, "Platform")
	requireContains(t, out, "Dependencies")
	requireContains(t, out, "No active session")
	requireContains(t, out, "No export has run")
}

func TestDaemonStatusJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"daemon", "status", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("daemon status --json: %v", err)
	}
	var status ipc.StatusResponse
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("unmarshal status: %v (%q)", err, out)
	}
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if status.Platform != "linux" {
		t.Fatalf("platform = %q, want linux", status.Platform)
	}
}

func TestDaemonStatusOffline(t *testing.T) {
	socket, configPath, _ := setupOfflineConfig(t)

	out, _, err := runCLI(t, []string{"daemon", "status"}, socket, configPath)
	if err != nil {
		t.Fatalf("daemon status offline: %v", err)
	}
	requireContains(t, out, "Not running")
	requireContains(t, out, "tutorec daemon start")
}

func TestDaemonStartAlreadyRunning(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"daemon", "start"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("daemon start: %v", err)
	}
	requireContains(t, out, "Daemon already running")
}

func TestDaemonStopNotRunning(t *testing.T) {
	socket, configPath, _ := setupOfflineConfig(t)

	out, _, err := runCLI(t, []string{"daemon", "stop"}, socket, configPath)
	if err != nil {
		t.Fatalf("daemon stop offline: %v", err)
	}
	requireContains(t, out, "Daemon is not running")
}
