package daemonctl

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"tutorec/internal/config"
	"tutorec/internal/ipc"
)

func TestWaitForClientTimesOut(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "absent.sock")
	start := time.Now()
	_, err := WaitForClient(socket, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, ipc.ErrDaemonNotRunning) {
		t.Fatalf("err = %v, want wrapped ErrDaemonNotRunning", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("wait took too long: %v", elapsed)
	}
}

func TestWaitForShutdownMissingSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "absent.sock")
	if err := WaitForShutdown(socket, 100*time.Millisecond); err != nil {
		t.Fatalf("expected missing socket to count as stopped, got %v", err)
	}
}

func TestProcessInfoMissingSocket(t *testing.T) {
	running, pid, err := ProcessInfo(filepath.Join(t.TempDir(), "absent.sock"))
	if err != nil {
		t.Fatalf("ProcessInfo: %v", err)
	}
	if running || pid != 0 {
		t.Fatalf("got running=%v pid=%d, want stopped", running, pid)
	}
}

func TestStopAndTerminateNotRunning(t *testing.T) {
	cfg := config.Default()
	_, err := StopAndTerminate(filepath.Join(t.TempDir(), "absent.sock"), &cfg, 50*time.Millisecond)
	if !errors.Is(err, ipc.ErrDaemonNotRunning) {
		t.Fatalf("err = %v, want ErrDaemonNotRunning", err)
	}
}

func TestDeriveLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = "/var/log/tutorec"

	if dir := DeriveLogDir("/data/logs/tutorec.log", &cfg); dir != "/data/logs" {
		t.Fatalf("dir = %q, want /data/logs", dir)
	}
	if dir := DeriveLogDir("", &cfg); dir != "/var/log/tutorec" {
		t.Fatalf("dir = %q, want config fallback", dir)
	}
	if dir := DeriveLogDir("", nil); dir != "" {
		t.Fatalf("dir = %q, want empty", dir)
	}
}

func TestForceKillProcessRefusesSelf(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "tutorec.pid")
	self := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(pidPath, []byte(self+"\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	_, err := ForceKillProcess(pidPath, "", 0)
	if err == nil {
		t.Fatal("expected refusal to kill current process")
	}
	if !strings.Contains(err.Error(), "refusing to kill") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestForceKillProcessNoPID(t *testing.T) {
	dir := t.TempDir()
	pidPath := filepath.Join(dir, "tutorec.pid")
	if err := os.WriteFile(pidPath, []byte("not-a-number\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	if _, err := ForceKillProcess(pidPath, "", 0); err == nil {
		t.Fatal("expected error when no pid can be determined")
	}
	if _, err := ForceKillProcess(filepath.Join(dir, "missing.pid"), "", 0); err == nil {
		t.Fatal("expected error when pid file is missing and no fallback given")
	}
}
