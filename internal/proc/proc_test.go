//go:build unix

package proc_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"tutorec/internal/proc"
)

func TestStartAndGracefulStop(t *testing.T) {
	p, err := proc.Start("sh", "-c", "head -c 1 >/dev/null")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if p.PID() <= 0 {
		t.Fatalf("unexpected pid %d", p.PID())
	}
	if err := p.RequestGracefulStop(); err != nil {
		t.Fatalf("RequestGracefulStop: %v", err)
	}
	if err := p.Wait(5 * time.Second); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestWaitTimeoutThenKill(t *testing.T) {
	p, err := proc.Start("sleep", "30")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Wait(100 * time.Millisecond); !errors.Is(err, proc.ErrWaitTimeout) {
		t.Fatalf("Wait = %v, want ErrWaitTimeout", err)
	}
	if err := p.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	if err := p.Wait(5 * time.Second); err != nil {
		t.Fatalf("Wait after kill: %v", err)
	}
}

func TestSuspendResumeTerminate(t *testing.T) {
	p, err := proc.Start("sleep", "30")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Suspend(); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if err := p.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if err := p.Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if err := p.Wait(5 * time.Second); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestOutputCapturesTail(t *testing.T) {
	p, err := proc.Start("sh", "-c", "echo captured-out; echo captured-err >&2")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Wait(5 * time.Second); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	out := p.Output()
	if !strings.Contains(out, "captured-out") || !strings.Contains(out, "captured-err") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStartMissingBinary(t *testing.T) {
	if _, err := proc.Start("tutorec-no-such-binary"); err == nil {
		t.Fatal("expected launch error")
	}
}
