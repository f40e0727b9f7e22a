package proc

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// ErrWaitTimeout reports that a process outlived its wait window.
var ErrWaitTimeout = errors.New("process wait timed out")

var command = exec.Command

// Handle controls one supervised encoder process.
type Handle interface {
	PID() int
	// Suspend pauses execution with the platform's stop signal.
	Suspend() error
	// Resume continues a suspended process.
	Resume() error
	// RequestGracefulStop asks the encoder to finish by writing its quit
	// key to stdin. The caller escalates if the process does not exit.
	RequestGracefulStop() error
	// Terminate sends the platform's termination signal.
	Terminate() error
	// Kill forcibly ends the process.
	Kill() error
	// Wait blocks until exit or until timeout elapses, in which case it
	// returns ErrWaitTimeout. A non-positive timeout waits indefinitely.
	// Exit status errors are not reported: capture encoders are routinely
	// stopped by signal.
	Wait(timeout time.Duration) error
	// Output returns the tail of the combined stdout and stderr, for
	// diagnostics after a failed launch or unexpected exit.
	Output() string
}

// Process supervises a started encoder.
type Process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	tail  *tailWriter

	waitOnce sync.Once
	done     chan struct{}
	waitErr  error
}

var _ Handle = (*Process)(nil)

// Start launches binary with args, wiring stdin for cooperative stop and
// draining output into a bounded tail buffer.
func Start(binary string, args ...string) (*Process, error) {
	cmd := command(binary, args...)
	tail := newTailWriter(0)
	cmd.Stdout = tail
	cmd.Stderr = tail

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	return &Process{cmd: cmd, stdin: stdin, tail: tail, done: make(chan struct{})}, nil
}

// PID returns the operating system process id.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Suspend pauses the process.
func (p *Process) Suspend() error {
	return suspend(p.cmd.Process)
}

// Resume continues a suspended process.
func (p *Process) Resume() error {
	return resume(p.cmd.Process)
}

// RequestGracefulStop writes the encoder quit key to stdin.
func (p *Process) RequestGracefulStop() error {
	if _, err := io.WriteString(p.stdin, "q"); err != nil {
		return fmt.Errorf("write quit key: %w", err)
	}
	return nil
}

// Terminate sends the termination signal.
func (p *Process) Terminate() error {
	return terminate(p.cmd.Process)
}

// Kill forcibly ends the process.
func (p *Process) Kill() error {
	return p.cmd.Process.Kill()
}

// Wait blocks until the process exits or timeout elapses.
func (p *Process) Wait(timeout time.Duration) error {
	p.waitOnce.Do(func() {
		go func() {
			p.waitErr = p.cmd.Wait()
			close(p.done)
		}()
	})

	if timeout <= 0 {
		<-p.done
		return p.exitErr()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-p.done:
		return p.exitErr()
	case <-timer.C:
		return ErrWaitTimeout
	}
}

// Output returns the tail of the process output.
func (p *Process) Output() string {
	return p.tail.String()
}

func (p *Process) exitErr() error {
	var exitErr *exec.ExitError
	if errors.As(p.waitErr, &exitErr) {
		return nil
	}
	return p.waitErr
}
