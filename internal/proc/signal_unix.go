//go:build unix

package proc

import (
	"os"

	"golang.org/x/sys/unix"
)

func suspend(p *os.Process) error {
	return p.Signal(unix.SIGSTOP)
}

func resume(p *os.Process) error {
	return p.Signal(unix.SIGCONT)
}

func terminate(p *os.Process) error {
	return p.Signal(unix.SIGTERM)
}
