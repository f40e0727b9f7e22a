//go:build windows

package proc

import (
	"errors"
	"os"
)

// Windows has no process-wide suspend signal, so pause is unavailable.
var errNoSuspend = errors.New("pause is not supported on windows")

func suspend(*os.Process) error {
	return errNoSuspend
}

func resume(*os.Process) error {
	return errNoSuspend
}

func terminate(p *os.Process) error {
	return p.Kill()
}
