package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// commandExecutor runs the real encoder binary.
type commandExecutor struct{}

// Filter-graph and progress lines can run long; a 1MB line cap keeps the
// scanner from truncating them.
const maxEncoderLine = 1024 * 1024

// Run starts the encoder and forwards every stdout and stderr line to
// onLine. Cancelling the context kills the process.
func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	scanErrs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, stream := range []io.Reader{stdout, stderr} {
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			scanner := bufio.NewScanner(r)
			scanner.Buffer(make([]byte, 64*1024), maxEncoderLine)
			for scanner.Scan() {
				if onLine != nil {
					onLine(scanner.Text())
				}
			}
			if err := scanner.Err(); err != nil {
				scanErrs <- err
			}
		}(stream)
	}
	wg.Wait()
	close(scanErrs)

	if scanErr := <-scanErrs; scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
