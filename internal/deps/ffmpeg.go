package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// CheckFFmpeg resolves the configured ffmpeg binary and reports where it
// lives. Bare names go through PATH; configured paths are checked in place,
// so status output shows the executable capture will actually run.
func CheckFFmpeg(binary string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Captures every stream and composites exports",
	}

	name := strings.TrimSpace(binary)
	if name == "" {
		name = "ffmpeg"
	}
	resolved, err := exec.LookPath(name)
	if err != nil {
		result.Command = name
		result.Available = false
		result.Detail = fmt.Sprintf("binary %q not found", name)
		return result
	}
	result.Command = resolved
	result.Available = true
	return result
}
