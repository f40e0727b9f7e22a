package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"tutorec/internal/capture"
)

// Requirement defines an external tool tutorec shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the external tools the given platform relies on.
// The ffmpeg binary comes from configuration; the listing helpers are
// fixed platform tools. Recording works without the optional entries as
// long as device identifiers are supplied by hand.
func Requirements(platform capture.Platform, ffmpegBinary string) []Requirement {
	reqs := []Requirement{{
		Name:        "FFmpeg",
		Command:     strings.TrimSpace(ffmpegBinary),
		Description: "Captures every stream and composites exports",
	}}
	if platform == capture.PlatformLinux {
		reqs = append(reqs,
			Requirement{
				Name:        "arecord",
				Command:     "arecord",
				Description: "Enumerates ALSA capture devices for device listings",
				Optional:    true,
			},
			Requirement{
				Name:        "v4l2-ctl",
				Command:     "v4l2-ctl",
				Description: "Resolves webcam names in device listings",
				Optional:    true,
			},
		)
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = checkRequirement(req)
	}
	return results
}

func checkRequirement(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	switch {
	case status.Command == "":
		status.Detail = "command not configured"
	case !onPath(status.Command):
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
	default:
		status.Available = true
	}
	return status
}

func onPath(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}
