package devices

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"tutorec/internal/capture"
	"tutorec/internal/services"
)

const (
	listTimeout  = 5 * time.Second
	queryTimeout = 2 * time.Second
)

// Device is one selectable capture input. ID is the identifier the capture
// command synthesizer expects; Name is the human-readable label shown in
// device listings.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (d Device) String() string {
	if d.Name == "" || d.Name == d.ID {
		return d.ID
	}
	return d.ID + " (" + d.Name + ")"
}

// Provider enumerates the capture inputs available on this machine.
type Provider interface {
	AudioInputs(ctx context.Context) ([]Device, error)
	VideoInputs(ctx context.Context) ([]Device, error)
	ScreenSource(ctx context.Context) (Device, error)
}

// Runner abstracts command execution so parsers run against canned
// transcripts in tests. Output is the combined stdout and stderr of the
// command; ffmpeg prints device listings on stderr.
type Runner interface {
	Run(ctx context.Context, binary string, args ...string) (string, error)
}

type commandRunner struct{}

func (commandRunner) Run(ctx context.Context, binary string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// Option adjusts provider construction.
type Option func(*settings)

type settings struct {
	runner    Runner
	deviceDir string
}

// WithRunner injects a custom command runner (primarily for tests).
func WithRunner(r Runner) Option {
	return func(s *settings) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithDeviceDir overrides the directory scanned for video capture nodes on
// Linux. Tests point it at a fixture directory instead of /dev.
func WithDeviceDir(dir string) Option {
	return func(s *settings) {
		if strings.TrimSpace(dir) != "" {
			s.deviceDir = dir
		}
	}
}

// NewProvider returns the enumerator for the given platform. The ffmpeg
// binary is used on platforms whose device listings come from ffmpeg
// itself (macOS avfoundation, Windows DirectShow).
func NewProvider(platform capture.Platform, ffmpegBinary string, opts ...Option) (Provider, error) {
	cfg := settings{runner: commandRunner{}, deviceDir: "/dev"}
	for _, opt := range opts {
		opt(&cfg)
	}
	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	switch platform {
	case capture.PlatformLinux:
		return &linuxProvider{runner: cfg.runner, deviceDir: cfg.deviceDir}, nil
	case capture.PlatformDarwin:
		return &darwinProvider{runner: cfg.runner, binary: binary}, nil
	case capture.PlatformWindows:
		return &windowsProvider{runner: cfg.runner, binary: binary}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "devices", "new provider",
			fmt.Sprintf("unsupported platform %q", platform), nil)
	}
}
