package devices

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"tutorec/internal/services"
)

// linuxProvider enumerates ALSA microphones, V4L2 webcams, and the X11
// display.
type linuxProvider struct {
	runner    Runner
	deviceDir string
}

func (p *linuxProvider) AudioInputs(ctx context.Context) ([]Device, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	output, err := p.runner.Run(ctx, "arecord", "-L")
	if err != nil {
		return nil, services.Wrap(services.ErrDevice, "devices", "audio inputs",
			"arecord -L failed (is alsa-utils installed?)", err)
	}
	return parseALSAInputs(output), nil
}

// parseALSAInputs extracts hw: PCM entries from arecord -L output. PCM
// names sit at column zero; the indented line after each carries its
// description.
func parseALSAInputs(output string) []Device {
	lines := strings.Split(output, "\n")
	var devices []Device
	for i, line := range lines {
		if !strings.HasPrefix(line, "hw:") {
			continue
		}
		device := Device{ID: strings.TrimSpace(line)}
		if i+1 < len(lines) && (strings.HasPrefix(lines[i+1], " ") || strings.HasPrefix(lines[i+1], "\t")) {
			device.Name = strings.TrimSpace(lines[i+1])
		}
		devices = append(devices, device)
	}
	if len(devices) == 0 {
		devices = append(devices, Device{ID: "default", Name: "Default Audio Device"})
	}
	return devices
}

var cardTypePattern = regexp.MustCompile(`Card type\s*:\s*(.+)`)

func (p *linuxProvider) VideoInputs(ctx context.Context) ([]Device, error) {
	paths, err := filepath.Glob(filepath.Join(p.deviceDir, "video*"))
	if err != nil {
		return nil, services.Wrap(services.ErrDevice, "devices", "video inputs", "scan video nodes", err)
	}
	sort.Strings(paths)
	var devices []Device
	for _, path := range paths {
		devices = append(devices, Device{ID: path, Name: p.videoName(ctx, path)})
	}
	if len(devices) == 0 {
		return nil, services.Wrap(services.ErrDevice, "devices", "video inputs",
			"no video capture nodes under "+p.deviceDir+" (check permissions)", nil)
	}
	return devices, nil
}

// videoName asks v4l2-ctl for the card name. Nodes still enumerate under
// their path basename when the tool is missing or unresponsive.
func (p *linuxProvider) videoName(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	output, err := p.runner.Run(ctx, "v4l2-ctl", "--device", path, "--info")
	if err != nil {
		return filepath.Base(path)
	}
	if match := cardTypePattern.FindStringSubmatch(output); match != nil {
		return strings.TrimSpace(match[1])
	}
	return filepath.Base(path)
}

func (p *linuxProvider) ScreenSource(context.Context) (Device, error) {
	display := strings.TrimSpace(os.Getenv("DISPLAY"))
	if display == "" {
		return Device{}, services.Wrap(services.ErrDevice, "devices", "screen source",
			"DISPLAY is not set (is an X11 session running?)", nil)
	}
	return Device{ID: display, Name: "X11 display " + display}, nil
}
