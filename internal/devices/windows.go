package devices

import (
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"

	"tutorec/internal/services"
)

const (
	dshowVideoSection = "DirectShow video devices"
	dshowAudioSection = "DirectShow audio devices"
)

var dshowEntryPattern = regexp.MustCompile(`\[dshow.*?\]\s+"([^"]+)"`)

// windowsProvider enumerates DirectShow devices. gdigrab records the whole
// desktop, so the screen source is a constant.
type windowsProvider struct {
	runner Runner
	binary string
}

func (p *windowsProvider) listing(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	output, err := p.runner.Run(ctx, p.binary, "-f", "dshow", "-list_devices", "true", "-i", "dummy")
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", services.Wrap(services.ErrDevice, "devices", "list",
				"ffmpeg device listing failed (is ffmpeg on PATH?)", err)
		}
	}
	return output, nil
}

// parseDirectShowSection collects the quoted device names printed under the
// wanted section header. Moniker lines repeat each device with an @-prefixed
// alternative name and are skipped.
func parseDirectShowSection(output, want, other string) []Device {
	var devices []Device
	inSection := false
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.Contains(line, want):
			inSection = true
			continue
		case strings.Contains(line, other):
			inSection = false
			continue
		}
		if !inSection {
			continue
		}
		match := dshowEntryPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		name := match[1]
		if strings.HasPrefix(name, "@") {
			continue
		}
		devices = append(devices, Device{ID: name, Name: name})
	}
	return devices
}

func (p *windowsProvider) AudioInputs(ctx context.Context) ([]Device, error) {
	output, err := p.listing(ctx)
	if err != nil {
		return nil, err
	}
	devices := parseDirectShowSection(output, dshowAudioSection, dshowVideoSection)
	if len(devices) == 0 {
		return nil, services.Wrap(services.ErrDevice, "devices", "audio inputs",
			"no DirectShow audio devices found", nil)
	}
	return devices, nil
}

func (p *windowsProvider) VideoInputs(ctx context.Context) ([]Device, error) {
	output, err := p.listing(ctx)
	if err != nil {
		return nil, err
	}
	devices := parseDirectShowSection(output, dshowVideoSection, dshowAudioSection)
	if len(devices) == 0 {
		return nil, services.Wrap(services.ErrDevice, "devices", "video inputs",
			"no DirectShow video devices found", nil)
	}
	return devices, nil
}

func (p *windowsProvider) ScreenSource(context.Context) (Device, error) {
	return Device{ID: "desktop", Name: "Desktop"}, nil
}
