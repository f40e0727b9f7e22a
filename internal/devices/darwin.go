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
	avVideoSection = "AVFoundation video devices:"
	avAudioSection = "AVFoundation audio devices:"
)

var avEntryPattern = regexp.MustCompile(`\[(\d+)\] (.+)`)

// darwinProvider enumerates avfoundation devices. Audio and video inputs
// come from the same ffmpeg listing; the screen entries are split out of
// the video section.
type darwinProvider struct {
	runner Runner
	binary string
}

// listing runs the avfoundation device dump. ffmpeg exits non-zero after
// printing it because the empty input never opens, so exit errors are not
// failures here.
func (p *darwinProvider) listing(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	output, err := p.runner.Run(ctx, p.binary, "-f", "avfoundation", "-list_devices", "true", "-i", "")
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", services.Wrap(services.ErrDevice, "devices", "list",
				"ffmpeg device listing failed (is ffmpeg installed?)", err)
		}
	}
	return output, nil
}

type avEntry struct {
	index string
	name  string
	video bool
}

func parseAVFoundationListing(output string) []avEntry {
	var entries []avEntry
	video := false
	inSection := false
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.Contains(line, avVideoSection):
			video, inSection = true, true
			continue
		case strings.Contains(line, avAudioSection):
			video, inSection = false, true
			continue
		}
		if !inSection {
			continue
		}
		if match := avEntryPattern.FindStringSubmatch(line); match != nil {
			entries = append(entries, avEntry{index: match[1], name: strings.TrimSpace(match[2]), video: video})
		}
	}
	return entries
}

func isScreenEntry(name string) bool {
	return strings.Contains(strings.ToLower(name), "screen")
}

func (p *darwinProvider) AudioInputs(ctx context.Context) ([]Device, error) {
	output, err := p.listing(ctx)
	if err != nil {
		return nil, err
	}
	var devices []Device
	for _, entry := range parseAVFoundationListing(output) {
		if !entry.video {
			devices = append(devices, Device{ID: entry.index, Name: entry.name})
		}
	}
	return devices, nil
}

func (p *darwinProvider) VideoInputs(ctx context.Context) ([]Device, error) {
	output, err := p.listing(ctx)
	if err != nil {
		return nil, err
	}
	var devices []Device
	for _, entry := range parseAVFoundationListing(output) {
		if entry.video && !isScreenEntry(entry.name) {
			devices = append(devices, Device{ID: entry.index, Name: entry.name})
		}
	}
	return devices, nil
}

func (p *darwinProvider) ScreenSource(ctx context.Context) (Device, error) {
	output, err := p.listing(ctx)
	if err != nil {
		return Device{}, err
	}
	for _, entry := range parseAVFoundationListing(output) {
		if entry.video && isScreenEntry(entry.name) {
			return Device{ID: entry.index, Name: entry.name}, nil
		}
	}
	return Device{}, services.Wrap(services.ErrNotFound, "devices", "screen source",
		"no avfoundation screen capture device", nil)
}
