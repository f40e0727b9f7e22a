package compose

import (
	"errors"
	"strconv"
	"strings"

	"tutorec/internal/media"
)

// Encode carries the merge encoder settings. The zero value selects the
// defaults used for recordings.
type Encode struct {
	VideoPreset  string
	VideoCRF     int
	AudioBitrate string
}

func (e Encode) withDefaults() Encode {
	if e.VideoPreset == "" {
		e.VideoPreset = "medium"
	}
	if e.VideoCRF <= 0 {
		e.VideoCRF = 20
	}
	if e.AudioBitrate == "" {
		e.AudioBitrate = "192k"
	}
	return e
}

// OutputName returns the deliverable file name for a project and layout.
func OutputName(project string, layout media.Layout) string {
	return media.SanitizeName(project) + "_" + layout.Slug() + ".mp4"
}

// ExportArgs builds the complete encoder argument vector for one merge:
// inputs in screen, webcam, microphone order, the layout's filter graph,
// H.264/AAC output settings and machine readable progress on stdout.
func ExportArgs(screenPath, webcamPath string, audioPaths []string, layout media.Layout, enc Encode, outputPath string) ([]string, error) {
	if strings.TrimSpace(screenPath) == "" {
		return nil, errors.New("screen recording path is empty")
	}
	if strings.TrimSpace(webcamPath) == "" {
		return nil, errors.New("webcam recording path is empty")
	}
	if strings.TrimSpace(outputPath) == "" {
		return nil, errors.New("output path is empty")
	}

	graph, err := FilterGraph(layout, len(audioPaths))
	if err != nil {
		return nil, err
	}
	enc = enc.withDefaults()

	args := make([]string, 0, 32+2*len(audioPaths))
	args = append(args, "-y", "-i", screenPath, "-i", webcamPath)
	for _, audio := range audioPaths {
		args = append(args, "-i", audio)
	}
	args = append(args,
		"-filter_complex", graph,
		"-map", "[v]",
		"-map", "[a]",
		"-c:v", "libx264",
		"-preset", enc.VideoPreset,
		"-crf", strconv.Itoa(enc.VideoCRF),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-c:a", "aac",
		"-b:a", enc.AudioBitrate,
		"-shortest",
		"-progress", "pipe:1",
		outputPath,
	)
	return args, nil
}
