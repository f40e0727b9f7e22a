package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceType distinguishes the two kinds of video input.
type SourceType string

const (
	SourceWebcam SourceType = "webcam"
	SourceScreen SourceType = "screen"
)

// AspectRatio tags a screen area with the shape the selection UI enforced.
type AspectRatio string

const (
	Aspect16x9 AspectRatio = "16:9"
	Aspect9x16 AspectRatio = "9:16"
	Aspect4x3  AspectRatio = "4:3"
	Aspect1x1  AspectRatio = "1:1"
	AspectFree AspectRatio = "free"
)

var aspectRatios = map[AspectRatio]struct{}{
	Aspect16x9: {},
	Aspect9x16: {},
	Aspect4x3:  {},
	Aspect1x1:  {},
	AspectFree: {},
}

// AudioInput selects one microphone by its platform device identifier.
type AudioInput struct {
	DeviceName string `json:"device_name"`
}

// VideoInput selects one camera or the screen grab source.
type VideoInput struct {
	DeviceName string     `json:"device_name"`
	SourceType SourceType `json:"source_type"`
}

// ScreenArea is the rectangle a screen input captures. Immutable once a
// recording starts.
type ScreenArea struct {
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	AspectRatio AspectRatio `json:"aspect_ratio"`
}

// Validate checks the rectangle geometry and aspect tag.
func (a ScreenArea) Validate() error {
	if a.X < 0 || a.Y < 0 {
		return fmt.Errorf("screen area origin (%d,%d) must be non-negative", a.X, a.Y)
	}
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("screen area size %dx%d must be positive", a.Width, a.Height)
	}
	if _, ok := aspectRatios[a.AspectRatio]; !ok {
		return fmt.Errorf("unknown aspect ratio %q", a.AspectRatio)
	}
	return nil
}

// ProjectConfig describes the inputs of one recording project.
type ProjectConfig struct {
	Name        string       `json:"name"`
	AudioInputs []AudioInput `json:"audio_inputs"`
	VideoInputs []VideoInput `json:"video_inputs"`
	ScreenArea  *ScreenArea  `json:"screen_area"`
}

// Validate enforces the structural invariants: a usable name, at most one
// input per video role (their output file names are fixed), known source
// types, and a screen area exactly when a screen input exists.
func (c ProjectConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("project name must not be empty")
	}
	for i, input := range c.AudioInputs {
		if strings.TrimSpace(input.DeviceName) == "" {
			return fmt.Errorf("audio input %d has an empty device name", i+1)
		}
	}
	screens, webcams := 0, 0
	for i, input := range c.VideoInputs {
		if strings.TrimSpace(input.DeviceName) == "" {
			return fmt.Errorf("video input %d has an empty device name", i+1)
		}
		switch input.SourceType {
		case SourceWebcam:
			webcams++
		case SourceScreen:
			screens++
		default:
			return fmt.Errorf("video input %d has unknown source type %q", i+1, input.SourceType)
		}
	}
	if screens > 1 {
		return fmt.Errorf("at most one screen input is allowed, found %d", screens)
	}
	if webcams > 1 {
		return fmt.Errorf("at most one webcam input is allowed, found %d", webcams)
	}
	if screens == 1 && c.ScreenArea == nil {
		return errors.New("screen input configured without a screen area")
	}
	if screens == 0 && c.ScreenArea != nil {
		return errors.New("screen area configured without a screen input")
	}
	if c.ScreenArea != nil {
		if err := c.ScreenArea.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ScreenInput returns the screen video input when one is configured.
func (c ProjectConfig) ScreenInput() (VideoInput, bool) {
	for _, input := range c.VideoInputs {
		if input.SourceType == SourceScreen {
			return input, true
		}
	}
	return VideoInput{}, false
}

// WebcamInputs returns the non-screen video inputs in configured order.
func (c ProjectConfig) WebcamInputs() []VideoInput {
	var webcams []VideoInput
	for _, input := range c.VideoInputs {
		if input.SourceType == SourceWebcam {
			webcams = append(webcams, input)
		}
	}
	return webcams
}

var filenameSanitizer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	"\x00", "_",
)

// SanitizedName returns the project name with filesystem-hostile characters
// replaced, suitable for folder and file prefixes.
func (c ProjectConfig) SanitizedName() string {
	return SanitizeName(c.Name)
}

// SanitizeName maps an arbitrary project name onto a filesystem-safe token.
func SanitizeName(name string) string {
	cleaned := filenameSanitizer.Replace(strings.TrimSpace(name))
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}

// SaveProject writes the project file as indented JSON.
func SaveProject(cfg ProjectConfig, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	data = append(data, '\n')
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create project directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	return nil
}

// LoadProject reads and validates a project file.
func LoadProject(path string) (ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProjectConfig{}, fmt.Errorf("read project file: %w", err)
	}
	var cfg ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ProjectConfig{}, fmt.Errorf("parse project file %s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return ProjectConfig{}, fmt.Errorf("project file %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}
