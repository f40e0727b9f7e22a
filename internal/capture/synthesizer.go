package capture

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"tutorec/internal/media"
)

// Capture encodes H.264 at fixed quality so staging files stay editable
// without a second pass. Export quality is configured separately.
const (
	capturePreset = "medium"
	captureCRF    = "20"
)

// Params carries the encoder tuning shared by every capture command.
type Params struct {
	Binary          string
	Framerate       int
	VideoWidth      int
	VideoHeight     int
	AudioSampleRate int
	AudioChannels   int
}

func (p Params) withDefaults() Params {
	if p.Binary == "" {
		p.Binary = "ffmpeg"
	}
	if p.Framerate <= 0 {
		p.Framerate = 30
	}
	if p.VideoWidth <= 0 {
		p.VideoWidth = 1920
	}
	if p.VideoHeight <= 0 {
		p.VideoHeight = 1080
	}
	if p.AudioSampleRate <= 0 {
		p.AudioSampleRate = 44100
	}
	if p.AudioChannels <= 0 {
		p.AudioChannels = 2
	}
	return p
}

func (p Params) videoSize() string {
	return fmt.Sprintf("%dx%d", p.VideoWidth, p.VideoHeight)
}

// Command is one fully resolved encoder invocation.
type Command struct {
	Binary     string
	Args       []string
	OutputPath string
}

func (c Command) String() string {
	return c.Binary + " " + strings.Join(c.Args, " ")
}

// Synthesizer builds capture commands for one platform.
type Synthesizer struct {
	platform Platform
	params   Params
}

// NewSynthesizer constructs a synthesizer for the given platform tag.
func NewSynthesizer(platform Platform, params Params) (*Synthesizer, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("unsupported capture platform %q", platform)
	}
	return &Synthesizer{platform: platform, params: params.withDefaults()}, nil
}

// Platform returns the platform tag the synthesizer was built for.
func (s *Synthesizer) Platform() Platform {
	return s.platform
}

// AudioCommand builds the capture invocation for one microphone. Output is
// PCM signed 16-bit little endian WAV named <project>_mic<index>.wav.
func (s *Synthesizer) AudioCommand(device, project string, index int, folder string) (Command, error) {
	if err := validateTarget(device, project, folder); err != nil {
		return Command{}, err
	}
	if index < 1 {
		return Command{}, fmt.Errorf("microphone index %d out of range", index)
	}

	output := filepath.Join(folder, fmt.Sprintf("%s_mic%d.wav", project, index))
	args := make([]string, 0, 12)

	switch s.platform {
	case PlatformLinux:
		args = append(args, "-f", "alsa", "-i", device)
	case PlatformDarwin:
		args = append(args, "-f", "avfoundation", "-i", ":"+device)
	case PlatformWindows:
		args = append(args, "-f", "dshow", "-i", "audio="+device)
	default:
		return Command{}, fmt.Errorf("unsupported capture platform %q", s.platform)
	}

	args = append(args,
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(s.params.AudioSampleRate),
		"-ac", strconv.Itoa(s.params.AudioChannels),
		output,
	)
	return Command{Binary: s.params.Binary, Args: args, OutputPath: output}, nil
}

// WebcamCommand builds the capture invocation for a camera. Output is H.264
// named <project>_webcam.mp4.
func (s *Synthesizer) WebcamCommand(device, project, folder string) (Command, error) {
	if err := validateTarget(device, project, folder); err != nil {
		return Command{}, err
	}

	output := filepath.Join(folder, project+"_webcam.mp4")
	args := make([]string, 0, 24)

	switch s.platform {
	case PlatformLinux:
		args = append(args,
			"-f", "v4l2",
			"-framerate", strconv.Itoa(s.params.Framerate),
			"-video_size", s.params.videoSize(),
			"-i", device,
		)
	case PlatformDarwin:
		// avfoundation negotiates the frame size with the camera, so only
		// the rate is pinned.
		args = append(args,
			"-f", "avfoundation",
			"-framerate", strconv.Itoa(s.params.Framerate),
			"-i", device+":none",
		)
	case PlatformWindows:
		args = append(args,
			"-f", "dshow",
			"-video_size", s.params.videoSize(),
			"-framerate", strconv.Itoa(s.params.Framerate),
			"-i", "video="+device,
		)
	default:
		return Command{}, fmt.Errorf("unsupported capture platform %q", s.platform)
	}

	args = append(args, s.videoEncodeArgs()...)
	args = append(args, output)
	return Command{Binary: s.params.Binary, Args: args, OutputPath: output}, nil
}

// ScreenCommand builds the capture invocation for a screen region. Output is
// H.264 named <project>_screen.mp4. The region is applied through the grab
// transport where it supports offsets and through a crop filter otherwise.
func (s *Synthesizer) ScreenCommand(device string, area media.ScreenArea, project, folder string) (Command, error) {
	if err := validateTarget(device, project, folder); err != nil {
		return Command{}, err
	}
	if err := area.Validate(); err != nil {
		return Command{}, fmt.Errorf("screen area: %w", err)
	}

	output := filepath.Join(folder, project+"_screen.mp4")
	args := make([]string, 0, 26)

	switch s.platform {
	case PlatformLinux:
		args = append(args,
			"-f", "x11grab",
			"-framerate", strconv.Itoa(s.params.Framerate),
			"-video_size", fmt.Sprintf("%dx%d", area.Width, area.Height),
			"-i", fmt.Sprintf("%s+%d,%d", device, area.X, area.Y),
		)
	case PlatformDarwin:
		args = append(args,
			"-f", "avfoundation",
			"-i", device+":none",
			"-filter:v", fmt.Sprintf("crop=%d:%d:%d:%d", area.Width, area.Height, area.X, area.Y),
		)
	case PlatformWindows:
		args = append(args,
			"-f", "gdigrab",
			"-framerate", strconv.Itoa(s.params.Framerate),
			"-offset_x", strconv.Itoa(area.X),
			"-offset_y", strconv.Itoa(area.Y),
			"-video_size", fmt.Sprintf("%dx%d", area.Width, area.Height),
			"-i", device,
		)
	default:
		return Command{}, fmt.Errorf("unsupported capture platform %q", s.platform)
	}

	args = append(args, s.videoEncodeArgs()...)
	args = append(args, output)
	return Command{Binary: s.params.Binary, Args: args, OutputPath: output}, nil
}

func (s *Synthesizer) videoEncodeArgs() []string {
	args := []string{
		"-c:v", "libx264",
		"-preset", capturePreset,
		"-crf", captureCRF,
		"-pix_fmt", "yuv420p",
	}
	if s.platform == PlatformDarwin {
		// Streaming-friendly output keeps QuickTime preview working on
		// partially written files.
		args = append(args,
			"-bf", "2",
			"-maxrate", "5M",
			"-bufsize", "10M",
			"-movflags", "+faststart",
		)
	}
	return args
}

func validateTarget(device, project, folder string) error {
	if strings.TrimSpace(device) == "" {
		return errors.New("device identifier is empty")
	}
	if strings.TrimSpace(project) == "" {
		return errors.New("project name is empty")
	}
	if strings.TrimSpace(folder) == "" {
		return errors.New("destination folder is empty")
	}
	return nil
}
