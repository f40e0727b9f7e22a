package capture_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"tutorec/internal/capture"
	"tutorec/internal/media"
)

func newSynth(t *testing.T, platform capture.Platform) *capture.Synthesizer {
	t.Helper()
	s, err := capture.NewSynthesizer(platform, capture.Params{})
	if err != nil {
		t.Fatalf("NewSynthesizer(%s): %v", platform, err)
	}
	return s
}

func TestNewSynthesizerRejectsUnknownPlatform(t *testing.T) {
	if _, err := capture.NewSynthesizer("beos", capture.Params{}); err == nil {
		t.Fatal("expected error for unknown platform")
	}
}

func TestAudioCommands(t *testing.T) {
	folder := filepath.Join("staging", "demo")
	out := filepath.Join(folder, "demo_mic1.wav")

	cases := []struct {
		platform capture.Platform
		device   string
		want     []string
	}{
		{
			capture.PlatformLinux, "hw:CARD=Mic,DEV=0",
			[]string{"-f", "alsa", "-i", "hw:CARD=Mic,DEV=0", "-acodec", "pcm_s16le", "-ar", "44100", "-ac", "2", out},
		},
		{
			capture.PlatformDarwin, "1",
			[]string{"-f", "avfoundation", "-i", ":1", "-acodec", "pcm_s16le", "-ar", "44100", "-ac", "2", out},
		},
		{
			capture.PlatformWindows, "Microphone (USB Audio)",
			[]string{"-f", "dshow", "-i", "audio=Microphone (USB Audio)", "-acodec", "pcm_s16le", "-ar", "44100", "-ac", "2", out},
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.platform), func(t *testing.T) {
			cmd, err := newSynth(t, tc.platform).AudioCommand(tc.device, "demo", 1, folder)
			if err != nil {
				t.Fatalf("AudioCommand: %v", err)
			}
			if cmd.Binary != "ffmpeg" {
				t.Fatalf("unexpected binary %q", cmd.Binary)
			}
			if cmd.OutputPath != out {
				t.Fatalf("output path = %q, want %q", cmd.OutputPath, out)
			}
			if !reflect.DeepEqual(cmd.Args, tc.want) {
				t.Fatalf("args mismatch:\n  got  %v\n  want %v", cmd.Args, tc.want)
			}
		})
	}
}

func TestWebcamCommands(t *testing.T) {
	folder := "staging"
	out := filepath.Join(folder, "demo_webcam.mp4")
	encode := []string{"-c:v", "libx264", "-preset", "medium", "-crf", "20", "-pix_fmt", "yuv420p"}
	darwinExtras := []string{"-bf", "2", "-maxrate", "5M", "-bufsize", "10M", "-movflags", "+faststart"}

	cases := []struct {
		platform capture.Platform
		device   string
		want     []string
	}{
		{
			capture.PlatformLinux, "/dev/video0",
			join([]string{"-f", "v4l2", "-framerate", "30", "-video_size", "1920x1080", "-i", "/dev/video0"}, encode, []string{out}),
		},
		{
			capture.PlatformDarwin, "0",
			join([]string{"-f", "avfoundation", "-framerate", "30", "-i", "0:none"}, encode, darwinExtras, []string{out}),
		},
		{
			capture.PlatformWindows, "Integrated Camera",
			join([]string{"-f", "dshow", "-video_size", "1920x1080", "-framerate", "30", "-i", "video=Integrated Camera"}, encode, []string{out}),
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.platform), func(t *testing.T) {
			cmd, err := newSynth(t, tc.platform).WebcamCommand(tc.device, "demo", folder)
			if err != nil {
				t.Fatalf("WebcamCommand: %v", err)
			}
			if cmd.OutputPath != out {
				t.Fatalf("output path = %q, want %q", cmd.OutputPath, out)
			}
			if !reflect.DeepEqual(cmd.Args, tc.want) {
				t.Fatalf("args mismatch:\n  got  %v\n  want %v", cmd.Args, tc.want)
			}
		})
	}
}

func TestScreenCommands(t *testing.T) {
	folder := "staging"
	out := filepath.Join(folder, "demo_screen.mp4")
	area := media.ScreenArea{X: 100, Y: 200, Width: 1280, Height: 720, AspectRatio: media.Aspect16x9}
	encode := []string{"-c:v", "libx264", "-preset", "medium", "-crf", "20", "-pix_fmt", "yuv420p"}
	darwinExtras := []string{"-bf", "2", "-maxrate", "5M", "-bufsize", "10M", "-movflags", "+faststart"}

	cases := []struct {
		platform capture.Platform
		device   string
		want     []string
	}{
		{
			capture.PlatformLinux, ":0",
			join([]string{"-f", "x11grab", "-framerate", "30", "-video_size", "1280x720", "-i", ":0+100,200"}, encode, []string{out}),
		},
		{
			capture.PlatformDarwin, "2",
			join([]string{"-f", "avfoundation", "-i", "2:none", "-filter:v", "crop=1280:720:100:200"}, encode, darwinExtras, []string{out}),
		},
		{
			capture.PlatformWindows, "desktop",
			join([]string{"-f", "gdigrab", "-framerate", "30", "-offset_x", "100", "-offset_y", "200", "-video_size", "1280x720", "-i", "desktop"}, encode, []string{out}),
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.platform), func(t *testing.T) {
			cmd, err := newSynth(t, tc.platform).ScreenCommand(tc.device, area, "demo", folder)
			if err != nil {
				t.Fatalf("ScreenCommand: %v", err)
			}
			if cmd.OutputPath != out {
				t.Fatalf("output path = %q, want %q", cmd.OutputPath, out)
			}
			if !reflect.DeepEqual(cmd.Args, tc.want) {
				t.Fatalf("args mismatch:\n  got  %v\n  want %v", cmd.Args, tc.want)
			}
		})
	}
}

func TestSynthesizerValidation(t *testing.T) {
	s := newSynth(t, capture.PlatformLinux)
	area := media.ScreenArea{Width: 800, Height: 600, AspectRatio: media.Aspect4x3}

	if _, err := s.AudioCommand("", "demo", 1, "staging"); err == nil {
		t.Fatal("expected error for empty device")
	}
	if _, err := s.AudioCommand("hw:0", "demo", 0, "staging"); err == nil {
		t.Fatal("expected error for zero index")
	}
	if _, err := s.WebcamCommand("/dev/video0", " ", "staging"); err == nil {
		t.Fatal("expected error for blank project")
	}
	if _, err := s.ScreenCommand(":0", media.ScreenArea{}, "demo", "staging"); err == nil {
		t.Fatal("expected error for invalid screen area")
	}
	if _, err := s.ScreenCommand(":0", area, "demo", ""); err == nil {
		t.Fatal("expected error for empty folder")
	}
}

func TestParamsOverrideDefaults(t *testing.T) {
	s, err := capture.NewSynthesizer(capture.PlatformLinux, capture.Params{
		Binary:          "/opt/ffmpeg/bin/ffmpeg",
		Framerate:       60,
		VideoWidth:      1280,
		VideoHeight:     720,
		AudioSampleRate: 48000,
		AudioChannels:   1,
	})
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	audio, err := s.AudioCommand("default", "demo", 2, "staging")
	if err != nil {
		t.Fatalf("AudioCommand: %v", err)
	}
	if audio.Binary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected binary %q", audio.Binary)
	}
	if filepath.Base(audio.OutputPath) != "demo_mic2.wav" {
		t.Fatalf("unexpected output name %q", audio.OutputPath)
	}
	wantTail := []string{"-acodec", "pcm_s16le", "-ar", "48000", "-ac", "1", audio.OutputPath}
	if !reflect.DeepEqual(audio.Args[len(audio.Args)-len(wantTail):], wantTail) {
		t.Fatalf("unexpected audio tail: %v", audio.Args)
	}

	webcam, err := s.WebcamCommand("/dev/video1", "demo", "staging")
	if err != nil {
		t.Fatalf("WebcamCommand: %v", err)
	}
	wantHead := []string{"-f", "v4l2", "-framerate", "60", "-video_size", "1280x720"}
	if !reflect.DeepEqual(webcam.Args[:len(wantHead)], wantHead) {
		t.Fatalf("unexpected webcam head: %v", webcam.Args)
	}
}

func join(parts ...[]string) []string {
	var all []string
	for _, p := range parts {
		all = append(all, p...)
	}
	return all
}
