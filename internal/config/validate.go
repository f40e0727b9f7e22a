package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var audioBitratePattern = regexp.MustCompile(`^[0-9]+k?$`)

var validPresets = map[string]struct{}{
	"ultrafast": {}, "superfast": {}, "veryfast": {}, "faster": {},
	"fast": {}, "medium": {}, "slow": {}, "slower": {}, "veryslow": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRecording(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LibraryDB) == "" {
		return errors.New("paths.library_db must be set")
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		return errors.New("paths.socket_path must be set")
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		return errors.New("paths.lock_path must be set")
	}
	return nil
}

func (c *Config) validateRecording() error {
	if err := ensurePositiveMap(map[string]int{
		"recording.framerate":          c.Recording.Framerate,
		"recording.video_width":        c.Recording.VideoWidth,
		"recording.video_height":       c.Recording.VideoHeight,
		"recording.audio_sample_rate":  c.Recording.AudioSampleRate,
		"recording.stop_grace_seconds": c.Recording.StopGraceSeconds,
		"recording.kill_grace_seconds": c.Recording.KillGraceSeconds,
	}); err != nil {
		return err
	}
	if c.Recording.AudioChannels != 1 && c.Recording.AudioChannels != 2 {
		return errors.New("recording.audio_channels must be 1 or 2")
	}
	if strings.TrimSpace(c.Recording.FFmpegBinary) == "" {
		return errors.New("recording.ffmpeg_binary must be set")
	}
	return nil
}

func (c *Config) validateExport() error {
	if _, ok := validPresets[c.Export.VideoPreset]; !ok {
		return fmt.Errorf("export.video_preset %q is not a recognized x264 preset", c.Export.VideoPreset)
	}
	if c.Export.VideoCRF < 0 || c.Export.VideoCRF > 51 {
		return errors.New("export.video_crf must be between 0 and 51")
	}
	if !audioBitratePattern.MatchString(c.Export.AudioBitrate) {
		return fmt.Errorf("export.audio_bitrate %q must look like 192k", c.Export.AudioBitrate)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
