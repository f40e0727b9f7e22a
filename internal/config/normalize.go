package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRecording()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ProjectsDir) == "" {
		c.Paths.ProjectsDir = defaultProjectsDir
	}
	if c.Paths.ProjectsDir, err = expandPath(c.Paths.ProjectsDir); err != nil {
		return fmt.Errorf("paths.projects_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LibraryDB) == "" {
		c.Paths.LibraryDB = defaultLibraryDB
	}
	if c.Paths.LibraryDB, err = expandPath(c.Paths.LibraryDB); err != nil {
		return fmt.Errorf("paths.library_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = defaultSocketPath
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = defaultLockPath
	}
	if c.Paths.LockPath, err = expandPath(c.Paths.LockPath); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeRecording() {
	c.Recording.FFmpegBinary = strings.TrimSpace(c.Recording.FFmpegBinary)
	if c.Recording.FFmpegBinary == "" {
		if value, ok := os.LookupEnv("TUTOREC_FFMPEG"); ok && strings.TrimSpace(value) != "" {
			c.Recording.FFmpegBinary = strings.TrimSpace(value)
		} else {
			c.Recording.FFmpegBinary = defaultFFmpegBinary
		}
	}
	if c.Recording.Framerate <= 0 {
		c.Recording.Framerate = defaultFramerate
	}
	if c.Recording.VideoWidth <= 0 {
		c.Recording.VideoWidth = defaultVideoWidth
	}
	if c.Recording.VideoHeight <= 0 {
		c.Recording.VideoHeight = defaultVideoHeight
	}
	if c.Recording.AudioSampleRate <= 0 {
		c.Recording.AudioSampleRate = defaultAudioSampleRate
	}
	if c.Recording.AudioChannels <= 0 {
		c.Recording.AudioChannels = defaultAudioChannels
	}
	if c.Recording.StopGraceSeconds <= 0 {
		c.Recording.StopGraceSeconds = defaultStopGraceSeconds
	}
	if c.Recording.KillGraceSeconds <= 0 {
		c.Recording.KillGraceSeconds = defaultKillGraceSeconds
	}
}

func (c *Config) normalizeExport() {
	c.Export.VideoPreset = strings.ToLower(strings.TrimSpace(c.Export.VideoPreset))
	if c.Export.VideoPreset == "" {
		c.Export.VideoPreset = defaultVideoPreset
	}
	if c.Export.VideoCRF <= 0 {
		c.Export.VideoCRF = defaultVideoCRF
	}
	c.Export.AudioBitrate = strings.ToLower(strings.TrimSpace(c.Export.AudioBitrate))
	if c.Export.AudioBitrate == "" {
		c.Export.AudioBitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
