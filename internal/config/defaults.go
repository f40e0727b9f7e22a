package config

const (
	defaultStagingDir       = "~/.local/share/tutorec/staging"
	defaultExportDir        = "~/Videos/tutorec"
	defaultProjectsDir      = "~/.local/share/tutorec/projects"
	defaultLibraryDB        = "~/.local/share/tutorec/library.db"
	defaultLogDir           = "~/.local/share/tutorec/logs"
	defaultSocketPath       = "~/.local/share/tutorec/tutorec.sock"
	defaultLockPath         = "~/.local/share/tutorec/tutorec.lock"
	defaultLogRetentionDays = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"

	defaultFFmpegBinary     = "ffmpeg"
	defaultFramerate        = 30
	defaultVideoWidth       = 1920
	defaultVideoHeight      = 1080
	defaultAudioSampleRate  = 44100
	defaultAudioChannels    = 2
	defaultStopGraceSeconds = 10
	defaultKillGraceSeconds = 2

	defaultVideoPreset  = "medium"
	defaultVideoCRF     = 20
	defaultAudioBitrate = "192k"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir:  defaultStagingDir,
			ExportDir:   defaultExportDir,
			ProjectsDir: defaultProjectsDir,
			LibraryDB:   defaultLibraryDB,
			LogDir:      defaultLogDir,
			SocketPath:  defaultSocketPath,
			LockPath:    defaultLockPath,
		},
		Recording: Recording{
			FFmpegBinary:     defaultFFmpegBinary,
			Framerate:        defaultFramerate,
			VideoWidth:       defaultVideoWidth,
			VideoHeight:      defaultVideoHeight,
			AudioSampleRate:  defaultAudioSampleRate,
			AudioChannels:    defaultAudioChannels,
			StopGraceSeconds: defaultStopGraceSeconds,
			KillGraceSeconds: defaultKillGraceSeconds,
		},
		Export: Export{
			VideoPreset:  defaultVideoPreset,
			VideoCRF:     defaultVideoCRF,
			AudioBitrate: defaultAudioBitrate,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
