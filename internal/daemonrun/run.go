package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"tutorec/internal/capture"
	"tutorec/internal/config"
	"tutorec/internal/daemon"
	"tutorec/internal/deps"
	"tutorec/internal/devices"
	"tutorec/internal/export"
	"tutorec/internal/ipc"
	"tutorec/internal/library"
	"tutorec/internal/logging"
	"tutorec/internal/recording"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the tutorec daemon runtime loop and blocks until a signal
// arrives or a Shutdown request cancels the run context.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("tutorec-%s.log", runID))
	logger, err := logging.New(logging.Options{
		Level:            opts.LogLevel,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	platform, err := capture.DetectPlatform()
	if err != nil {
		logger.Error("unsupported capture platform", logging.Error(err))
		return err
	}

	logDependencySnapshot(logger, cfg, platform)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update tutorec.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "tutorec-*.log", Exclude: []string{logPath}},
	)
	pidPath := filepath.Join(cfg.Paths.LogDir, "tutorec.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := library.Open(cfg)
	if err != nil {
		logger.Error("open library store", logging.Error(err))
		return err
	}
	defer store.Close()

	synth, err := capture.NewSynthesizer(platform, capture.Params{
		Binary:          cfg.FFmpegBinary(),
		Framerate:       cfg.Recording.Framerate,
		VideoWidth:      cfg.Recording.VideoWidth,
		VideoHeight:     cfg.Recording.VideoHeight,
		AudioSampleRate: cfg.Recording.AudioSampleRate,
		AudioChannels:   cfg.Recording.AudioChannels,
	})
	if err != nil {
		return fmt.Errorf("build capture synthesizer: %w", err)
	}
	provider, err := devices.NewProvider(platform, cfg.FFmpegBinary())
	if err != nil {
		return fmt.Errorf("build device provider: %w", err)
	}
	recorder := recording.NewManager(cfg, synth, logger)
	exporter := export.New(cfg, logger)

	d, err := daemon.New(cfg, platform, store, provider, recorder, exporter, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	// The lock is claimed before the socket is touched; a second instance
	// must not clobber the socket the live daemon is serving on.
	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check for a running tutorec daemon and lock file access"),
			logging.String(logging.FieldImpact, "daemon is not serving requests"),
		)
		return err
	}

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.SocketPath, d, logger, cancel)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	<-signalCtx.Done()
	logger.Info("tutorec daemon shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "tutorec.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config, platform capture.Platform) {
	if logger == nil || cfg == nil {
		return
	}
	ffmpeg := deps.CheckFFmpeg(cfg.FFmpegBinary())
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("platform", platform.String()),
		logging.Bool("ffmpeg_available", ffmpeg.Available),
		logging.String("ffmpeg_binary", ffmpeg.Command),
	}
	if platform == capture.PlatformLinux {
		attrs = append(attrs,
			logging.Bool("arecord_available", binaryAvailable("arecord")),
			logging.Bool("v4l2ctl_available", binaryAvailable("v4l2-ctl")),
		)
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
