package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"tutorec/internal/capture"
	"tutorec/internal/config"
	"tutorec/internal/daemon"
	"tutorec/internal/devices"
	"tutorec/internal/export"
	"tutorec/internal/ipc"
	"tutorec/internal/library"
	"tutorec/internal/logging"
	"tutorec/internal/media"
	"tutorec/internal/proc"
	"tutorec/internal/recording"
	"tutorec/internal/testsupport"
)

type quietHandle struct {
	pid    int
	exited chan struct{}
	once   sync.Once
}

func (h *quietHandle) exit() { h.once.Do(func() { close(h.exited) }) }

func (h *quietHandle) PID() int { return h.pid }

func (h *quietHandle) Suspend() error { return nil }

func (h *quietHandle) Resume() error { return nil }

func (h *quietHandle) RequestGracefulStop() error { h.exit(); return nil }

func (h *quietHandle) Terminate() error { h.exit(); return nil }

func (h *quietHandle) Kill() error { h.exit(); return nil }

func (h *quietHandle) Output() string { return "" }

func (h *quietHandle) Wait(d time.Duration) error {
	if d <= 0 {
		<-h.exited
		return nil
	}
	select {
	case <-h.exited:
		return nil
	case <-time.After(d):
		return proc.ErrWaitTimeout
	}
}

func quietLauncher(binary string, args ...string) (proc.Handle, error) {
	return &quietHandle{pid: 5000, exited: make(chan struct{})}, nil
}

type staticProvider struct{}

func (staticProvider) AudioInputs(ctx context.Context) ([]devices.Device, error) {
	return []devices.Device{{ID: "hw:CARD=Mic,DEV=0", Name: "USB Microphone"}}, nil
}

func (staticProvider) VideoInputs(ctx context.Context) ([]devices.Device, error) {
	return []devices.Device{{ID: "/dev/video0", Name: "Webcam"}}, nil
}

func (staticProvider) ScreenSource(ctx context.Context) (devices.Device, error) {
	return devices.Device{ID: ":0", Name: "X11 display :0"}, nil
}

type instantEncoder struct{}

func (instantEncoder) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	onLine("out_time_ms=45000000")
	output := args[len(args)-1]
	return os.WriteFile(output, []byte("merged"), 0o644)
}

type cliTestEnv struct {
	cfg        *config.Config
	store      *library.Store
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	baseDir    string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(homeDir, ".config", "tutorec", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	synth, err := capture.NewSynthesizer(capture.PlatformLinux, capture.Params{})
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}
	recorder := recording.NewManager(cfg, synth, logger,
		recording.WithLauncher(quietLauncher),
		recording.WithGracePeriods(200*time.Millisecond, 50*time.Millisecond))
	exporter := export.New(cfg, logger, export.WithExecutor(instantEncoder{}))

	d, err := daemon.New(cfg, capture.PlatformLinux, store, staticProvider{}, recorder, exporter, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}

	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger, cancel)
	if err != nil {
		cancel()
		_ = d.Close()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI daemon test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		server:     srv,
		socketPath: cfg.Paths.SocketPath,
		configPath: configPath,
		baseDir:    base,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		_ = d.Close()
	})

	return env
}

// setupOfflineConfig prepares a config file and socket path with no daemon
// behind them, for commands that must handle the not-running case.
func setupOfflineConfig(t *testing.T) (socketPath, configPath string, cfg *config.Config) {
	t.Helper()

	cfg = testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	base := testsupport.BaseDir(cfg)
	configPath = filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return cfg.Paths.SocketPath, configPath, cfg
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
staging_dir = %q
export_dir = %q
projects_dir = %q
library_db = %q
log_dir = %q
socket_path = %q
lock_path = %q

[recording]
ffmpeg_binary = %q
`,
		cfg.Paths.StagingDir,
		cfg.Paths.ExportDir,
		cfg.Paths.ProjectsDir,
		cfg.Paths.LibraryDB,
		cfg.Paths.LogDir,
		cfg.Paths.SocketPath,
		cfg.Paths.LockPath,
		cfg.Recording.FFmpegBinary,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeDemoProject(t *testing.T, dir string) string {
	t.Helper()
	project := media.ProjectConfig{
		Name:        "demo",
		AudioInputs: []media.AudioInput{{DeviceName: "hw:CARD=Mic,DEV=0"}},
		VideoInputs: []media.VideoInput{
			{DeviceName: "/dev/video0", SourceType: media.SourceWebcam},
			{DeviceName: ":0", SourceType: media.SourceScreen},
		},
		ScreenArea: &media.ScreenArea{Width: 1920, Height: 1080, AspectRatio: media.Aspect16x9},
	}
	path := filepath.Join(dir, "demo.json")
	if err := media.SaveProject(project, path); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
