package recording

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tutorec/internal/capture"
	"tutorec/internal/config"
	"tutorec/internal/logging"
	"tutorec/internal/media"
	"tutorec/internal/proc"
	"tutorec/internal/services"
)

const stagingStampFormat = "20060102-150405"

// Launcher starts one encoder process.
type Launcher func(binary string, args ...string) (proc.Handle, error)

func defaultLauncher(binary string, args ...string) (proc.Handle, error) {
	return proc.Start(binary, args...)
}

// Manager creates sessions and enforces that at most one is active.
type Manager struct {
	synth     *capture.Synthesizer
	staging   string
	stopGrace time.Duration
	killGrace time.Duration
	launch    Launcher
	clock     func() time.Time
	logger    *slog.Logger

	mu     sync.Mutex
	active *Session
}

// Option adjusts manager construction.
type Option func(*Manager)

// WithLauncher substitutes the process launcher.
func WithLauncher(launch Launcher) Option {
	return func(m *Manager) {
		if launch != nil {
			m.launch = launch
		}
	}
}

// WithClock substitutes the time source.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithGracePeriods overrides the stop escalation windows.
func WithGracePeriods(stop, kill time.Duration) Option {
	return func(m *Manager) {
		if stop > 0 {
			m.stopGrace = stop
		}
		if kill > 0 {
			m.killGrace = kill
		}
	}
}

// NewManager builds a session manager from configuration.
func NewManager(cfg *config.Config, synth *capture.Synthesizer, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		synth:     synth,
		staging:   cfg.Paths.StagingDir,
		stopGrace: time.Duration(cfg.Recording.StopGraceSeconds) * time.Second,
		killGrace: time.Duration(cfg.Recording.KillGraceSeconds) * time.Second,
		launch:    defaultLauncher,
		clock:     time.Now,
		logger:    logging.NewComponentLogger(logger, "recording"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type plannedStream struct {
	name string
	cmd  capture.Command
}

// Start validates the project, synthesizes one capture command per input
// and launches them all. Launching is all or nothing: when any process
// fails to start, the ones already running are shut down and the error is
// returned. The staging folder is left in place for inspection.
func (m *Manager) Start(ctx context.Context, project media.ProjectConfig) (*Session, error) {
	if err := project.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "recording", "start", "invalid project", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil && m.active.State() != StateStopped {
		return nil, services.Wrap(services.ErrValidation, "recording", "start",
			fmt.Sprintf("a recording session for %q is already active", m.active.Project()), nil)
	}

	startedAt := m.clock().UTC()
	sanitized := project.SanitizedName()
	folder := filepath.Join(m.staging, sanitized+"_"+startedAt.Format(stagingStampFormat))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, services.Wrap(nil, "recording", "start", "create staging folder", err)
	}

	plan, err := m.planStreams(project, sanitized, folder)
	if err != nil {
		return nil, err
	}

	entries := make([]streamEntry, 0, len(plan))
	for _, stream := range plan {
		if ctx.Err() != nil {
			m.rollback(entries)
			return nil, services.Wrap(services.ErrCanceled, "recording", "start", "", ctx.Err())
		}
		handle, err := m.launch(stream.cmd.Binary, stream.cmd.Args...)
		if err != nil {
			m.rollback(entries)
			return nil, services.Wrap(services.ErrProcessLaunch, "recording", "start",
				fmt.Sprintf("launch %s capture", stream.name), err)
		}
		m.logger.Info("capture process started",
			logging.String(logging.FieldStream, stream.name),
			logging.Int("pid", handle.PID()),
			logging.String("output", stream.cmd.OutputPath))
		entries = append(entries, streamEntry{name: stream.name, output: stream.cmd.OutputPath, handle: handle})
	}

	session := &Session{
		project:   project.Name,
		folder:    folder,
		startedAt: startedAt,
		entries:   entries,
		stopGrace: m.stopGrace,
		killGrace: m.killGrace,
		clock:     m.clock,
		logger:    m.logger,
		state:     StateRecording,
	}
	m.active = session
	m.logger.Info("recording started",
		logging.String(logging.FieldProject, project.Name),
		logging.String("folder", folder),
		logging.Int("streams", len(entries)))
	return session, nil
}

func (m *Manager) planStreams(project media.ProjectConfig, sanitized, folder string) ([]plannedStream, error) {
	plan := make([]plannedStream, 0, len(project.AudioInputs)+len(project.VideoInputs))
	for i, audio := range project.AudioInputs {
		cmd, err := m.synth.AudioCommand(audio.DeviceName, sanitized, i+1, folder)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "recording", "start", "synthesize audio command", err)
		}
		plan = append(plan, plannedStream{name: fmt.Sprintf("mic%d", i+1), cmd: cmd})
	}
	for _, video := range project.VideoInputs {
		switch video.SourceType {
		case media.SourceScreen:
			cmd, err := m.synth.ScreenCommand(video.DeviceName, *project.ScreenArea, sanitized, folder)
			if err != nil {
				return nil, services.Wrap(services.ErrValidation, "recording", "start", "synthesize screen command", err)
			}
			plan = append(plan, plannedStream{name: "screen", cmd: cmd})
		default:
			cmd, err := m.synth.WebcamCommand(video.DeviceName, sanitized, folder)
			if err != nil {
				return nil, services.Wrap(services.ErrValidation, "recording", "start", "synthesize webcam command", err)
			}
			plan = append(plan, plannedStream{name: "webcam", cmd: cmd})
		}
	}
	return plan, nil
}

// rollback shuts down processes launched before a failed start. Waits use
// the short kill window; nothing here is worth keeping.
func (m *Manager) rollback(entries []streamEntry) {
	for _, entry := range entries {
		if err := entry.handle.RequestGracefulStop(); err != nil {
			_ = entry.handle.Terminate()
		}
	}
	for _, entry := range entries {
		if err := entry.handle.Wait(m.killGrace); err != nil {
			_ = entry.handle.Kill()
			_ = entry.handle.Wait(m.killGrace)
		}
		m.logger.Warn("rolled back capture process",
			logging.String(logging.FieldStream, entry.name))
	}
}

// Active returns the current session, or nil when none is running.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Status reports the active session snapshot.
func (m *Manager) Status() (Status, bool) {
	session := m.Active()
	if session == nil {
		return Status{}, false
	}
	return session.Snapshot(), true
}

// Pause suspends the active session.
func (m *Manager) Pause() error {
	session := m.Active()
	if session == nil {
		return services.Wrap(services.ErrValidation, "recording", "pause", "no active recording session", nil)
	}
	return session.Pause()
}

// Resume continues the active session.
func (m *Manager) Resume() error {
	session := m.Active()
	if session == nil {
		return services.Wrap(services.ErrValidation, "recording", "resume", "no active recording session", nil)
	}
	return session.Resume()
}

// Stop ends the active session and releases the manager for the next one.
// The returned folder contains the recorded files and metadata.
func (m *Manager) Stop() (string, error) {
	session := m.Active()
	if session == nil {
		return "", services.Wrap(services.ErrValidation, "recording", "stop", "no active recording session", nil)
	}
	folder, err := session.Stop()

	m.mu.Lock()
	if m.active == session {
		m.active = nil
	}
	m.mu.Unlock()
	return folder, err
}
