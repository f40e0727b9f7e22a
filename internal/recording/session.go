package recording

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"tutorec/internal/logging"
	"tutorec/internal/media"
	"tutorec/internal/proc"
	"tutorec/internal/services"
)

// State tracks the lifecycle of a session. There is no idle state: a
// session exists only once its processes are running.
type State string

const (
	StateRecording State = "recording"
	StatePaused    State = "paused"
	StateStopped   State = "stopped"
)

// StreamInfo identifies one capture process in a status snapshot.
type StreamInfo struct {
	Name string
	PID  int
}

// Status is a point-in-time view of a session for status reporting.
type Status struct {
	Project     string
	State       State
	Folder      string
	StartedAt   time.Time
	PauseEvents []media.PauseEvent
	Streams     []StreamInfo
}

type streamEntry struct {
	name   string
	output string
	handle proc.Handle
}

// Session owns the capture processes of one active recording. All mutation
// goes through the session; callers never touch the processes directly.
type Session struct {
	project   string
	folder    string
	startedAt time.Time
	entries   []streamEntry

	stopGrace time.Duration
	killGrace time.Duration
	clock     func() time.Time
	logger    *slog.Logger

	mu          sync.Mutex
	state       State
	pauseEvents []media.PauseEvent

	stopOnce sync.Once
	stopErr  error
}

// Project returns the project name the session records.
func (s *Session) Project() string { return s.project }

// Folder returns the staging folder holding the stream files.
func (s *Session) Folder() string { return s.folder }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot captures the session for status reporting.
func (s *Session) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	streams := make([]StreamInfo, 0, len(s.entries))
	for _, entry := range s.entries {
		streams = append(streams, StreamInfo{Name: entry.name, PID: entry.handle.PID()})
	}
	return Status{
		Project:     s.project,
		State:       s.state,
		Folder:      s.folder,
		StartedAt:   s.startedAt,
		PauseEvents: append([]media.PauseEvent(nil), s.pauseEvents...),
		Streams:     streams,
	}
}

// Pause suspends every capture process and records one shared pause event.
// Pausing an already paused session is a no-op.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StatePaused:
		return nil
	case StateStopped:
		return services.Wrap(services.ErrValidation, "recording", "pause", "session already stopped", nil)
	}

	ts := s.clock().UTC()
	var firstErr error
	for _, entry := range s.entries {
		if err := entry.handle.Suspend(); err != nil {
			s.logger.Warn("failed to suspend capture process",
				logging.String(logging.FieldStream, entry.name),
				logging.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("suspend %s: %w", entry.name, err)
			}
		}
	}
	s.pauseEvents = append(s.pauseEvents, media.PauseEvent{Action: media.ActionPause, Timestamp: ts})
	s.state = StatePaused
	s.logger.Info("recording paused", logging.String(logging.FieldProject, s.project))

	if firstErr != nil {
		return services.Wrap(services.ErrExternalTool, "recording", "pause", "", firstErr)
	}
	return nil
}

// Resume continues every capture process and records one shared resume
// event. Resuming a session that is not paused is a no-op.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return nil
	}
	if err := s.resumeLocked(); err != nil {
		return services.Wrap(services.ErrExternalTool, "recording", "resume", "", err)
	}
	return nil
}

func (s *Session) resumeLocked() error {
	ts := s.clock().UTC()
	var firstErr error
	for _, entry := range s.entries {
		if err := entry.handle.Resume(); err != nil {
			s.logger.Warn("failed to resume capture process",
				logging.String(logging.FieldStream, entry.name),
				logging.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("resume %s: %w", entry.name, err)
			}
		}
	}
	s.pauseEvents = append(s.pauseEvents, media.PauseEvent{Action: media.ActionResume, Timestamp: ts})
	s.state = StateRecording
	s.logger.Info("recording resumed", logging.String(logging.FieldProject, s.project))
	return firstErr
}

// Stop ends the session: every process is asked to finish, stragglers are
// terminated and finally killed, and the metadata record is written last.
// Stop is idempotent; concurrent and repeated calls settle on one result.
// The returned folder holds the recorded files.
func (s *Session) Stop() (string, error) {
	s.stopOnce.Do(func() {
		s.stopErr = s.shutdown()
	})
	return s.folder, s.stopErr
}

func (s *Session) shutdown() error {
	s.mu.Lock()
	// A suspended encoder cannot read its stdin, so wake everything up
	// before asking for a graceful finish.
	if s.state == StatePaused {
		if err := s.resumeLocked(); err != nil {
			s.logger.Warn("resume before stop incomplete", logging.Error(err))
		}
	}
	s.state = StateStopped
	events := append([]media.PauseEvent(nil), s.pauseEvents...)
	s.mu.Unlock()

	for _, entry := range s.entries {
		if err := entry.handle.RequestGracefulStop(); err != nil {
			s.logger.Warn("graceful stop request failed, terminating",
				logging.String(logging.FieldStream, entry.name),
				logging.Error(err))
			_ = entry.handle.Terminate()
		}
	}

	for _, entry := range s.entries {
		s.reap(entry)
	}

	stoppedAt := s.clock().UTC()
	names := make([]string, 0, len(s.entries))
	for _, entry := range s.entries {
		names = append(names, entry.name)
	}
	meta := media.Metadata{
		ProjectName:    s.project,
		StartTimestamp: s.startedAt,
		StopTimestamp:  stoppedAt,
		PauseEvents:    events,
		Recordings:     names,
	}
	metaPath := filepath.Join(s.folder, media.StagingMetadataName(s.project))
	if err := meta.Save(metaPath); err != nil {
		return services.Wrap(nil, "recording", "stop", "write metadata", err)
	}

	s.logger.Info("recording stopped",
		logging.String(logging.FieldProject, s.project),
		logging.Duration("elapsed", stoppedAt.Sub(s.startedAt)),
		logging.Int("streams", len(names)))
	return nil
}

// reap escalates until the process is gone: grace window for the quit key,
// terminate, short second window, then kill.
func (s *Session) reap(entry streamEntry) {
	err := entry.handle.Wait(s.stopGrace)
	if err == nil {
		return
	}
	if !errors.Is(err, proc.ErrWaitTimeout) {
		s.logger.Warn("capture process exited uncleanly",
			logging.String(logging.FieldStream, entry.name),
			logging.Error(err))
		return
	}

	s.logger.Warn("capture process ignored quit request, terminating",
		logging.String(logging.FieldStream, entry.name),
		logging.Int("pid", entry.handle.PID()))
	_ = entry.handle.Terminate()
	if err := entry.handle.Wait(s.killGrace); errors.Is(err, proc.ErrWaitTimeout) {
		s.logger.Warn("capture process survived terminate, killing",
			logging.String(logging.FieldStream, entry.name),
			logging.Int("pid", entry.handle.PID()))
		_ = entry.handle.Kill()
		_ = entry.handle.Wait(s.killGrace)
	}
}
