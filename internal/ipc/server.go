package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"tutorec/internal/daemon"
	"tutorec/internal/export"
	"tutorec/internal/library"
	"tutorec/internal/logging"
	"tutorec/internal/media"
	"tutorec/internal/recording"
	"tutorec/internal/services"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. The
// shutdown callback, when non-nil, runs after a Shutdown request has
// stopped the daemon; the process owner uses it to leave its run loop.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger, shutdown func()) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx, shutdown: shutdown}
	if err := rpcServer.RegisterName("Tutorec", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun tutorec daemon stop"))
	}
}

type service struct {
	daemon   *daemon.Daemon
	logger   *slog.Logger
	ctx      context.Context
	shutdown func()
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

// wireError flattens an error for the rpc reply, prefixed with its
// taxonomy kind so the client can classify without sentinel values.
func wireError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %v", services.Kind(err), err)
}

func convertSession(status recording.Status) SessionStatus {
	streams := make([]StreamStatus, 0, len(status.Streams))
	for _, stream := range status.Streams {
		streams = append(streams, StreamStatus{Name: stream.Name, PID: stream.PID})
	}
	return SessionStatus{
		Project:     status.Project,
		State:       string(status.State),
		Folder:      status.Folder,
		StartedAt:   status.StartedAt,
		PauseEvents: status.PauseEvents,
		Streams:     streams,
	}
}

func convertTask(task export.TaskStatus) ExportStatus {
	return ExportStatus{
		ID:         task.ID,
		Folder:     task.Folder,
		Layout:     string(task.Layout),
		State:      string(task.State),
		Percent:    task.Percent,
		OutputPath: task.OutputPath,
		Error:      task.Error,
	}
}

func convertRecording(rec *library.Recording) LibraryEntry {
	return LibraryEntry{
		ID:           rec.ID,
		ProjectName:  rec.ProjectName,
		Folder:       rec.Folder,
		StartedAt:    rec.StartedAt,
		StoppedAt:    rec.StoppedAt,
		Streams:      rec.Streams,
		Status:       string(rec.Status),
		ExportPath:   rec.ExportPath,
		ExportLayout: rec.ExportLayout,
		CreatedAt:    rec.CreatedAt,
	}
}

func (s *service) Ping(_ PingRequest, resp *PingResponse) error {
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.Platform = status.Platform.String()
	resp.LibraryDBPath = status.LibraryDBPath
	resp.LockPath = status.LockPath
	resp.LogPath = status.LogPath
	resp.Hotplug = status.Hotplug
	if status.Session != nil {
		session := convertSession(*status.Session)
		resp.Session = &session
	}
	if status.Export != nil {
		task := convertTask(*status.Export)
		resp.Export = &task
	}
	return nil
}

func (s *service) RecordStart(req RecordStartRequest, resp *RecordStartResponse) error {
	s.log().Debug("record start requested", logging.String(logging.FieldProject, req.Project.Name))
	status, err := s.daemon.StartRecording(s.ctx, req.Project)
	if err != nil {
		return wireError(err)
	}
	resp.Session = convertSession(status)
	s.log().Info("recording started via IPC",
		logging.String(logging.FieldEventType, "record_start"),
		logging.String(logging.FieldProject, status.Project))
	return nil
}

func (s *service) RecordPause(_ RecordPauseRequest, resp *RecordPauseResponse) error {
	status, err := s.daemon.PauseRecording()
	if err != nil {
		return wireError(err)
	}
	resp.Session = convertSession(status)
	return nil
}

func (s *service) RecordResume(_ RecordResumeRequest, resp *RecordResumeResponse) error {
	status, err := s.daemon.ResumeRecording()
	if err != nil {
		return wireError(err)
	}
	resp.Session = convertSession(status)
	return nil
}

func (s *service) RecordStop(_ RecordStopRequest, resp *RecordStopResponse) error {
	s.log().Debug("record stop requested")
	summary, err := s.daemon.StopRecording(s.ctx)
	resp.StagingFolder = summary.StagingFolder
	resp.ProjectFolder = summary.ProjectFolder
	resp.LibraryID = summary.LibraryID
	if err != nil {
		return wireError(err)
	}
	if seconds, derr := summary.Metadata.Duration(); derr == nil {
		resp.DurationSeconds = seconds
	}
	s.log().Info("recording stopped via IPC",
		logging.String(logging.FieldEventType, "record_stop"),
		logging.String("folder", summary.ProjectFolder))
	return nil
}

func (s *service) ExportStart(req ExportStartRequest, resp *ExportStartResponse) error {
	s.log().Debug("export start requested",
		logging.String("folder", req.Folder),
		logging.String(logging.FieldLayout, req.Layout))
	task, err := s.daemon.StartExport(req.Folder, media.Layout(req.Layout))
	if err != nil {
		return wireError(err)
	}
	resp.Task = convertTask(task)
	s.log().Info("export started via IPC",
		logging.String(logging.FieldEventType, "export_start"),
		logging.String("task", task.ID))
	return nil
}

func (s *service) ExportStatus(_ ExportStatusRequest, resp *ExportStatusResponse) error {
	task, ok := s.daemon.ExportStatus()
	if !ok {
		return nil
	}
	converted := convertTask(task)
	resp.Task = &converted
	return nil
}

func (s *service) ExportCancel(_ ExportCancelRequest, resp *ExportCancelResponse) error {
	s.log().Debug("export cancel requested")
	task, err := s.daemon.CancelExport()
	if err != nil {
		return wireError(err)
	}
	resp.Task = convertTask(task)
	return nil
}

func (s *service) Devices(_ DevicesRequest, resp *DevicesResponse) error {
	inventory, err := s.daemon.Devices(s.ctx)
	if err != nil {
		return wireError(err)
	}
	resp.AudioInputs = inventory.AudioInputs
	resp.VideoInputs = inventory.VideoInputs
	if inventory.Screen.ID != "" {
		screen := inventory.Screen
		resp.Screen = &screen
	}
	return nil
}

func (s *service) LibraryList(_ LibraryListRequest, resp *LibraryListResponse) error {
	recs, err := s.daemon.ListRecordings(s.ctx)
	if err != nil {
		return wireError(err)
	}
	resp.Entries = make([]LibraryEntry, 0, len(recs))
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		resp.Entries = append(resp.Entries, convertRecording(rec))
	}
	return nil
}

func (s *service) LibraryRemove(req LibraryRemoveRequest, resp *LibraryRemoveResponse) error {
	if req.ID <= 0 {
		return wireError(services.Wrap(services.ErrValidation, "ipc", "library remove", fmt.Sprintf("invalid library id %d", req.ID), nil))
	}
	removed, err := s.daemon.RemoveRecording(s.ctx, req.ID)
	if err != nil {
		return wireError(err)
	}
	resp.Removed = removed
	if removed {
		s.log().Info("library entry removed",
			logging.String(logging.FieldEventType, "library_remove"),
			logging.Int64("library_id", req.ID))
	}
	return nil
}

func (s *service) Shutdown(_ ShutdownRequest, resp *ShutdownResponse) error {
	s.log().Info("shutdown requested via IPC",
		logging.String(logging.FieldEventType, "daemon_shutdown"))
	s.daemon.Stop()
	resp.Stopping = true
	if s.shutdown != nil {
		// The run loop drains in-flight connections before closing the
		// socket, so the reply still reaches the caller.
		go s.shutdown()
	}
	return nil
}
