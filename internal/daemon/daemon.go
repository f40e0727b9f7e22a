package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"tutorec/internal/capture"
	"tutorec/internal/config"
	"tutorec/internal/devices"
	"tutorec/internal/export"
	"tutorec/internal/library"
	"tutorec/internal/logging"
	"tutorec/internal/media"
	"tutorec/internal/recording"
	"tutorec/internal/services"
)

// finalizeTimeout bounds library writes that happen after a task or the
// daemon itself has already left its request context behind.
const finalizeTimeout = 10 * time.Second

// Daemon coordinates recording sessions, exports, and the library, and
// enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *library.Store
	provider devices.Provider
	recorder *recording.Manager
	exporter *export.Exporter
	platform capture.Platform
	logPath  string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	hotplug *hotplugMonitor

	mu          sync.Mutex
	exportTask  *export.Task
	deviceCache *DeviceInventory
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	Platform      capture.Platform
	LibraryDBPath string
	LockPath      string
	LogPath       string
	Hotplug       bool
	Session       *recording.Status
	Export        *export.TaskStatus
}

// DeviceInventory aggregates one discovery pass over the capability
// provider. Screen is the zero Device when the platform reports none.
type DeviceInventory struct {
	AudioInputs []devices.Device
	VideoInputs []devices.Device
	Screen      devices.Device
}

// StopSummary reports where a stopped recording ended up. StagingFolder is
// always set once the capture processes have exited; the remaining fields
// fill in as finalization progresses, so a partial summary accompanies a
// finalization error.
type StopSummary struct {
	StagingFolder string
	ProjectFolder string
	LibraryID     int64
	Metadata      media.Metadata
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, platform capture.Platform, store *library.Store, provider devices.Provider, recorder *recording.Manager, exporter *export.Exporter, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || provider == nil || recorder == nil || exporter == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, provider, recorder, exporter, and logger")
	}

	lockPath := cfg.Paths.LockPath
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		provider: provider,
		recorder: recorder,
		exporter: exporter,
		platform: platform,
		logPath:  filepath.Join(cfg.Paths.LogDir, "tutorec.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.hotplug = newHotplugMonitor(logger, func(subsystem, device string) {
		d.InvalidateDevices()
	})
	return d, nil
}

// Start acquires the daemon lock and begins device monitoring.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tutorec daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.hotplug.Start(d.ctx); err != nil {
		d.logger.Warn("device monitor unavailable", logging.Error(err))
	}

	d.running.Store(true)
	d.logger.Info("tutorec daemon started",
		logging.String("lock", d.lockPath),
		logging.String("platform", d.platform.String()))
	return nil
}

// Stop ends any active recording session, cancels an in-flight export, and
// releases the daemon lock. The active session goes through the same
// finalization as an explicit stop so its files reach the project library.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if _, ok := d.recorder.Status(); ok {
		ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
		summary, err := d.StopRecording(ctx)
		cancel()
		if err != nil {
			d.logger.Warn("recording interrupted by shutdown",
				logging.Error(err),
				logging.String("folder", summary.StagingFolder))
		}
	}

	d.mu.Lock()
	task := d.exportTask
	d.mu.Unlock()
	if task != nil && task.Running() {
		task.Cancel()
		<-task.Done()
		d.logger.Info("export canceled by shutdown", logging.String("task", task.ID()))
	}

	d.hotplug.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("tutorec daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether Start has completed and Stop has not.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		Platform:      d.platform,
		LibraryDBPath: d.store.Path(),
		LockPath:      d.lockPath,
		LogPath:       d.logPath,
		Hotplug:       d.hotplug.Running(),
	}
	if session, ok := d.recorder.Status(); ok {
		status.Session = &session
	}
	d.mu.Lock()
	task := d.exportTask
	d.mu.Unlock()
	if task != nil {
		snapshot := task.Status()
		status.Export = &snapshot
	}
	return status
}

// StartRecording launches a capture session for the project. Only one
// session can be live at a time; the manager rejects a second start.
func (d *Daemon) StartRecording(ctx context.Context, project media.ProjectConfig) (recording.Status, error) {
	session, err := d.recorder.Start(ctx, project)
	if err != nil {
		return recording.Status{}, err
	}
	return session.Snapshot(), nil
}

// PauseRecording suspends the active session.
func (d *Daemon) PauseRecording() (recording.Status, error) {
	if err := d.recorder.Pause(); err != nil {
		return recording.Status{}, err
	}
	status, _ := d.recorder.Status()
	return status, nil
}

// ResumeRecording continues the active session.
func (d *Daemon) ResumeRecording() (recording.Status, error) {
	if err := d.recorder.Resume(); err != nil {
		return recording.Status{}, err
	}
	status, _ := d.recorder.Status()
	return status, nil
}

// StopRecording ends the active session, copies its files into the project
// library, and records the session in the catalog. When finalization fails
// the staging folder is left in place and reported alongside the error.
func (d *Daemon) StopRecording(ctx context.Context) (StopSummary, error) {
	status, ok := d.recorder.Status()
	if !ok {
		return StopSummary{}, services.Wrap(services.ErrValidation, "daemon", "stop recording", "no active recording session", nil)
	}

	folder, err := d.recorder.Stop()
	summary := StopSummary{StagingFolder: folder}
	if err != nil {
		return summary, err
	}

	dest, err := recording.ExportRecording(folder, d.cfg.Paths.ProjectsDir, status.Project)
	if err != nil {
		return summary, err
	}
	summary.ProjectFolder = dest

	meta, err := media.LoadMetadata(filepath.Join(dest, media.MetadataFileName))
	if err != nil {
		return summary, services.Wrap(nil, "daemon", "stop recording", "load session metadata", err)
	}
	summary.Metadata = meta

	rec, err := d.store.RecordSession(ctx, meta, dest)
	if err != nil {
		return summary, err
	}
	summary.LibraryID = rec.ID

	d.logger.Info("recording finalized",
		logging.String(logging.FieldProject, status.Project),
		logging.String("folder", dest),
		logging.Int64("library_id", rec.ID))
	return summary, nil
}

// RecordingStatus reports the active session snapshot.
func (d *Daemon) RecordingStatus() (recording.Status, bool) {
	return d.recorder.Status()
}

// StartExport begins an asynchronous merge of the project folder. Only one
// export runs at a time; a second request while one is live is rejected.
func (d *Daemon) StartExport(folder string, layout media.Layout) (export.TaskStatus, error) {
	d.mu.Lock()
	if d.exportTask != nil && d.exportTask.Running() {
		current := d.exportTask.Status()
		d.mu.Unlock()
		return current, services.Wrap(services.ErrValidation, "daemon", "export",
			fmt.Sprintf("an export of %q is already running", current.Folder), nil)
	}
	runCtx := d.ctx
	if runCtx == nil {
		runCtx = context.Background()
	}
	task := d.exporter.Begin(runCtx, folder, layout)
	d.exportTask = task
	d.mu.Unlock()

	go d.recordExportResult(task)
	return task.Status(), nil
}

// ExportStatus reports the most recent export task, finished or not.
func (d *Daemon) ExportStatus() (export.TaskStatus, bool) {
	d.mu.Lock()
	task := d.exportTask
	d.mu.Unlock()
	if task == nil {
		return export.TaskStatus{}, false
	}
	return task.Status(), true
}

// CancelExport kills the in-flight export. Canceling a settled task
// reports its final status without error.
func (d *Daemon) CancelExport() (export.TaskStatus, error) {
	d.mu.Lock()
	task := d.exportTask
	d.mu.Unlock()
	if task == nil {
		return export.TaskStatus{}, services.Wrap(services.ErrValidation, "daemon", "cancel export", "no export task", nil)
	}
	if task.Running() {
		task.Cancel()
		<-task.Done()
	}
	return task.Status(), nil
}

// recordExportResult marks the library entry exported once the task
// settles. Folders recorded outside the daemon (or removed since) are
// skipped quietly.
func (d *Daemon) recordExportResult(task *export.Task) {
	<-task.Done()
	status := task.Status()
	if status.State != export.TaskSucceeded {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	rec, err := d.store.GetByFolder(ctx, status.Folder)
	if err != nil {
		d.logger.Warn("lookup exported recording", logging.Error(err), logging.String("folder", status.Folder))
		return
	}
	if rec == nil {
		d.logger.Debug("exported folder not in library", logging.String("folder", status.Folder))
		return
	}
	if _, err := d.store.MarkExported(ctx, rec.ID, status.Layout, status.OutputPath); err != nil {
		d.logger.Warn("mark recording exported", logging.Error(err), logging.Int64("library_id", rec.ID))
		return
	}
	d.logger.Info("export recorded in library",
		logging.Int64("library_id", rec.ID),
		logging.String(logging.FieldLayout, string(status.Layout)),
		logging.String("output", status.OutputPath))
}

// Devices returns the current device inventory, serving a cached listing
// until a hotplug event or InvalidateDevices discards it. A platform
// without a screen source yields a zero Screen rather than an error.
func (d *Daemon) Devices(ctx context.Context) (DeviceInventory, error) {
	d.mu.Lock()
	if d.deviceCache != nil {
		inventory := *d.deviceCache
		d.mu.Unlock()
		return inventory, nil
	}
	d.mu.Unlock()

	var inventory DeviceInventory
	audio, err := d.provider.AudioInputs(ctx)
	if err != nil {
		return DeviceInventory{}, err
	}
	inventory.AudioInputs = audio

	video, err := d.provider.VideoInputs(ctx)
	if err != nil {
		return DeviceInventory{}, err
	}
	inventory.VideoInputs = video

	screen, err := d.provider.ScreenSource(ctx)
	switch {
	case err == nil:
		inventory.Screen = screen
	case errors.Is(err, services.ErrNotFound):
	default:
		return DeviceInventory{}, err
	}

	d.mu.Lock()
	d.deviceCache = &inventory
	d.mu.Unlock()
	return inventory, nil
}

// InvalidateDevices discards the cached device inventory so the next
// Devices call re-enumerates.
func (d *Daemon) InvalidateDevices() {
	d.mu.Lock()
	d.deviceCache = nil
	d.mu.Unlock()
	d.logger.Debug("device cache invalidated")
}

// ListRecordings returns the library catalog, newest first.
func (d *Daemon) ListRecordings(ctx context.Context) ([]*library.Recording, error) {
	return d.store.List(ctx)
}

// GetRecording returns one catalog entry, or nil when the id is unknown.
func (d *Daemon) GetRecording(ctx context.Context, id int64) (*library.Recording, error) {
	return d.store.Get(ctx, id)
}

// RemoveRecording deletes a catalog entry. The recorded files stay on disk.
func (d *Daemon) RemoveRecording(ctx context.Context, id int64) (bool, error) {
	return d.store.Remove(ctx, id)
}
