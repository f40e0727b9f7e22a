package ipc

import (
	"time"

	"tutorec/internal/devices"
	"tutorec/internal/media"
)

// Device mirrors the discovery DTO for IPC callers.
type Device = devices.Device

// PingRequest checks daemon liveness.
type PingRequest struct{}

// PingResponse identifies the daemon process.
type PingResponse struct {
	PID int `json:"pid"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StreamStatus identifies one capture process of the active session.
type StreamStatus struct {
	Name string `json:"name"`
	PID  int    `json:"pid"`
}

// SessionStatus describes the active recording session.
type SessionStatus struct {
	Project     string             `json:"project"`
	State       string             `json:"state"`
	Folder      string             `json:"folder"`
	StartedAt   time.Time          `json:"started_at"`
	PauseEvents []media.PauseEvent `json:"pause_events"`
	Streams     []StreamStatus     `json:"streams"`
}

// ExportStatus describes an export task, running or settled.
type ExportStatus struct {
	ID         string `json:"id"`
	Folder     string `json:"folder"`
	Layout     string `json:"layout"`
	State      string `json:"state"`
	Percent    int    `json:"percent"`
	OutputPath string `json:"output_path"`
	Error      string `json:"error"`
}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running       bool           `json:"running"`
	PID           int            `json:"pid"`
	Platform      string         `json:"platform"`
	LibraryDBPath string         `json:"library_db_path"`
	LockPath      string         `json:"lock_path"`
	LogPath       string         `json:"log_path"`
	Hotplug       bool           `json:"hotplug"`
	Session       *SessionStatus `json:"session"`
	Export        *ExportStatus  `json:"export"`
}

// RecordStartRequest launches a recording session from an inline project
// configuration.
type RecordStartRequest struct {
	Project media.ProjectConfig `json:"project"`
}

// RecordStartResponse carries the session snapshot after launch.
type RecordStartResponse struct {
	Session SessionStatus `json:"session"`
}

// RecordPauseRequest suspends the active session.
type RecordPauseRequest struct{}

// RecordPauseResponse carries the session snapshot after the pause.
type RecordPauseResponse struct {
	Session SessionStatus `json:"session"`
}

// RecordResumeRequest continues the active session.
type RecordResumeRequest struct{}

// RecordResumeResponse carries the session snapshot after the resume.
type RecordResumeResponse struct {
	Session SessionStatus `json:"session"`
}

// RecordStopRequest ends the active session and finalizes its files.
type RecordStopRequest struct{}

// RecordStopResponse reports where the recording ended up.
type RecordStopResponse struct {
	StagingFolder   string  `json:"staging_folder"`
	ProjectFolder   string  `json:"project_folder"`
	LibraryID       int64   `json:"library_id"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// ExportStartRequest begins a merge of the project folder into one video.
type ExportStartRequest struct {
	Folder string `json:"folder"`
	Layout string `json:"layout"`
}

// ExportStartResponse carries the freshly started task.
type ExportStartResponse struct {
	Task ExportStatus `json:"task"`
}

// ExportStatusRequest fetches the most recent export task.
type ExportStatusRequest struct{}

// ExportStatusResponse carries the task, or nil when none has run.
type ExportStatusResponse struct {
	Task *ExportStatus `json:"task"`
}

// ExportCancelRequest kills the in-flight export.
type ExportCancelRequest struct{}

// ExportCancelResponse carries the settled task.
type ExportCancelResponse struct {
	Task ExportStatus `json:"task"`
}

// DevicesRequest fetches the capture device inventory.
type DevicesRequest struct{}

// DevicesResponse lists capture devices. Screen is nil when the platform
// reports no screen source.
type DevicesResponse struct {
	AudioInputs []Device `json:"audio_inputs"`
	VideoInputs []Device `json:"video_inputs"`
	Screen      *Device  `json:"screen"`
}

// LibraryEntry is the wire form of one catalog row.
type LibraryEntry struct {
	ID           int64     `json:"id"`
	ProjectName  string    `json:"project_name"`
	Folder       string    `json:"folder"`
	StartedAt    time.Time `json:"started_at"`
	StoppedAt    time.Time `json:"stopped_at"`
	Streams      []string  `json:"streams"`
	Status       string    `json:"status"`
	ExportPath   string    `json:"export_path"`
	ExportLayout string    `json:"export_layout"`
	CreatedAt    time.Time `json:"created_at"`
}

// LibraryListRequest fetches the catalog.
type LibraryListRequest struct{}

// LibraryListResponse lists catalog entries, newest first.
type LibraryListResponse struct {
	Entries []LibraryEntry `json:"entries"`
}

// LibraryRemoveRequest deletes one catalog entry by id.
type LibraryRemoveRequest struct {
	ID int64 `json:"id"`
}

// LibraryRemoveResponse reports whether the entry existed.
type LibraryRemoveResponse struct {
	Removed bool `json:"removed"`
}

// ShutdownRequest asks the daemon process to exit.
type ShutdownRequest struct{}

// ShutdownResponse acknowledges the shutdown.
type ShutdownResponse struct {
	Stopping bool `json:"stopping"`
}
