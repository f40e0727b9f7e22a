package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PauseAction distinguishes the two timeline events a session records.
type PauseAction string

const (
	ActionPause  PauseAction = "pause"
	ActionResume PauseAction = "resume"
)

// PauseEvent is one entry in a session's pause/resume timeline.
type PauseEvent struct {
	Action    PauseAction `json:"action"`
	Timestamp time.Time   `json:"timestamp"`
}

// MetadataFileName is the canonical metadata file name inside an exported
// project folder.
const MetadataFileName = "metadata.json"

// Metadata is the durable record a stopped session writes. It is the only
// contract between the recorder and the export pipeline.
type Metadata struct {
	ProjectName    string       `json:"project_name"`
	StartTimestamp time.Time    `json:"start_timestamp"`
	StopTimestamp  time.Time    `json:"stop_timestamp"`
	PauseEvents    []PauseEvent `json:"pause_events"`
	Recordings     []string     `json:"recordings"`
}

// StagingMetadataName returns the metadata file name used inside a staging
// folder, where every file carries the project prefix.
func StagingMetadataName(project string) string {
	return SanitizeName(project) + "_" + MetadataFileName
}

// Duration returns the recorded span in seconds, floored at one second so
// progress arithmetic never divides by zero. Metadata written before the
// session stopped (or hand-edited) yields an error.
func (m Metadata) Duration() (float64, error) {
	if m.StartTimestamp.IsZero() || m.StopTimestamp.IsZero() {
		return 0, errors.New("metadata is missing start or stop timestamp")
	}
	seconds := m.StopTimestamp.Sub(m.StartTimestamp).Seconds()
	if seconds < 1.0 {
		seconds = 1.0
	}
	return seconds, nil
}

// Save writes the metadata record as indented JSON.
func (m Metadata) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads a metadata record from path.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata %s: %w", filepath.Base(path), err)
	}
	return meta, nil
}
