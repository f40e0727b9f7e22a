package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tutorec/internal/media"
)

// Status tracks whether a catalog entry has been exported yet.
type Status string

const (
	StatusRecorded Status = "recorded"
	StatusExported Status = "exported"
)

// Recording is one catalog row describing a finished session.
type Recording struct {
	ID           int64
	ProjectName  string
	Folder       string
	StartedAt    time.Time
	StoppedAt    time.Time
	Streams      []string
	Status       Status
	ExportPath   string
	ExportLayout string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const recordingColumns = "id, project_name, folder, started_at, stopped_at, streams_json, status, export_path, export_layout, created_at, updated_at"

// RecordSession inserts a catalog entry for a freshly stopped session.
// Recording into a folder that is already cataloged replaces that entry and
// clears any previous export.
func (s *Store) RecordSession(ctx context.Context, meta media.Metadata, folder string) (*Recording, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	streamsJSON, err := json.Marshal(meta.Recordings)
	if err != nil {
		return nil, fmt.Errorf("marshal streams: %w", err)
	}

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO recordings (
            project_name, folder, started_at, stopped_at, streams_json,
            status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(folder) DO UPDATE SET
            project_name = excluded.project_name,
            started_at = excluded.started_at,
            stopped_at = excluded.stopped_at,
            streams_json = excluded.streams_json,
            status = excluded.status,
            export_path = NULL,
            export_layout = NULL,
            updated_at = excluded.updated_at`,
		meta.ProjectName,
		folder,
		nullableTimestamp(meta.StartTimestamp),
		nullableTimestamp(meta.StopTimestamp),
		string(streamsJSON),
		StatusRecorded,
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert recording: %w", err)
	}

	return s.GetByFolder(ctx, folder)
}

// MarkExported records a finished export on an entry. It returns nil when
// the id is unknown.
func (s *Store) MarkExported(ctx context.Context, id int64, layout media.Layout, outputPath string) (*Recording, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE recordings SET status = ?, export_path = ?, export_layout = ?, updated_at = ? WHERE id = ?`,
		StatusExported,
		outputPath,
		string(layout),
		timestamp,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("mark exported: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.Get(ctx, id)
}

// Get returns the entry with the given id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*Recording, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+recordingColumns+` FROM recordings WHERE id = ?`, id)
	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recording: %w", err)
	}
	return rec, nil
}

// GetByFolder returns the entry cataloging the given staging folder.
func (s *Store) GetByFolder(ctx context.Context, folder string) (*Recording, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+recordingColumns+` FROM recordings WHERE folder = ?`, folder)
	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recording by folder: %w", err)
	}
	return rec, nil
}

// List returns all entries, newest first.
func (s *Store) List(ctx context.Context) ([]*Recording, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+recordingColumns+` FROM recordings ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var recordings []*Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}
	return recordings, rows.Err()
}

// Remove deletes an entry and reports whether it existed. The staging
// folder on disk is left alone.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove recording: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanRecording(scanner interface{ Scan(dest ...any) error }) (*Recording, error) {
	var (
		id           int64
		projectName  string
		folder       string
		startedRaw   sql.NullString
		stoppedRaw   sql.NullString
		streamsRaw   sql.NullString
		statusStr    string
		exportPath   sql.NullString
		exportLayout sql.NullString
		createdRaw   string
		updatedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&projectName,
		&folder,
		&startedRaw,
		&stoppedRaw,
		&streamsRaw,
		&statusStr,
		&exportPath,
		&exportLayout,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	rec := &Recording{
		ID:           id,
		ProjectName:  projectName,
		Folder:       folder,
		Status:       Status(statusStr),
		ExportPath:   exportPath.String,
		ExportLayout: exportLayout.String,
	}
	if streamsRaw.Valid && streamsRaw.String != "" {
		if err := json.Unmarshal([]byte(streamsRaw.String), &rec.Streams); err != nil {
			return nil, fmt.Errorf("parse streams for recording %d: %w", id, err)
		}
	}
	rec.StartedAt = parseTimestamp(startedRaw.String)
	rec.StoppedAt = parseTimestamp(stoppedRaw.String)
	rec.CreatedAt = parseTimestamp(createdRaw)
	rec.UpdatedAt = parseTimestamp(updatedRaw)
	return rec, nil
}

func nullableTimestamp(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t
	}
	return time.Time{}
}
