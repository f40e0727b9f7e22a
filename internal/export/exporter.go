package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"tutorec/internal/compose"
	"tutorec/internal/config"
	"tutorec/internal/logging"
	"tutorec/internal/media"
	"tutorec/internal/services"
)

const outputTailLines = 20

// ProgressFunc receives merge progress as a percentage in [0, 100].
type ProgressFunc func(percent int)

// RunError carries the tail of encoder output after a failed merge.
type RunError struct {
	Err  error
	Tail []string
}

func (e *RunError) Error() string {
	if len(e.Tail) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v\nlast encoder output:\n%s", e.Err, strings.Join(e.Tail, "\n"))
}

func (e *RunError) Unwrap() error { return e.Err }

// Option configures the exporter.
type Option func(*Exporter)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(e *Exporter) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// Exporter merges recorded project folders into deliverable videos.
type Exporter struct {
	binary string
	encode compose.Encode
	exec   Executor
	logger *slog.Logger
}

// New builds an exporter from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Exporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Exporter{
		binary: cfg.FFmpegBinary(),
		encode: compose.Encode{
			VideoPreset:  cfg.Export.VideoPreset,
			VideoCRF:     cfg.Export.VideoCRF,
			AudioBitrate: cfg.Export.AudioBitrate,
		},
		exec:   commandExecutor{},
		logger: logging.NewComponentLogger(logger, "export"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export merges the project folder using the given layout and returns the
// absolute output path. Progress is pushed as percentages while the encoder
// reports elapsed time. Cancelling the context kills the encoder and
// removes the partial output file.
func (e *Exporter) Export(ctx context.Context, projectFolder string, layout media.Layout, progress ProgressFunc) (string, error) {
	meta, err := media.LoadMetadata(filepath.Join(projectFolder, media.MetadataFileName))
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "export", "merge", "load metadata", err)
	}
	projectName := meta.ProjectName
	if strings.TrimSpace(projectName) == "" {
		projectName = "exported"
	}

	screenPath := filepath.Join(projectFolder, "screen.mp4")
	webcamPath := filepath.Join(projectFolder, "webcam.mp4")
	for _, required := range []string{screenPath, webcamPath} {
		if _, err := os.Stat(required); err != nil {
			return "", services.Wrap(services.ErrNotFound, "export", "merge",
				filepath.Base(required)+" not found in project folder", err)
		}
	}

	audioPaths, err := filepath.Glob(filepath.Join(projectFolder, "mic*.wav"))
	if err != nil {
		return "", services.Wrap(nil, "export", "merge", "scan microphone files", err)
	}
	sort.Strings(audioPaths)

	// Metadata without usable timestamps still exports; it just cannot
	// report progress.
	var totalSeconds float64
	if d, derr := meta.Duration(); derr == nil {
		totalSeconds = d
	} else {
		e.logger.Warn("metadata has no usable timestamps, progress disabled",
			logging.String(logging.FieldProject, projectName),
			logging.Error(derr))
	}

	outputPath := filepath.Join(projectFolder, compose.OutputName(projectName, layout))
	args, err := compose.ExportArgs(screenPath, webcamPath, audioPaths, layout, e.encode, outputPath)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "export", "merge", "build encoder command", err)
	}

	e.logger.Info("merge started",
		logging.String(logging.FieldProject, projectName),
		logging.String(logging.FieldLayout, string(layout)),
		logging.Int("microphones", len(audioPaths)),
		logging.Float64("duration_seconds", totalSeconds))

	tail := newLineTail(outputTailLines)
	onLine := func(line string) {
		tail.add(line)
		if progress == nil || totalSeconds <= 0 {
			return
		}
		if seconds, ok := parseProgressSeconds(line); ok {
			percent := int(seconds / totalSeconds * 100)
			if percent > 100 {
				percent = 100
			}
			progress(percent)
		}
	}

	if err := e.exec.Run(ctx, e.binary, args, onLine); err != nil {
		if ctx.Err() != nil {
			_ = os.Remove(outputPath)
			return "", services.Wrap(services.ErrCanceled, "export", "merge", "merge canceled", ctx.Err())
		}
		return "", services.Wrap(services.ErrExternalTool, "export", "merge", "",
			&RunError{Err: err, Tail: tail.lines()})
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "export", "merge", "encoder produced no output file", err)
	}

	e.logger.Info("merge finished",
		logging.String(logging.FieldProject, projectName),
		logging.String(logging.FieldLayout, string(layout)),
		logging.String("output", outputPath))
	return outputPath, nil
}

// parseProgressSeconds extracts the elapsed time from a machine progress
// line. The encoder reports microseconds as out_time_ms=<n>; anything else
// is ignored.
func parseProgressSeconds(line string) (float64, bool) {
	const key = "out_time_ms="
	idx := strings.Index(line, key)
	if idx < 0 {
		return 0, false
	}
	value := strings.TrimSpace(line[idx+len(key):])
	micros, err := strconv.ParseInt(value, 10, 64)
	if err != nil || micros < 0 {
		return 0, false
	}
	return float64(micros) / 1e6, true
}

// lineTail keeps the last n lines of encoder output for diagnostics.
type lineTail struct {
	mu    sync.Mutex
	max   int
	items []string
}

func newLineTail(max int) *lineTail {
	return &lineTail{max: max}
}

func (t *lineTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, line)
	if len(t.items) > t.max {
		t.items = t.items[len(t.items)-t.max:]
	}
}

func (t *lineTail) lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.items...)
}
