package export_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"tutorec/internal/config"
	"tutorec/internal/export"
	"tutorec/internal/logging"
	"tutorec/internal/media"
	"tutorec/internal/services"
)

// fakeExecutor plays back scripted encoder output instead of spawning
// ffmpeg. When writeOutput is set it creates the file named by the last
// argument, the way a successful encode would.
type fakeExecutor struct {
	lines       []string
	err         error
	writeOutput bool
	blockOnCtx  bool
	started     chan struct{}

	mu     sync.Mutex
	binary string
	args   []string
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	f.mu.Lock()
	f.binary = binary
	f.args = append([]string(nil), args...)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.writeOutput && len(args) > 0 {
		if err := os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644); err != nil {
			return err
		}
	}
	for _, line := range f.lines {
		onLine(line)
	}
	if f.blockOnCtx {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakeExecutor) call() (string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.binary, append([]string(nil), f.args...)
}

func newExporter(t *testing.T, exec export.Executor) *export.Exporter {
	t.Helper()
	cfg := config.Default()
	return export.New(&cfg, logging.NewNop(), export.WithExecutor(exec))
}

// writeProjectFolder lays out a recorded project: screen and webcam
// videos, mics microphone tracks, and a metadata record spanning span.
func writeProjectFolder(t *testing.T, mics int, span time.Duration) string {
	t.Helper()
	folder := t.TempDir()
	names := []string{"screen.mp4", "webcam.mp4"}
	for i := 1; i <= mics; i++ {
		names = append(names, fmt.Sprintf("mic%d.wav", i))
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(folder, name), []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	meta := media.Metadata{
		ProjectName:    "demo",
		StartTimestamp: start,
		StopTimestamp:  start.Add(span),
		Recordings:     []string{"mic1", "webcam", "screen"},
	}
	if err := meta.Save(filepath.Join(folder, media.MetadataFileName)); err != nil {
		t.Fatalf("save metadata: %v", err)
	}
	return folder
}

func TestExportRunsEncoderAndReportsProgress(t *testing.T) {
	folder := writeProjectFolder(t, 2, 10*time.Second)
	fake := &fakeExecutor{
		writeOutput: true,
		lines: []string{
			"frame=120 fps=30 q=23.0",
			"out_time_ms=2500000",
			"out_time_ms=N/A",
			"out_time_ms=5000000",
			"out_time_ms=20000000",
		},
	}
	exporter := newExporter(t, fake)

	var percents []int
	output, err := exporter.Export(context.Background(), folder, media.LayoutDownRight, func(p int) {
		percents = append(percents, p)
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	want := filepath.Join(folder, "demo_down_right.mp4")
	if output != want {
		t.Fatalf("expected output %q, got %q", want, output)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if len(percents) != 3 || percents[0] != 25 || percents[1] != 50 || percents[2] != 100 {
		t.Fatalf("unexpected progress values: %v", percents)
	}

	binary, args := fake.call()
	if binary != "ffmpeg" {
		t.Fatalf("expected ffmpeg binary, got %q", binary)
	}
	if len(args) == 0 || args[0] != "-y" {
		t.Fatalf("expected command to start with -y, got %v", args)
	}
	if args[len(args)-1] != want {
		t.Fatalf("expected command to end with output path, got %q", args[len(args)-1])
	}
	var inputs []string
	for i, arg := range args {
		if arg == "-i" && i+1 < len(args) {
			inputs = append(inputs, filepath.Base(args[i+1]))
		}
	}
	wantInputs := []string{"screen.mp4", "webcam.mp4", "mic1.wav", "mic2.wav"}
	if len(inputs) != len(wantInputs) {
		t.Fatalf("expected inputs %v, got %v", wantInputs, inputs)
	}
	for i := range wantInputs {
		if inputs[i] != wantInputs[i] {
			t.Fatalf("input %d: expected %q, got %q", i, wantInputs[i], inputs[i])
		}
	}
}

func TestExportMixesAllMicrophoneTracks(t *testing.T) {
	folder := writeProjectFolder(t, 2, 65*time.Second)
	fake := &fakeExecutor{
		writeOutput: true,
		lines:       []string{"out_time_ms=39000000"},
	}
	exporter := newExporter(t, fake)

	var percents []int
	output, err := exporter.Export(context.Background(), folder, media.LayoutDownRight, func(p int) {
		percents = append(percents, p)
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if want := filepath.Join(folder, "demo_down_right.mp4"); output != want {
		t.Fatalf("expected output %q, got %q", want, output)
	}

	_, args := fake.call()
	graph := ""
	for i, arg := range args {
		if arg == "-filter_complex" && i+1 < len(args) {
			graph = args[i+1]
		}
	}
	if !strings.Contains(graph, "amix=inputs=2") {
		t.Fatalf("expected both microphones mixed, got graph %q", graph)
	}
	// 39 seconds of encoder progress into a 65 second recording.
	if len(percents) != 1 || percents[0] != 60 {
		t.Fatalf("unexpected progress values: %v", percents)
	}
}

func TestExportFloorsShortDurations(t *testing.T) {
	folder := writeProjectFolder(t, 0, 500*time.Millisecond)
	fake := &fakeExecutor{
		writeOutput: true,
		lines:       []string{"out_time_ms=500000"},
	}
	exporter := newExporter(t, fake)

	var percents []int
	if _, err := exporter.Export(context.Background(), folder, media.LayoutTopLeft, func(p int) {
		percents = append(percents, p)
	}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	// Half a second of encoder progress against the one-second floor.
	if len(percents) != 1 || percents[0] != 50 {
		t.Fatalf("unexpected progress values: %v", percents)
	}
}

func TestExportWithoutTimestampsSkipsProgress(t *testing.T) {
	folder := writeProjectFolder(t, 1, 10*time.Second)
	meta := media.Metadata{ProjectName: "demo"}
	if err := meta.Save(filepath.Join(folder, media.MetadataFileName)); err != nil {
		t.Fatalf("save metadata: %v", err)
	}
	fake := &fakeExecutor{
		writeOutput: true,
		lines:       []string{"out_time_ms=5000000"},
	}
	exporter := newExporter(t, fake)

	called := false
	output, err := exporter.Export(context.Background(), folder, media.LayoutDownLeft, func(int) {
		called = true
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if called {
		t.Fatal("expected no progress reports without usable timestamps")
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}

func TestExportFailureCarriesEncoderTail(t *testing.T) {
	folder := writeProjectFolder(t, 1, 10*time.Second)
	fake := &fakeExecutor{err: errors.New("exit status 1")}
	for i := 1; i <= 25; i++ {
		fake.lines = append(fake.lines, fmt.Sprintf("line-%02d", i))
	}
	exporter := newExporter(t, fake)

	_, err := exporter.Export(context.Background(), folder, media.LayoutDownRight, nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	var runErr *export.RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError in chain, got %v", err)
	}
	if len(runErr.Tail) != 20 {
		t.Fatalf("expected 20 tail lines, got %d", len(runErr.Tail))
	}
	if runErr.Tail[0] != "line-06" || runErr.Tail[19] != "line-25" {
		t.Fatalf("unexpected tail window: first %q last %q", runErr.Tail[0], runErr.Tail[19])
	}
	if !strings.Contains(err.Error(), "last encoder output:") {
		t.Fatalf("expected tail in message, got %q", err.Error())
	}
}

func TestExportMissingInputsFails(t *testing.T) {
	folder := writeProjectFolder(t, 1, 10*time.Second)
	if err := os.Remove(filepath.Join(folder, "webcam.mp4")); err != nil {
		t.Fatalf("remove webcam: %v", err)
	}
	exporter := newExporter(t, &fakeExecutor{})

	_, err := exporter.Export(context.Background(), folder, media.LayoutDownRight, nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if !strings.Contains(err.Error(), "webcam.mp4") {
		t.Fatalf("expected message to name the missing file, got %q", err.Error())
	}
}

func TestExportMissingMetadataFails(t *testing.T) {
	folder := t.TempDir()
	exporter := newExporter(t, &fakeExecutor{})

	_, err := exporter.Export(context.Background(), folder, media.LayoutDownRight, nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestExportRejectsUnknownLayout(t *testing.T) {
	folder := writeProjectFolder(t, 0, 10*time.Second)
	fake := &fakeExecutor{}
	exporter := newExporter(t, fake)

	_, err := exporter.Export(context.Background(), folder, media.Layout("Mosaic"), nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if binary, _ := fake.call(); binary != "" {
		t.Fatalf("expected encoder never invoked, ran %q", binary)
	}
}

func TestExportFailsWhenEncoderProducesNoFile(t *testing.T) {
	folder := writeProjectFolder(t, 0, 10*time.Second)
	exporter := newExporter(t, &fakeExecutor{})

	_, err := exporter.Export(context.Background(), folder, media.LayoutDownRight, nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no output file") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestExportCancellationRemovesPartialOutput(t *testing.T) {
	folder := writeProjectFolder(t, 1, 10*time.Second)
	fake := &fakeExecutor{
		writeOutput: true,
		blockOnCtx:  true,
		started:     make(chan struct{}),
	}
	exporter := newExporter(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := exporter.Export(ctx, folder, media.LayoutTopRight, nil)
		result <- err
	}()

	<-fake.started
	cancel()

	select {
	case err := <-result:
		if !errors.Is(err, services.ErrCanceled) {
			t.Fatalf("expected canceled error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("export did not settle after cancellation")
	}
	partial := filepath.Join(folder, "demo_top_right.mp4")
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Fatalf("expected partial output removed, stat returned %v", err)
	}
}
