package export

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"tutorec/internal/media"
	"tutorec/internal/services"
)

// TaskState tracks an asynchronous export run.
type TaskState string

const (
	TaskRunning   TaskState = "running"
	TaskSucceeded TaskState = "succeeded"
	TaskFailed    TaskState = "failed"
	TaskCanceled  TaskState = "canceled"
)

// TaskStatus is a point-in-time snapshot of a task.
type TaskStatus struct {
	ID         string
	Folder     string
	Layout     media.Layout
	State      TaskState
	Percent    int
	OutputPath string
	Error      string
}

// Task is one asynchronous export run. The merge itself happens on a
// worker goroutine; callers observe it only through snapshots and Done.
type Task struct {
	id     string
	folder string
	layout media.Layout

	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	state   TaskState
	percent int
	output  string
	err     error
}

// Begin starts an asynchronous export of the project folder.
func (e *Exporter) Begin(ctx context.Context, folder string, layout media.Layout) *Task {
	runCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		id:     uuid.NewString(),
		folder: folder,
		layout: layout,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  TaskRunning,
	}
	go func() {
		defer cancel()
		output, err := e.Export(runCtx, folder, layout, t.setPercent)
		t.finish(output, err)
	}()
	return t
}

// ID returns the task identifier.
func (t *Task) ID() string { return t.id }

// Cancel kills the encoder. The partial output file is removed by the
// worker before the task settles.
func (t *Task) Cancel() { t.cancel() }

// Done closes once the task has settled.
func (t *Task) Done() <-chan struct{} { return t.done }

// Running reports whether the task is still in flight.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == TaskRunning
}

// Status captures the task for status reporting.
func (t *Task) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	status := TaskStatus{
		ID:         t.id,
		Folder:     t.folder,
		Layout:     t.layout,
		State:      t.state,
		Percent:    t.percent,
		OutputPath: t.output,
	}
	if t.err != nil {
		status.Error = t.err.Error()
	}
	return status
}

func (t *Task) setPercent(p int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p > t.percent {
		t.percent = p
	}
}

func (t *Task) finish(output string, err error) {
	t.mu.Lock()
	switch {
	case err == nil:
		t.state = TaskSucceeded
		t.output = output
		t.percent = 100
	case errors.Is(err, services.ErrCanceled):
		t.state = TaskCanceled
		t.err = err
	default:
		t.state = TaskFailed
		t.err = err
	}
	t.mu.Unlock()
	close(t.done)
}
