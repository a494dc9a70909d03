// Package recording defines the black-box contracts for the screen
// capture encoder (RecordingTask) and hotkey-driven markers
// (HighlightTask). The real encoder is an external collaborator per
// spec.md §4.3/§4.4; this package ships the interface plus a
// dependency-free stand-in good enough to exercise the full session
// lifecycle (start, stop, highlight, sidecar write) end to end.
//
// Grounded on the teacher's cancellable-job shape in main.go's
// ExportJob: a struct owning its own context/cancel pair, mutex-guarded
// state, stopped via context cancellation rather than a bespoke signal.
package recording

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Recorder starts and stops screen capture for one game.
type Recorder interface {
	// Start begins capturing immediately and returns a handle whose
	// Stop method finalizes the output file.
	Start(ctx context.Context, outputDir string, matchId int64) (*Task, error)
}

// Task is a running (or finished) recording.
type Task struct {
	videoPath string
	startedAt time.Time

	mu       sync.Mutex
	stopped  bool
	stoppedAt time.Time

	cancel context.CancelFunc
}

func (t *Task) VideoPath() string { return t.videoPath }

func (t *Task) StartedAt() time.Time { return t.startedAt }

// Stop finalizes the recording and returns the elapsed duration. It is
// safe to call multiple times; only the first call has effect.
func (t *Task) Stop() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return t.stoppedAt.Sub(t.startedAt)
	}
	t.stopped = true
	t.stoppedAt = time.Now()
	t.cancel()
	return t.stoppedAt.Sub(t.startedAt)
}

// placeholderRecorder is the dependency-free Recorder used when no
// real screen-capture backend is configured: it creates an empty
// output file as a stand-in for the encoded video, enough to drive the
// sidecar/library pipeline without vendoring ffmpeg or a platform
// capture API (out of scope per spec.md §1).
type placeholderRecorder struct{}

func New() Recorder { return placeholderRecorder{} }

func (placeholderRecorder) Start(ctx context.Context, outputDir string, matchId int64) (*Task, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("recording: create output dir: %w", err)
	}
	name := fmt.Sprintf("%d-%s.mp4", matchId, time.Now().Format("20060102-150405"))
	path := filepath.Join(outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("recording: create output file: %w", err)
	}
	f.Close()

	taskCtx, cancel := context.WithCancel(ctx)
	task := &Task{videoPath: path, startedAt: time.Now(), cancel: cancel}
	go func() {
		<-taskCtx.Done()
	}()
	return task, nil
}

// HighlightTask accumulates hotkey-driven marker timestamps (seconds
// since recording start) for the currently running recording.
type HighlightTask struct {
	mu         sync.Mutex
	startedAt  time.Time
	timestamps []float64
}

func NewHighlightTask(startedAt time.Time) *HighlightTask {
	return &HighlightTask{startedAt: startedAt}
}

// Mark records a highlight at the current moment.
func (h *HighlightTask) Mark() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timestamps = append(h.timestamps, time.Since(h.startedAt).Seconds())
}

// Timestamps returns the recorded highlight offsets.
func (h *HighlightTask) Timestamps() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]float64, len(h.timestamps))
	copy(out, h.timestamps)
	return out
}
