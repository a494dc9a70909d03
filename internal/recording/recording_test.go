package recording

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderRecorderStartCreatesOutputFile(t *testing.T) {
	r := New()
	dir := t.TempDir()

	task, err := r.Start(context.Background(), dir, 123)
	require.NoError(t, err)
	assert.FileExists(t, task.VideoPath())
	assert.Equal(t, dir, filepath.Dir(task.VideoPath()))
}

func TestTaskStopIsIdempotent(t *testing.T) {
	r := New()
	task, err := r.Start(context.Background(), t.TempDir(), 1)
	require.NoError(t, err)

	first := task.Stop()
	second := task.Stop()
	assert.Equal(t, first, second)
}

func TestHighlightTaskAccumulatesMarks(t *testing.T) {
	h := NewHighlightTask(time.Now())
	h.Mark()
	h.Mark()

	assert.Len(t, h.Timestamps(), 2)
}
