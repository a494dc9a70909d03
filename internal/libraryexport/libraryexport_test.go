package libraryexport

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lol-match-exporter/internal/library"
)

func TestToXLSXWritesExpectedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	recordings := []library.Recording{
		{VideoName: "game-1.mp4", GameId: 1, PlatformId: "NA1", QueueName: "Ranked Solo/Duo", Champion: "Ahri", RecordedAt: time.Now()},
	}

	err := ToXLSX(recordings, path)

	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestToXLSXHandlesEmptyLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	err := ToXLSX(nil, path)

	require.NoError(t, err)
	assert.FileExists(t, path)
}
