package sidecar

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lol-match-exporter/internal/lcutypes"
)

func TestWriteDeferredThenRead(t *testing.T) {
	video := filepath.Join(t.TempDir(), "game-1.mp4")

	require.NoError(t, WriteDeferred(video, []float64{10, 20.5}))

	got, err := Read(video)
	require.NoError(t, err)
	assert.Equal(t, lcutypes.SidecarDeferred, got.Kind)
	assert.Equal(t, []float64{10, 20.5}, got.Highlights)
	assert.Nil(t, got.Metadata)
}

func TestWriteMetadataPreservesHighlightsAndFavorite(t *testing.T) {
	video := filepath.Join(t.TempDir(), "game-2.mp4")
	require.NoError(t, WriteDeferred(video, []float64{5}))
	require.NoError(t, SetFavorite(video, true))

	meta := lcutypes.GameMetadata{MatchId: 99, QueueName: "Ranked Solo/Duo"}
	require.NoError(t, WriteMetadata(video, meta))

	got, err := Read(video)
	require.NoError(t, err)
	assert.Equal(t, lcutypes.SidecarMetadata, got.Kind)
	assert.True(t, got.Favorite)
	assert.Equal(t, []float64{5}, got.Highlights)
	require.NotNil(t, got.Metadata)
	assert.Equal(t, lcutypes.MatchId(99), got.Metadata.MatchId)
}

func TestSetFavoriteOnMissingSidecarFails(t *testing.T) {
	video := filepath.Join(t.TempDir(), "never-written.mp4")
	assert.Error(t, SetFavorite(video, true))
}

func TestPathForStripsExtension(t *testing.T) {
	assert.Equal(t, "/a/b/game.json", PathFor("/a/b/game.mp4"))
}
