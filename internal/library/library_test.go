package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertThenList(t *testing.T) {
	s := openTestStore(t)

	rec := Recording{
		VideoName: "game-1.mp4", GameId: 123, PlatformId: "NA1",
		QueueName: "Ranked Solo/Duo", Champion: "Ahri", RecordedAt: time.Now(),
	}
	require.NoError(t, s.Upsert(rec))

	out, err := s.List()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "game-1.mp4", out[0].VideoName)
	assert.Equal(t, int64(123), out[0].GameId)
	assert.False(t, out[0].Favorite)
}

func TestUpsertIsIdempotentOnVideoName(t *testing.T) {
	s := openTestStore(t)
	rec := Recording{VideoName: "game-2.mp4", GameId: 1, PlatformId: "NA1", RecordedAt: time.Now()}
	require.NoError(t, s.Upsert(rec))

	rec.Champion = "Jinx"
	require.NoError(t, s.Upsert(rec))

	out, err := s.List()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Jinx", out[0].Champion)
}

func TestSetFavorite(t *testing.T) {
	s := openTestStore(t)
	rec := Recording{VideoName: "game-3.mp4", GameId: 1, PlatformId: "NA1", RecordedAt: time.Now()}
	require.NoError(t, s.Upsert(rec))

	require.NoError(t, s.SetFavorite("game-3.mp4", true))

	out, err := s.List()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Favorite)
}
