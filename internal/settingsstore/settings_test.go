package settingsstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s, err := Open(path)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.ElementsMatch(t, []string{"CLASSIC", "ARAM"}, snap.RecordGameModes)
	assert.True(t, snap.AutoPopupOnEnd)
	assert.FileExists(t, path)
}

func TestOpenLoadsPersistedSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Update(func(cur *Settings) {
		cur.RecordGameModes = []string{"RANKED"}
		cur.AutoPopupOnEnd = false
	}))

	reopened, err := Open(path)
	require.NoError(t, err)
	snap := reopened.Snapshot()
	assert.Equal(t, []string{"RANKED"}, snap.RecordGameModes)
	assert.False(t, snap.AutoPopupOnEnd)
}

func TestShouldRecordChecksAllowList(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	require.NoError(t, s.Update(func(cur *Settings) { cur.RecordGameModes = []string{"RANKED"} }))

	assert.True(t, s.ShouldRecord("RANKED"))
	assert.False(t, s.ShouldRecord("ARAM"))
}
