package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveGameModeKnownQueueOverrides(t *testing.T) {
	assert.Equal(t, "RANKED", resolveGameMode(420))
	assert.Equal(t, "RANKED", resolveGameMode(440))
	assert.Equal(t, "ARAM", resolveGameMode(450))
	assert.Equal(t, "CHERRY", resolveGameMode(1700))
	assert.Equal(t, "CUSTOM", resolveGameMode(0))
}

func TestResolveGameModeUnknownQueueFallsBack(t *testing.T) {
	assert.Equal(t, "UNKNOWN", resolveGameMode(99999))
}

func TestListenerStartsIdle(t *testing.T) {
	l := New(nil, "NA1", nil, nil, "", nil)
	assert.Nil(t, l.CurrentHighlight())
}
