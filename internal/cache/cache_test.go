package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisabledCacheIsAlwaysMiss(t *testing.T) {
	s := New("")

	var dest struct{ Name string }
	assert.False(t, s.GetJSON("champion:1", &dest))

	// SetJSON on a disabled cache must not panic.
	s.SetJSON("champion:1", struct{ Name string }{Name: "Ahri"}, time.Hour)
	assert.False(t, s.GetJSON("champion:1", &dest))
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "champion:103", ChampionKey(103))
	assert.Equal(t, "queue:420", QueueKey(420))
}
