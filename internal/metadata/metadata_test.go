package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lol-match-exporter/internal/lcutypes"
)

func TestClassifyTimelineEventChampionKill(t *testing.T) {
	name, pid, ok := classifyTimelineEvent("CHAMPION_KILL", "", "", 4, 0)
	assert.True(t, ok)
	assert.Equal(t, "Kill", name)
	assert.Equal(t, 4, pid)
}

func TestClassifyTimelineEventTowerOnly(t *testing.T) {
	_, _, ok := classifyTimelineEvent("BUILDING_KILL", "INHIBITOR_BUILDING", "", 1, 0)
	assert.False(t, ok)

	name, pid, ok := classifyTimelineEvent("BUILDING_KILL", "TOWER_BUILDING", "", 1, 0)
	assert.True(t, ok)
	assert.Equal(t, "Turret", name)
	assert.Equal(t, 1, pid)
}

func TestClassifyTimelineEventNamedEpicMonsterOnly(t *testing.T) {
	_, _, ok := classifyTimelineEvent("ELITE_MONSTER_KILL", "", "SRU_CRAB", 2, 0)
	assert.False(t, ok)

	name, _, ok := classifyTimelineEvent("ELITE_MONSTER_KILL", "", "BARON_NASHOR", 2, 0)
	assert.True(t, ok)
	assert.Equal(t, "Baron", name)
}

func TestClassifyTimelineEventItemEventsUseParticipantId(t *testing.T) {
	name, pid, ok := classifyTimelineEvent("ITEM_PURCHASED", "", "", 0, 6)
	assert.True(t, ok)
	assert.Equal(t, lcutypes.EventItemPurchased, name)
	assert.Equal(t, 6, pid)
}

func TestClassifyTimelineEventDropsUnknownType(t *testing.T) {
	_, _, ok := classifyTimelineEvent("WARD_PLACED", "", "", 0, 0)
	assert.False(t, ok)
}

func TestIsRankedQueueRecognizesSoloAndFlex(t *testing.T) {
	assert.True(t, isRankedQueue(420, ""))
	assert.True(t, isRankedQueue(440, ""))
	assert.True(t, isRankedQueue(999, "RANKED_FLEX_SR"))
	assert.False(t, isRankedQueue(450, "ARAM"))
}
