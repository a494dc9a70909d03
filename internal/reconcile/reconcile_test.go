package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lol-match-exporter/internal/lcutypes"
)

func TestMergeLegacyIdxTag(t *testing.T) {
	current := []lcutypes.GameEvent{{Timestamp: 1000, Name: "Kill", ParticipantId: 3}}
	live := []lcutypes.LiveGameEvent{
		{EventName: lcutypes.EventItemPurchased, EventTime: 12.5, ItemId: 1001, ShopperName: "Summoner#IDX:4"},
	}

	out := Merge(current, live, nil, nil, nil)

	assert.Len(t, out, 2)
	assert.Equal(t, 5, out[1].ParticipantId) // #IDX:4 -> participantId 5 (1-based)
	assert.Equal(t, float64(12500), out[1].Timestamp)
}

func TestMergeCNameTagStrictMatch(t *testing.T) {
	live := []lcutypes.LiveGameEvent{
		{EventName: lcutypes.EventItemSold, EventTime: 30, ItemId: 3, ShopperName: "Bot#CNAME:Jinx"},
	}
	pidToChamp := map[int]lcutypes.Champion{7: {Alias: "Jinx", Name: "Jinx"}}

	out := Merge(nil, live, nil, nil, pidToChamp)

	assert.Len(t, out, 1)
	assert.Equal(t, 7, out[0].ParticipantId)
}

func TestMergeCNameTagDropsOnNoMatch(t *testing.T) {
	live := []lcutypes.LiveGameEvent{
		{EventName: lcutypes.EventItemSold, EventTime: 30, ShopperName: "Bot#CNAME:Yuumi"},
	}
	pidToChamp := map[int]lcutypes.Champion{7: {Alias: "Jinx", Name: "Jinx"}}

	out := Merge(nil, live, nil, nil, pidToChamp)

	assert.Empty(t, out)
}

func TestMergeTeamTagNarrowsByInferredParticipantSide(t *testing.T) {
	live := []lcutypes.LiveGameEvent{
		{EventName: lcutypes.EventItemPurchased, EventTime: 5, ShopperName: "Riven#TEAM:200#CNAME:Riven"},
	}
	pidToChamp := map[int]lcutypes.Champion{
		2: {Alias: "Riven", Name: "Riven"}, // team 100 (pid <= 5), should be skipped
		8: {Alias: "Riven", Name: "Riven"}, // team 200 (pid > 5), should match
	}

	out := Merge(nil, live, nil, nil, pidToChamp)

	assert.Len(t, out, 1)
	assert.Equal(t, 8, out[0].ParticipantId)
}

func TestMergeMatchesBareNameAgainstGameName(t *testing.T) {
	live := []lcutypes.LiveGameEvent{
		{EventName: lcutypes.EventItemPurchased, EventTime: 1, ShopperName: "Faker"},
	}
	identities := []lcutypes.ParticipantIdentity{
		{ParticipantId: 1, Player: lcutypes.Player{GameName: "Faker", TagLine: "KR1"}},
	}

	out := Merge(nil, live, identities, nil, nil)

	assert.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ParticipantId)
}

func TestMergeSortsByTimestampAscending(t *testing.T) {
	current := []lcutypes.GameEvent{{Timestamp: 5000, Name: "Turret", ParticipantId: 1}}
	live := []lcutypes.LiveGameEvent{
		{EventName: lcutypes.EventItemPurchased, EventTime: 1, ShopperName: "#IDX:0"},
	}

	out := Merge(current, live, nil, nil, nil)

	assert.Len(t, out, 2)
	assert.LessOrEqual(t, out[0].Timestamp, out[1].Timestamp)
}

func TestMergeResolvesAndForwardsItemUndo(t *testing.T) {
	live := []lcutypes.LiveGameEvent{
		{EventName: lcutypes.EventItemUndo, EventTime: 50, ShopperName: "Summoner#IDX:0", BeforeId: 1001, AfterId: 0, GoldGain: 300},
	}

	out := Merge(nil, live, nil, nil, nil)

	assert.Len(t, out, 1)
	assert.Equal(t, lcutypes.EventItemUndo, out[0].Name)
	assert.Equal(t, 1, out[0].ParticipantId)
	assert.Equal(t, 1001, out[0].BeforeId)
	assert.Equal(t, 0, out[0].AfterId)
	assert.Equal(t, 300, out[0].GoldGain)
}

func TestMergeIgnoresNonInventoryLiveEvents(t *testing.T) {
	live := []lcutypes.LiveGameEvent{{EventName: "ChampionKill", EventTime: 1, ShopperName: "#IDX:0"}}

	out := Merge(nil, live, nil, nil, nil)

	assert.Empty(t, out)
}
