package livepoller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lol-match-exporter/internal/lcutypes"
)

func TestDiffEmitsNothingOnFirstSample(t *testing.T) {
	p := New(NewEventBuffer())
	data := &allGameData{AllPlayers: []playerData{
		{SummonerName: "Ahri", Items: []itemEntry{{ItemID: 1001, Count: 1}}},
	}}

	p.diff(data)

	assert.Empty(t, p.buffer.Drain())
}

func TestDiffEmitsPurchaseAndSaleAcrossSamples(t *testing.T) {
	p := New(NewEventBuffer())
	p.diff(&allGameData{AllPlayers: []playerData{
		{SummonerName: "Ahri", Items: []itemEntry{{ItemID: 1001, Count: 1}}},
	}})

	p.diff(&allGameData{GameData: struct {
		GameTime float64 `json:"gameTime"`
	}{GameTime: 90}, AllPlayers: []playerData{
		{SummonerName: "Ahri", Items: []itemEntry{{ItemID: 2003, Count: 1}}},
	}})

	events := p.buffer.Drain()
	assert.Len(t, events, 2)

	var sawPurchase, sawSale bool
	for _, ev := range events {
		switch ev.EventName {
		case lcutypes.EventItemPurchased:
			sawPurchase = true
			assert.Equal(t, 2003, ev.ItemId)
		case lcutypes.EventItemSold:
			sawSale = true
			assert.Equal(t, 1001, ev.ItemId)
		}
	}
	assert.True(t, sawPurchase)
	assert.True(t, sawSale)
}

func TestDiffEmitsOneEventPerUnitOfMultiItemDelta(t *testing.T) {
	p := New(NewEventBuffer())
	p.diff(&allGameData{AllPlayers: []playerData{
		{SummonerName: "Ahri"},
	}})

	p.diff(&allGameData{AllPlayers: []playerData{
		{SummonerName: "Ahri", Items: []itemEntry{{ItemID: 1052, Count: 2}}},
	}})

	events := p.buffer.Drain()
	assert.Len(t, events, 2, "a count 0->2 delta must synthesize 2 purchases, not 1")
	for _, ev := range events {
		assert.Equal(t, lcutypes.EventItemPurchased, ev.EventName)
		assert.Equal(t, 1052, ev.ItemId)
	}
}

func TestDiffEmitsOneSaleEventPerUnitOfMultiItemDelta(t *testing.T) {
	p := New(NewEventBuffer())
	p.diff(&allGameData{AllPlayers: []playerData{
		{SummonerName: "Ahri", Items: []itemEntry{{ItemID: 2003, Count: 3}}},
	}})

	p.diff(&allGameData{AllPlayers: []playerData{
		{SummonerName: "Ahri"},
	}})

	events := p.buffer.Drain()
	assert.Len(t, events, 3, "a count 3->0 delta must synthesize 3 sales, not 1")
	for _, ev := range events {
		assert.Equal(t, lcutypes.EventItemSold, ev.EventName)
		assert.Equal(t, 2003, ev.ItemId)
	}
}

func TestRawUndoEventsForwardedAsIs(t *testing.T) {
	p := New(NewEventBuffer())
	data := &allGameData{}
	data.Events.Events = []eventEntry{
		{EventID: 1, EventName: lcutypes.EventItemUndo, EventTime: 42.5, PlayerName: "Ahri", ItemBefore: 1001, ItemAfter: 0, GoldGain: 300},
	}

	p.diff(data)

	events := p.buffer.Drain()
	assert.Len(t, events, 1)
	assert.Equal(t, lcutypes.EventItemUndo, events[0].EventName)
	assert.Equal(t, 1001, events[0].BeforeId)
	assert.Equal(t, 0, events[0].AfterId)
	assert.Equal(t, 300, events[0].GoldGain)
	assert.Equal(t, "Ahri", events[0].ShopperName)

	// A second poll without a new eventId must not re-forward it.
	p.diff(data)
	assert.Empty(t, p.buffer.Drain())
}

func TestDiffTagsShopperNameWithParticipantIndex(t *testing.T) {
	p := New(NewEventBuffer())
	p.diff(&allGameData{AllPlayers: []playerData{
		{SummonerName: "First"},
		{SummonerName: "Second"},
	}})
	p.diff(&allGameData{AllPlayers: []playerData{
		{SummonerName: "First"},
		{SummonerName: "Second", Items: []itemEntry{{ItemID: 5, Count: 1}}},
	}})

	events := p.buffer.Drain()
	assert.Len(t, events, 1)
	assert.Equal(t, "Second#IDX:1", events[0].ShopperName)
}

func TestDisplayNamePrefersRiotIdGameName(t *testing.T) {
	p := playerData{SummonerName: "Legacy Name", RiotIdGameName: "NewName"}
	assert.Equal(t, "NewName", p.displayName())

	p2 := playerData{SummonerName: "Legacy Name"}
	assert.Equal(t, "Legacy Name", p2.displayName())
}
