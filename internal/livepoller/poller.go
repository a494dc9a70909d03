// Package livepoller samples the Live Client Data API once a second
// while a game is in progress and synthesizes ItemPurchased/ItemSold
// events from per-player item-count diffs, the same algorithm as
// run_info_poller in the original listener and the polling shape of
// Reynbow-showmeskins's companion/livegame.go.
package livepoller

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"lol-match-exporter/internal/lcutypes"
)

const liveClientDataURL = "https://127.0.0.1:2999/liveclientdata/allgamedata"

type itemEntry struct {
	ItemID int `json:"itemID"`
	Count  int `json:"count"`
}

type playerData struct {
	SummonerName string      `json:"summonerName"`
	RiotId       string      `json:"riotId"`
	RiotIdGameName string    `json:"riotIdGameName"`
	RiotIdTagLine  string    `json:"riotIdTagLine"`
	Items        []itemEntry `json:"items"`
}

// eventEntry is one entry of the live endpoint's own "events" list.
// Only the ItemUndo shape is consumed; everything else is skipped here
// (raw non-inventory events are handled by the session/metadata layer
// via the timeline, not this poller).
type eventEntry struct {
	EventID    int     `json:"EventID"`
	EventName  string  `json:"EventName"`
	EventTime  float64 `json:"EventTime"`
	PlayerName string  `json:"PlayerName"`
	ItemBefore int     `json:"ItemBefore"`
	ItemAfter  int     `json:"ItemAfter"`
	GoldGain   int     `json:"GoldGain"`
}

type allGameData struct {
	GameData struct {
		GameTime float64 `json:"gameTime"`
	} `json:"gameData"`
	AllPlayers []playerData `json:"allPlayers"`
	Events     struct {
		Events []eventEntry `json:"Events"`
	} `json:"events"`
}

// Poller polls the Live Client Data API on a fixed interval and
// appends synthetic events to an EventBuffer.
type Poller struct {
	client   *http.Client
	interval time.Duration
	buffer   *EventBuffer

	// prevCounts[player index]["itemId"] = count, indexed by each
	// player's position in allPlayers (participant index, 0-based).
	prevCounts []map[int]int

	// lastSeenEventId is the watermark for the live endpoint's own
	// "events" list (ItemUndo forwarding); unrelated to synthesized
	// purchase/sell events, which carry no eventId.
	lastSeenEventId int
}

func New(buffer *EventBuffer) *Poller {
	return &Poller{
		client: &http.Client{
			Timeout: 2 * time.Second,
			Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
		},
		interval: 1 * time.Second,
		buffer:   buffer,
	}
}

// Run polls until ctx is cancelled. Transient fetch failures (the
// endpoint 404s before champ-select ends and after the stats screen
// appears) are skipped without logging, not fatal.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			data, err := p.fetch(ctx)
			if err != nil {
				continue
			}
			p.diff(data)
		}
	}
}

func (p *Poller) fetch(ctx context.Context) (*allGameData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, liveClientDataURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("livepoller: status %d", resp.StatusCode)
	}
	var data allGameData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("livepoller: decode: %w", err)
	}
	return &data, nil
}

// diff compares this sample's per-player item-count multisets against
// the previous sample, emitting ItemSold for counts that dropped and
// ItemPurchased for counts that rose. Slot reordering within a
// player's inventory never appears here because counts are keyed by
// itemId, not slot.
func (p *Poller) diff(data *allGameData) {
	if p.prevCounts == nil {
		p.prevCounts = make([]map[int]int, len(data.AllPlayers))
	}
	now := data.GameData.GameTime
	var synth []lcutypes.LiveGameEvent
	for idx, player := range data.AllPlayers {
		cur := make(map[int]int, len(player.Items))
		for _, it := range player.Items {
			cur[it.ItemID] += it.Count
		}
		if idx >= len(p.prevCounts) {
			p.prevCounts = append(p.prevCounts, nil)
		}
		prev := p.prevCounts[idx]
		if prev == nil {
			// First sample for this player: record a baseline, emit nothing.
			p.prevCounts[idx] = cur
			continue
		}
		shopper := fmt.Sprintf("%s%s%d", player.displayName(), lcutypes.TagIdx, idx)
		for itemId, count := range cur {
			old := prev[itemId]
			for i := 0; i < count-old; i++ {
				synth = append(synth, lcutypes.LiveGameEvent{
					EventName: lcutypes.EventItemPurchased, EventTime: now,
					ItemId: itemId, ShopperName: shopper,
				})
			}
		}
		for itemId, old := range prev {
			count := cur[itemId]
			for i := 0; i < old-count; i++ {
				synth = append(synth, lcutypes.LiveGameEvent{
					EventName: lcutypes.EventItemSold, EventTime: now,
					ItemId: itemId, ShopperName: shopper,
				})
			}
		}
		p.prevCounts[idx] = cur
	}
	synth = append(synth, p.rawUndoEvents(data)...)
	if len(synth) > 0 {
		log.Printf("[poller] synthesized %d inventory event(s) at t=%.1f", len(synth), now)
		p.buffer.Append(synth...)
	}
}

// rawUndoEvents forwards ItemUndo entries from the live endpoint's own
// event list as-is: unlike purchases/sells they are never synthesized
// from inventory diffs (§4.2).
func (p *Poller) rawUndoEvents(data *allGameData) []lcutypes.LiveGameEvent {
	var undos []lcutypes.LiveGameEvent
	for _, ev := range data.Events.Events {
		if ev.EventID <= p.lastSeenEventId {
			continue
		}
		p.lastSeenEventId = ev.EventID
		if ev.EventName != lcutypes.EventItemUndo {
			continue
		}
		undos = append(undos, lcutypes.LiveGameEvent{
			EventName:   lcutypes.EventItemUndo,
			EventTime:   ev.EventTime,
			ShopperName: ev.PlayerName,
			BeforeId:    ev.ItemBefore,
			AfterId:     ev.ItemAfter,
			GoldGain:    ev.GoldGain,
		})
	}
	return undos
}

func (p playerData) displayName() string {
	if p.RiotIdGameName != "" {
		return p.RiotIdGameName
	}
	return p.SummonerName
}
