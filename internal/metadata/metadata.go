// Package metadata resolves a finished game's metadata from the LCU:
// queue name, participants, champions, gold timeline and LP change.
// Grounded on original_source's metadata::process_data_with_retry:
// bounded retry loop, hardcoded queue/champion fallbacks for ids the
// client doesn't carry records for, and a settle delay before reading
// ranked stats so the LP change reflects this game.
package metadata

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"lol-match-exporter/internal/cache"
	"lol-match-exporter/internal/lcu"
	"lol-match-exporter/internal/lcutypes"
)

// lookupCache holds the optional champion/queue-name cache; nil means
// uncached (every call falls through to the LCU). Set once at process
// startup via SetCache.
var lookupCache *cache.Service

// SetCache installs the shared lookup cache used to avoid re-fetching
// champion and queue names that almost never change between games.
func SetCache(c *cache.Service) { lookupCache = c }

const (
	maxAttempts  = 60
	retryDelay   = time.Second
	lpSettleWait = 3 * time.Second
)

// swarmChampionNames hardcodes the display names for Swarm-mode
// champion ids the client's champion-inventory endpoint has no
// records for (they're reused ids under a different skin/kit, not
// real roster entries). Taken from the original listener's fallback
// table, since the client API this resolves from doesn't expose them.
var swarmChampionNames = map[int]string{
	3147: "Riven",
	3151: "Jinx",
	3152: "Leona",
	3153: "Seraphine",
	3156: "Briar",
	3157: "Yasuo",
	3159: "Aurora",
	3678: "Illaoi",
	3947: "Xayah",
}

type eogSummary struct {
	GameId                    lcutypes.MatchId `json:"gameId"`
	QueueId                   int              `json:"queueId"`
	GameLength                float64          `json:"gameLength"`
	GameEndedInEarlySurrender bool             `json:"gameEndedInEarlySurrender"`
	Teams                     []struct {
		ParticipantId int   `json:"participantId"`
		TeamId        int   `json:"teamId"`
		ChampionId    int   `json:"championId"`
		Win           *bool `json:"win"`
	} `json:"teams"`
}

type queueInfo struct {
	Type string `json:"type"`
}

type championInfo struct {
	Name string `json:"name"`
}

// timeline mirrors the shape of /lol-match-history/v1/game-timelines:
// a sequence of frames, each with a gold/minions snapshot per
// participant and a list of raw timeline events.
type timeline struct {
	Frames []struct {
		Timestamp         int64 `json:"timestamp"`
		ParticipantFrames map[string]struct {
			TotalGold            int `json:"totalGold"`
			MinionsKilled        int `json:"minionsKilled"`
			JungleMinionsKilled  int `json:"jungleMinionsKilled"`
		} `json:"participantFrames"`
		Events []struct {
			Type          string `json:"type"`
			Timestamp     int64  `json:"timestamp"`
			KillerId      int    `json:"killerId"`
			VictimId      int    `json:"victimId"`
			ParticipantId int    `json:"participantId"`
			BuildingType  string `json:"buildingType"`
			MonsterType   string `json:"monsterType"`
			ItemId        int    `json:"itemId"`
		} `json:"events"`
	} `json:"frames"`
}

// monsterEventNames maps ELITE_MONSTER_KILL's monsterType to the
// GameEvent name the reconciler/sidecar expose.
var monsterEventNames = map[string]string{
	"DRAGON":        "Dragon",
	"BARON_NASHOR":  "Baron",
	"RIFTHERALD":    "Herald",
	"HORDE":         "Voidgrub",
}

type rankedStats struct {
	Queues []struct {
		QueueType    string `json:"queueType"`
		LeaguePoints int    `json:"leaguePoints"`
	} `json:"queues"`
}

// Collect resolves full metadata for a finished game, retrying while
// the EOG stats endpoint is not yet populated. It gives up after
// maxAttempts and returns an error, or sooner if ctx is cancelled.
func Collect(ctx context.Context, client *lcu.Client, platformId string, self lcutypes.Player,
	identities []lcutypes.ParticipantIdentity, preGameQueueId int, recOffset float64, gameVersion string) (lcutypes.GameMetadata, error) {

	var summary eogSummary
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return lcutypes.GameMetadata{}, ctx.Err()
		default:
		}
		summary, lastErr = lcu.Get[eogSummary](ctx, client, "/lol-end-of-game/v1/eog-stats-block")
		if lastErr == nil && len(summary.Teams) > 0 {
			break
		}
		select {
		case <-ctx.Done():
			return lcutypes.GameMetadata{}, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	if len(summary.Teams) == 0 {
		return lcutypes.GameMetadata{}, fmt.Errorf("metadata: eog-stats-block never populated: %w", lastErr)
	}

	participants := make([]lcutypes.Participant, 0, len(summary.Teams))
	var selfParticipantId int
	var selfChampionName string
	for _, t := range summary.Teams {
		name, err := resolveChampionName(ctx, client, t.ChampionId)
		if err != nil {
			log.Printf("[metadata] champion %d resolution failed: %v", t.ChampionId, err)
		}
		participants = append(participants, lcutypes.Participant{
			ParticipantId: t.ParticipantId,
			TeamId:        t.TeamId,
			ChampionId:    t.ChampionId,
			ChampionName:  name,
			Win:           t.Win,
		})
		for _, id := range identities {
			if id.ParticipantId == t.ParticipantId && id.Player.Equal(self) {
				selfParticipantId = t.ParticipantId
				selfChampionName = name
			}
		}
	}

	goldFrames, events := resolveTimeline(ctx, client, summary.GameId)

	queueName, ranked := resolveQueue(ctx, client, preGameQueueId)

	var lpDiff *int
	if ranked {
		select {
		case <-time.After(lpSettleWait):
		case <-ctx.Done():
			return lcutypes.GameMetadata{}, ctx.Err()
		}
		if lp, err := currentLP(ctx, client); err == nil {
			// The caller is responsible for diffing this against the
			// pre-game LP sample it took before the game started.
			lpDiff = &lp
		} else {
			log.Printf("[metadata] lp fetch failed: %v", err)
		}
	}

	return lcutypes.GameMetadata{
		MatchId:       summary.GameId,
		QueueId:       summary.QueueId,
		QueueName:     queueName,
		Ranked:        ranked,
		PlatformId:    platformId,
		GameDuration:  summary.GameLength,
		ParticipantId: selfParticipantId,
		Participants:  participants,
		Identities:    identities,
		GoldFrames:    goldFrames,
		Events:        events,
		LpDiff:        lpDiff,

		Player:                   self,
		ChampionName:             selfChampionName,
		Stats:                    lcutypes.Stats{GameEndedInEarlySurrender: summary.GameEndedInEarlySurrender},
		IngameTimeRecStartOffset: recOffset,
		GameVersion:              gameVersion,
	}, nil
}

// resolveTimeline fetches the per-minute timeline for gameId and
// converts it into gold samples and a best-effort event list, dropping
// timeline entries that don't map onto a name the sidecar recognizes
// (e.g. ward placements, undocumented event types added between
// patches). A fetch failure is non-fatal: metadata collection still
// succeeds with an empty timeline, just without kill/objective/gold
// history.
func resolveTimeline(ctx context.Context, client *lcu.Client, gameId lcutypes.MatchId) ([]lcutypes.GoldFrame, []lcutypes.GameEvent) {
	tl, err := lcu.Get[timeline](ctx, client, fmt.Sprintf("/lol-match-history/v1/game-timelines/%d", gameId))
	if err != nil {
		log.Printf("[metadata] timeline fetch failed for game %d: %v", gameId, err)
		return nil, nil
	}

	var goldFrames []lcutypes.GoldFrame
	var events []lcutypes.GameEvent
	for _, frame := range tl.Frames {
		ts := float64(frame.Timestamp)
		for pidStr, pf := range frame.ParticipantFrames {
			pid, err := strconv.Atoi(pidStr)
			if err != nil {
				continue
			}
			goldFrames = append(goldFrames, lcutypes.GoldFrame{
				Timestamp:     ts,
				ParticipantId: pid,
				TotalGold:     pf.TotalGold,
			})
		}
		for _, ev := range frame.Events {
			name, participantId, ok := classifyTimelineEvent(ev.Type, ev.BuildingType, ev.MonsterType, ev.KillerId, ev.ParticipantId)
			if !ok {
				continue
			}
			events = append(events, lcutypes.GameEvent{
				Timestamp:     float64(ev.Timestamp),
				Name:          name,
				ParticipantId: participantId,
				ItemId:        ev.ItemId,
			})
		}
	}
	sort.SliceStable(goldFrames, func(i, j int) bool { return goldFrames[i].Timestamp < goldFrames[j].Timestamp })
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })
	return goldFrames, events
}

// classifyTimelineEvent maps a raw timeline event onto the reduced
// event vocabulary the sidecar exposes, dropping anything that isn't a
// kill, tower, named epic monster take, or item purchase/sale.
func classifyTimelineEvent(eventType, buildingType, monsterType string, killerId, participantId int) (name string, pid int, ok bool) {
	switch eventType {
	case "CHAMPION_KILL":
		return "Kill", killerId, true
	case "BUILDING_KILL":
		if buildingType == "TOWER_BUILDING" {
			return "Turret", killerId, true
		}
		return "", 0, false
	case "ELITE_MONSTER_KILL":
		if n, ok := monsterEventNames[monsterType]; ok {
			return n, killerId, true
		}
		return "", 0, false
	case "ITEM_PURCHASED":
		return lcutypes.EventItemPurchased, participantId, true
	case "ITEM_SOLD":
		return lcutypes.EventItemSold, participantId, true
	default:
		return "", 0, false
	}
}

func resolveChampionName(ctx context.Context, client *lcu.Client, championId int) (string, error) {
	if name, ok := swarmChampionNames[championId]; ok {
		return name, nil
	}
	if lookupCache != nil {
		var cached championInfo
		if lookupCache.GetJSON(cache.ChampionKey(championId), &cached) {
			return cached.Name, nil
		}
	}
	info, err := lcu.Get[championInfo](ctx, client, fmt.Sprintf("/lol-game-data/assets/v1/champions/%d.json", championId))
	if err != nil {
		return "", err
	}
	if lookupCache != nil {
		lookupCache.SetJSON(cache.ChampionKey(championId), info, 24*time.Hour)
	}
	return info.Name, nil
}

// resolveQueue reports the display name and ranked status for a queue
// id. -1 (Practice Tool) and 0 (Custom Game) are synthesized locally
// since the queues endpoint has no record of them; everything else is
// looked up.
func resolveQueue(ctx context.Context, client *lcu.Client, queueId int) (name string, ranked bool) {
	switch queueId {
	case -1:
		return "Practice Tool", false
	case 0:
		return "Custom Game", false
	}
	if lookupCache != nil {
		var cached queueInfo
		if lookupCache.GetJSON(cache.QueueKey(queueId), &cached) {
			return cached.Type, isRankedQueue(queueId, cached.Type)
		}
	}
	info, err := lcu.Get[queueInfo](ctx, client, fmt.Sprintf("/lol-game-queues/v1/queues/%d", queueId))
	if err != nil {
		log.Printf("[metadata] queue %d resolution failed: %v", queueId, err)
		return "", false
	}
	if lookupCache != nil {
		lookupCache.SetJSON(cache.QueueKey(queueId), info, 24*time.Hour)
	}
	return info.Type, isRankedQueue(queueId, info.Type)
}

func isRankedQueue(queueId int, queueType string) bool {
	return queueId == 420 || queueId == 440 || queueType == "RANKED_SOLO_5x5" || queueType == "RANKED_FLEX_SR"
}

// currentLP fetches the player's current Ranked Solo/5x5 league
// points, the same single-endpoint lookup as the original listener's
// lp_helper::fetch_current_lp.
func currentLP(ctx context.Context, client *lcu.Client) (int, error) {
	stats, err := lcu.Get[rankedStats](ctx, client, "/lol-ranked/v1/current-ranked-stats")
	if err != nil {
		return 0, err
	}
	for _, q := range stats.Queues {
		if q.QueueType == "RANKED_SOLO_5x5" {
			return q.LeaguePoints, nil
		}
	}
	return 0, fmt.Errorf("metadata: no RANKED_SOLO_5x5 entry in ranked stats")
}
