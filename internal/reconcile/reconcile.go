// Package reconcile merges the authoritative end-of-game event
// timeline with the live poller's synthetic inventory events into one
// stable, timestamp-ordered stream, resolving each synthetic event's
// ShopperName to a participantId.
//
// original_source's merge_live_events only understood the #IDX: tag
// and fell back to a raw substring match against participant names.
// This is the superset the full identity protocol calls for: CNAME is
// the strongest hint (strict — drop on no match), TEAM narrows by
// side, and substring containment is the last-resort heuristic for
// bot names with no stable identifier.
package reconcile

import (
	"log"
	"sort"
	"strconv"
	"strings"

	"lol-match-exporter/internal/lcutypes"
)

// Merge combines authoritative events with live (synthetic) events and
// returns one timeline sorted by ascending, non-decreasing timestamp
// (ties preserve insertion order: live events sort after timeline
// events sharing the same millisecond, per O4).
func Merge(
	currentEvents []lcutypes.GameEvent,
	liveEvents []lcutypes.LiveGameEvent,
	participantIdentities []lcutypes.ParticipantIdentity,
	participants []lcutypes.Participant,
	pidToChamp map[int]lcutypes.Champion,
) []lcutypes.GameEvent {

	out := make([]lcutypes.GameEvent, 0, len(currentEvents)+len(liveEvents))
	out = append(out, currentEvents...)

	for _, ev := range liveEvents {
		if ev.EventName != lcutypes.EventItemPurchased && ev.EventName != lcutypes.EventItemSold && ev.EventName != lcutypes.EventItemUndo {
			continue
		}
		pid, ok := resolve(ev.ShopperName, participantIdentities, participants, pidToChamp)
		if !ok {
			log.Printf("[reconcile] dropping unattributed live event %q (shopper=%q)", ev.EventName, ev.ShopperName)
			continue
		}
		out = append(out, lcutypes.GameEvent{
			Timestamp:     round1000(ev.EventTime),
			Name:          ev.EventName,
			ParticipantId: pid,
			ItemId:        ev.ItemId,
			BeforeId:      ev.BeforeId,
			AfterId:       ev.AfterId,
			GoldGain:      ev.GoldGain,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

func round1000(eventTime float64) float64 {
	return float64(int64(eventTime*1000 + 0.5))
}

// resolve implements §4.7 step 1-2: parse the shopperName's trailing
// decoration tags and resolve a participantId from them.
func resolve(shopperName string, identities []lcutypes.ParticipantIdentity, participants []lcutypes.Participant, pidToChamp map[int]lcutypes.Champion) (int, bool) {
	// Legacy #IDX: suffix — fully determines identity, no further
	// matching needed.
	if i := strings.LastIndex(shopperName, lcutypes.TagIdx); i >= 0 {
		if idx, err := strconv.Atoi(shopperName[i+len(lcutypes.TagIdx):]); err == nil {
			return idx + 1, true
		}
	}

	name, team, cname := parseTags(shopperName)

	if cname != "" {
		for pid, champ := range pidToChamp {
			if strings.EqualFold(champ.Alias, cname) || strings.EqualFold(champ.Name, cname) {
				if team != "" && !teamMatches(pid, team, participants) {
					continue
				}
				return pid, true
			}
		}
		return 0, false // strict: CNAME given but unmatched
	}

	for _, id := range identities {
		if nameMatches(name, id.Player) {
			if team != "" && !teamMatches(id.ParticipantId, team, participants) {
				continue
			}
			return id.ParticipantId, true
		}
	}
	return 0, false
}

// parseTags strips #TEAM: and #CNAME: suffixes off the end of
// shopperName (in that order: #TEAM: before #CNAME:) and returns the
// bare name plus whichever tag values were present. A #TEAM: placed
// after #CNAME: stays part of the CNAME value.
func parseTags(shopperName string) (name, team, cname string) {
	name = shopperName
	if i := strings.LastIndex(name, lcutypes.TagCName); i >= 0 {
		cname = name[i+len(lcutypes.TagCName):]
		name = name[:i]
	}
	if i := strings.LastIndex(name, lcutypes.TagTeam); i >= 0 {
		team = name[i+len(lcutypes.TagTeam):]
		name = name[:i]
	}
	return name, team, cname
}

func nameMatches(shopperName string, player lcutypes.Player) bool {
	fullRiotId := player.GameName + "#" + player.TagLine
	if shopperName == player.GameName || shopperName == fullRiotId {
		return true
	}
	return strings.Contains(shopperName, player.GameName) || strings.Contains(player.GameName, shopperName)
}

// teamMatches checks a requested team side against a participant's
// teamId, inferring the side from participantId (1-5 is 100, 6-10 is
// 200) when no Participant record carries teamId.
func teamMatches(participantId int, team string, participants []lcutypes.Participant) bool {
	want := normalizeTeam(team)
	if want == 0 {
		return true
	}
	for _, p := range participants {
		if p.ParticipantId == participantId {
			return p.TeamId == want
		}
	}
	if participantId <= 5 {
		return want == 100
	}
	return want == 200
}

func normalizeTeam(team string) int {
	switch strings.ToUpper(team) {
	case "100", "ORDER":
		return 100
	case "200", "CHAOS":
		return 200
	}
	return 0
}
