// Package lcutypes holds the data model shared by the LCU client, the
// live poller, the session state machine, the metadata collector and
// the reconciler: match identity, game phase, participant identity and
// the sidecar file format written next to each recording.
package lcutypes

import "encoding/json"

// MatchId identifies a single game. The LCU and Live Client Data APIs
// disagree on the field name (gameId vs matchId) but agree on the type.
type MatchId int64

// GamePhase mirrors the LCU gameflow-session phase strings relevant to
// recording. Unrecognized phases decode as their raw string rather than
// failing to unmarshal, since the LCU adds phases across patches.
type GamePhase string

const (
	PhaseNone             GamePhase = "None"
	PhaseLobby            GamePhase = "Lobby"
	PhaseMatchmaking      GamePhase = "Matchmaking"
	PhaseCheckedIntoTournament GamePhase = "CheckedIntoTournament"
	PhaseReadyCheck       GamePhase = "ReadyCheck"
	PhaseChampSelect      GamePhase = "ChampSelect"
	PhaseGameStart        GamePhase = "GameStart"
	PhaseFailedToLaunch   GamePhase = "FailedToLaunch"
	PhaseInProgress       GamePhase = "InProgress"
	PhaseReconnect        GamePhase = "Reconnect"
	PhaseWaitingForStats  GamePhase = "WaitingForStats"
	PhasePreEndOfGame     GamePhase = "PreEndOfGame"
	PhaseEndOfGame        GamePhase = "EndOfGame"
	PhaseTerminatedInError GamePhase = "TerminatedInError"
	PhaseUnknown          GamePhase = "Unknown"
)

// SessionEventData is the decoded payload of an OnJsonApiEvent for the
// gameflow-session endpoint: just enough to drive the state machine.
type SessionEventData struct {
	Phase GamePhase `json:"phase"`
	GameData struct {
		GameId MatchId `json:"gameId"`
		QueueId int    `json:"queueId"`
	} `json:"gameData"`
}

// SubscriptionResponse is the WAMP event frame shape the LCU sends for
// a subscribed OnJsonApiEvent_* path: [opcode, eventType, data].
type SubscriptionResponse struct {
	Opcode    int             `json:"-"`
	EventType string          `json:"-"`
	Data      json.RawMessage `json:"-"`
}

// Player identifies a summoner the same way the spec's equality rule
// does: gameName+tagLine, nothing else. Two players are equal iff both
// fields match exactly.
type Player struct {
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

func (p Player) Equal(o Player) bool {
	return p.GameName == o.GameName && p.TagLine == o.TagLine
}

// ParticipantIdentity is the match-history game's participant entry:
// the link between a Player and a participantId.
type ParticipantIdentity struct {
	ParticipantId int    `json:"participantId"`
	Player        Player `json:"player"`
}

// Participant carries the per-player match facts the metadata
// collector resolves: champion, team, win/loss.
type Participant struct {
	ParticipantId int    `json:"participantId"`
	TeamId        int    `json:"teamId"`
	ChampionId    int    `json:"championId"`
	ChampionName  string `json:"championName"`
	Win           *bool  `json:"win"` // nil when the result is indeterminate (early surrender)
}

// Champion is a resolved champion record keyed by participantId for
// reconciler lookups: Alias is the internal key (e.g. "MissFortune"),
// Name is the localized display name.
type Champion struct {
	Alias string `json:"alias"`
	Name  string `json:"name"`
}

// LiveGameEvent is either a synthetic event produced by the live poller
// from Live Client Data inventory diffs, or an ItemUndo event forwarded
// as-is from the live endpoint's own event list. ShopperName carries the
// identity decoration tag (#IDX:, #TEAM:, #CNAME:) the reconciler strips.
type LiveGameEvent struct {
	EventName   string  `json:"eventName"`
	EventTime   float64 `json:"eventTime"`
	ItemId      int     `json:"itemId,omitempty"`
	ShopperName string  `json:"shopperName,omitempty"`

	// Populated only for EventItemUndo; item is reverted from BeforeId
	// back to AfterId and GoldGain gold is refunded.
	BeforeId int `json:"beforeId,omitempty"`
	AfterId  int `json:"afterId,omitempty"`
	GoldGain int `json:"goldGain,omitempty"`
}

const (
	EventItemPurchased = "ItemPurchased"
	EventItemSold      = "ItemSold"
	EventItemUndo      = "ItemUndo"
)

// Decoration tag suffixes appended to ShopperName by the live poller
// and consumed by the reconciler (see internal/reconcile).
const (
	TagIdx   = "#IDX:"
	TagTeam  = "#TEAM:"
	TagCName = "#CNAME:"
)

// GameEvent is one entry in the reconciled, authoritative timeline
// written to the sidecar file.
type GameEvent struct {
	Timestamp     float64 `json:"timestamp"`
	Name          string  `json:"name"` // Kill, Turret, Dragon, Baron, Herald, Voidgrub, ItemPurchased, ItemSold, ItemUndo, ...
	ParticipantId int     `json:"participantId,omitempty"`
	ItemId        int     `json:"itemId,omitempty"`

	// Populated only when Name == EventItemUndo.
	BeforeId int `json:"beforeId,omitempty"`
	AfterId  int `json:"afterId,omitempty"`
	GoldGain int `json:"goldGain,omitempty"`
}

// GoldFrame is one sample of a participant's gold-over-time projection.
type GoldFrame struct {
	Timestamp     float64 `json:"timestamp"`
	ParticipantId int     `json:"participantId"`
	TotalGold     int     `json:"totalGold"`
}

// Stats carries the authoritative end-of-game flags that affect how
// downstream consumers interpret the rest of GameMetadata (I4).
type Stats struct {
	GameEndedInEarlySurrender bool `json:"gameEndedInEarlySurrender"`
}

// GameMetadata is the fully resolved record of a completed game, ready
// to be merged with reconciled events and persisted to the sidecar.
type GameMetadata struct {
	MatchId       MatchId               `json:"matchId"`
	QueueId       int                   `json:"queueId"`
	QueueName     string                `json:"queueName"`
	Ranked        bool                  `json:"ranked"`
	PlatformId    string                `json:"platformId"`
	GameDuration  float64               `json:"gameDuration"`
	ParticipantId int                   `json:"participantId"`
	Participants  []Participant         `json:"participants"`
	Identities    []ParticipantIdentity `json:"participantIdentities"`
	GoldFrames    []GoldFrame           `json:"goldFrames"`
	LpDiff        *int                  `json:"lpDiff,omitempty"`
	Events        []GameEvent           `json:"events"`

	// Self identity and end-of-game flags (spec §3's player/championName/
	// stats/ingameTimeRecStartOffset/gameVersion fields).
	Player                   Player  `json:"player"`
	ChampionName             string  `json:"championName"`
	Stats                    Stats   `json:"stats"`
	IngameTimeRecStartOffset float64 `json:"ingameTimeRecStartOffset"`
	GameVersion              string  `json:"gameVersion"`
}

// SidecarKind tags whether a sidecar file holds fully resolved metadata
// or a deferred record (highlights only, metadata collection pending
// or failed permanently).
type SidecarKind string

const (
	SidecarDeferred SidecarKind = "deferred"
	SidecarMetadata SidecarKind = "metadata"
)

// MetadataFile is the on-disk, tagged-variant sidecar format written
// next to each recording as <videoName>.json.
type MetadataFile struct {
	Kind       SidecarKind `json:"kind"`
	Highlights []float64   `json:"highlights"`
	Favorite   bool        `json:"favorite"`
	Metadata   *GameMetadata `json:"metadata,omitempty"`
}
