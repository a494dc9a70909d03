// Package session implements the Game Session Listener: the tagged
// three-state machine (Idle / Recording / EndOfGame) that watches the
// League Client's gameflow session over a websocket subscription,
// drives the Recording Task and Live Poller, and detaches a Metadata
// Collector run on the way back to Idle.
//
// Grounded on original_source's game_listener.rs::run/state_transition
// for the transition table, and on the teacher's
// internal/workers.WorkerPool / internal/services.AutoSyncService for
// the Go shape of a select-driven cooperative task: context for
// cancellation, buffered one-shot channels for hotkeys, a
// sync.WaitGroup to join subordinate goroutines on shutdown.
package session

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"lol-match-exporter/internal/guibus"
	"lol-match-exporter/internal/lcu"
	"lol-match-exporter/internal/lcutypes"
	"lol-match-exporter/internal/livepoller"
	"lol-match-exporter/internal/metadata"
	"lol-match-exporter/internal/reconcile"
	"lol-match-exporter/internal/recording"
	"lol-match-exporter/internal/settingsstore"
	"lol-match-exporter/internal/sidecar"
)

const (
	gameflowSessionPath = "lol-gameflow_v1_session"
	eogStatsBlockPath   = "lol-end-of-game_v1_eog-stats-block"
)

// queueModeOverrides is the hardcoded queueId -> mode mapping used by
// resolveGameMode. A queueId not listed here resolves to "UNKNOWN"; the
// LCU's own gameMode string is not consulted.
var queueModeOverrides = map[int]string{
	420: "RANKED", 440: "RANKED",
	400: "NORMAL", 430: "NORMAL", 490: "NORMAL",
	450: "ARAM", 100: "ARAM",
	3140: "PRACTICE_TOOL",
	1700: "CHERRY",
	830:  "COOP_VS_AI", 840: "COOP_VS_AI", 850: "COOP_VS_AI", 890: "COOP_VS_AI",
	1090: "TFT", 1100: "TFT", 1130: "TFT", 1160: "TFT",
	0: "CUSTOM",
}

type stateKind int

const (
	stateIdle stateKind = iota
	stateRecording
	stateEndOfGame
)

// recordingState holds everything owned while in Recording.
type recordingState struct {
	task          *recording.Task
	highlight     *recording.HighlightTask
	liveBuffer    *livepoller.EventBuffer
	pollerCancel  context.CancelFunc
	startLp       *int
	gameId        lcutypes.MatchId
	queueId       int
	recOffset     float64
}

// endOfGameState holds what carries over into EndOfGame for the
// detached Metadata Collector to consume.
type endOfGameState struct {
	videoPath  string
	recOffset  float64
	gameId     lcutypes.MatchId
	queueId    int
	liveEvents []lcutypes.LiveGameEvent
	startLp    *int
}

// Listener is the running Game Session Listener for one League Client
// session. One Listener exists per process (I1).
type Listener struct {
	client     *lcu.Client
	platformId string
	settings   *settingsstore.Store
	recorder   recording.Recorder
	outputDir  string
	bus        *guibus.Hub

	manualStopCh  chan struct{}
	manualStartCh chan struct{}

	mu                sync.Mutex
	kind              stateKind
	recording         *recordingState
	endOfGame         *endOfGameState
	lastStoppedGameId *lcutypes.MatchId

	wg sync.WaitGroup
}

// New constructs a Listener. outputDir is where recordings and their
// sidecars are written.
func New(client *lcu.Client, platformId string, settings *settingsstore.Store, recorder recording.Recorder, outputDir string, bus *guibus.Hub) *Listener {
	return &Listener{
		client:        client,
		platformId:    platformId,
		settings:      settings,
		recorder:      recorder,
		outputDir:     outputDir,
		bus:           bus,
		manualStopCh:  make(chan struct{}, 1),
		manualStartCh: make(chan struct{}, 1),
		kind:          stateIdle,
	}
}

// ManualStart and ManualStop are fire-and-forget; a full channel means
// a signal is already pending, so the send is simply dropped (§5:
// capacity 1, drop-on-full, hotkeys are idempotent).
func (l *Listener) ManualStart() {
	select {
	case l.manualStartCh <- struct{}{}:
	default:
		log.Printf("[session] manual-start dropped, signal already pending")
	}
}

func (l *Listener) ManualStop() {
	select {
	case l.manualStopCh <- struct{}{}:
	default:
		log.Printf("[session] manual-stop dropped, signal already pending")
	}
}

// CurrentHighlight returns the HighlightTask for the in-progress
// recording, or nil when not currently Recording. The control API's
// /api/highlight handler uses this to reject marker requests outside
// a recording window.
func (l *Listener) CurrentHighlight() *recording.HighlightTask {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.recording == nil {
		return nil
	}
	return l.recording.highlight
}

// Run subscribes to the LCU and drives the state machine until ctx is
// cancelled. It performs the initial REST poll + synthetic transition
// described in §4.5 so a process started mid-game still records.
func (l *Listener) Run(ctx context.Context) error {
	events, err := l.client.Subscribe(ctx, gameflowSessionPath, eogStatsBlockPath)
	if err != nil {
		return fmt.Errorf("session: subscribe: %w", err)
	}

	if session, err := lcu.Get[lcutypes.SessionEventData](ctx, l.client, "/lol-gameflow/v1/session"); err == nil {
		l.handleSession(ctx, session)
	} else {
		log.Printf("[session] initial session poll failed: %v", err)
	}

	defer l.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("session: lcu websocket closed")
			}
			l.handleEvent(ctx, ev)
		case <-l.manualStopCh:
			l.handleManualStop(ctx)
		case <-l.manualStartCh:
			l.handleManualStart(ctx)
		}
	}
}

func (l *Listener) handleEvent(ctx context.Context, ev lcu.Event) {
	switch ev.URI {
	case gameflowSessionPath:
		var data lcutypes.SessionEventData
		if err := unmarshal(ev.Data, &data); err != nil {
			log.Printf("[session] bad session payload: %v", err)
			return
		}
		l.handleSession(ctx, data)
	case eogStatsBlockPath:
		l.handleEogStatsBlock(ctx)
	}
}

func (l *Listener) handleSession(ctx context.Context, data lcutypes.SessionEventData) {
	l.mu.Lock()
	kind := l.kind
	l.mu.Unlock()

	switch kind {
	case stateIdle:
		l.tryStartFromIdle(ctx, data, false)
	case stateRecording:
		switch data.Phase {
		case lcutypes.PhaseFailedToLaunch, lcutypes.PhaseReconnect, lcutypes.PhaseWaitingForStats, lcutypes.PhasePreEndOfGame:
			l.stopToEndOfGame(ctx, false)
		}
	case stateEndOfGame:
		switch data.Phase {
		case lcutypes.PhaseEndOfGame, lcutypes.PhaseTerminatedInError, lcutypes.PhaseChampSelect, lcutypes.PhaseGameStart:
			l.endOfGameToIdle(ctx)
		}
	}
}

func (l *Listener) handleEogStatsBlock(ctx context.Context) {
	l.mu.Lock()
	kind := l.kind
	l.mu.Unlock()
	if kind == stateEndOfGame {
		l.endOfGameToIdle(ctx)
	}
}

func (l *Listener) handleManualStop(ctx context.Context) {
	l.mu.Lock()
	kind := l.kind
	l.mu.Unlock()
	if kind == stateRecording {
		l.stopToEndOfGame(ctx, true)
	}
}

func (l *Listener) handleManualStart(ctx context.Context) {
	l.mu.Lock()
	kind := l.kind
	l.mu.Unlock()

	switch kind {
	case stateRecording:
		log.Printf("[session] manual-start ignored, already recording")
	case stateIdle, stateEndOfGame:
		// §4.5: EndOfGame treats ManualStart as if Idle — including,
		// per the open-question resolution, bypassing the
		// lastStoppedGameId gate. tryStartFromIdle is only reached
		// for EndOfGame via this forced path, so no extra gate needed
		// here; the I2 check inside still applies for the Idle case.
		session, err := lcu.Get[lcutypes.SessionEventData](ctx, l.client, "/lol-gameflow/v1/session")
		if err != nil {
			log.Printf("[session] manual-start session poll failed: %v", err)
			return
		}
		switch session.Phase {
		case lcutypes.PhaseGameStart, lcutypes.PhaseInProgress:
			l.tryStartFromIdle(ctx, session, kind == stateEndOfGame)
		default:
			log.Printf("[session] manual-start: phase %s not in progress", session.Phase)
		}
	}
}

// tryStartFromIdle implements the Idle->Recording transition. When
// bypassLastStopped is true (manual start from EndOfGame) the
// lastStoppedGameId gate (I2) is not applied, matching the recorded
// override-allowed behavior.
func (l *Listener) tryStartFromIdle(ctx context.Context, data lcutypes.SessionEventData, bypassLastStopped bool) {
	switch data.Phase {
	case lcutypes.PhaseGameStart, lcutypes.PhaseInProgress:
	default:
		return
	}

	gameId := data.GameData.GameId
	l.mu.Lock()
	suppressed := !bypassLastStopped && l.lastStoppedGameId != nil && *l.lastStoppedGameId == gameId
	l.mu.Unlock()
	if suppressed {
		return
	}

	mode := resolveGameMode(data.GameData.QueueId)
	if !l.settings.ShouldRecord(mode) {
		log.Printf("[session] game mode %s not in allow-list, skipping", mode)
		return
	}

	var startLp *int
	if lp, err := metadataCurrentLP(ctx, l.client); err == nil {
		startLp = &lp
	}

	buffer := livepoller.NewEventBuffer()
	pollerCtx, pollerCancel := context.WithCancel(ctx)
	poller := livepoller.New(buffer)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		poller.Run(pollerCtx)
	}()

	task, err := l.recorder.Start(ctx, l.outputDir, int64(gameId))
	if err != nil {
		log.Printf("[session] recording start failed: %v", err)
		pollerCancel()
		return
	}
	highlight := recording.NewHighlightTask(task.StartedAt())
	recOffset, err := currentGameTime(ctx)
	if err != nil {
		log.Printf("[session] could not read ingame time at recording start: %v", err)
	}

	l.mu.Lock()
	l.kind = stateRecording
	l.recording = &recordingState{
		task: task, highlight: highlight, liveBuffer: buffer,
		pollerCancel: pollerCancel, startLp: startLp, gameId: gameId,
		queueId: data.GameData.QueueId, recOffset: recOffset,
	}
	l.mu.Unlock()

	l.bus.Emit(guibus.EventGameDetected, nil)
	l.bus.Emit(guibus.EventRecordingStarted, nil)
	log.Printf("[session] recording started for game %d (mode=%s)", gameId, mode)
}

// stopToEndOfGame implements the Recording->EndOfGame transition.
func (l *Listener) stopToEndOfGame(ctx context.Context, wasManualStop bool) {
	l.mu.Lock()
	rec := l.recording
	if rec == nil {
		l.mu.Unlock()
		return
	}
	l.lastStoppedGameId = &rec.gameId
	l.recording = nil
	l.kind = stateEndOfGame
	l.mu.Unlock()

	highlights := rec.highlight.Timestamps()
	rec.pollerCancel()
	liveEvents := rec.liveBuffer.Drain()

	elapsed := rec.task.Stop()
	videoPath := rec.task.VideoPath()
	if err := sidecar.WriteDeferred(videoPath, highlights); err != nil {
		log.Printf("[session] failed to write deferred sidecar: %v", err)
	}

	l.mu.Lock()
	l.endOfGame = &endOfGameState{
		videoPath:  videoPath,
		recOffset:  rec.recOffset,
		gameId:     rec.gameId,
		queueId:    rec.queueId,
		liveEvents: liveEvents,
		startLp:    rec.startLp,
	}
	l.mu.Unlock()

	l.bus.Emit(guibus.EventRecordingFinished, map[string]interface{}{
		"videoName":     videoPath,
		"wasManualStop": wasManualStop,
	})
	if !wasManualStop && l.settings.AutoPopupOnEnd() {
		l.bus.Emit(guibus.EventRecordingsChanged, nil)
	}
	log.Printf("[session] recording stopped for game %d (manual=%v, elapsed=%s)", rec.gameId, wasManualStop, elapsed)
}

// endOfGameToIdle implements the EndOfGame->Idle transition: it spawns
// a detached Metadata Collector run (O3: independent of the state
// machine and of any later game) and returns to Idle immediately.
func (l *Listener) endOfGameToIdle(ctx context.Context) {
	l.mu.Lock()
	eog := l.endOfGame
	l.endOfGame = nil
	l.kind = stateIdle
	l.mu.Unlock()
	if eog == nil {
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.collectMetadata(context.Background(), eog)
	}()
}

func (l *Listener) collectMetadata(ctx context.Context, eog *endOfGameState) {
	self, err := lcu.Get[lcutypes.Player](ctx, l.client, "/lol-summoner/v1/current-summoner")
	if err != nil {
		log.Printf("[metadata] current-summoner fetch failed: %v", err)
	}

	// Champ-select is torn down well before end-of-game; the
	// authoritative source for participant identities (and the game
	// version string) is the persisted match-history record (§4.6
	// step 4, §6).
	var identities []lcutypes.ParticipantIdentity
	var gameVersion string
	game, err := lcu.Get[matchHistoryGame](ctx, l.client, fmt.Sprintf("/lol-match-history/v1/games/%d", eog.gameId))
	if err != nil {
		log.Printf("[metadata] match-history game fetch failed for game %d: %v", eog.gameId, err)
	} else {
		identities = game.ParticipantIdentities
		gameVersion = game.GameVersion
	}

	meta, err := metadata.Collect(ctx, l.client, l.platformId, self, identities, eog.queueId, eog.recOffset, gameVersion)
	if err != nil {
		log.Printf("[metadata] collection failed for game %d: %v", eog.gameId, err)
		return
	}

	pidToChamp := make(map[int]lcutypes.Champion, len(meta.Participants))
	for _, p := range meta.Participants {
		pidToChamp[p.ParticipantId] = lcutypes.Champion{Alias: p.ChampionName, Name: p.ChampionName}
	}
	meta.Events = reconcile.Merge(meta.Events, eog.liveEvents, identities, meta.Participants, pidToChamp)

	if eog.startLp != nil && meta.LpDiff != nil {
		diff := *meta.LpDiff - *eog.startLp
		meta.LpDiff = &diff
	} else {
		meta.LpDiff = nil
	}

	if err := sidecar.WriteMetadata(eog.videoPath, meta); err != nil {
		log.Printf("[metadata] sidecar write failed for game %d: %v", eog.gameId, err)
		return
	}
	l.bus.Emit(guibus.EventMetadataChanged, []string{eog.videoPath})
	log.Printf("[metadata] collected metadata for game %d", eog.gameId)
}

func (l *Listener) shutdown() {
	l.mu.Lock()
	rec := l.recording
	l.recording = nil
	l.kind = stateIdle
	l.mu.Unlock()

	if rec != nil {
		rec.pollerCancel()
		rec.task.Stop()
	}
	l.wg.Wait()
}

func resolveGameMode(queueId int) string {
	if mode, ok := queueModeOverrides[queueId]; ok {
		return mode
	}
	return "UNKNOWN"
}

func metadataCurrentLP(ctx context.Context, client *lcu.Client) (int, error) {
	stats, err := lcu.Get[struct {
		Queues []struct {
			QueueType    string `json:"queueType"`
			LeaguePoints int    `json:"leaguePoints"`
		} `json:"queues"`
	}](ctx, client, "/lol-ranked/v1/current-ranked-stats")
	if err != nil {
		return 0, err
	}
	for _, q := range stats.Queues {
		if q.QueueType == "RANKED_SOLO_5x5" {
			return q.LeaguePoints, nil
		}
	}
	return 0, fmt.Errorf("session: no RANKED_SOLO_5x5 entry")
}

func unmarshal(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}

// matchHistoryGame is the slice of /lol-match-history/v1/games/{gameId}
// this listener needs: the authoritative participant identities (the
// champ-select session is already gone by the time this is fetched)
// and the client patch version the game was played on.
type matchHistoryGame struct {
	GameVersion           string                       `json:"gameVersion"`
	ParticipantIdentities []lcutypes.ParticipantIdentity `json:"participantIdentities"`
}

// currentGameTime reads the in-game clock from the Live Client Data
// endpoint at the moment recording starts, so the sidecar can record
// ingameTimeRecStartOffset (§3, §4.3) even though the placeholder
// Recording Task itself has no notion of game time.
func currentGameTime(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://127.0.0.1:2999/liveclientdata/gametime", nil)
	if err != nil {
		return 0, err
	}
	resp, err := liveClientHTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("session: gametime status %d", resp.StatusCode)
	}
	var gameTime float64
	if err := json.NewDecoder(resp.Body).Decode(&gameTime); err != nil {
		return 0, fmt.Errorf("session: decode gametime: %w", err)
	}
	return gameTime, nil
}

var liveClientHTTP = &http.Client{
	Timeout:   2 * time.Second,
	Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
}
