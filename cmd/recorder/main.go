// Command recorder is the composition root for the Game Session
// Listener: it waits for the League Client lockfile, runs the session
// state machine against it, and serves the local control API the GUI
// collaborator attaches to. Grounded on the teacher's main.go
// Server-wiring shape and on original_source's league_recorder.rs
// supervisor loop (credential probe, 1s retry on disconnect).
package main

import (
	"context"
	"crypto/rand"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"lol-match-exporter/internal/cache"
	"lol-match-exporter/internal/controlapi"
	"lol-match-exporter/internal/guibus"
	"lol-match-exporter/internal/lcu"
	"lol-match-exporter/internal/library"
	"lol-match-exporter/internal/metadata"
	"lol-match-exporter/internal/pairing"
	"lol-match-exporter/internal/recording"
	"lol-match-exporter/internal/session"
	"lol-match-exporter/internal/settingsstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputDir := envOr("RECORDINGS_DIR", "./recordings")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Fatalf("[recorder] cannot create recordings dir: %v", err)
	}

	settings, err := settingsstore.Open(filepath.Join(outputDir, "settings.json"))
	if err != nil {
		log.Fatalf("[recorder] cannot open settings: %v", err)
	}

	var lib *library.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		lib, err = library.OpenPostgres(dsn)
	} else {
		lib, err = library.OpenSQLite(filepath.Join(outputDir, "library.db"))
	}
	if err != nil {
		log.Fatalf("[recorder] cannot open library index: %v", err)
	}
	defer lib.Close()

	metadata.SetCache(cache.New(os.Getenv("REDIS_ADDR")))

	secret, err := pairing.LoadOrCreate(filepath.Join(outputDir, "pairing.json"))
	if err != nil {
		log.Fatalf("[recorder] cannot load pairing secret: %v", err)
	}
	if secret.Plaintext != "" {
		log.Printf("[recorder] pairing token (enter this in the GUI once): %s", secret.Plaintext)
	}

	bus := guibus.NewHub()
	go bus.Run()

	recorder := recording.New()

	go serveControlAPI(bus, settings, lib, secret.Hash)

	runSupervisor(ctx, outputDir, settings, recorder, bus)
}

// runSupervisor is the outer loop: find LCU credentials, run the
// session listener to completion (disconnect or cancellation), and on
// disconnect retry after 1s — the same shape as league_recorder.rs's
// supervisor.
func runSupervisor(ctx context.Context, outputDir string, settings *settingsstore.Store, recorder recording.Recorder, bus *guibus.Hub) {
	var currentListener *session.Listener
	controlapiSetCurrentListener(nil)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		creds, err := lcu.ReadCredentials(lcu.DefaultLockfilePath())
		if err != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		client := lcu.New(creds, nil)
		platformId, _ := lcu.Get[string](ctx, client, "/lol-platform-config/v1/namespaces/LoginDataPacket/platformId")

		currentListener = session.New(client, platformId, settings, recorder, outputDir, bus)
		controlapiSetCurrentListener(currentListener)

		log.Printf("[recorder] connected to league client, platform=%s", platformId)
		runCtx, cancel := context.WithCancel(ctx)
		err = currentListener.Run(runCtx)
		cancel()
		controlapiSetCurrentListener(nil)

		if ctx.Err() != nil {
			return
		}
		log.Printf("[recorder] session listener exited: %v, retrying in 1s", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

// controlapiListener is the process-wide handle the control API reads
// to reach whichever Listener is currently live; it changes whenever
// the League Client restarts.
var controlapiListener *session.Listener

func controlapiSetCurrentListener(l *session.Listener) { controlapiListener = l }

func serveControlAPI(bus *guibus.Hub, settings *settingsstore.Store, lib *library.Store, pairingHash string) {
	sessionSecret := make([]byte, 32)
	if _, err := rand.Read(sessionSecret); err != nil {
		log.Fatalf("[recorder] cannot generate session secret: %v", err)
	}

	// The control API needs a live Listener to forward manual
	// start/stop to; requests that arrive before the League Client is
	// detected reach a proxy that silently no-ops instead of a nil
	// listener.
	proxy := &listenerProxy{}
	server := controlapi.New(proxy, settings, lib, bus, pairingHash)

	addr := envOr("CONTROL_API_ADDR", "127.0.0.1:37811")
	log.Printf("[recorder] control API listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Engine(sessionSecret)); err != nil {
		log.Printf("[recorder] control API server stopped: %v", err)
	}
}

// listenerProxy satisfies controlapi's expectations while the
// underlying *session.Listener can change out from under it as the
// League Client restarts.
type listenerProxy struct{}

func (p *listenerProxy) ManualStart() {
	if controlapiListener != nil {
		controlapiListener.ManualStart()
	}
}

func (p *listenerProxy) ManualStop() {
	if controlapiListener != nil {
		controlapiListener.ManualStop()
	}
}

func (p *listenerProxy) CurrentHighlight() *recording.HighlightTask {
	if controlapiListener != nil {
		return controlapiListener.CurrentHighlight()
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
