// Package controlapi is the local HTTP+WebSocket surface the GUI
// collaborator attaches to: manual start/stop, highlight trigger,
// settings read/write, recordings list/favorite. Modeled on the
// teacher's main.go gin wiring (gin + gin-contrib/cors +
// gin-contrib/sessions) and its Server struct holding service handles.
package controlapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginsessions "github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"

	"lol-match-exporter/internal/guibus"
	"lol-match-exporter/internal/library"
	"lol-match-exporter/internal/libraryexport"
	"lol-match-exporter/internal/pairing"
	"lol-match-exporter/internal/recording"
	"lol-match-exporter/internal/settingsstore"
	"lol-match-exporter/internal/sidecar"
)

// Hotkeys is the small surface the hotkey-source collaborator drives:
// manualStart/manualStop symbolic signals (§6), plus a lookup for the
// currently-recording highlight marker. Satisfied directly by
// *session.Listener, or by a proxy when the underlying listener can
// be replaced out from under the control API (the League Client
// restarting mid-process).
type Hotkeys interface {
	ManualStart()
	ManualStop()
	CurrentHighlight() *recording.HighlightTask
}

// Server wires the control API's gin engine against the running
// Listener, settings store and recording library.
type Server struct {
	listener     Hotkeys
	settings     *settingsstore.Store
	library      *library.Store
	bus          *guibus.Hub
	pairingHash  string
}

func New(listener Hotkeys, settings *settingsstore.Store, lib *library.Store, bus *guibus.Hub, pairingHash string) *Server {
	return &Server{listener: listener, settings: settings, library: lib, bus: bus, pairingHash: pairingHash}
}

// requirePairing rejects any request not carrying the pairing bearer
// token issued to the GUI collaborator at first launch (see
// internal/pairing). /ws and /api/health stay open: the websocket hub
// only ever broadcasts change notifications, never state, and health
// is needed for the GUI's own connectivity probe before it has a token.
func (s *Server) requirePairing(c *gin.Context) {
	const prefix = "Bearer "
	auth := c.GetHeader("Authorization")
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix || !pairing.Verify(s.pairingHash, auth[len(prefix):]) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid pairing token"})
		return
	}
	c.Next()
}

// Engine builds the gin engine: local-only CORS policy, a cookie
// session store, the GUI websocket hub, and the recorder
// control/settings/library routes, all /api routes after /api/health
// gated by requirePairing's bearer token.
func (s *Server) Engine(sessionSecret []byte) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{"http://localhost:1420", "tauri://localhost"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	store := cookie.NewStore(sessionSecret)
	r.Use(ginsessions.Sessions("recorder_session", store))

	r.GET("/ws", func(c *gin.Context) { s.bus.ServeHTTP(c.Writer, c.Request) })

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.Use(s.requirePairing)
		api.POST("/manual-start", s.manualStart)
		api.POST("/manual-stop", s.manualStop)
		api.POST("/highlight", s.highlight)

		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.putSettings)

		api.GET("/recordings", s.listRecordings)
		api.PUT("/recordings/:video/favorite", s.setFavorite)
		api.GET("/recordings/export.xlsx", s.exportLibrary)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) manualStart(c *gin.Context) {
	s.listener.ManualStart()
	c.JSON(http.StatusAccepted, gin.H{"status": "requested"})
}

func (s *Server) manualStop(c *gin.Context) {
	s.listener.ManualStop()
	c.JSON(http.StatusAccepted, gin.H{"status": "requested"})
}

func (s *Server) highlight(c *gin.Context) {
	h := s.listener.CurrentHighlight()
	if h == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "not recording"})
		return
	}
	h.Mark()
	s.bus.Emit(guibus.EventMarkerflagsChanged, nil)
	c.JSON(http.StatusAccepted, gin.H{"status": "marked"})
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings.Snapshot())
}

func (s *Server) putSettings(c *gin.Context) {
	var next struct {
		RecordGameModes []string `json:"recordGameModes"`
		AutoPopupOnEnd  bool     `json:"autoPopupOnEnd"`
	}
	if err := c.ShouldBindJSON(&next); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := s.settings.Update(func(cur *settingsstore.Settings) {
		cur.RecordGameModes = next.RecordGameModes
		cur.AutoPopupOnEnd = next.AutoPopupOnEnd
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.settings.Snapshot())
}

func (s *Server) listRecordings(c *gin.Context) {
	recordings, err := s.library.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recordings)
}

func (s *Server) exportLibrary(c *gin.Context) {
	recordings, err := s.library.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	path := c.Query("path")
	if path == "" {
		path = "recordings.xlsx"
	}
	if err := libraryexport.ToXLSX(recordings, path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.File(path)
}

func (s *Server) setFavorite(c *gin.Context) {
	video := c.Param("video")
	var body struct {
		Favorite bool `json:"favorite"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sidecar.SetFavorite(video, body.Favorite); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.library.SetFavorite(video, body.Favorite); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.bus.Emit(guibus.EventRecordingsChanged, nil)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
