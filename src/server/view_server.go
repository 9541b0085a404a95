package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"sales-dashboard/src/charts"
	"sales-dashboard/src/config"
	"sales-dashboard/src/console"
	"sales-dashboard/src/interfaces"
	"sales-dashboard/src/logger"
	"sales-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// ViewServer
// -----------------------------------------------------------------------------

// ViewServer holds the dashboard display and serves it to local viewers.
// It is the IDisplay and IChartSurfaces the sync controller draws on.
type ViewServer struct {
	Config     *config.Config
	Logger     *logger.Logger
	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	changed    chan struct{} // Coalesced "view changed" signal
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once

	// Display state
	view       *models.MView
	surfaces   map[string]*Surface
	control    interfaces.ISyncControl
	stateMutex sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewViewServer(cfg *config.Config, logger *logger.Logger) *ViewServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &ViewServer{
		Config:     cfg,
		Logger:     logger,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		changed:    make(chan struct{}, 1),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		view: &models.MView{
			Type:   "VIEW",
			Fields: make(map[string]string),
			Tables: make(map[string][]models.MTableRow),
			Charts: make(map[string]models.MChartInfo),
		},
		surfaces: make(map[string]*Surface),
	}

	for _, id := range []string{charts.ChartDistribution, charts.ChartSales, charts.ChartStock} {
		s.surfaces[id] = &Surface{id: id, server: s}
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// SetSyncControl attaches the controller behind /api/events and /api/reconnect.
func (s *ViewServer) SetSyncControl(control interfaces.ISyncControl) {
	s.stateMutex.Lock()
	s.control = control
	s.stateMutex.Unlock()
}

// Handler exposes the HTTP routes (used by tests).
func (s *ViewServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *ViewServer) setupRoutes() {
	s.engine.GET("/", s.getText)

	// REST API endpoints
	s.engine.GET("/api/view", s.getView)
	s.engine.GET("/api/events", s.getEvents)
	s.engine.GET("/api/health", s.getHealth)
	s.engine.POST("/api/reconnect", s.postReconnect)
	s.engine.GET("/charts/:id", s.getChart)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and blocks serving HTTP until Stop.
func (s *ViewServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.View.Host, s.Config.View.Port)
	s.Logger.Info("Starting view server on %s", addr)

	go s.handleWebsockets()

	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *ViewServer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.quit) })
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *ViewServer) getText(c *gin.Context) {
	c.String(http.StatusOK, console.RenderView(s.CurrentView()))
}

// -----------------------------------------------------------------------------

func (s *ViewServer) getView(c *gin.Context) {
	c.JSON(http.StatusOK, s.CurrentView())
}

// -----------------------------------------------------------------------------

func (s *ViewServer) getEvents(c *gin.Context) {
	s.stateMutex.RLock()
	control := s.control
	s.stateMutex.RUnlock()

	if control == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync controller not attached"})
		return
	}
	c.JSON(http.StatusOK, control.Events())
}

// -----------------------------------------------------------------------------

func (s *ViewServer) postReconnect(c *gin.Context) {
	s.stateMutex.RLock()
	control := s.control
	s.stateMutex.RUnlock()

	if control == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync controller not attached"})
		return
	}
	control.Reconnect()
	c.JSON(http.StatusAccepted, gin.H{"status": "reconnecting"})
}

// -----------------------------------------------------------------------------

func (s *ViewServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	timestamp := s.view.Timestamp
	status := s.view.Status
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": timestamp,
		"sync_status":   status.Text,
	})
}

// -----------------------------------------------------------------------------

func (s *ViewServer) getChart(c *gin.Context) {
	id := c.Param("id")

	s.stateMutex.RLock()
	var img []byte
	if surface, ok := s.surfaces[id]; ok {
		img = surface.png
	}
	s.stateMutex.RUnlock()

	if len(img) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "chart not drawn"})
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// -----------------------------------------------------------------------------
// IDisplay Implementation
// -----------------------------------------------------------------------------

func (s *ViewServer) SetField(id string, text string) {
	s.mutate(func(v *models.MView) { v.Fields[id] = text })
}

func (s *ViewServer) SetTable(id string, rows []models.MTableRow) {
	copied := make([]models.MTableRow, len(rows))
	copy(copied, rows)
	s.mutate(func(v *models.MView) { v.Tables[id] = copied })
}

func (s *ViewServer) SetStatus(text string, class string) {
	s.mutate(func(v *models.MView) { v.Status = models.MStatus{Text: text, Class: class} })
}

// -----------------------------------------------------------------------------
// IChartSurfaces Implementation
// -----------------------------------------------------------------------------

func (s *ViewServer) Lookup(id string) (interfaces.ICanvas, bool) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	surface, ok := s.surfaces[id]
	if !ok {
		return nil, false
	}
	return surface, true
}

// Surface is the drawing target behind one chart id.
type Surface struct {
	id     string
	server *ViewServer
	png    []byte // guarded by server.stateMutex
}

func (sf *Surface) Paint(png []byte) {
	sf.server.mutate(func(v *models.MView) {
		sf.png = png
		info := v.Charts[sf.id]
		info.ID = sf.id
		info.Revision++
		info.Bytes = len(png)
		v.Charts[sf.id] = info
	})
}

// -----------------------------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------------------------

// mutate applies fn to the view under the state lock and signals the hub.
func (s *ViewServer) mutate(fn func(v *models.MView)) {
	s.stateMutex.Lock()
	fn(s.view)
	s.view.Timestamp = time.Now().UnixMilli()
	s.stateMutex.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
		// A signal is already pending
	}
}

// CurrentView returns a deep copy of the display.
func (s *ViewServer) CurrentView() *models.MView {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return copyView(s.view)
}

func copyView(v *models.MView) *models.MView {
	out := &models.MView{
		Type:      v.Type,
		Fields:    make(map[string]string, len(v.Fields)),
		Tables:    make(map[string][]models.MTableRow, len(v.Tables)),
		Status:    v.Status,
		Charts:    make(map[string]models.MChartInfo, len(v.Charts)),
		Timestamp: v.Timestamp,
	}
	for k, f := range v.Fields {
		out.Fields[k] = f
	}
	for k, rows := range v.Tables {
		out.Tables[k] = rows
	}
	for k, c := range v.Charts {
		out.Charts[k] = c
	}
	return out
}
