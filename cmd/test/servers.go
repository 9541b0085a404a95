package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"sales-dashboard/src/logger"
	"sales-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 2 * time.Second
	maxHistoryLimit  = 10000
	defaultHistLimit = 120
)

// -----------------------------------------------------------------------------
// Backend routes
// -----------------------------------------------------------------------------

// Backend serves the snapshot, the history and the push channel.
type Backend struct {
	store  *SalesStore
	Logger *logger.Logger
	engine *gin.Engine

	mu      sync.Mutex
	clients map[*pushClient]struct{}
}

type pushClient struct {
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func NewBackend(store *SalesStore, log *logger.Logger) *Backend {
	gin.SetMode(gin.ReleaseMode)

	b := &Backend{
		store:   store,
		Logger:  log,
		engine:  gin.New(),
		clients: make(map[*pushClient]struct{}),
	}
	b.engine.Use(gin.Recovery())

	b.engine.GET("/api/data", b.getData)
	b.engine.GET("/api/historico", b.getHistory)
	b.engine.GET("/ws", b.handleWebSocket)

	store.Subscribe(b.Broadcast)
	return b
}

func (b *Backend) Handler() http.Handler {
	return b.engine
}

// -----------------------------------------------------------------------------

func (b *Backend) getData(c *gin.Context) {
	c.JSON(http.StatusOK, b.store.Snapshot())
}

func (b *Backend) getHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistLimit)))
	if err != nil || limit <= 0 || limit > maxHistoryLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	c.JSON(http.StatusOK, b.store.History(limit))
}

// -----------------------------------------------------------------------------
// Push channel
// -----------------------------------------------------------------------------

func snapshotFrame(snap *models.MSnapshot) []byte {
	data, _ := json.Marshal(snap)
	frame, _ := json.Marshal(models.MChannelMessage{Type: models.MessageTypeSnapshot, Data: data})
	return frame
}

// Broadcast pushes a snapshot frame to every connected dashboard.
// Slow clients are dropped.
func (b *Backend) Broadcast(snap *models.MSnapshot) {
	frame := snapshotFrame(snap)

	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients {
		select {
		case client.send <- frame:
		default:
			delete(b.clients, client)
			close(client.send)
		}
	}
}

func (b *Backend) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		b.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &pushClient{conn: conn, send: make(chan []byte, 16)}
	client.send <- snapshotFrame(b.store.Snapshot())

	b.mu.Lock()
	b.clients[client] = struct{}{}
	count := len(b.clients)
	b.mu.Unlock()
	b.Logger.Info("Dashboard connected (%d total)", count)

	go b.writePump(client)
	b.readPump(client)
}

// readPump keeps the connection open; inbound frames (liveness probes) are ignored.
func (b *Backend) readPump(client *pushClient) {
	defer func() {
		b.mu.Lock()
		if _, ok := b.clients[client]; ok {
			delete(b.clients, client)
			close(client.send)
		}
		b.mu.Unlock()
		client.conn.Close()
		b.Logger.Info("Dashboard disconnected")
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *Backend) writePump(client *pushClient) {
	defer client.conn.Close()

	for frame := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
