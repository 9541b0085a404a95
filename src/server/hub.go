package server

import (
	"encoding/json"
	"net/http"

	"sales-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *ViewServer) handleWebsockets() {
	for {
		select {
		case <-s.quit:
			s.stateMutex.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.stateMutex.Unlock()
			return

		case client := <-s.register:
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			s.stateMutex.Unlock()
			// Send full view on connect
			client.trySend(s.CurrentView())

		case client := <-s.unregister:
			s.dropClient(client)

		case <-s.changed:
			view := s.CurrentView()
			for client := range s.clients {
				if !client.trySend(view) {
					// Client too slow, disconnect to prevent Hub blocking
					s.dropClient(client)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (s *ViewServer) dropClient(client *Client) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *ViewServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:     s,
		conn:    conn,
		// Buffered channels to prevent blocking the Hub loop
		send:    make(chan *models.MView, 16),
		refresh: make(chan struct{}, 1),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

type viewerCommand struct {
	Command string `json:"command"`
}

// HandleClientMessage answers {"command":"refresh"} with the current view.
func (s *ViewServer) HandleClientMessage(client *Client, message []byte) {
	var cmd viewerCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse viewer command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "refresh" {
		return
	}

	client.requestRefresh()
}
