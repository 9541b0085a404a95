package network

import (
	"context"
	"net/http"
	"sync"
	"time"

	"sales-dashboard/src/config"
	"sales-dashboard/src/helpers"
	"sales-dashboard/src/interfaces"
	"sales-dashboard/src/logger"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	maxMessageSize = 1024 * 1024
)

// -----------------------------------------------------------------------------
// ChannelDialer opens the backend push channel over a websocket.
// -----------------------------------------------------------------------------

type ChannelDialer struct {
	URL       string
	SessionID string
	Dialer    *websocket.Dialer
	Logger    *logger.Logger
}

func NewChannelDialer(cfg *config.Config, sessionID string, log *logger.Logger) *ChannelDialer {
	return &ChannelDialer{
		URL:       cfg.ChannelURL(),
		SessionID: sessionID,
		Dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.RequestTimeout(),
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *ChannelDialer) Dial(ctx context.Context) (interfaces.IChannelConn, error) {
	header := http.Header{}
	if d.SessionID != "" {
		header.Set(SessionHeader, d.SessionID)
	}

	conn, resp, err := d.Dialer.DialContext(ctx, d.URL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, helpers.NewChannelError(err, "dial %s", d.URL)
	}

	conn.SetReadLimit(maxMessageSize)
	d.Logger.Debug("Channel open: %s", d.URL)
	return &ChannelConn{conn: conn}, nil
}

// -----------------------------------------------------------------------------
// ChannelConn wraps one websocket connection.
// -----------------------------------------------------------------------------

type ChannelConn struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// ReadMessage returns the next text frame. Binary frames are skipped.
func (c *ChannelConn) ReadMessage() ([]byte, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, helpers.NewChannelError(err, "read")
		}
		if kind == websocket.TextMessage {
			return data, nil
		}
	}
}

// -----------------------------------------------------------------------------

func (c *ChannelConn) SendText(text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return helpers.NewChannelError(err, "write")
	}
	return nil
}

// -----------------------------------------------------------------------------

// Close sends a close frame (best effort) and releases the socket once.
func (c *ChannelConn) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
