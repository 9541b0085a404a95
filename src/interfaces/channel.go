package interfaces

import "context"

// -----------------------------------------------------------------------------
// IChannelDialer opens the persistent push channel.
// -----------------------------------------------------------------------------

type IChannelDialer interface {
	Dial(ctx context.Context) (IChannelConn, error)
}

// -----------------------------------------------------------------------------
// IChannelConn is one open persistent channel.
// ReadMessage is called from a single reader goroutine, SendText and Close
// from the controller loop.
// -----------------------------------------------------------------------------

type IChannelConn interface {

	// ReadMessage blocks until the next text frame or an error.
	ReadMessage() ([]byte, error)

	// -----------------------------------------------------------------------------

	// SendText writes one text frame.
	SendText(text string) error

	// -----------------------------------------------------------------------------

	// Close releases the connection. Safe to call more than once.
	Close() error
}
