package livesync

import (
	"time"

	"sales-dashboard/src/interfaces"
	"sales-dashboard/src/models"
)

// ConnState is the persistent channel's connection state.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateLive
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateLive:
		return "live"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Status indicator texts
// -----------------------------------------------------------------------------

const (
	StatusLive         = "Tempo real"
	StatusPolling      = "Polling"
	StatusPollFailed   = "Falha polling"
	StatusReconnecting = "Reconectando..."
	StatusFallbackOnly = "Sem WebSocket (fallback)"

	ClassOK  = "ok"
	ClassErr = "err"
)

// -----------------------------------------------------------------------------
// Loop events
// -----------------------------------------------------------------------------

type eventKind int

const (
	evChannelOpened eventKind = iota
	evChannelFailed
	evChannelMessage
	evChannelClosed
	evReconnectDue
	evManualReconnect
	evProbeDue
	evPollDue
	evHistoryDue
	evSnapshotPulled
	evHistoryPulled
)

// event is everything that can wake the controller loop. epoch identifies the
// channel connection it belongs to, generation the transition it was armed in.
type event struct {
	kind       eventKind
	epoch      uint64
	generation uint64
	conn       interfaces.IChannelConn
	data       []byte
	snapshot   *models.MAcceptedSnapshot
	points     []models.MHistoryPoint
	err        error
}

// -----------------------------------------------------------------------------

// Stats mirrors the loop-owned counters for readers on other goroutines.
type Stats struct {
	State               ConnState
	Attempt             int
	Generation          uint64
	FallbackOnly        bool
	PullHealthy         bool
	Dials               int
	ProbesSent          int
	PullsIssued         int
	HistoryPulls        int
	SnapshotsApplied    int
	FramesDiscarded     int
	ReconnectsScheduled int
	NextReconnectDelay  time.Duration
	StaleTimers         int
	LastApplied         time.Time
}
