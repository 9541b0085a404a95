package models

import "encoding/json"

// MessageTypeSnapshot is the only inbound frame type the dashboard acts on.
const MessageTypeSnapshot = "snapshot"

// ProbeMessage is the literal liveness frame sent to the backend.
const ProbeMessage = "ping"

// MChannelMessage is an inbound persistent-channel frame.
type MChannelMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}
