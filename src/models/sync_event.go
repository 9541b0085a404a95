package models

import "time"

// MSyncEvent records one sync-controller transition for diagnostics.
type MSyncEvent struct {
	At         time.Time `json:"at"`
	Kind       string    `json:"kind"`
	State      string    `json:"state"`
	Attempt    int       `json:"attempt"`
	Generation uint64    `json:"generation"`
	Detail     string    `json:"detail,omitempty"`
}
