package interfaces

import "sales-dashboard/src/models"

// -----------------------------------------------------------------------------
// ISyncControl is the part of the sync controller exposed to local viewers.
// -----------------------------------------------------------------------------

type ISyncControl interface {

	// Events returns the recent sync transitions, oldest first.
	Events() []models.MSyncEvent

	// -----------------------------------------------------------------------------

	// Reconnect asks for an immediate channel reconnect.
	Reconnect()
}
