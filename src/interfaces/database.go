package interfaces

import "sales-dashboard/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for the snapshot journal.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveSnapshot appends one applied snapshot to the journal.
	SaveSnapshot(snap *models.MAcceptedSnapshot) error

	// -----------------------------------------------------------------------------

	// CountSnapshots returns how many snapshots have been journaled.
	CountSnapshots() (int, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes snapshots older than the retention window.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
