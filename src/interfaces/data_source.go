package interfaces

import (
	"context"
	"sales-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// ISnapshotSource pulls the current snapshot and history batch from the backend.
// -----------------------------------------------------------------------------

type ISnapshotSource interface {

	// FetchSnapshot performs GET /api/data and validates the payload.
	FetchSnapshot(ctx context.Context) (*models.MAcceptedSnapshot, error)

	// -----------------------------------------------------------------------------

	// FetchHistory performs GET /api/historico?limit=N and validates the batch.
	FetchHistory(ctx context.Context, limit int) ([]models.MHistoryPoint, error)
}
