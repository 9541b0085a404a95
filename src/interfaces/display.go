package interfaces

import "sales-dashboard/src/models"

// -----------------------------------------------------------------------------
// IDisplay is the surface the snapshot renderer writes to (fields, tables, status).
// -----------------------------------------------------------------------------

type IDisplay interface {

	// SetField replaces the text of a scalar display field.
	SetField(id string, text string)

	// -----------------------------------------------------------------------------

	// SetTable replaces every row of a table.
	SetTable(id string, rows []models.MTableRow)

	// -----------------------------------------------------------------------------

	// SetStatus updates the connection indicator.
	SetStatus(text string, class string)
}

// -----------------------------------------------------------------------------
// IChartSurfaces looks up the drawing surface backing a chart id.
// -----------------------------------------------------------------------------

type IChartSurfaces interface {

	// Lookup returns the canvas for id, or false when no such surface exists.
	Lookup(id string) (ICanvas, bool)
}

// -----------------------------------------------------------------------------
// ICanvas receives rendered chart images.
// -----------------------------------------------------------------------------

type ICanvas interface {
	Paint(png []byte)
}
