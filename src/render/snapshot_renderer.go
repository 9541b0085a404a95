package render

import (
	"sort"
	"strconv"

	"sales-dashboard/src/interfaces"
	"sales-dashboard/src/models"
)

// Display ids written by the renderer.
const (
	FieldTotalSales    = "total_sales"
	FieldLastTimestamp = "last_timestamp"
	FieldRows          = "rows"
	FieldUpdatedAt     = "updated_at"

	TableSales = "sales_by_product"
	TableStock = "stock_by_product"
)

const (
	// FieldPlaceholder stands in for an absent scalar.
	FieldPlaceholder = "--"
	// EmptyTableText fills the single row of an empty table.
	EmptyTableText = "Sem dados"
	tableColumns   = 2
)

// -----------------------------------------------------------------------------
// SnapshotRenderer
// -----------------------------------------------------------------------------

// SnapshotRenderer projects a snapshot onto a display. It keeps no state:
// rendering the same snapshot twice yields the same display.
type SnapshotRenderer struct {
	display interfaces.IDisplay
}

func NewSnapshotRenderer(display interfaces.IDisplay) *SnapshotRenderer {
	return &SnapshotRenderer{display: display}
}

// -----------------------------------------------------------------------------

// Render writes the four summary fields and rebuilds both tables.
func (r *SnapshotRenderer) Render(snap *models.MSnapshot) {
	if snap == nil {
		return
	}

	r.display.SetField(FieldTotalSales, formatOptionalNumber(snap.TotalSales))
	r.display.SetField(FieldLastTimestamp, formatOptionalString(snap.LastTimestamp))
	r.display.SetField(FieldRows, formatOptionalInt(snap.Rows))
	r.display.SetField(FieldUpdatedAt, formatOptionalString(snap.UpdatedAt))

	r.display.SetTable(TableSales, TableRows(snap.SalesByProduct))
	r.display.SetTable(TableStock, TableRows(snap.StockByProduct))
}

// -----------------------------------------------------------------------------

// TableRows builds the rows for one product→quantity mapping: a single
// spanning placeholder row when empty, else one row per key in ascending
// lexicographic order.
func TableRows(values map[string]float64) []models.MTableRow {
	if len(values) == 0 {
		return []models.MTableRow{{Cells: []string{EmptyTableText}, Span: tableColumns}}
	}

	keys := SortedKeys(values)
	rows := make([]models.MTableRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, models.MTableRow{Cells: []string{k, FormatNumber(values[k])}})
	}
	return rows
}

// -----------------------------------------------------------------------------

// SortedKeys returns the map's keys in byte-wise ascending order.
func SortedKeys(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// -----------------------------------------------------------------------------
// Formatting
// -----------------------------------------------------------------------------

// FormatNumber prints the shortest exact form: 10 -> "10", 10.5 -> "10.5".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalNumber(v *float64) string {
	if v == nil {
		return FieldPlaceholder
	}
	return FormatNumber(*v)
}

func formatOptionalInt(v *int64) string {
	if v == nil {
		return FieldPlaceholder
	}
	return strconv.FormatInt(*v, 10)
}

func formatOptionalString(v *string) string {
	if v == nil {
		return FieldPlaceholder
	}
	return *v
}
