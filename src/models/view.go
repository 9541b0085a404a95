package models

// -----------------------------------------------------------------------------
// Display Model (what the DOM used to hold)
// -----------------------------------------------------------------------------

// MTableRow is one rendered table row. Span > 1 marks a placeholder cell
// covering that many columns.
type MTableRow struct {
	Cells []string `json:"cells"`
	Span  int      `json:"span,omitempty"`
}

// MStatus is the connection indicator shown to the user.
type MStatus struct {
	Text  string `json:"text"`
	Class string `json:"class"`
}

// MChartInfo describes the last drawing of a chart surface.
type MChartInfo struct {
	ID       string `json:"id"`
	Revision int    `json:"revision"`
	Bytes    int    `json:"bytes"`
}

// MView is the full dashboard display pushed to local viewers.
type MView struct {
	Type      string                 `json:"type"` // "VIEW"
	Fields    map[string]string      `json:"fields"`
	Tables    map[string][]MTableRow `json:"tables"`
	Status    MStatus                `json:"status"`
	Charts    map[string]MChartInfo  `json:"charts"`
	Timestamp int64                  `json:"timestamp"`
}
