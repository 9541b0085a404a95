package models

// MSeriesSet holds per-product series aligned to a shared label axis.
type MSeriesSet struct {
	Labels   []string
	Products []string // first-seen order
	Sales    map[string][]float64
	Stock    map[string][]*float64 // nil entries are absent points
}

// -----------------------------------------------------------------------------

// MDataset is one named line (or pie) dataset handed to a chart.
type MDataset struct {
	Label string     `json:"label"`
	Data  []*float64 `json:"data"`
}
