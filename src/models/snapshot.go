package models

import "time"

// MSnapshot is the complete current-state record published by the backend.
// Optional scalars are pointers so "absent" and "zero" stay distinguishable.
type MSnapshot struct {
	TotalSales     *float64           `json:"total_vendas"`
	LastTimestamp  *string            `json:"ultimo_timestamp"`
	Rows           *int64             `json:"linhas"`
	UpdatedAt      *string            `json:"atualizado_em"`
	SalesByProduct map[string]float64 `json:"vendas_por_produto"`
	StockByProduct map[string]float64 `json:"estoque_por_produto"`
}

// -----------------------------------------------------------------------------

// Snapshot origins
const (
	OriginPush = "push"
	OriginPull = "pull"
)

// MAcceptedSnapshot is a validated snapshot together with how it arrived.
type MAcceptedSnapshot struct {
	Snapshot   *MSnapshot
	Origin     string
	ReceivedAt time.Time
	Payload    []byte
}
