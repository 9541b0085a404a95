package models

// MHistoryPoint is one observed (timestamp, product, sales, stock) measurement.
type MHistoryPoint struct {
	Timestamp string   `json:"timestamp"`
	Product   string   `json:"produto"`
	Sales     float64  `json:"vendas"`
	Stock     *float64 `json:"estoque"`
}
