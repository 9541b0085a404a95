package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"sales-dashboard/src/logger"
	"sales-dashboard/src/models"

	"github.com/shopspring/decimal"
)

var csvHeader = []string{"timestamp", "produto", "vendas", "estoque"}

// -----------------------------------------------------------------------------
// SalesStore
// -----------------------------------------------------------------------------

// SalesStore keeps the CSV rows in memory and derives the snapshot the
// dashboard backend publishes.
type SalesStore struct {
	path   string
	Logger *logger.Logger

	mu       sync.RWMutex
	rows     []models.MHistoryPoint
	snapshot *models.MSnapshot
	modTime  time.Time

	subMu       sync.Mutex
	subscribers []func(*models.MSnapshot)
}

func NewSalesStore(path string, log *logger.Logger) *SalesStore {
	return &SalesStore{path: path, Logger: log}
}

// -----------------------------------------------------------------------------

// Subscribe registers fn to be called with every reloaded snapshot.
func (s *SalesStore) Subscribe(fn func(*models.MSnapshot)) {
	s.subMu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.subMu.Unlock()
}

// -----------------------------------------------------------------------------

// Reload re-reads the CSV when it changed (or always with force) and notifies
// subscribers. It reports whether a new snapshot was produced.
func (s *SalesStore) Reload(force bool) (bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	unchanged := !info.ModTime().After(s.modTime)
	s.mu.RUnlock()
	if unchanged && !force {
		return false, nil
	}

	rows, err := readRows(s.path)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}

	snap := buildSnapshot(rows, time.Now())

	s.mu.Lock()
	s.rows = rows
	s.snapshot = snap
	s.modTime = info.ModTime()
	s.mu.Unlock()

	s.Logger.Info("Snapshot reloaded: %d rows, total %s", len(rows), strconv.FormatFloat(*snap.TotalSales, 'f', -1, 64))

	s.subMu.Lock()
	subs := append([]func(*models.MSnapshot){}, s.subscribers...)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
	return true, nil
}

// -----------------------------------------------------------------------------

// Snapshot returns the current snapshot, or an empty one before the first load.
func (s *SalesStore) Snapshot() *models.MSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return &models.MSnapshot{}
	}
	return s.snapshot
}

// History returns the last limit rows in file order.
func (s *SalesStore) History(limit int) []models.MHistoryPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if limit > 0 && len(s.rows) > limit {
		start = len(s.rows) - limit
	}
	out := make([]models.MHistoryPoint, len(s.rows)-start)
	copy(out, s.rows[start:])
	return out
}

// LastStock returns the latest stock per product.
func (s *SalesStore) LastStock() map[string]float64 {
	return s.Snapshot().StockByProduct
}

// -----------------------------------------------------------------------------
// CSV helpers
// -----------------------------------------------------------------------------

func readRows(path string) ([]models.MHistoryPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"timestamp", "produto"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []models.MHistoryPoint
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A half-written trailing line; the next write event reloads it
			break
		}

		p := models.MHistoryPoint{Timestamp: field(rec, "timestamp"), Product: field(rec, "produto")}
		if p.Timestamp == "" || p.Product == "" {
			continue
		}
		if v, err := strconv.ParseFloat(field(rec, "vendas"), 64); err == nil {
			p.Sales = v
		}
		if v, err := strconv.ParseFloat(field(rec, "estoque"), 64); err == nil {
			p.Stock = &v
		}
		rows = append(rows, p)
	}
	return rows, nil
}

// buildSnapshot aggregates rows the way the dashboard backend does: sales
// summed per product in decimal, last stock per product.
func buildSnapshot(rows []models.MHistoryPoint, now time.Time) *models.MSnapshot {
	total := decimal.Zero
	perProduct := make(map[string]decimal.Decimal)
	stock := make(map[string]float64)
	last := ""

	for _, p := range rows {
		amount := decimal.NewFromFloat(p.Sales)
		total = total.Add(amount)
		perProduct[p.Product] = perProduct[p.Product].Add(amount)
		if p.Stock != nil {
			stock[p.Product] = *p.Stock
		}
		if p.Timestamp > last {
			last = p.Timestamp
		}
	}

	sales := make(map[string]float64, len(perProduct))
	for product, sum := range perProduct {
		sales[product] = sum.InexactFloat64()
	}

	totalSales := total.InexactFloat64()
	count := int64(len(rows))
	updated := now.Format("2006-01-02T15:04:05")
	return &models.MSnapshot{
		TotalSales:     &totalSales,
		LastTimestamp:  &last,
		Rows:           &count,
		UpdatedAt:      &updated,
		SalesByProduct: sales,
		StockByProduct: stock,
	}
}

// appendRow writes one row, creating the file with a header when needed.
func appendRow(path string, p models.MHistoryPoint) error {
	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		w.Write(csvHeader)
	}
	stock := ""
	if p.Stock != nil {
		stock = strconv.FormatFloat(*p.Stock, 'f', -1, 64)
	}
	w.Write([]string{p.Timestamp, p.Product, strconv.FormatFloat(p.Sales, 'f', -1, 64), stock})
	w.Flush()
	return w.Error()
}
