package main

import (
	"context"
	"math/rand/v2"
	"time"

	"sales-dashboard/src/logger"
	"sales-dashboard/src/models"
)

var defaultProducts = []string{"Produto A", "Produto B", "Produto C", "Produto D"}

const initialStock = 100

// -----------------------------------------------------------------------------
// RowWriter
// -----------------------------------------------------------------------------

// RowWriter appends random sales rows to the CSV at random intervals,
// decrementing each product's stock.
type RowWriter struct {
	path     string
	products []string
	stock    map[string]float64
	minDelay time.Duration
	maxDelay time.Duration
	rng      *rand.Rand
	Logger   *logger.Logger
}

func NewRowWriter(path string, existing map[string]float64, minDelay, maxDelay time.Duration, log *logger.Logger) *RowWriter {
	stock := make(map[string]float64, len(defaultProducts))
	for _, p := range defaultProducts {
		stock[p] = initialStock
	}
	for p, v := range existing {
		stock[p] = v
	}

	return &RowWriter{
		path:     path,
		products: defaultProducts,
		stock:    stock,
		minDelay: minDelay,
		maxDelay: maxDelay,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// Run writes rows until ctx is cancelled.
func (w *RowWriter) Run(ctx context.Context) {
	w.Logger.Info("Writing random rows to %s", w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.nextDelay()):
		}

		p, err := w.WriteOne(time.Now().UTC())
		if err != nil {
			w.Logger.Error("Append failed: %v", err)
			continue
		}
		w.Logger.Info("Row added: %s vendas=%v estoque=%v", p.Product, p.Sales, *p.Stock)
	}
}

// WriteOne appends a single random row stamped with now.
func (w *RowWriter) WriteOne(now time.Time) (models.MHistoryPoint, error) {
	product := w.products[w.rng.IntN(len(w.products))]
	sales := float64(1 + w.rng.IntN(8))

	left := w.stock[product] - sales
	if left < 0 {
		left = 0
	}
	w.stock[product] = left

	p := models.MHistoryPoint{
		Timestamp: now.Format("2006-01-02T15:04:05"),
		Product:   product,
		Sales:     sales,
		Stock:     &left,
	}
	return p, appendRow(w.path, p)
}

func (w *RowWriter) nextDelay() time.Duration {
	if w.maxDelay <= w.minDelay {
		return w.minDelay
	}
	return w.minDelay + time.Duration(w.rng.Int64N(int64(w.maxDelay-w.minDelay)))
}
