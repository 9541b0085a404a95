package analysis

import "sales-dashboard/src/models"

// -----------------------------------------------------------------------------
// SeriesBuilder
// -----------------------------------------------------------------------------

// SeriesBuilder turns a history batch into label-aligned per-product series.
// Sales is a flow quantity and sums per (label, product); stock is a level
// quantity and keeps the last observation per (label, product).
type SeriesBuilder struct{}

// -----------------------------------------------------------------------------

// Build returns ok=false for an empty batch so callers can leave charts as they are.
func (b *SeriesBuilder) Build(points []models.MHistoryPoint) (*models.MSeriesSet, bool) {
	if len(points) == 0 {
		return nil, false
	}

	// 1. Label axis and product set, both in first-seen order
	labelIndex := make(map[string]int)
	var labels []string
	productSeen := make(map[string]struct{})
	var products []string

	for _, p := range points {
		if _, ok := labelIndex[p.Timestamp]; !ok {
			labelIndex[p.Timestamp] = len(labels)
			labels = append(labels, p.Timestamp)
		}
		if _, ok := productSeen[p.Product]; !ok {
			productSeen[p.Product] = struct{}{}
			products = append(products, p.Product)
		}
	}

	// 2. Allocate aligned series
	set := &models.MSeriesSet{
		Labels:   labels,
		Products: products,
		Sales:    make(map[string][]float64, len(products)),
		Stock:    make(map[string][]*float64, len(products)),
	}
	for _, prod := range products {
		set.Sales[prod] = make([]float64, len(labels))
		set.Stock[prod] = make([]*float64, len(labels))
	}

	// 3. Single pass in arrival order: sum sales, overwrite stock (last wins,
	// including a last observation whose stock is absent)
	for _, p := range points {
		i := labelIndex[p.Timestamp]
		set.Sales[p.Product][i] += p.Sales

		var stock *float64
		if p.Stock != nil {
			v := *p.Stock
			stock = &v
		}
		set.Stock[p.Product][i] = stock
	}

	return set, true
}

// -----------------------------------------------------------------------------

// SalesDatasets returns one dataset per product, in product order.
func SalesDatasets(set *models.MSeriesSet) []models.MDataset {
	datasets := make([]models.MDataset, 0, len(set.Products))
	for _, prod := range set.Products {
		values := set.Sales[prod]
		data := make([]*float64, len(values))
		for i := range values {
			v := values[i]
			data[i] = &v
		}
		datasets = append(datasets, models.MDataset{Label: prod, Data: data})
	}
	return datasets
}

// -----------------------------------------------------------------------------

// StockDatasets returns one dataset per product, absent points kept as nil.
func StockDatasets(set *models.MSeriesSet) []models.MDataset {
	datasets := make([]models.MDataset, 0, len(set.Products))
	for _, prod := range set.Products {
		datasets = append(datasets, models.MDataset{Label: prod, Data: set.Stock[prod]})
	}
	return datasets
}

// -----------------------------------------------------------------------------

// DistributionDataset builds the single pie dataset from a sales mapping,
// labels in the given order.
func DistributionDataset(keys []string, values map[string]float64) models.MDataset {
	data := make([]*float64, len(keys))
	for i, k := range keys {
		v := values[k]
		data[i] = &v
	}
	return models.MDataset{Label: "Distribuição de Vendas", Data: data}
}
