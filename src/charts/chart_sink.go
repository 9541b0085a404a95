package charts

import (
	"errors"
	"fmt"

	"sales-dashboard/src/interfaces"
	"sales-dashboard/src/logger"
	"sales-dashboard/src/models"
)

// Chart ids used by the dashboard.
const (
	ChartDistribution = "chart_distribution"
	ChartSales        = "chart_sales"
	ChartStock        = "chart_stock"
)

// ChartKind selects how a chart is drawn.
type ChartKind int

const (
	KindPie ChartKind = iota
	KindLine
)

func (k ChartKind) String() string {
	switch k {
	case KindPie:
		return "pie"
	case KindLine:
		return "line"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Chart (widget handle)
// -----------------------------------------------------------------------------

// Chart is a cached widget bound to one drawing surface.
type Chart struct {
	ID        string
	Kind      ChartKind
	AxisLabel string
	Labels    []string
	Datasets  []models.MDataset
	Revision  int // successful redraws

	canvas interfaces.ICanvas
}

// -----------------------------------------------------------------------------
// ChartSink
// -----------------------------------------------------------------------------

// ChartSink caches chart widgets by id. It is owned by a single goroutine.
type ChartSink struct {
	surfaces interfaces.IChartSurfaces
	width    int
	height   int
	widgets  map[string]*Chart
	Logger   *logger.Logger
}

func NewChartSink(surfaces interfaces.IChartSurfaces, width, height int, log *logger.Logger) *ChartSink {
	return &ChartSink{
		surfaces: surfaces,
		width:    width,
		height:   height,
		widgets:  make(map[string]*Chart),
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// Ensure returns the cached widget for id, creating it on first use.
// It returns nil when no surface exists for id; the caller skips that chart.
func (s *ChartSink) Ensure(id string, kind ChartKind, axisLabel string) *Chart {
	if c, ok := s.widgets[id]; ok {
		return c
	}

	canvas, ok := s.surfaces.Lookup(id)
	if !ok || canvas == nil {
		s.Logger.Error("Chart surface %s not found, skipping", id)
		return nil
	}

	c := &Chart{ID: id, Kind: kind, AxisLabel: axisLabel, canvas: canvas}
	s.widgets[id] = c
	s.Logger.Debug("Created %s chart %s", kind, id)
	return c
}

// -----------------------------------------------------------------------------

// Update replaces the label axis and datasets of an ensured chart and redraws it.
// The new data is kept even when drawing fails.
func (s *ChartSink) Update(id string, labels []string, datasets []models.MDataset) error {
	c, ok := s.widgets[id]
	if !ok {
		return fmt.Errorf("chart %s was never ensured", id)
	}

	c.Labels = labels
	c.Datasets = datasets

	img, err := renderPNG(c, s.width, s.height)
	if errors.Is(err, errNothingToDraw) {
		s.Logger.Debug("Chart %s has nothing to draw", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("render chart %s: %w", id, err)
	}

	c.canvas.Paint(img)
	c.Revision++
	return nil
}

// -----------------------------------------------------------------------------

// Get returns a previously ensured chart.
func (s *ChartSink) Get(id string) (*Chart, bool) {
	c, ok := s.widgets[id]
	return c, ok
}
