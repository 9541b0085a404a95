package charts

import (
	"bytes"
	"testing"

	"sales-dashboard/src/interfaces"
	"sales-dashboard/src/logger"
	"sales-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

type fakeCanvas struct {
	paints [][]byte
}

func (c *fakeCanvas) Paint(png []byte) { c.paints = append(c.paints, png) }

type fakeSurfaces struct {
	canvases map[string]*fakeCanvas
	lookups  int
}

func (s *fakeSurfaces) Lookup(id string) (interfaces.ICanvas, bool) {
	s.lookups++
	c, ok := s.canvases[id]
	if !ok {
		return nil, false
	}
	return c, true
}

func newSurfaces(ids ...string) *fakeSurfaces {
	s := &fakeSurfaces{canvases: make(map[string]*fakeCanvas)}
	for _, id := range ids {
		s.canvases[id] = &fakeCanvas{}
	}
	return s
}

func fp(v float64) *float64 { return &v }

func TestEnsureIsIdempotent(t *testing.T) {
	surfaces := newSurfaces(ChartSales)
	sink := NewChartSink(surfaces, 400, 200, logger.NewNopLogger())

	first := sink.Ensure(ChartSales, KindLine, "Vendas")
	require.NotNil(t, first)
	second := sink.Ensure(ChartSales, KindLine, "ignored")

	assert.Same(t, first, second)
	assert.Equal(t, "Vendas", second.AxisLabel)
	assert.Equal(t, 1, surfaces.lookups)
}

func TestEnsureMissingSurface(t *testing.T) {
	sink := NewChartSink(newSurfaces(), 400, 200, logger.NewNopLogger())

	assert.Nil(t, sink.Ensure(ChartStock, KindLine, "Estoque"))
	_, ok := sink.Get(ChartStock)
	assert.False(t, ok)
	assert.Error(t, sink.Update(ChartStock, []string{"t1"}, nil))
}

func TestUpdateLineChartPaintsPNG(t *testing.T) {
	surfaces := newSurfaces(ChartStock)
	sink := NewChartSink(surfaces, 400, 200, logger.NewNopLogger())
	require.NotNil(t, sink.Ensure(ChartStock, KindLine, "Estoque"))

	labels := []string{"t1", "t2", "t3"}
	datasets := []models.MDataset{
		{Label: "A", Data: []*float64{fp(10), nil, fp(8)}},
		{Label: "B", Data: []*float64{nil, fp(4), fp(3)}},
	}
	require.NoError(t, sink.Update(ChartStock, labels, datasets))

	c, ok := sink.Get(ChartStock)
	require.True(t, ok)
	assert.Equal(t, labels, c.Labels)
	assert.Equal(t, datasets, c.Datasets)
	assert.Equal(t, 1, c.Revision)

	paints := surfaces.canvases[ChartStock].paints
	require.Len(t, paints, 1)
	assert.True(t, bytes.HasPrefix(paints[0], pngMagic))
}

func TestUpdateSingleLabelFlatSeries(t *testing.T) {
	surfaces := newSurfaces(ChartSales)
	sink := NewChartSink(surfaces, 400, 200, logger.NewNopLogger())
	require.NotNil(t, sink.Ensure(ChartSales, KindLine, "Vendas"))

	err := sink.Update(ChartSales, []string{"t1"}, []models.MDataset{{Label: "A", Data: []*float64{fp(0)}}})
	require.NoError(t, err)
	assert.Len(t, surfaces.canvases[ChartSales].paints, 1)
}

func TestUpdatePieChart(t *testing.T) {
	surfaces := newSurfaces(ChartDistribution)
	sink := NewChartSink(surfaces, 300, 300, logger.NewNopLogger())
	require.NotNil(t, sink.Ensure(ChartDistribution, KindPie, ""))

	ds := models.MDataset{Label: "dist", Data: []*float64{fp(10), fp(5)}}
	require.NoError(t, sink.Update(ChartDistribution, []string{"A", "B"}, []models.MDataset{ds}))

	paints := surfaces.canvases[ChartDistribution].paints
	require.Len(t, paints, 1)
	assert.True(t, bytes.HasPrefix(paints[0], pngMagic))
}

func TestUpdateNothingToDrawKeepsData(t *testing.T) {
	surfaces := newSurfaces(ChartStock)
	sink := NewChartSink(surfaces, 400, 200, logger.NewNopLogger())
	require.NotNil(t, sink.Ensure(ChartStock, KindLine, "Estoque"))

	ds := []models.MDataset{{Label: "A", Data: []*float64{nil, nil}}}
	require.NoError(t, sink.Update(ChartStock, []string{"t1", "t2"}, ds))

	c, _ := sink.Get(ChartStock)
	assert.Equal(t, []string{"t1", "t2"}, c.Labels)
	assert.Zero(t, c.Revision)
	assert.Empty(t, surfaces.canvases[ChartStock].paints)
}

func TestLabelTicksBounded(t *testing.T) {
	labels := make([]string, 120)
	for i := range labels {
		labels[i] = "t"
	}
	ticks := labelTicks(labels, len(labels)-1)
	assert.LessOrEqual(t, len(ticks), maxTicks+1)
	assert.Equal(t, 0.0, ticks[0].Value)
	assert.Equal(t, 119.0, ticks[len(ticks)-1].Value)

	assert.Len(t, labelTicks([]string{"a", "b"}, 1), 2)
}

func TestLabelTicksSingleLabelSpansAxis(t *testing.T) {
	ticks := labelTicks([]string{"t1"}, 1)
	require.Len(t, ticks, 2)
	assert.Equal(t, chart.Tick{Value: 0, Label: "t1"}, ticks[0])
	assert.Equal(t, chart.Tick{Value: 1, Label: ""}, ticks[1])
}

func TestUpdateSingleLabelManyProducts(t *testing.T) {
	surfaces := newSurfaces(ChartStock)
	sink := NewChartSink(surfaces, 400, 200, logger.NewNopLogger())
	require.NotNil(t, sink.Ensure(ChartStock, KindLine, "Estoque"))

	ds := []models.MDataset{
		{Label: "A", Data: []*float64{fp(7)}},
		{Label: "B", Data: []*float64{fp(3)}},
		{Label: "C", Data: []*float64{nil}},
	}
	require.NoError(t, sink.Update(ChartStock, []string{"2024-05-01T10:00:00"}, ds))

	paints := surfaces.canvases[ChartStock].paints
	require.Len(t, paints, 1)
	assert.True(t, bytes.HasPrefix(paints[0], pngMagic))
	assert.Equal(t, 1, sink.Ensure(ChartStock, KindLine, "Estoque").Revision)
}
