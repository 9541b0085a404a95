package charts

import (
	"bytes"
	"errors"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

var errNothingToDraw = errors.New("nothing to draw")

// maxTicks bounds how many timestamp labels the x axis prints.
const maxTicks = 8

// -----------------------------------------------------------------------------

func renderPNG(c *Chart, width, height int) ([]byte, error) {
	switch c.Kind {
	case KindPie:
		return renderPie(c, width, height)
	default:
		return renderLine(c, width, height)
	}
}

// -----------------------------------------------------------------------------

func renderPie(c *Chart, width, height int) ([]byte, error) {
	if len(c.Datasets) == 0 {
		return nil, errNothingToDraw
	}

	data := c.Datasets[0].Data
	var values []chart.Value
	total := 0.0
	for i, label := range c.Labels {
		if i >= len(data) || data[i] == nil || *data[i] <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: label, Value: *data[i]})
		total += *data[i]
	}
	if len(values) == 0 || total <= 0 {
		return nil, errNothingToDraw
	}

	pie := chart.PieChart{
		Width:  width,
		Height: height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// -----------------------------------------------------------------------------

func renderLine(c *Chart, width, height int) ([]byte, error) {
	if len(c.Labels) == 0 {
		return nil, errNothingToDraw
	}

	var series []chart.Series
	minY, maxY := math.Inf(1), math.Inf(-1)

	for _, ds := range c.Datasets {
		var xs, ys []float64
		for i, v := range ds.Data {
			// absent points are gaps, not zeros
			if v == nil || i >= len(c.Labels) {
				continue
			}
			xs = append(xs, float64(i))
			ys = append(ys, *v)
			minY = math.Min(minY, *v)
			maxY = math.Max(maxY, *v)
		}
		if len(xs) == 0 {
			continue
		}
		// a lone timestamp is drawn as a flat segment across the axis
		if len(c.Labels) == 1 {
			xs = append(xs, 1)
			ys = append(ys, ys[0])
		}
		series = append(series, chart.ContinuousSeries{Name: ds.Label, XValues: xs, YValues: ys})
	}
	if len(series) == 0 {
		return nil, errNothingToDraw
	}

	// go-chart refuses zero-width ranges (single label, flat series)
	minY = math.Min(minY, 0)
	if maxY <= minY {
		maxY = minY + 1
	}
	maxX := len(c.Labels) - 1
	if maxX < 1 {
		maxX = 1
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxX)},
			Ticks: labelTicks(c.Labels, maxX),
		},
		YAxis: chart.YAxis{
			Name:  c.AxisLabel,
			Range: &chart.ContinuousRange{Min: minY, Max: maxY},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// -----------------------------------------------------------------------------

// labelTicks spreads at most maxTicks labels evenly along the axis. The
// x range follows the ticks, so the last tick always sits on maxX.
func labelTicks(labels []string, maxX int) []chart.Tick {
	step := 1
	if len(labels) > maxTicks {
		step = (len(labels) + maxTicks - 1) / maxTicks
	}

	ticks := make([]chart.Tick, 0, maxTicks+2)
	last := -1
	for i := 0; i < len(labels); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
		last = i
	}
	if last < maxX {
		label := ""
		if maxX < len(labels) {
			label = labels[maxX]
		}
		ticks = append(ticks, chart.Tick{Value: float64(maxX), Label: label})
	}
	return ticks
}
