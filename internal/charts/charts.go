// Package charts renders the dashboard series as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"support-insights-go/internal/aggregator"
)

const (
	KindEvolution    = "evolution"
	KindDistribution = "distribution"

	maxScore = 5.0
)

var ErrNotEnoughData = errors.New("not enough data to draw a chart")

// RenderEvolution draws the average score per day. It needs at least two days.
func RenderEvolution(points []aggregator.EvolutionPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 days, got %d", ErrNotEnoughData, len(points))
	}

	xValues := make([]time.Time, 0, len(points))
	yValues := make([]float64, 0, len(points))
	for _, p := range points {
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, fmt.Errorf("bad evolution date %q: %w", p.Date, err)
		}
		xValues = append(xValues, d)
		yValues = append(yValues, p.Score)
	}

	graph := chart.Chart{
		Title:  "Score evolution",
		Width:  900,
		Height: 360,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return chart.TimeFromFloat64(f).Format("02/01")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxScore},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Average score",
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("2563eb"),
					StrokeWidth: 2.5,
					DotColor:    drawing.ColorFromHex("2563eb"),
					DotWidth:    3,
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderDistribution draws one bar per score bucket.
func RenderDistribution(buckets []aggregator.DistributionBucket) ([]byte, error) {
	if len(buckets) == 0 {
		return nil, fmt.Errorf("%w: no buckets", ErrNotEnoughData)
	}

	bars := make([]chart.Value, 0, len(buckets))
	top := 1.0
	for _, b := range buckets {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%d", b.Score),
			Value: float64(b.Count),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("f59e0b"),
				StrokeColor: drawing.ColorFromHex("d97706"),
				StrokeWidth: 1,
			},
		})
		if float64(b.Count) > top {
			top = float64(b.Count)
		}
	}

	graph := chart.BarChart{
		Title:  "Score distribution",
		Width:  600,
		Height: 360,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		BarWidth: 60,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
