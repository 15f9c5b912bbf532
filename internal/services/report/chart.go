package report

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/models"
)

// palette cycles across series
var palette = []string{
	"2563eb", // blue-600
	"dc2626", // red-600
	"16a34a", // green-600
	"d97706", // amber-600
	"7c3aed", // violet-600
	"0891b2", // cyan-600
	"4b5563", // gray-600
}

// RenderChart renders a PNG line chart with one series per column and the year on the X axis.
// Columns with fewer than two years are left out. Returns raw PNG bytes.
func RenderChart(title string, table *models.FinancialTable) ([]byte, error) {
	var series []chart.Series
	for _, account := range table.Accounts {
		col := table.Column(account)
		if len(col) < 2 {
			continue
		}

		xValues := make([]float64, 0, len(col))
		yValues := make([]float64, 0, len(col))
		for _, year := range table.Years() {
			if v, ok := col[year]; ok {
				xValues = append(xValues, float64(year))
				yValues = append(yValues, float64(v))
			}
		}

		series = append(series, chart.ContinuousSeries{
			Name: account,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(palette[len(series)%len(palette)]),
				StrokeWidth: 2.5,
			},
			XValues: xValues,
			YValues: yValues,
		})
	}
	if len(series) == 0 {
		return nil, errors.New("need at least one column with 2 years of data")
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return strconv.Itoa(int(f))
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return common.FormatValue(int64(f))
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
