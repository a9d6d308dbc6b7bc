package report

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/abhisek/gradebook/internal/letters"
)

// DistributionChart writes a standalone HTML bar chart of student counts per
// letter grade, in scale order.
func DistributionChart(w io.Writer, title string, scale letters.Scale, shares []letters.Share) error {
	counts := make(map[letters.Grade]int, len(shares))
	for _, s := range shares {
		counts[s.Grade] = s.Count
	}

	var labels []string
	items := make([]opts.BarData, 0)
	for _, g := range scale.Order() {
		labels = append(labels, string(g))
		items = append(items, opts.BarData{Name: string(g), Value: counts[g]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "Students per letter grade",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Students", MinInterval: 1}),
	)
	bar.SetXAxis(labels).AddSeries("Students", items)
	return bar.Render(w)
}
