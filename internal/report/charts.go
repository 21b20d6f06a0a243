// Package report renders run output for humans: an HTML gaggle
// histogram and PNG diagnostic plots per flight.
package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ahsparrow/fgfs/internal/prox"
)

// WriteGagglePage renders the gaggle histogram as a standalone HTML bar
// chart.
func WriteGagglePage(path string, hist prox.Histogram) error {
	labels := make([]string, len(hist.Counts))
	values := make([]opts.BarData, len(hist.Counts))
	for i, c := range hist.Counts {
		labels[i] = clock(hist.Start + float64(i)*hist.BinWidth)
		values[i] = opts.BarData{Value: c}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Gaggle convergence",
			Subtitle: fmt.Sprintf("sub-threshold samples per %.0f s bin", hist.BinWidth),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Samples"}),
	)
	bar.SetXAxis(labels).AddSeries("near samples", values)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	return bar.Render(f)
}

// clock formats seconds since midnight as HH:MM:SS.
func clock(t float64) string {
	secs := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}
