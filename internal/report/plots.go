package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ahsparrow/fgfs/internal/flight"
)

// PlotAltitude writes a PNG comparing the raw pressure and GPS altitude
// channels against the fused output for one flight.
func PlotAltitude(path string, fixes flight.FixSeries, fused []float64) error {
	p := plot.New()
	p.Title.Text = "Altitude fusion"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Altitude (m)"

	pressure := make(plotter.XYs, len(fixes))
	gps := make(plotter.XYs, len(fixes))
	out := make(plotter.XYs, len(fused))
	for i, fx := range fixes {
		pressure[i] = plotter.XY{X: fx.T, Y: fx.PressureAlt}
		gps[i] = plotter.XY{X: fx.T, Y: fx.GPSAlt}
	}
	for i, v := range fused {
		out[i] = plotter.XY{X: fixes[i].T, Y: v}
	}

	if err := addLine(p, "pressure", pressure, color.RGBA{R: 200, A: 255}); err != nil {
		return err
	}
	if err := addLine(p, "gps", gps, color.RGBA{B: 200, A: 255}); err != nil {
		return err
	}
	if err := addLine(p, "fused", out, color.RGBA{G: 150, A: 255}); err != nil {
		return err
	}

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// PlotTrack writes a PNG of the local-frame ground track before and
// after the wind drift correction.
func PlotTrack(path string, before, after []flight.LocalSample) error {
	p := plot.New()
	p.Title.Text = "Ground track"
	p.X.Label.Text = "East (m)"
	p.Y.Label.Text = "North (m)"

	raw := make(plotter.XYs, len(before))
	for i, s := range before {
		raw[i] = plotter.XY{X: s.X, Y: s.Y}
	}
	corrected := make(plotter.XYs, len(after))
	for i, s := range after {
		corrected[i] = plotter.XY{X: s.X, Y: s.Y}
	}

	if err := addLine(p, "raw", raw, color.RGBA{R: 200, A: 255}); err != nil {
		return err
	}
	if err := addLine(p, "wind corrected", corrected, color.RGBA{B: 200, A: 255}); err != nil {
		return err
	}

	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, c color.Color) error {
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("plot %s: %w", name, err)
	}
	line.Color = c
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}
