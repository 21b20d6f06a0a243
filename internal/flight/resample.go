package flight

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/ahsparrow/fgfs/internal/geo"
)

// Resampler projects fixes onto the run's local planar frame and
// resamples every channel onto a uniform time grid with interpolating
// cubic splines. The fit tolerates the uneven spacing of real logs.
type Resampler struct {
	frame *geo.LocalFrame
	step  float64
}

// NewResampler creates a resampler over the given shared frame with the
// given grid step in seconds.
func NewResampler(frame *geo.LocalFrame, step float64) *Resampler {
	return &Resampler{frame: frame, step: step}
}

// Resample converts the series' geodetic positions to the local frame
// and evaluates spline fits of x, y and the fused altitude on the
// uniform grid starting at the first timestamp.
func (r *Resampler) Resample(fixes FixSeries, altitude []float64) ([]LocalSample, error) {
	if len(fixes) < 2 {
		return nil, ErrTooShort
	}
	if len(altitude) != len(fixes) {
		return nil, fmt.Errorf("altitude length %d does not match %d fixes", len(altitude), len(fixes))
	}

	times := fixes.Times()
	xs := make([]float64, len(fixes))
	ys := make([]float64, len(fixes))
	for i, f := range fixes {
		xs[i], ys[i] = r.frame.Project(f.Lat, f.Lon)
	}

	var sx, sy, sz interp.NotAKnotCubic
	if err := sx.Fit(times, xs); err != nil {
		return nil, fmt.Errorf("fit x spline: %w", err)
	}
	if err := sy.Fit(times, ys); err != nil {
		return nil, fmt.Errorf("fit y spline: %w", err)
	}
	if err := sz.Fit(times, altitude); err != nil {
		return nil, fmt.Errorf("fit altitude spline: %w", err)
	}

	t0 := times[0]
	n := int(math.Round((times[len(times)-1]-t0)/r.step)) + 1

	out := make([]LocalSample, n)
	for i := range out {
		t := t0 + float64(i)*r.step
		out[i] = LocalSample{
			T: t,
			X: sx.Predict(t),
			Y: sy.Predict(t),
			Z: sz.Predict(t),
		}
	}
	return out, nil
}
