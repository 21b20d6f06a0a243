package flight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsparrow/fgfs/internal/geo"
)

// syntheticFixes builds a series moving north at constant speed with
// slightly uneven sampling.
func syntheticFixes(n int) (FixSeries, []float64) {
	fixes := make(FixSeries, n)
	alt := make([]float64, n)
	t := 0.0
	for i := 0; i < n; i++ {
		fixes[i] = Fix{
			T:   t,
			Lat: 52.0 + 0.0001*float64(i),
			Lon: -1.5,
		}
		alt[i] = 500 + float64(i)
		// alternate 3 s / 5 s spacing
		if i%2 == 0 {
			t += 3
		} else {
			t += 5
		}
	}
	return fixes, alt
}

func TestResampleGridLength(t *testing.T) {
	frame := geo.NewLocalFrame(52.0, -1.5)
	fixes, alt := syntheticFixes(50)

	for _, step := range []float64{0.1, 0.5, 1.0} {
		r := NewResampler(frame, step)
		out, err := r.Resample(fixes, alt)
		require.NoError(t, err)

		duration := fixes[len(fixes)-1].T - fixes[0].T
		want := int(math.Round(duration/step)) + 1
		assert.Len(t, out, want, "step %v", step)

		// First and last grid timestamps lie within one step of the
		// input bounds.
		assert.InDelta(t, fixes[0].T, out[0].T, step)
		assert.InDelta(t, fixes[len(fixes)-1].T, out[len(out)-1].T, step)
	}
}

func TestResampleUniformSpacing(t *testing.T) {
	frame := geo.NewLocalFrame(52.0, -1.5)
	fixes, alt := syntheticFixes(40)

	r := NewResampler(frame, 0.5)
	out, err := r.Resample(fixes, alt)
	require.NoError(t, err)

	for i := 1; i < len(out); i++ {
		assert.InDelta(t, 0.5, out[i].T-out[i-1].T, 1e-9, "index %d", i)
	}
}

func TestResampleInterpolatesThroughKnots(t *testing.T) {
	frame := geo.NewLocalFrame(52.0, -1.5)
	fixes, alt := syntheticFixes(30)

	// With a 1 s grid, every original timestamp is a grid point (the
	// synthetic spacing is whole seconds), so the spline must pass
	// through the original samples there.
	r := NewResampler(frame, 1.0)
	out, err := r.Resample(fixes, alt)
	require.NoError(t, err)

	byTime := map[float64]LocalSample{}
	for _, s := range out {
		byTime[math.Round(s.T)] = s
	}

	for i, f := range fixes {
		s, ok := byTime[f.T]
		require.True(t, ok, "missing grid sample at %v", f.T)
		x, y := frame.Project(f.Lat, f.Lon)
		assert.InDelta(t, x, s.X, 1e-6)
		assert.InDelta(t, y, s.Y, 1e-6)
		assert.InDelta(t, alt[i], s.Z, 1e-6)
	}
}

func TestResampleTooShort(t *testing.T) {
	frame := geo.NewLocalFrame(52.0, -1.5)
	r := NewResampler(frame, 1.0)
	_, err := r.Resample(FixSeries{{T: 0}}, []float64{100})
	assert.ErrorIs(t, err, ErrTooShort)
}
