package flight

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ahsparrow/fgfs/internal/dsp"
)

// MaxSampleInterval is the largest usable dominant sample interval in
// seconds. Logs recorded more sparsely than this cannot be resampled
// reliably and are skipped.
const MaxSampleInterval = 4.0

// CalibrationStrategy selects how the barometric and GPS altitude
// channels are merged.
type CalibrationStrategy string

const (
	// CalibrateDeltaSmoothing models the barometric bias as a slowly
	// varying function of time: the GPS minus pressure delta is boxcar
	// smoothed and added back to the pressure altitude.
	CalibrateDeltaSmoothing CalibrationStrategy = "delta"

	// CalibrateBinned models the bias as a function of altitude: the
	// mean GPS minus pressure error is computed per fixed-size pressure
	// altitude bucket and linearly interpolated.
	CalibrateBinned CalibrationStrategy = "binned"
)

// FuserConfig holds the altitude fusion parameters.
type FuserConfig struct {
	Strategy          CalibrationStrategy
	SmoothingDuration float64 // delta smoothing window (seconds)
	BinSize           float64 // binned calibration bucket size (metres)
	DatumSamples      int     // GPS samples averaged for the datum check
	MaxDatumError     float64 // residual above which the datum is suspect (metres)
}

// DefaultFuserConfig returns the production fusion parameters.
func DefaultFuserConfig() FuserConfig {
	return FuserConfig{
		Strategy:          CalibrateDeltaSmoothing,
		SmoothingDuration: 60,
		BinSize:           100,
		DatumSamples:      10,
		MaxDatumError:     10,
	}
}

// Fuser merges the pressure and GPS altitude channels of a log into one
// continuous altitude signal.
type Fuser struct {
	cfg FuserConfig
}

// NewFuser creates a Fuser with the given configuration.
func NewFuser(cfg FuserConfig) *Fuser {
	return &Fuser{cfg: cfg}
}

// DominantInterval returns the mode of the consecutive timestamp deltas,
// the interval the logger actually recorded at.
func DominantInterval(times []float64) float64 {
	if len(times) < 2 {
		return 0
	}

	deltas := make([]float64, len(times)-1)
	for i := 1; i < len(times); i++ {
		deltas[i-1] = times[i] - times[i-1]
	}
	sort.Float64s(deltas)

	mode, _ := stat.Mode(deltas, nil)
	return mode
}

// Fuse merges the two altitude channels, which must be aligned on one
// fix series' timestamps. Returns ErrSparseSampling if the dominant
// sample interval exceeds MaxSampleInterval; the caller should skip the
// log but continue the run.
func (f *Fuser) Fuse(times, pressure, gps []float64) ([]float64, error) {
	if len(times) < 2 {
		return nil, ErrTooShort
	}
	if len(pressure) != len(times) || len(gps) != len(times) {
		return nil, fmt.Errorf("channel lengths differ: %d times, %d pressure, %d gps",
			len(times), len(pressure), len(gps))
	}

	interval := DominantInterval(times)
	if interval > MaxSampleInterval {
		return nil, fmt.Errorf("%w: %.0f s", ErrSparseSampling, interval)
	}

	switch f.cfg.Strategy {
	case CalibrateBinned:
		return f.fuseBinned(pressure, gps), nil
	default:
		return f.fuseDelta(interval, pressure, gps), nil
	}
}

func (f *Fuser) fuseDelta(interval float64, pressure, gps []float64) []float64 {
	delta := make([]float64, len(pressure))
	for i := range delta {
		delta[i] = gps[i] - pressure[i]
	}

	window := int(f.cfg.SmoothingDuration / interval)
	smoothed := dsp.Boxcar(delta, window)

	fused := make([]float64, len(pressure))
	for i := range fused {
		fused[i] = pressure[i] + smoothed[i]
	}
	return fused
}

func (f *Fuser) fuseBinned(pressure, gps []float64) []float64 {
	bin := f.cfg.BinSize

	minAlt := math.Floor(floats.Min(pressure)/bin) * bin
	maxAlt := (math.Floor(floats.Max(pressure)/bin) + 1) * bin
	nBins := int((maxAlt-minAlt)/bin) + 1

	// Mean GPS minus pressure error per bucket
	sums := make([]float64, nBins)
	counts := make([]int, nBins)
	for i, p := range pressure {
		b := int((p - minAlt) / bin)
		if b < 0 {
			b = 0
		} else if b >= nBins {
			b = nBins - 1
		}
		sums[b] += gps[i] - pressure[i]
		counts[b]++
	}

	centres := make([]float64, 0, nBins)
	errs := make([]float64, 0, nBins)
	for b := 0; b < nBins; b++ {
		if counts[b] == 0 {
			continue
		}
		centres = append(centres, minAlt+(float64(b)+0.5)*bin)
		errs = append(errs, sums[b]/float64(counts[b]))
	}

	fused := make([]float64, len(pressure))
	for i, p := range pressure {
		fused[i] = p + lerp(centres, errs, p)
	}
	return fused
}

// lerp linearly interpolates ys over xs at x, clamping outside the
// range. xs must be strictly increasing.
func lerp(xs, ys []float64, x float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}
	i := sort.SearchFloat64s(xs, x)
	t := (x - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1] + t*(ys[i]-ys[i-1])
}

// ResolveDatum fixes the geoid/ellipsoid ambiguity of the GPS altitude
// reference. The mean of the first few GPS samples is compared against
// the known takeoff elevation under both hypotheses; the offset of the
// better one is applied to the fused series. The returned residual is
// the error of the chosen hypothesis: a residual above MaxDatumError
// means the datum is suspect and the caller should log a warning.
func (f *Fuser) ResolveDatum(fused, gps []float64, elevation, geoidHeight float64) (out []float64, residual float64) {
	n := f.cfg.DatumSamples
	if n > len(gps) {
		n = len(gps)
	}
	takeoff := stat.Mean(gps[:n], nil)

	errGeoid := math.Abs(takeoff - elevation)
	errEllipsoid := math.Abs((takeoff - geoidHeight) - elevation)

	offset := 0.0
	residual = errGeoid
	if errEllipsoid < errGeoid {
		// GPS altitude is ellipsoid height; shift to the geoid.
		offset = -geoidHeight
		residual = errEllipsoid
	}

	out = make([]float64, len(fused))
	for i, v := range fused {
		out[i] = v + offset
	}
	return out, residual
}
