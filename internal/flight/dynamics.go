package flight

import (
	"math"

	"github.com/ahsparrow/fgfs/internal/dsp"
	"github.com/ahsparrow/fgfs/internal/units"
)

// Gravity is the standard acceleration used by the coordinated-turn
// bank approximation, in m/s^2.
const Gravity = 9.81

// DynamicsConfig holds the estimator parameters. The smoothing windows
// are durations in seconds; they are converted to sample counts at the
// configured grid step.
type DynamicsConfig struct {
	WindSpeed     float64 // m/s
	WindDirection float64 // radians, bearing convention

	HeadingSmoothing float64 // seconds
	SpeedSmoothing   float64 // seconds
	BankSmoothing    float64 // seconds
	PitchSmoothing   float64 // seconds
}

// DefaultDynamicsConfig returns the production smoothing windows with
// zero wind.
func DefaultDynamicsConfig() DynamicsConfig {
	return DynamicsConfig{
		HeadingSmoothing: 4,
		SpeedSmoothing:   5,
		BankSmoothing:    5,
		PitchSmoothing:   2,
	}
}

// Estimator derives heading, groundspeed, bank and pitch from a
// uniform-grid local trajectory.
//
// The wind correction assumes a spatially and temporally constant wind
// field over the whole trajectory. Bank is the coordinated-turn
// approximation atan(omega * v / g) from the ground-track turn rate, and
// pitch is atan of the vertical rate over groundspeed. Both are
// deliberate approximations tuned for replay plausibility; downstream
// consumers depend on these exact outputs.
type Estimator struct {
	cfg DynamicsConfig
}

// NewEstimator creates an Estimator with the given configuration.
func NewEstimator(cfg DynamicsConfig) *Estimator {
	return &Estimator{cfg: cfg}
}

// Estimate computes the dynamics channels for a uniform-grid trajectory
// with grid step dt seconds. The output has the same length and grid as
// the input.
func (e *Estimator) Estimate(samples []LocalSample, dt float64) []DynamicsSample {
	n := len(samples)
	out := make([]DynamicsSample, n)
	if n == 0 {
		return out
	}

	// Displace the track by the wind accumulated since the start.
	xw := make([]float64, n)
	yw := make([]float64, n)
	z := make([]float64, n)
	sinDir := math.Sin(e.cfg.WindDirection)
	cosDir := math.Cos(e.cfg.WindDirection)
	for i, s := range samples {
		drift := float64(i) * dt * e.cfg.WindSpeed
		xw[i] = s.X + drift*sinDir
		yw[i] = s.Y + drift*cosDir
		z[i] = s.Z
	}

	dx := dsp.Diff(xw)
	dy := dsp.Diff(yw)
	dz := dsp.Diff(z)

	// Heading: bearing of the wind-corrected track, unwrapped before
	// smoothing so no sample-to-sample discontinuity survives.
	heading := make([]float64, n)
	for i := range heading {
		heading[i] = math.Atan2(dx[i], dy[i])
	}
	unwrapped := dsp.Unwrap(heading)
	smoothedHeading := dsp.Boxcar(unwrapped, e.window(e.cfg.HeadingSmoothing, dt))

	speed := make([]float64, n)
	for i := range speed {
		speed[i] = math.Hypot(dx[i], dy[i]) / dt
	}
	speed = dsp.Boxcar(speed, e.window(e.cfg.SpeedSmoothing, dt))

	// Bank from the unsmoothed unwrapped heading rate.
	omega := dsp.Diff(unwrapped)
	bank := make([]float64, n)
	for i := range bank {
		bank[i] = units.RadToDeg(math.Atan(omega[i] / dt * speed[i] / Gravity))
	}
	bank = dsp.Boxcar(bank, e.window(e.cfg.BankSmoothing, dt))

	pitch := make([]float64, n)
	for i := range pitch {
		if speed[i] > 0 {
			pitch[i] = units.RadToDeg(math.Atan(dz[i] / (speed[i] * dt)))
		}
	}
	pitch = dsp.Boxcar(pitch, e.window(e.cfg.PitchSmoothing, dt))

	for i := range out {
		out[i] = DynamicsSample{
			T:       samples[i].T,
			X:       xw[i],
			Y:       yw[i],
			Z:       z[i],
			Heading: dsp.Mod360(units.RadToDeg(smoothedHeading[i])),
			Bank:    bank[i],
			Pitch:   pitch[i],
			Speed:   speed[i],
		}
	}
	return out
}

func (e *Estimator) window(seconds, dt float64) int {
	return int(seconds / dt)
}
