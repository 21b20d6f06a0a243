package flight

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ahsparrow/fgfs/internal/dsp"
	"github.com/ahsparrow/fgfs/internal/geo"
)

// ECEFConfig holds the projector parameters.
type ECEFConfig struct {
	VelocitySmoothing float64 // seconds
}

// DefaultECEFConfig returns the production projector parameters.
func DefaultECEFConfig() ECEFConfig {
	return ECEFConfig{VelocitySmoothing: 3}
}

// Projector converts a dynamics-grid trajectory to Earth-centred
// coordinates with a per-sample orientation and velocity.
type Projector struct {
	cfg   ECEFConfig
	frame *geo.LocalFrame
}

// NewProjector creates a Projector over the given local frame.
func NewProjector(cfg ECEFConfig, frame *geo.LocalFrame) *Projector {
	return &Projector{cfg: cfg, frame: frame}
}

// ViewBasis builds the constant global view basis for a trajectory
// anchored at the given mean position: the identity attitude rotated by
// the intrinsic z-y-x Euler angles (-lon, lat, 0), then by the fixed
// 90 degree axis swap (0, 90, 0). The composition order is load-bearing;
// see ComposeOrientation.
func ViewBasis(latDeg, lonDeg float64) *mat.Dense {
	basis := geo.Apply(geo.EulerZYX(-lonDeg, latDeg, 0), geo.Identity())
	return geo.Apply(geo.EulerZYX(0, 90, 0), basis)
}

// ComposeOrientation applies the local attitude (-heading, -pitch,
// -bank) to the global view basis and returns the result as an
// axis-angle rotation vector, the orientation representation stored and
// transmitted downstream.
func ComposeOrientation(basis *mat.Dense, headingDeg, bankDeg, pitchDeg float64) [3]float64 {
	attitude := geo.Apply(geo.EulerZYX(-headingDeg, -pitchDeg, -bankDeg), basis)
	return geo.RotVec(attitude)
}

// Project converts the trajectory to ECEF states. anchorLat/anchorLon is
// the trajectory's mean position in degrees; dt is the grid step.
func (p *Projector) Project(samples []DynamicsSample, dt, anchorLat, anchorLon float64) []ECEFState {
	n := len(samples)
	out := make([]ECEFState, n)
	if n == 0 {
		return out
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	for i, s := range samples {
		e := p.frame.ToECEF(s.X, s.Y, s.Z)
		xs[i], ys[i], zs[i] = e.X, e.Y, e.Z
	}

	window := int(p.cfg.VelocitySmoothing / dt)
	vx := dsp.Boxcar(rate(xs, dt), window)
	vy := dsp.Boxcar(rate(ys, dt), window)
	vz := dsp.Boxcar(rate(zs, dt), window)

	basis := ViewBasis(anchorLat, anchorLon)
	for i, s := range samples {
		out[i] = ECEFState{
			X:        xs[i],
			Y:        ys[i],
			Z:        zs[i],
			RotVec:   ComposeOrientation(basis, s.Heading, s.Bank, s.Pitch),
			Velocity: [3]float64{vx[i], vy[i], vz[i]},
		}
	}
	return out
}

// rate returns the finite-difference rate of xs over dt.
func rate(xs []float64, dt float64) []float64 {
	d := dsp.Diff(xs)
	out := make([]float64, len(d))
	for i, v := range d {
		out[i] = v / dt
	}
	return out
}
