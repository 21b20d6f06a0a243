package flight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsparrow/fgfs/internal/geo"
)

func TestComposeOrientationReducesToAxisSwap(t *testing.T) {
	// At lat=0, lon=0 with zero attitude, the composition must reduce to
	// the fixed 90 degree axis-swap rotation alone. This is a regression
	// check for the composition order.
	basis := ViewBasis(0, 0)
	got := ComposeOrientation(basis, 0, 0, 0)

	swapOnly := geo.RotVec(geo.Apply(geo.EulerZYX(0, 90, 0), geo.Identity()))
	for i := 0; i < 3; i++ {
		assert.InDelta(t, swapOnly[i], got[i], 1e-9, "component %d", i)
	}

	// The reduced rotation is a quarter turn about the y axis.
	angle := math.Sqrt(got[0]*got[0] + got[1]*got[1] + got[2]*got[2])
	assert.InDelta(t, math.Pi/2, angle, 1e-9)
	assert.InDelta(t, 0.0, got[0], 1e-9)
	assert.InDelta(t, 0.0, got[2], 1e-9)
}

func TestComposeOrientationHeadingChangesResult(t *testing.T) {
	basis := ViewBasis(52, -1.5)

	a := ComposeOrientation(basis, 0, 0, 0)
	b := ComposeOrientation(basis, 90, 0, 0)

	diff := 0.0
	for i := 0; i < 3; i++ {
		diff += math.Abs(a[i] - b[i])
	}
	assert.Greater(t, diff, 0.1)
}

func TestViewBasisIsConstantRotation(t *testing.T) {
	// The basis must be orthonormal (a proper rotation).
	basis := ViewBasis(45, 10)
	for i := 0; i < 3; i++ {
		var norm float64
		for j := 0; j < 3; j++ {
			norm += basis.At(i, j) * basis.At(i, j)
		}
		assert.InDelta(t, 1.0, norm, 1e-9, "row %d", i)
	}
}

func TestProjectPositions(t *testing.T) {
	frame := geo.NewLocalFrame(52, -1.5)
	proj := NewProjector(DefaultECEFConfig(), frame)

	samples := []DynamicsSample{
		{T: 0, X: 0, Y: 0, Z: 150},
		{T: 1, X: 30, Y: 0, Z: 150},
		{T: 2, X: 60, Y: 0, Z: 150},
	}
	states := proj.Project(samples, 1, 52, -1.5)
	require.Len(t, states, 3)

	// The first sample is the frame origin at 150 m.
	want := geo.GeodeticToECEF(52, -1.5, 150)
	assert.InDelta(t, want.X, states[0].X, 1e-6)
	assert.InDelta(t, want.Y, states[0].Y, 1e-6)
	assert.InDelta(t, want.Z, states[0].Z, 1e-6)
}

func TestProjectVelocityMagnitude(t *testing.T) {
	frame := geo.NewLocalFrame(52, -1.5)
	proj := NewProjector(DefaultECEFConfig(), frame)

	// Constant 40 m/s eastward: the ECEF velocity magnitude matches.
	n := 30
	samples := make([]DynamicsSample, n)
	for i := range samples {
		samples[i] = DynamicsSample{T: float64(i), X: 40 * float64(i), Y: 0, Z: 500, Heading: 90}
	}

	states := proj.Project(samples, 1, 52, -1.5)
	mid := states[n/2]
	v := math.Sqrt(mid.Velocity[0]*mid.Velocity[0] +
		mid.Velocity[1]*mid.Velocity[1] +
		mid.Velocity[2]*mid.Velocity[2])
	assert.InDelta(t, 40.0, v, 0.1)
}

func TestRowLayout(t *testing.T) {
	s := ECEFState{
		X: 1, Y: 2, Z: 3,
		RotVec:   [3]float64{4, 5, 6},
		Velocity: [3]float64{7, 8, 9},
	}
	assert.Equal(t, [9]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, s.Row())
}
