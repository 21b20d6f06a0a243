package geo

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ahsparrow/fgfs/internal/units"
)

// Rotation helpers used to compose the replay orientation. Attitudes are
// 3x3 matrices whose rows are the body basis vectors expressed in the
// target frame; applying a rotation R to an attitude A rotates each row,
// giving A * R^T.

// EulerZYX builds the rotation matrix for an intrinsic z-y-x Euler
// sequence: yaw about z, then pitch about y, then roll about x, all in
// degrees. The result is Rz(yaw) * Ry(pitch) * Rx(roll).
func EulerZYX(yawDeg, pitchDeg, rollDeg float64) *mat.Dense {
	cz := math.Cos(units.DegToRad(yawDeg))
	sz := math.Sin(units.DegToRad(yawDeg))
	cy := math.Cos(units.DegToRad(pitchDeg))
	sy := math.Sin(units.DegToRad(pitchDeg))
	cx := math.Cos(units.DegToRad(rollDeg))
	sx := math.Sin(units.DegToRad(rollDeg))

	rz := mat.NewDense(3, 3, []float64{
		cz, -sz, 0,
		sz, cz, 0,
		0, 0, 1,
	})
	ry := mat.NewDense(3, 3, []float64{
		cy, 0, sy,
		0, 1, 0,
		-sy, 0, cy,
	})
	rx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, cx, -sx,
		0, sx, cx,
	})

	var zy, zyx mat.Dense
	zy.Mul(rz, ry)
	zyx.Mul(&zy, rx)
	return mat.DenseCopyOf(&zyx)
}

// Identity returns the identity attitude.
func Identity() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// Apply rotates every row vector of attitude by rot, returning the new
// attitude A * R^T.
func Apply(rot, attitude *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(attitude, rot.T())
	return mat.DenseCopyOf(&out)
}

// RotVec converts a rotation matrix to its axis-angle rotation vector:
// the vector is co-directional with the rotation axis and its norm is
// the rotation angle in radians.
func RotVec(m *mat.Dense) [3]float64 {
	// Matrix to quaternion, branching on the largest component to stay
	// numerically stable near 180 degree rotations.
	m00, m01, m02 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m10, m11, m12 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	m20, m21, m22 := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	var w, x, y, z float64
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 2 * math.Sqrt(trace+1)
		w = s / 4
		x = (m21 - m12) / s
		y = (m02 - m20) / s
		z = (m10 - m01) / s
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		w = (m21 - m12) / s
		x = s / 4
		y = (m01 + m10) / s
		z = (m02 + m20) / s
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		w = (m02 - m20) / s
		x = (m01 + m10) / s
		y = s / 4
		z = (m12 + m21) / s
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		w = (m10 - m01) / s
		x = (m02 + m20) / s
		y = (m12 + m21) / s
		z = s / 4
	}

	// Canonical form, angle in [0, pi]
	if w < 0 {
		w, x, y, z = -w, -x, -y, -z
	}

	norm := math.Sqrt(x*x + y*y + z*z)
	if norm < 1e-12 {
		// Small angle: rotvec ~= 2 * vector part
		return [3]float64{2 * x, 2 * y, 2 * z}
	}

	angle := 2 * math.Atan2(norm, w)
	scale := angle / norm
	return [3]float64{x * scale, y * scale, z * scale}
}
