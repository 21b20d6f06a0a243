// Package dsp provides the small set of signal-processing primitives the
// flight pipeline is built on: a boxcar smoothing filter, phase unwrapping
// and a length-preserving forward difference.
package dsp

import "math"

// Boxcar applies a symmetric moving-average filter of the given window
// length and returns a slice of the same length as the input.
//
// The window is coerced to the nearest odd value >= the request, the
// kernel is a uniform average, and the input is padded on each side by
// replicating the first/last element so the output does not shrink.
// A window <= 1 returns a copy of the input unchanged.
func Boxcar(data []float64, window int) []float64 {
	out := make([]float64, len(data))
	if len(data) == 0 {
		return out
	}

	// Filter length must be odd
	n := (window/2)*2 + 1
	if n <= 1 {
		copy(out, data)
		return out
	}

	half := n / 2

	// Pad data to minimise end effects
	padded := make([]float64, 0, len(data)+2*half)
	for i := 0; i < half; i++ {
		padded = append(padded, data[0])
	}
	padded = append(padded, data...)
	for i := 0; i < half; i++ {
		padded = append(padded, data[len(data)-1])
	}

	scale := 1.0 / float64(n)
	for i := range out {
		var sum float64
		for j := 0; j < n; j++ {
			sum += padded[i+j]
		}
		out[i] = sum * scale
	}
	return out
}

// Unwrap removes +/- pi discontinuities from a sequence of angles in
// radians, producing a continuous phase signal.
func Unwrap(angles []float64) []float64 {
	out := make([]float64, len(angles))
	if len(angles) == 0 {
		return out
	}

	out[0] = angles[0]
	offset := 0.0
	for i := 1; i < len(angles); i++ {
		d := angles[i] - angles[i-1]
		if d > math.Pi {
			offset -= 2 * math.Pi
		} else if d < -math.Pi {
			offset += 2 * math.Pi
		}
		out[i] = angles[i] + offset
	}
	return out
}

// Diff returns the forward difference of data, padded at the final index
// by repeating the last computed value so the output has the same length
// as the input. A single-element input yields a zero difference.
func Diff(data []float64) []float64 {
	out := make([]float64, len(data))
	if len(data) < 2 {
		return out
	}

	for i := 0; i < len(data)-1; i++ {
		out[i] = data[i+1] - data[i]
	}
	out[len(data)-1] = out[len(data)-2]
	return out
}

// Mod360 maps an angle in degrees onto [0, 360).
func Mod360(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}
