// Package flight reconstructs a physically plausible 3D trajectory from
// the barometric and GPS fixes of a soaring flight log: altitude fusion,
// resampling onto a uniform clock, wind-corrected dynamics estimation and
// projection into an Earth-centred frame with a per-sample orientation.
package flight

// Fix is one raw log sample: a timestamp in seconds, a geodetic position
// in signed decimal degrees and the two altitude channels in metres.
type Fix struct {
	T           float64
	Lat         float64
	Lon         float64
	PressureAlt float64
	GPSAlt      float64
}

// FixSeries is an ordered sequence of fixes with strictly increasing,
// unique timestamps. The parser guarantees both properties.
type FixSeries []Fix

// Times returns the timestamp channel of the series.
func (s FixSeries) Times() []float64 {
	out := make([]float64, len(s))
	for i, f := range s {
		out[i] = f.T
	}
	return out
}

// MeanPosition returns the mean latitude and longitude of the series.
func (s FixSeries) MeanPosition() (lat, lon float64) {
	if len(s) == 0 {
		return 0, 0
	}
	for _, f := range s {
		lat += f.Lat
		lon += f.Lon
	}
	n := float64(len(s))
	return lat / n, lon / n
}

// LocalSample is a position on the local planar frame: east x, north y
// and altitude z in metres at time t.
type LocalSample struct {
	T, X, Y, Z float64
}

// DynamicsSample extends a local sample with the estimated attitude and
// groundspeed. Heading, bank and pitch are degrees; heading is in
// [0, 360). Speed is metres per second.
type DynamicsSample struct {
	T, X, Y, Z float64

	Heading float64
	Bank    float64
	Pitch   float64
	Speed   float64
}

// ECEFState is the externally consumed record: ECEF position in metres,
// an axis-angle rotation vector and an ECEF velocity in metres per
// second. The nine-value-per-sample layout produced by Row is a binding
// contract for serialisers and replay encoders.
type ECEFState struct {
	X, Y, Z  float64
	RotVec   [3]float64
	Velocity [3]float64
}

// Row returns the state in the fixed nine-value wire order.
func (s ECEFState) Row() [9]float64 {
	return [9]float64{
		s.X, s.Y, s.Z,
		s.RotVec[0], s.RotVec[1], s.RotVec[2],
		s.Velocity[0], s.Velocity[1], s.Velocity[2],
	}
}

// Trajectory is one fully processed flight on the uniform grid. It is
// read-only once produced.
type Trajectory struct {
	ID        string
	StartTime float64 // timestamp of States[0]
	GridStep  float64
	States    []ECEFState
}

// Time returns the timestamp of sample i.
func (t *Trajectory) Time(i int) float64 {
	return t.StartTime + float64(i)*t.GridStep
}
