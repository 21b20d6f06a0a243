package geo

import (
	"math"
	"testing"
)

func TestGeodeticToECEFKnownPoints(t *testing.T) {
	// Equator/prime meridian at zero height lies on the +X axis at the
	// semi-major axis.
	p := GeodeticToECEF(0, 0, 0)
	if math.Abs(p.X-SemiMajorAxis) > 1e-6 || math.Abs(p.Y) > 1e-6 || math.Abs(p.Z) > 1e-6 {
		t.Errorf("equator point: got %+v", p)
	}

	// North pole: X = Y = 0, Z = semi-minor axis.
	b := SemiMajorAxis * (1 - Flattening)
	p = GeodeticToECEF(90, 0, 0)
	if math.Abs(p.X) > 1e-6 || math.Abs(p.Y) > 1e-6 || math.Abs(p.Z-b) > 1e-3 {
		t.Errorf("north pole: got %+v, want Z=%v", p, b)
	}

	// Height adds along the surface normal: at the equator, along +X.
	p = GeodeticToECEF(0, 0, 1000)
	if math.Abs(p.X-(SemiMajorAxis+1000)) > 1e-6 {
		t.Errorf("equator at 1000 m: got X=%v", p.X)
	}
}

func TestLocalFrameRoundTrip(t *testing.T) {
	f := NewLocalFrame(52.0, -1.5)

	cases := []struct{ lat, lon float64 }{
		{52.0, -1.5},
		{52.1, -1.4},
		{51.9, -1.7},
		{52.05, -1.55},
	}
	for _, c := range cases {
		x, y := f.Project(c.lat, c.lon)
		lat, lon := f.Unproject(x, y)
		if math.Abs(lat-c.lat) > 1e-9 || math.Abs(lon-c.lon) > 1e-9 {
			t.Errorf("round trip (%v,%v): got (%v,%v)", c.lat, c.lon, lat, lon)
		}
	}
}

func TestLocalFrameAxes(t *testing.T) {
	f := NewLocalFrame(52.0, -1.5)

	// A point due north of the origin has x ~ 0, y > 0.
	x, y := f.Project(52.1, -1.5)
	if math.Abs(x) > 1e-9 || y <= 0 {
		t.Errorf("north displacement: got x=%v y=%v", x, y)
	}

	// A point due east has y ~ 0, x > 0.
	x, y = f.Project(52.0, -1.4)
	if math.Abs(y) > 1e-9 || x <= 0 {
		t.Errorf("east displacement: got x=%v y=%v", x, y)
	}

	// One degree of latitude at 52N is roughly 111 km.
	_, y = f.Project(53.0, -1.5)
	if y < 110e3 || y > 112e3 {
		t.Errorf("one degree north = %v m, want ~111 km", y)
	}
}

func TestLocalFrameToECEFConsistency(t *testing.T) {
	f := NewLocalFrame(52.0, -1.5)

	// The frame origin at height h must convert to the same ECEF point
	// as a direct geodetic conversion.
	got := f.ToECEF(0, 0, 150)
	want := GeodeticToECEF(52.0, -1.5, 150)
	if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 || math.Abs(got.Z-want.Z) > 1e-6 {
		t.Errorf("origin ECEF: got %+v, want %+v", got, want)
	}
}
