// Package prox detects close-approach events between simultaneously
// airborne trajectories and computes the gaggle convergence statistic.
package prox

import (
	"fmt"
	"math"
	"sync"

	"github.com/ahsparrow/fgfs/internal/dsp"
	"github.com/ahsparrow/fgfs/internal/flight"
	"github.com/ahsparrow/fgfs/internal/units"
)

// Mode selects how trajectory pairs are enumerated.
type Mode int

const (
	// Symmetric evaluates each unordered pair once.
	Symmetric Mode = iota

	// Directional evaluates ordered pairs, so each pair is reported
	// twice, once in each direction.
	Directional
)

// Config holds the detector parameters.
type Config struct {
	// Threshold is the near-miss separation in metres.
	Threshold float64

	// MinSpeedKt excludes parked, towed and stationary samples that
	// would otherwise read as near misses on the ground.
	MinSpeedKt float64

	// SpeedSmoothing is the window in seconds for the speed estimate
	// used by the airborne filter.
	SpeedSmoothing float64

	// GaggleBin is the histogram bin width in seconds.
	GaggleBin float64

	Mode    Mode
	Workers int
}

// DefaultConfig returns the production detector parameters. Threshold
// must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		MinSpeedKt:     10,
		SpeedSmoothing: 3,
		GaggleBin:      300,
		Mode:           Symmetric,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("near-miss threshold must be positive, got %v", c.Threshold)
	}
	if c.GaggleBin <= 0 {
		return fmt.Errorf("gaggle bin width must be positive, got %v", c.GaggleBin)
	}
	return nil
}

// Track is one finished trajectory on a uniform grid with absolute
// timestamps preserved.
type Track struct {
	ID      string
	Step    float64
	Samples []flight.LocalSample
}

// Event is one discrete close-approach encounter between two
// trajectories.
type Event struct {
	FirstID     string
	SecondID    string
	StartTime   float64 // timestamp of the first sub-threshold sample
	ClosestTime float64 // timestamp at minimum separation
	MinDistance float64 // metres
}

// Histogram is the gaggle convergence statistic: counts of
// sub-threshold samples per fixed-width time bin.
type Histogram struct {
	Start    float64
	BinWidth float64
	Counts   []int
}

// Detector finds near-miss events across a set of trajectories.
type Detector struct {
	cfg Config
}

// NewDetector validates the configuration and creates a detector.
func NewDetector(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{cfg: cfg}, nil
}

// Detect evaluates every trajectory pair and returns the events in
// deterministic order: by pair, in enumeration order, then by time.
// Pair evaluations are independent and run concurrently.
func (d *Detector) Detect(tracks []Track) []Event {
	pairs := d.pairs(len(tracks))
	perPair := make([][]Event, len(pairs))

	workers := d.cfg.Workers
	if workers <= 0 {
		workers = len(pairs)
	}
	if workers == 0 {
		return nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range jobs {
				perPair[k] = d.detectPair(tracks[pairs[k][0]], tracks[pairs[k][1]])
			}
		}()
	}
	for k := range pairs {
		jobs <- k
	}
	close(jobs)
	wg.Wait()

	var events []Event
	for _, evs := range perPair {
		events = append(events, evs...)
	}
	return events
}

func (d *Detector) pairs(n int) [][2]int {
	var out [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, [2]int{i, j})
			if d.cfg.Mode == Directional {
				out = append(out, [2]int{j, i})
			}
		}
	}
	return out
}

// detectPair finds the encounter events between two trajectories. Zero
// common timestamps means zero events, not an error.
func (d *Detector) detectPair(a, b Track) []Event {
	fa := d.airborne(a)
	fb := d.airborne(b)

	times, da, db := intersect(fa, fb)

	var events []Event
	var cur []int // indices into times of the current flagged run

	flush := func() {
		if len(cur) == 0 {
			return
		}
		ev := Event{
			FirstID:     a.ID,
			SecondID:    b.ID,
			StartTime:   times[cur[0]],
			MinDistance: math.Inf(1),
		}
		for _, i := range cur {
			dist := distance(da[i], db[i])
			if dist < ev.MinDistance {
				ev.MinDistance = dist
				ev.ClosestTime = times[i]
			}
		}
		events = append(events, ev)
		cur = cur[:0]
	}

	prev := -2
	for i := range times {
		if distance(da[i], db[i]) >= d.cfg.Threshold {
			continue
		}
		// A gap in flagged indices starts a new event.
		if i != prev+1 {
			flush()
		}
		cur = append(cur, i)
		prev = i
	}
	flush()

	return events
}

// airborne filters a track to samples above the minimum groundspeed.
func (d *Detector) airborne(t Track) []flight.LocalSample {
	n := len(t.Samples)
	if n == 0 {
		return nil
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, s := range t.Samples {
		xs[i] = s.X
		ys[i] = s.Y
	}

	window := int(d.cfg.SpeedSmoothing / t.Step)
	vx := dsp.Boxcar(rate(xs, t.Step), window)
	vy := dsp.Boxcar(rate(ys, t.Step), window)

	minSpeed := units.KnotsToMPS(d.cfg.MinSpeedKt)
	var out []flight.LocalSample
	for i, s := range t.Samples {
		if math.Hypot(vx[i], vy[i]) > minSpeed {
			out = append(out, s)
		}
	}
	return out
}

func rate(xs []float64, dt float64) []float64 {
	d := dsp.Diff(xs)
	for i := range d {
		d[i] /= dt
	}
	return d
}

// intersect returns the exactly matching timestamps of two filtered
// tracks and the corresponding samples from each.
func intersect(a, b []flight.LocalSample) (times []float64, da, db []flight.LocalSample) {
	byTime := make(map[int64]flight.LocalSample, len(b))
	for _, s := range b {
		byTime[timeKey(s.T)] = s
	}

	for _, s := range a {
		if o, ok := byTime[timeKey(s.T)]; ok {
			times = append(times, s.T)
			da = append(da, s)
			db = append(db, o)
		}
	}
	return times, da, db
}

// timeKey quantises a timestamp to milliseconds so grid-aligned floats
// compare exactly.
func timeKey(t float64) int64 {
	return int64(math.Round(t * 1000))
}

func distance(a, b flight.LocalSample) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Gaggle collects every sub-threshold timestamp across all unordered
// pairs into a fixed-width time histogram. It is a convergence density
// statistic, not a detection.
func (d *Detector) Gaggle(tracks []Track) Histogram {
	filtered := make([][]flight.LocalSample, len(tracks))
	for i, t := range tracks {
		filtered[i] = d.airborne(t)
	}

	var hits []float64
	for i := 0; i < len(tracks); i++ {
		for j := i + 1; j < len(tracks); j++ {
			times, da, db := intersect(filtered[i], filtered[j])
			for k, t := range times {
				if distance(da[k], db[k]) < d.cfg.Threshold {
					hits = append(hits, t)
				}
			}
		}
	}

	if len(hits) == 0 {
		return Histogram{BinWidth: d.cfg.GaggleBin}
	}

	minT, maxT := hits[0], hits[0]
	for _, t := range hits {
		minT = math.Min(minT, t)
		maxT = math.Max(maxT, t)
	}

	start := math.Floor(minT/d.cfg.GaggleBin) * d.cfg.GaggleBin
	nBins := int((maxT-start)/d.cfg.GaggleBin) + 1
	counts := make([]int, nBins)
	for _, t := range hits {
		counts[int((t-start)/d.cfg.GaggleBin)]++
	}

	return Histogram{Start: start, BinWidth: d.cfg.GaggleBin, Counts: counts}
}
