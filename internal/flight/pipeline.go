package flight

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/ahsparrow/fgfs/internal/geo"
	"github.com/ahsparrow/fgfs/internal/units"
)

// Log is one flight log ready for processing.
type Log struct {
	ID    string
	Fixes FixSeries
}

// Result pairs a processed trajectory with the error that stopped it,
// in the same order the logs were submitted.
type Result struct {
	Log        Log
	Trajectory *Trajectory
	Err        error
}

// Pipeline runs a flight log through altitude fusion, resampling,
// dynamics estimation and ECEF projection. One pipeline serves a whole
// run; all logs share its local frame so their trajectories are
// directly comparable.
type Pipeline struct {
	cfg       Config
	frame     *geo.LocalFrame
	fuser     *Fuser
	resampler *Resampler
	estimator *Estimator
	projector *Projector
}

// NewPipeline validates the configuration and builds the run's
// components. The configured origin anchors the shared local frame.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	frame := geo.NewLocalFrame(cfg.OriginLat, cfg.OriginLon)

	fuserCfg := DefaultFuserConfig()
	fuserCfg.Strategy = cfg.Calibration

	dynCfg := DefaultDynamicsConfig()
	dynCfg.WindSpeed = units.KnotsToMPS(cfg.WindSpeedKt)
	dynCfg.WindDirection = units.DegToRad(cfg.WindDirectionDeg)

	return &Pipeline{
		cfg:       cfg,
		frame:     frame,
		fuser:     NewFuser(fuserCfg),
		resampler: NewResampler(frame, cfg.Step),
		estimator: NewEstimator(dynCfg),
		projector: NewProjector(DefaultECEFConfig(), frame),
	}, nil
}

// Frame returns the run's shared local frame.
func (p *Pipeline) Frame() *geo.LocalFrame {
	return p.frame
}

// FusedAltitude runs a log through altitude fusion and datum
// resolution, returning one altitude per raw fix. The diagnostic plots
// use it to compare the output against the raw channels.
func (p *Pipeline) FusedAltitude(lg Log) ([]float64, error) {
	fixes := lg.Fixes
	if len(fixes) < 2 {
		return nil, ErrTooShort
	}

	times := fixes.Times()
	pressure := make([]float64, len(fixes))
	gps := make([]float64, len(fixes))
	for i, f := range fixes {
		pressure[i] = f.PressureAlt
		gps[i] = f.GPSAlt
	}

	fused, err := p.fuser.Fuse(times, pressure, gps)
	if err != nil {
		return nil, err
	}

	alt, residual := p.fuser.ResolveDatum(fused, gps, p.cfg.TakeoffElevation, p.cfg.GeoidHeight)
	if residual > DefaultFuserConfig().MaxDatumError {
		log.Printf("%s: takeoff elevation error exceeds %.0f m: %.1f m",
			lg.ID, DefaultFuserConfig().MaxDatumError, residual)
	}
	return alt, nil
}

// Resample runs a log through altitude fusion and resampling only,
// producing uniform-grid local samples. This is the input the proximity
// detector works on.
func (p *Pipeline) Resample(lg Log) ([]LocalSample, error) {
	alt, err := p.FusedAltitude(lg)
	if err != nil {
		return nil, err
	}
	return p.resampler.Resample(lg.Fixes, alt)
}

// Dynamics runs the estimator over resampled local samples, exposing
// the wind-corrected track for diagnostics.
func (p *Pipeline) Dynamics(local []LocalSample) []DynamicsSample {
	return p.estimator.Estimate(local, p.cfg.Step)
}

// Process runs a log through the full pipeline to an ECEF trajectory.
func (p *Pipeline) Process(lg Log) (*Trajectory, error) {
	local, err := p.Resample(lg)
	if err != nil {
		return nil, err
	}

	dyn := p.Dynamics(local)

	anchorLat, anchorLon := lg.Fixes.MeanPosition()
	states := p.projector.Project(dyn, p.cfg.Step, anchorLat, anchorLon)

	return &Trajectory{
		ID:        lg.ID,
		StartTime: local[0].T,
		GridStep:  p.cfg.Step,
		States:    states,
	}, nil
}

// ProcessAll processes the logs concurrently, one worker per CPU unless
// configured otherwise. Logs are independent so this stage shares no
// mutable state; results come back in submission order.
func (p *Pipeline) ProcessAll(logs []Log) []Result {
	results := make([]Result, len(logs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.cfg.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				traj, err := p.Process(logs[i])
				results[i] = Result{Log: logs[i], Trajectory: traj, Err: err}
			}
		}()
	}
	for i := range logs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// Window extracts the sub-range of the trajectory between the absolute
// start time and start+duration. Returns ErrNoData if either bound
// falls outside the grid.
func (t *Trajectory) Window(start, duration float64) (*Trajectory, error) {
	n, err := t.gridIndex(start)
	if err != nil {
		return nil, err
	}
	m, err := t.gridIndex(start + duration)
	if err != nil {
		return nil, err
	}

	return &Trajectory{
		ID:        t.ID,
		StartTime: t.Time(n),
		GridStep:  t.GridStep,
		States:    t.States[n:m],
	}, nil
}

func (t *Trajectory) gridIndex(tm float64) (int, error) {
	i := int(math.Round((tm - t.StartTime) / t.GridStep))
	if i < 0 || i >= len(t.States) {
		return 0, fmt.Errorf("%w: t=%v", ErrNoData, tm)
	}
	if math.Abs(t.Time(i)-tm) > t.GridStep/2 {
		return 0, fmt.Errorf("%w: t=%v off grid", ErrNoData, tm)
	}
	return i, nil
}
