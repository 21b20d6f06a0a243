// Command fgfs reconstructs replayable trajectories from IGC flight
// logs and writes them as a JSON replay file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ahsparrow/fgfs/internal/flight"
	"github.com/ahsparrow/fgfs/internal/igc"
	"github.com/ahsparrow/fgfs/internal/report"
)

// leadingFixes is the number of fixes dropped from the head of every
// log while the logger acquires satellites.
const leadingFixes = 5

type replayFile struct {
	Start  string       `json:"start"`
	TDelta float64      `json:"tdelta"`
	IDs    []string     `json:"ids"`
	Logs   []replayTraj `json:"logs"`
}

type replayTraj struct {
	ID   string       `json:"id"`
	Data [][9]float64 `json:"data"`
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("fgfs: ")

	var (
		configPath = flag.String("c", "", "JSON configuration file")
		outPath    = flag.String("f", "fgfs.json", "output replay file")
		startStr   = flag.String("s", "", "window start time, HHMMSS UTC")
		duration   = flag.Float64("t", 0, "window duration in seconds")
		windDir    = flag.Float64("w", 0, "wind direction in degrees")
		windSpeed  = flag.Float64("v", 0, "wind speed in knots")
		geoid      = flag.Float64("g", 48.0, "geoid height in metres")
		diagDir    = flag.String("diag", "", "write diagnostic plots to this directory")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: fgfs [options] elevation file.igc...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(2)
	}
	elevation, err := strconv.ParseFloat(flag.Arg(0), 64)
	if err != nil {
		log.Fatalf("bad elevation %q: %v", flag.Arg(0), err)
	}

	cfg := flight.DefaultConfig()
	if *configPath != "" {
		cfg, err = flight.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	cfg.TakeoffElevation = elevation

	// Flags override the config file only when given on the command
	// line.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "w":
			cfg.WindDirectionDeg = *windDir
		case "v":
			cfg.WindSpeedKt = *windSpeed
		case "g":
			cfg.GeoidHeight = *geoid
		}
	})

	headers, logs := loadLogs(flag.Args()[1:])

	// An unset origin anchors the shared frame at the first log.
	if cfg.OriginLat == 0 && cfg.OriginLon == 0 {
		cfg.OriginLat, cfg.OriginLon = logs[0].Fixes.MeanPosition()
	}

	pipeline, err := flight.NewPipeline(cfg)
	if err != nil {
		log.Fatal(err)
	}

	var trajectories []*flight.Trajectory
	for _, res := range pipeline.ProcessAll(logs) {
		if res.Err != nil {
			log.Printf("%s: skipped: %v", res.Log.ID, res.Err)
			continue
		}
		trajectories = append(trajectories, res.Trajectory)
	}
	if len(trajectories) == 0 {
		log.Fatal("no usable logs")
	}

	if *startStr != "" {
		start, err := parseClock(*startStr)
		if err != nil {
			log.Fatal(err)
		}
		if *duration <= 0 {
			log.Fatal("window start requires a positive -t duration")
		}
		trajectories = window(trajectories, start, *duration)
		if len(trajectories) == 0 {
			log.Fatal("no data in requested window")
		}
	}

	if *diagDir != "" {
		writeDiagnostics(*diagDir, pipeline, logs)
	}

	out := replayFile{
		Start:  startISO(headers[0].Date, trajectories[0].StartTime),
		TDelta: cfg.Step,
	}
	for _, traj := range trajectories {
		rt := replayTraj{ID: traj.ID, Data: make([][9]float64, len(traj.States))}
		for i, s := range traj.States {
			rt.Data[i] = s.Row()
		}
		out.IDs = append(out.IDs, traj.ID)
		out.Logs = append(out.Logs, rt)
	}

	buf, err := json.Marshal(out)
	if err != nil {
		log.Fatalf("encode replay: %v", err)
	}
	if err := os.WriteFile(*outPath, buf, 0o644); err != nil {
		log.Fatalf("write %s: %v", *outPath, err)
	}
	log.Printf("wrote %d trajectories to %s", len(out.Logs), *outPath)
}

// loadLogs parses each IGC file and drops the leading acquisition
// fixes. A file that fails to parse is fatal; a bad path on the command
// line is an operator error, not a data problem.
func loadLogs(paths []string) ([]*igc.Header, []flight.Log) {
	headers := make([]*igc.Header, 0, len(paths))
	logs := make([]flight.Log, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal(err)
		}
		hdr, fixes, err := igc.Parse(f)
		f.Close()
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		headers = append(headers, hdr)
		logs = append(logs, flight.Log{
			ID:    hdr.Ident(),
			Fixes: igc.DiscardLeading(fixes, leadingFixes),
		})
	}
	return headers, logs
}

// window clips every trajectory to the common interval, dropping any
// log with no data there.
func window(trajectories []*flight.Trajectory, start, duration float64) []*flight.Trajectory {
	out := trajectories[:0]
	for _, traj := range trajectories {
		w, err := traj.Window(start, duration)
		if err != nil {
			log.Printf("%s: %v", traj.ID, err)
			continue
		}
		out = append(out, w)
	}
	return out
}

// parseClock converts an HHMMSS string to seconds since midnight.
func parseClock(s string) (float64, error) {
	if len(s) != 6 {
		return 0, fmt.Errorf("bad time %q: want HHMMSS", s)
	}
	h, err1 := strconv.Atoi(s[0:2])
	m, err2 := strconv.Atoi(s[2:4])
	sec, err3 := strconv.Atoi(s[4:6])
	if err1 != nil || err2 != nil || err3 != nil || h > 23 || m > 59 || sec > 59 {
		return 0, fmt.Errorf("bad time %q: want HHMMSS", s)
	}
	return float64(h*3600 + m*60 + sec), nil
}

// startISO combines the IGC header date (ddmmyy) with a seconds-since-
// midnight offset into an RFC 3339 UTC timestamp.
func startISO(date string, seconds float64) string {
	base := time.Now().UTC().Truncate(24 * time.Hour)
	if len(date) == 6 {
		d, err1 := strconv.Atoi(date[0:2])
		m, err2 := strconv.Atoi(date[2:4])
		y, err3 := strconv.Atoi(date[4:6])
		if err1 == nil && err2 == nil && err3 == nil {
			base = time.Date(2000+y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
		}
	}
	return base.Add(time.Duration(seconds * float64(time.Second))).Format(time.RFC3339)
}

func writeDiagnostics(dir string, pipeline *flight.Pipeline, logs []flight.Log) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatalf("diag dir: %v", err)
	}
	for _, lg := range logs {
		fused, err := pipeline.FusedAltitude(lg)
		if err != nil {
			log.Printf("%s: diag skipped: %v", lg.ID, err)
			continue
		}
		path := filepath.Join(dir, lg.ID+"-altitude.png")
		if err := report.PlotAltitude(path, lg.Fixes, fused); err != nil {
			log.Printf("%s: %v", lg.ID, err)
		}

		local, err := pipeline.Resample(lg)
		if err != nil {
			continue
		}
		dyn := pipeline.Dynamics(local)
		corrected := make([]flight.LocalSample, len(dyn))
		for i, d := range dyn {
			corrected[i] = flight.LocalSample{T: d.T, X: d.X, Y: d.Y, Z: d.Z}
		}
		path = filepath.Join(dir, lg.ID+"-track.png")
		if err := report.PlotTrack(path, local, corrected); err != nil {
			log.Printf("%s: %v", lg.ID, err)
		}
	}
}
