// Command prox scans a set of IGC logs for close-approach events and
// reports them, optionally persisting the run and writing a gaggle
// convergence page.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ahsparrow/fgfs/internal/flight"
	"github.com/ahsparrow/fgfs/internal/igc"
	"github.com/ahsparrow/fgfs/internal/prox"
	"github.com/ahsparrow/fgfs/internal/report"
	"github.com/ahsparrow/fgfs/internal/store"
)

const leadingFixes = 5

func main() {
	log.SetFlags(0)
	log.SetPrefix("prox: ")

	var (
		geoid      = flag.Float64("g", 48.0, "geoid height in metres")
		minSpeed   = flag.Float64("m", 10, "airborne speed threshold in knots")
		directed   = flag.Bool("d", false, "report each pair in both directions")
		gagglePath = flag.String("gaggle", "", "write gaggle histogram HTML to this file")
		dbPath     = flag.String("db", "", "persist the run to this SQLite database")
		showRun    = flag.String("show", "", "print a stored run and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: prox [options] elevation distance file.igc...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showRun != "" {
		if *dbPath == "" {
			log.Fatal("-show requires -db")
		}
		show(*dbPath, *showRun)
		return
	}

	if flag.NArg() < 3 {
		flag.Usage()
		os.Exit(2)
	}
	elevation, err := strconv.ParseFloat(flag.Arg(0), 64)
	if err != nil {
		log.Fatalf("bad elevation %q: %v", flag.Arg(0), err)
	}
	threshold, err := strconv.ParseFloat(flag.Arg(1), 64)
	if err != nil {
		log.Fatalf("bad distance %q: %v", flag.Arg(1), err)
	}

	logs := loadLogs(flag.Args()[2:])

	cfg := flight.DefaultConfig()
	cfg.TakeoffElevation = elevation
	cfg.GeoidHeight = *geoid
	cfg.OriginLat, cfg.OriginLon = logs[0].Fixes.MeanPosition()

	pipeline, err := flight.NewPipeline(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Proximity works on the local-frame track; the attitude and ECEF
	// stages are not needed here.
	var tracks []prox.Track
	for _, lg := range logs {
		samples, err := pipeline.Resample(lg)
		if err != nil {
			log.Printf("%s: skipped: %v", lg.ID, err)
			continue
		}
		tracks = append(tracks, prox.Track{ID: lg.ID, Step: cfg.Step, Samples: samples})
	}
	if len(tracks) < 2 {
		log.Fatal("need at least two usable logs")
	}

	proxCfg := prox.DefaultConfig()
	proxCfg.Threshold = threshold
	proxCfg.MinSpeedKt = *minSpeed
	if *directed {
		proxCfg.Mode = prox.Directional
	}
	detector, err := prox.NewDetector(proxCfg)
	if err != nil {
		log.Fatal(err)
	}

	events := detector.Detect(tracks)
	for _, ev := range events {
		fmt.Printf("%s %s/%s %.0f m\n",
			clock(ev.ClosestTime), ev.FirstID, ev.SecondID, ev.MinDistance)
	}
	log.Printf("%d events across %d tracks", len(events), len(tracks))

	if *gagglePath != "" {
		hist := detector.Gaggle(tracks)
		if err := report.WriteGagglePage(*gagglePath, hist); err != nil {
			log.Fatal(err)
		}
	}

	if *dbPath != "" {
		persist(*dbPath, tracks, events)
	}
}

func loadLogs(paths []string) []flight.Log {
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
		logs = append(logs, flight.Log{
			ID:    hdr.Ident(),
			Fixes: igc.DiscardLeading(fixes, leadingFixes),
		})
	}
	return logs
}

func persist(path string, tracks []prox.Track, events []prox.Event) {
	db, err := store.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	runID, err := db.CreateRun()
	if err != nil {
		log.Fatal(err)
	}
	for _, tr := range tracks {
		summary := store.FlightSummary{
			FlightID:  tr.ID,
			StartTime: tr.Samples[0].T,
			GridStep:  tr.Step,
			Samples:   len(tr.Samples),
		}
		if err := db.SaveFlight(runID, summary); err != nil {
			log.Fatal(err)
		}
	}
	if err := db.SaveEvents(runID, events); err != nil {
		log.Fatal(err)
	}
	log.Printf("saved run %s: %d flights, %d events", runID, len(tracks), len(events))
}

// show prints the flights and events stored for a run.
func show(path, runID string) {
	db, err := store.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	flights, err := db.Flights(runID)
	if err != nil {
		log.Fatal(err)
	}
	for _, f := range flights {
		fmt.Printf("%-8s start %s  %d samples at %.1f s\n",
			f.FlightID, clock(f.StartTime), f.Samples, f.GridStep)
	}

	events, err := db.Events(runID)
	if err != nil {
		log.Fatal(err)
	}
	for _, ev := range events {
		fmt.Printf("%s %s/%s %.0f m\n",
			clock(ev.ClosestTime), ev.FirstID, ev.SecondID, ev.MinDistance)
	}
	log.Printf("run %s: %d flights, %d events", runID, len(flights), len(events))
}

func clock(t float64) string {
	secs := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}
