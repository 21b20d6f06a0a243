// Command replay streams a processed replay file to a running
// FlightGear instance over the multiplayer protocol.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ahsparrow/fgfs/internal/replay"
)

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
	log.SetPrefix("replay: ")

	var (
		host  = flag.String("host", "127.0.0.1", "FlightGear host")
		port  = flag.Int("port", replay.DefaultPort, "FlightGear multiplayer port")
		model = flag.String("model", replay.DefaultModel, "aircraft model path")
		rate  = flag.Float64("rate", 1.0, "playback speed multiplier")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: replay [options] fgfs.json\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *rate <= 0 {
		log.Fatal("rate must be positive")
	}

	buf, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	var file replayFile
	if err := json.Unmarshal(buf, &file); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
	if len(file.Logs) == 0 {
		log.Fatal("no trajectories in replay file")
	}

	start, err := time.Parse(time.RFC3339, file.Start)
	if err != nil {
		log.Fatalf("bad start time %q: %v", file.Start, err)
	}
	utcStart := float64(start.Hour()*3600 + start.Minute()*60 + start.Second())

	sender, err := replay.NewSender(fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		log.Fatal(err)
	}
	defer sender.Close()

	samples := 0
	for _, traj := range file.Logs {
		if len(traj.Data) > samples {
			samples = len(traj.Data)
		}
	}
	log.Printf("replaying %d trajectories, %d samples at %.1fx", len(file.Logs), samples, *rate)

	interval := time.Duration(file.TDelta / *rate * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < samples; i++ {
		for _, traj := range file.Logs {
			if i >= len(traj.Data) {
				continue
			}
			row := traj.Data[i]
			msg := replay.Message{
				Callsign: traj.ID,
				Model:    *model,
				Time:     utcStart + float64(i)*file.TDelta,
				Position: [3]float64{row[0], row[1], row[2]},
				Orientation: [3]float32{
					float32(row[3]), float32(row[4]), float32(row[5]),
				},
				Velocity: [3]float32{
					float32(row[6]), float32(row[7]), float32(row[8]),
				},
			}
			if err := sender.Send(&msg); err != nil {
				log.Fatalf("%s: %v", traj.ID, err)
			}
		}
		<-ticker.C
	}
}
