package flight

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// Config is the single explicit configuration record for a pipeline
// run. There is no hidden process-wide state: every component receives
// its parameters from here.
type Config struct {
	// Step is the uniform resample interval in seconds.
	Step float64 `json:"step"`

	// OriginLat/OriginLon anchor the local planar frame shared by all
	// logs in the run, in degrees. When both are zero the caller is
	// expected to derive an anchor from the first log before building
	// the pipeline.
	OriginLat float64 `json:"origin_lat"`
	OriginLon float64 `json:"origin_lon"`

	// Wind field, constant over the whole run.
	WindSpeedKt      float64 `json:"wind_speed_kt"`
	WindDirectionDeg float64 `json:"wind_direction_deg"`

	// GeoidHeight is the local geoid-ellipsoid separation in metres.
	GeoidHeight float64 `json:"geoid_height"`

	// TakeoffElevation is the known ground elevation at the launch
	// point in metres, used to resolve the altitude datum.
	TakeoffElevation float64 `json:"takeoff_elevation"`

	// Calibration selects the altitude fusion strategy.
	Calibration CalibrationStrategy `json:"calibration"`

	// Workers bounds the number of logs processed concurrently.
	// Zero means one worker per CPU.
	Workers int `json:"workers"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Step:        1.0,
		GeoidHeight: 48.0,
		Calibration: CalibrateDeltaSmoothing,
	}
}

// Validate checks the configuration before any per-log work begins.
// A malformed configuration is the one fatal condition in the core.
func (c Config) Validate() error {
	if c.Step <= 0 {
		return fmt.Errorf("resample step must be positive, got %v", c.Step)
	}
	if c.Calibration != CalibrateDeltaSmoothing && c.Calibration != CalibrateBinned {
		return fmt.Errorf("unknown calibration strategy %q", c.Calibration)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// LoadConfig reads a JSON configuration file over the defaults, so a
// partial file overrides only the keys it names.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
