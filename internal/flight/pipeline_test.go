package flight

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.OriginLat = 52.0
	cfg.OriginLon = -1.5
	cfg.TakeoffElevation = 150
	return cfg
}

// flightLog builds a plausible short flight: steady cruise north-east
// with matching altitude channels.
func flightLog(id string, n int) Log {
	fixes := make(FixSeries, n)
	for i := range fixes {
		fixes[i] = Fix{
			T:           36000 + 4*float64(i),
			Lat:         52.0 + 0.0002*float64(i),
			Lon:         -1.5 + 0.0001*float64(i),
			PressureAlt: 150 + float64(i),
			GPSAlt:      150 + float64(i),
		}
	}
	return Log{ID: id, Fixes: fixes}
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Step = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Step = -1
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Calibration = "magic"
	assert.Error(t, bad.Validate())
}

func TestNewPipelineRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Step = 0
	_, err := NewPipeline(cfg)
	assert.Error(t, err)
}

func TestProcessProducesUniformTrajectory(t *testing.T) {
	p, err := NewPipeline(testConfig())
	require.NoError(t, err)

	traj, err := p.Process(flightLog("G-ABCD", 100))
	require.NoError(t, err)

	// 99 intervals of 4 s at a 1 s grid step
	assert.Len(t, traj.States, 99*4+1)
	assert.Equal(t, 36000.0, traj.StartTime)
	assert.Equal(t, 1.0, traj.GridStep)
	assert.Equal(t, "G-ABCD", traj.ID)
}

func TestProcessAllOrderAndSkip(t *testing.T) {
	p, err := NewPipeline(testConfig())
	require.NoError(t, err)

	// The middle log is sparse and must be skipped without aborting the
	// others.
	sparse := flightLog("SPARSE", 50)
	for i := range sparse.Fixes {
		sparse.Fixes[i].T = 36000 + 10*float64(i)
	}

	logs := []Log{flightLog("ONE", 60), sparse, flightLog("TWO", 60)}
	results := p.ProcessAll(logs)
	require.Len(t, results, 3)

	assert.Equal(t, "ONE", results[0].Log.ID)
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Trajectory)

	assert.Equal(t, "SPARSE", results[1].Log.ID)
	assert.True(t, errors.Is(results[1].Err, ErrSparseSampling))

	assert.Equal(t, "TWO", results[2].Log.ID)
	assert.NoError(t, results[2].Err)
}

func TestTrajectoryWindow(t *testing.T) {
	p, err := NewPipeline(testConfig())
	require.NoError(t, err)

	traj, err := p.Process(flightLog("G-ABCD", 100))
	require.NoError(t, err)

	win, err := traj.Window(36010, 20)
	require.NoError(t, err)
	assert.Equal(t, 36010.0, win.StartTime)
	assert.Len(t, win.States, 20)

	// A window outside the grid is an explicit no-data result.
	_, err = traj.Window(1000, 20)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = traj.Window(36010, 1e6)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLoadConfigBadPath(t *testing.T) {
	_, err := LoadConfig("does-not-exist.json")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := t.TempDir() + "/config.json"
	err := os.WriteFile(path, []byte(`{"step": 0.1, "wind_speed_kt": 12.5}`), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, cfg.Step)
	assert.Equal(t, 12.5, cfg.WindSpeedKt)
	// Unnamed keys keep their defaults.
	assert.Equal(t, 48.0, cfg.GeoidHeight)
	assert.Equal(t, CalibrateDeltaSmoothing, cfg.Calibration)
}
