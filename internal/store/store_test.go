package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsparrow/fgfs/internal/prox"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateRunUnique(t *testing.T) {
	s := openTestStore(t)

	a, err := s.CreateRun()
	require.NoError(t, err)
	b, err := s.CreateRun()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSaveAndLoadFlights(t *testing.T) {
	s := openTestStore(t)
	run, err := s.CreateRun()
	require.NoError(t, err)

	summary := FlightSummary{
		FlightID:  "G-ABCD",
		StartTime: 36000,
		GridStep:  0.1,
		Samples:   500,
	}
	require.NoError(t, s.SaveFlight(run, summary))

	flights, err := s.Flights(run)
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "G-ABCD", flights[0].FlightID)
	assert.Equal(t, 36000.0, flights[0].StartTime)
	assert.Equal(t, 0.1, flights[0].GridStep)
	assert.Equal(t, 500, flights[0].Samples)
}

func TestSaveAndLoadEvents(t *testing.T) {
	s := openTestStore(t)
	run, err := s.CreateRun()
	require.NoError(t, err)

	events := []prox.Event{
		{FirstID: "A1", SecondID: "B2", StartTime: 36100, ClosestTime: 36105, MinDistance: 42.5},
		{FirstID: "A1", SecondID: "C3", StartTime: 36000, ClosestTime: 36001, MinDistance: 12.0},
	}
	require.NoError(t, s.SaveEvents(run, events))

	got, err := s.Events(run)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by closest-approach time.
	assert.Equal(t, "C3", got[0].SecondID)
	assert.Equal(t, 12.0, got[0].MinDistance)
	assert.Equal(t, "B2", got[1].SecondID)
}

func TestEventsScopedToRun(t *testing.T) {
	s := openTestStore(t)

	run1, err := s.CreateRun()
	require.NoError(t, err)
	run2, err := s.CreateRun()
	require.NoError(t, err)

	require.NoError(t, s.SaveEvents(run1, []prox.Event{
		{FirstID: "A", SecondID: "B", ClosestTime: 1, MinDistance: 10},
	}))

	got, err := s.Events(run2)
	require.NoError(t, err)
	assert.Empty(t, got)
}
