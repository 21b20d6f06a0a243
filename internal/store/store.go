// Package store persists processed flights and near-miss events to
// SQLite so runs can be compared and reported on later.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ahsparrow/fgfs/internal/prox"
)

// Store wraps the run database.
type Store struct {
	*sql.DB
}

// Open opens (creating if necessary) the run database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS flights (
			run_id TEXT,
			flight_id TEXT,
			start_time DOUBLE,
			grid_step DOUBLE,
			samples INTEGER,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS events (
			run_id TEXT,
			first_id TEXT,
			second_id TEXT,
			start_time DOUBLE,
			closest_time DOUBLE,
			min_distance DOUBLE,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db}, nil
}

// CreateRun registers a new run and returns its id.
func (s *Store) CreateRun() (string, error) {
	id := uuid.NewString()
	_, err := s.Exec("INSERT INTO runs (run_id) VALUES (?)", id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// SaveFlight records the summary of one processed flight.
func (s *Store) SaveFlight(runID string, f FlightSummary) error {
	_, err := s.Exec(
		"INSERT INTO flights (run_id, flight_id, start_time, grid_step, samples) VALUES (?, ?, ?, ?, ?)",
		runID, f.FlightID, f.StartTime, f.GridStep, f.Samples)
	return err
}

// SaveEvents records the near-miss events of a run.
func (s *Store) SaveEvents(runID string, events []prox.Event) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO events (run_id, first_id, second_id, start_time, closest_time, min_distance) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(runID, ev.FirstID, ev.SecondID, ev.StartTime, ev.ClosestTime, ev.MinDistance); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Events returns the near-miss events recorded for a run, ordered by
// closest-approach time.
func (s *Store) Events(runID string) ([]prox.Event, error) {
	rows, err := s.Query(
		"SELECT first_id, second_id, start_time, closest_time, min_distance FROM events WHERE run_id = ? ORDER BY closest_time",
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []prox.Event
	for rows.Next() {
		var ev prox.Event
		if err := rows.Scan(&ev.FirstID, &ev.SecondID, &ev.StartTime, &ev.ClosestTime, &ev.MinDistance); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// FlightSummary is one row of the flights table.
type FlightSummary struct {
	FlightID  string
	StartTime float64
	GridStep  float64
	Samples   int
	Created   time.Time
}

// Flights returns the flight summaries recorded for a run.
func (s *Store) Flights(runID string) ([]FlightSummary, error) {
	rows, err := s.Query(
		"SELECT flight_id, start_time, grid_step, samples FROM flights WHERE run_id = ? ORDER BY flight_id",
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []FlightSummary
	for rows.Next() {
		var f FlightSummary
		if err := rows.Scan(&f.FlightID, &f.StartTime, &f.GridStep, &f.Samples); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}
