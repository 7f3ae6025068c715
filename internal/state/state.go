// Package state persists rotation history: every task switch and every
// completed work session, queryable for status output and summaries.
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mxtrix/Happy-Little-Taverley/internal/db"
)

// State records and queries rotation history in the session store.
type State struct {
	db *db.DB
}

// SwitchRecord is one recorded rotation attempt.
type SwitchRecord struct {
	At       time.Time
	FromTask string
	ToTask   string
	Reason   string // "next", "random", "manual"
	OK       bool
}

// TaskTotal is the accumulated work time for one task.
type TaskTotal struct {
	Task     string
	Sessions int
	Total    time.Duration
}

// Summary aggregates the whole store.
type Summary struct {
	Switches       int
	FailedSwitches int
	WorkSessions   int
	TotalWork      time.Duration
}

// New creates a State over an opened session store.
func New(store *db.DB) (*State, error) {
	if store == nil || store.SQL() == nil {
		return nil, fmt.Errorf("state requires an open database")
	}
	return &State{db: store}, nil
}

// RecordSwitch stores one rotation attempt, successful or not.
func (s *State) RecordSwitch(from, to, reason string, ok bool) error {
	_, err := s.db.SQL().Exec(
		`INSERT INTO switches (at, from_task, to_task, reason, ok) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC(), from, to, reason, boolToInt(ok),
	)
	if err != nil {
		return fmt.Errorf("recording switch: %w", err)
	}
	return nil
}

// RecordWork stores one completed work session on a task.
func (s *State) RecordWork(task string, startedAt time.Time, d time.Duration) error {
	if d < 0 {
		d = 0
	}
	_, err := s.db.SQL().Exec(
		`INSERT INTO work_sessions (task, started_at, duration_ms) VALUES (?, ?, ?)`,
		task, startedAt.UTC(), d.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording work session: %w", err)
	}
	return nil
}

// RecentSwitches returns the last n switches, most recent first.
func (s *State) RecentSwitches(n int) ([]SwitchRecord, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.SQL().Query(
		`SELECT at, from_task, to_task, reason, ok FROM switches ORDER BY at DESC, id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying switches: %w", err)
	}
	defer rows.Close()

	var records []SwitchRecord
	for rows.Next() {
		var rec SwitchRecord
		var ok int
		if err := rows.Scan(&rec.At, &rec.FromTask, &rec.ToTask, &rec.Reason, &ok); err != nil {
			return nil, fmt.Errorf("scanning switch: %w", err)
		}
		rec.OK = ok != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// TaskTotals returns per-task accumulated work, busiest first.
func (s *State) TaskTotals() ([]TaskTotal, error) {
	rows, err := s.db.SQL().Query(
		`SELECT task, COUNT(*), COALESCE(SUM(duration_ms), 0)
		 FROM work_sessions GROUP BY task ORDER BY SUM(duration_ms) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying work totals: %w", err)
	}
	defer rows.Close()

	var totals []TaskTotal
	for rows.Next() {
		var tt TaskTotal
		var ms int64
		if err := rows.Scan(&tt.Task, &tt.Sessions, &ms); err != nil {
			return nil, fmt.Errorf("scanning work total: %w", err)
		}
		tt.Total = time.Duration(ms) * time.Millisecond
		totals = append(totals, tt)
	}
	return totals, rows.Err()
}

// TaskWork returns the accumulated work time for a single task.
func (s *State) TaskWork(task string) (time.Duration, error) {
	var ms sql.NullInt64
	err := s.db.SQL().QueryRow(
		`SELECT SUM(duration_ms) FROM work_sessions WHERE task = ?`, task,
	).Scan(&ms)
	if err != nil {
		return 0, fmt.Errorf("querying task work: %w", err)
	}
	return time.Duration(ms.Int64) * time.Millisecond, nil
}

// GetSummary aggregates the store for status output.
func (s *State) GetSummary() (Summary, error) {
	var sum Summary

	err := s.db.SQL().QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END), 0) FROM switches`,
	).Scan(&sum.Switches, &sum.FailedSwitches)
	if err != nil {
		return sum, fmt.Errorf("summarizing switches: %w", err)
	}

	var ms sql.NullInt64
	err = s.db.SQL().QueryRow(
		`SELECT COUNT(*), SUM(duration_ms) FROM work_sessions`,
	).Scan(&sum.WorkSessions, &ms)
	if err != nil {
		return sum, fmt.Errorf("summarizing work sessions: %w", err)
	}
	sum.TotalWork = time.Duration(ms.Int64) * time.Millisecond

	return sum, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
