// Package stopwatch implements a pausable stopwatch used to track
// accumulated work time per task.
package stopwatch

import "time"

// Stopwatch accumulates elapsed time while running. The zero value is
// usable but unnamed; prefer New.
type Stopwatch struct {
	name      string
	accrued   time.Duration
	startedAt time.Time
	running   bool
	now       func() time.Time
}

// New returns a paused stopwatch with zero elapsed time.
func New(name string) *Stopwatch {
	return &Stopwatch{name: name, now: time.Now}
}

// NewWithClock returns a stopwatch with an injected clock. Used in tests.
func NewWithClock(name string, now func() time.Time) *Stopwatch {
	return &Stopwatch{name: name, now: now}
}

// Name returns the stopwatch's label.
func (s *Stopwatch) Name() string {
	return s.name
}

// Start begins (or resumes) accumulation. Starting a running stopwatch
// is a no-op.
func (s *Stopwatch) Start() {
	if s.running {
		return
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.startedAt = s.now()
	s.running = true
}

// Pause stops accumulation, banking the time elapsed since Start.
// Pausing a paused stopwatch is a no-op.
func (s *Stopwatch) Pause() {
	if !s.running {
		return
	}
	s.accrued += s.now().Sub(s.startedAt)
	s.running = false
}

// Resume is an alias for Start, kept for call-site readability.
func (s *Stopwatch) Resume() {
	s.Start()
}

// Reset zeroes the accumulated time and pauses the stopwatch.
func (s *Stopwatch) Reset() {
	s.accrued = 0
	s.running = false
}

// Elapsed returns total accumulated time, including the current run
// segment if the stopwatch is running.
func (s *Stopwatch) Elapsed() time.Duration {
	if s.running {
		return s.accrued + s.now().Sub(s.startedAt)
	}
	return s.accrued
}

// Running reports whether the stopwatch is accumulating.
func (s *Stopwatch) Running() bool {
	return s.running
}
