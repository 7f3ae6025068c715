// Package scheduler produces rotation triggers, either on a fixed
// interval or from a cron expression.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Trigger fires on a channel whenever the bot should rotate tasks.
type Trigger struct {
	C <-chan time.Time

	ticker *time.Ticker
	cron   *cron.Cron
	ch     chan time.Time
	entry  cron.EntryID
}

// NewInterval returns a trigger firing every d.
func NewInterval(d time.Duration) (*Trigger, error) {
	if d <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", d)
	}
	t := time.NewTicker(d)
	return &Trigger{C: t.C, ticker: t}, nil
}

// NewCron returns a trigger firing on the cron expression. Standard
// 5-field cron syntax plus the @every descriptors.
func NewCron(expr string) (*Trigger, error) {
	ch := make(chan time.Time, 1)
	c := cron.New()
	id, err := c.AddFunc(expr, func() {
		select {
		case ch <- time.Now():
		default: // a pending trigger is already queued
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parsing cron %q: %w", expr, err)
	}
	c.Start()
	return &Trigger{C: ch, cron: c, ch: ch, entry: id}, nil
}

// Next returns when the trigger fires next. For interval triggers the
// zero time is returned (the ticker does not expose its deadline).
func (t *Trigger) Next() time.Time {
	if t.cron != nil {
		return t.cron.Entry(t.entry).Next
	}
	return time.Time{}
}

// Stop shuts the trigger down. The channel is not closed; pending
// receives simply stop arriving.
func (t *Trigger) Stop() {
	if t.ticker != nil {
		t.ticker.Stop()
	}
	if t.cron != nil {
		t.cron.Stop()
	}
}

// Validate reports whether expr is an acceptable cron expression.
func Validate(expr string) error {
	_, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("invalid cron %q: %w", expr, err)
	}
	return nil
}
