// Package rotation implements the task-rotation core: task entities,
// the registry that owns them, and the selection algorithms that pick
// which task the bot works on next.
package rotation

import (
	"context"
	"time"

	"github.com/mxtrix/Happy-Little-Taverley/internal/client"
	"github.com/mxtrix/Happy-Little-Taverley/internal/game"
	"github.com/mxtrix/Happy-Little-Taverley/internal/stopwatch"
)

// Task is one rotation unit: a repeatable activity with an eligibility
// gate and a location. Descriptive fields are fixed at setup; only the
// active flag and the work stopwatch mutate afterwards.
type Task struct {
	Name          string
	Skill         game.Skill
	RequiredLevel int
	MembersOnly   bool
	Area          game.Rect
	Anchor        game.Anchor
	Path          []game.Point

	active bool
	Work   *stopwatch.Stopwatch
}

// descriptiveCopy returns a Task carrying only the descriptive fields.
// Runtime state (active flag, stopwatch) in the source is discarded.
func (t Task) descriptiveCopy() Task {
	path := make([]game.Point, len(t.Path))
	copy(path, t.Path)
	return Task{
		Name:          t.Name,
		Skill:         t.Skill,
		RequiredLevel: t.RequiredLevel,
		MembersOnly:   t.MembersOnly,
		Area:          t.Area,
		Anchor:        t.Anchor,
		Path:          path,
	}
}

// Active reports whether the task participates in automatic rotation.
func (t *Task) Active() bool {
	return t.active
}

// CanDo reports whether the player's current level in the task's skill
// meets the requirement. Levels move during a run, so this is read
// fresh on every call.
func (t *Task) CanDo(src client.SkillSource) bool {
	return src.SkillLevel(t.Skill) >= t.RequiredLevel
}

// InArea reports whether the player currently stands inside the task's
// area.
func (t *Task) InArea(src client.PositionSource) bool {
	return t.Area.Contains(src.Position())
}

// TravelOptions bounds the teleport-arrival poll inside TravelTo.
type TravelOptions struct {
	ArrivalTimeout time.Duration
	PollInterval   time.Duration
}

// DefaultTravelOptions returns the standard travel timing.
func DefaultTravelOptions() TravelOptions {
	return TravelOptions{
		ArrivalTimeout: 15 * time.Second,
		PollInterval:   100 * time.Millisecond,
	}
}

// TravelTo moves the player into the task's area. Already being there
// is an immediate success. Otherwise: teleport via the anchor when one
// is set, wait (best effort, bounded) for the landing to be confirmed,
// then walk the predefined path, falling back to a blind walk toward
// the final waypoint if the path walk fails. Tasks without a path
// blind-walk straight at the area's center. The result is simply
// whether the player ended up in the area; the caller owns any retry
// policy.
func (t *Task) TravelTo(ctx context.Context, cl client.Client, opts TravelOptions) bool {
	if t.InArea(cl) {
		return true
	}

	if opts.ArrivalTimeout <= 0 {
		opts.ArrivalTimeout = DefaultTravelOptions().ArrivalTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultTravelOptions().PollInterval
	}

	if t.Anchor.IsSet() {
		if err := cl.TeleportTo(t.Anchor); err == nil {
			t.awaitArrival(ctx, cl, opts)
		}
	}

	if len(t.Path) > 0 {
		if !cl.WalkPath(t.Path) {
			cl.BlindWalkTo(t.Path[len(t.Path)-1])
		}
	} else if !t.InArea(cl) {
		cl.BlindWalkTo(t.Area.Center())
	}

	return t.InArea(cl)
}

// awaitArrival polls for the anchor landmark until it shows up, the
// timeout elapses, or the context is cancelled. Timing out is not an
// error: the walk attempt proceeds regardless.
func (t *Task) awaitArrival(ctx context.Context, cl client.Traveler, opts TravelOptions) {
	deadline := time.Now().Add(opts.ArrivalTimeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		if cl.DetectArrival(t.Anchor) {
			return
		}
		if time.Now().After(deadline) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
