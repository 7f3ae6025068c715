package rotation

import (
	"fmt"
	"math/rand"

	"github.com/mxtrix/Happy-Little-Taverley/internal/client"
	"github.com/mxtrix/Happy-Little-Taverley/internal/logging"
	"github.com/mxtrix/Happy-Little-Taverley/internal/stopwatch"
)

// randomAttemptFactor caps RandomNext sampling at factor*len(tasks)
// draws before reporting failure instead of spinning.
const randomAttemptFactor = 8

// Registry is the ordered task collection plus the single "current"
// selection. It owns all activity-flag mutation. One logical caller at
// a time; the registry does no locking of its own.
type Registry struct {
	tasks   []*Task
	current int

	skills client.SkillSource
	log    *logging.Logger
	intN   func(n int) int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// WithRandSource overrides the random index source. Used in tests.
func WithRandSource(intN func(n int) int) Option {
	return func(r *Registry) {
		r.intN = intN
	}
}

// NewRegistry returns an empty registry reading eligibility from src.
// Callers populate it with Setup.
func NewRegistry(src client.SkillSource, opts ...Option) *Registry {
	r := &Registry{
		skills: src,
		log:    logging.Component("rotation"),
		intN:   rand.Intn,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Setup is the sole construction entrypoint: it copies the descriptive
// fields of each input into a fresh entry (any runtime state in the
// input is discarded) and then applies defaults.
func (r *Registry) Setup(initial []Task) {
	for _, t := range initial {
		r.Add(t)
	}
	r.SetDefaults()
}

// Add appends a copy of the task's descriptive fields. Runtime state is
// left for SetDefaults.
func (r *Registry) Add(t Task) {
	entry := t.descriptiveCopy()
	r.tasks = append(r.tasks, &entry)
}

// SetDefaults marks every entry active and gives it a fresh stopwatch,
// started then immediately paused so elapsed time reads zero until the
// orchestrator resumes it. Re-running resets all entries.
func (r *Registry) SetDefaults() {
	for i, t := range r.tasks {
		t.active = true
		t.Work = stopwatch.New(fmt.Sprintf("task-%d", i))
		t.Work.Start()
		t.Work.Pause()
	}
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	return len(r.tasks)
}

// Tasks returns the registry entries in order. Callers must treat the
// slice as read-only.
func (r *Registry) Tasks() []*Task {
	return r.tasks
}

// CurrentIndex returns the index of the current task.
func (r *Registry) CurrentIndex() int {
	return r.current
}

// Current returns the current task, or nil on an empty registry.
func (r *Registry) Current() *Task {
	if len(r.tasks) == 0 {
		return nil
	}
	return r.tasks[r.current]
}

// CountActive returns how many entries are active.
func (r *Registry) CountActive() int {
	n := 0
	for _, t := range r.tasks {
		if t.active {
			n++
		}
	}
	return n
}

// SetActive flips a single entry's activity flag directly. Out-of-range
// indexes are ignored.
func (r *Registry) SetActive(i int, active bool) {
	if i < 0 || i >= len(r.tasks) {
		return
	}
	r.tasks[i].active = active
}

// SwitchTo makes the task at target current. The outgoing task's active
// flag is set to keepPrevActive first, and that mutation sticks even
// when the switch itself fails afterwards: passing false means "give up
// this task" whatever happens next. The switch fails, leaving current
// unchanged, when no active tasks remain or when the target's skill
// requirement isn't met.
func (r *Registry) SwitchTo(target int, keepPrevActive bool) bool {
	if len(r.tasks) == 0 || target < 0 || target >= len(r.tasks) {
		return false
	}

	r.tasks[r.current].active = keepPrevActive

	if r.CountActive() <= 0 {
		r.log.Warn("no active tasks remain, refusing to switch")
		return false
	}

	next := r.tasks[target]
	if !next.CanDo(r.skills) {
		r.log.InfoEvent().
			Str("task", next.Name).
			Str("skill", string(next.Skill)).
			Int("required", next.RequiredLevel).
			Int("level", r.skills.SkillLevel(next.Skill)).
			Msg("task not eligible, staying put")
		return false
	}

	r.current = target
	r.log.Infof("switched to task %d: %s", target, next.Name)
	return true
}

// Next advances circularly from the entry after current to the first
// active entry and switches to it. The scan is bounded to one full lap;
// if no entry is active the call fails instead of spinning.
func (r *Registry) Next(keepPrevActive bool) bool {
	n := len(r.tasks)
	if n == 0 {
		return false
	}

	for probe := 1; probe <= n; probe++ {
		i := (r.current + probe) % n
		if r.tasks[i].active {
			return r.SwitchTo(i, keepPrevActive)
		}
	}

	r.log.Warn("no active task found in rotation")
	return false
}

// RandomNext switches to a uniformly random active task other than the
// current one. With exactly one active task that happens to be the
// current one there is nothing else to pick, so the task is switched to
// itself rather than looping forever. Sampling attempts are capped; an
// exhausted cap reports failure.
func (r *Registry) RandomNext(keepPrevActive bool) bool {
	n := len(r.tasks)
	if n == 0 {
		return false
	}

	for attempt := 0; attempt < randomAttemptFactor*n; attempt++ {
		i := r.intN(n)
		if !r.tasks[i].active {
			continue
		}
		if i == r.current {
			if r.CountActive() == 1 {
				// Degenerate case: the only active task is already
				// current. Self-switch instead of resampling.
				return r.SwitchTo(i, keepPrevActive)
			}
			continue
		}
		return r.SwitchTo(i, keepPrevActive)
	}

	r.log.Warn("no eligible random task found")
	return false
}

// Describe writes a task's fields to the log, one line per field, for
// debugging task definitions.
func (r *Registry) Describe(i int) {
	if i < 0 || i >= len(r.tasks) {
		return
	}
	t := r.tasks[i]
	r.log.Infof("task %d: name=%q", i, t.Name)
	r.log.Infof("task %d: skill=%s required=%d members=%v", i, t.Skill, t.RequiredLevel, t.MembersOnly)
	r.log.Infof("task %d: area=%s anchor=%q waypoints=%d", i, t.Area, t.Anchor, len(t.Path))
	r.log.Infof("task %d: active=%v worked=%s", i, t.active, t.Work.Elapsed())
}
