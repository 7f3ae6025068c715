package orchestrator

import (
	"time"

	"github.com/mxtrix/Happy-Little-Taverley/internal/rotation"
)

// EventType classifies orchestrator events.
type EventType string

const (
	EventTravelStart EventType = "travel_start"
	EventTravelEnd   EventType = "travel_end"
	EventWorkStart   EventType = "work_start"
	EventWorkEnd     EventType = "work_end"
	EventSwitch      EventType = "switch"
	EventStopped     EventType = "stopped"
)

// Event is a real-time notification from the run loop, consumed by the
// watch TUI and tests.
type Event struct {
	Type     EventType
	Time     time.Time
	Task     string // task the event concerns
	ToTask   string // switch target, for EventSwitch
	OK       bool   // travel/switch outcome
	Worked   time.Duration
	Message  string
	Switches int // completed switch count, for EventStopped

	// Tasks is a snapshot of the whole roster taken when the event was
	// emitted. Consumers on other goroutines read this instead of the
	// live registry, which is single-caller.
	Tasks []TaskState
}

// TaskState is a point-in-time view of one registry entry.
type TaskState struct {
	Name    string
	Skill   string
	Active  bool
	Current bool
	Worked  time.Duration
}

// SnapshotTasks captures the registry's display state. Call only from
// the goroutine that owns the registry.
func SnapshotTasks(reg *rotation.Registry) []TaskState {
	states := make([]TaskState, reg.Len())
	for i, t := range reg.Tasks() {
		states[i] = TaskState{
			Name:    t.Name,
			Skill:   string(t.Skill),
			Active:  t.Active(),
			Current: i == reg.CurrentIndex(),
			Worked:  t.Work.Elapsed(),
		}
	}
	return states
}

// EventHandler receives orchestrator events. Handlers run on the loop
// goroutine and must not block.
type EventHandler func(Event)
