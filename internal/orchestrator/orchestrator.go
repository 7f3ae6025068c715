// Package orchestrator drives the rotation loop: travel to the current
// task, work on it until the scheduler fires, then advance the registry
// and start over.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mxtrix/Happy-Little-Taverley/internal/client"
	"github.com/mxtrix/Happy-Little-Taverley/internal/logging"
	"github.com/mxtrix/Happy-Little-Taverley/internal/rotation"
	"github.com/mxtrix/Happy-Little-Taverley/internal/scheduler"
	"github.com/mxtrix/Happy-Little-Taverley/internal/state"
)

// ErrAllInactive is returned when rotation cannot continue because no
// task is active anymore.
var ErrAllInactive = errors.New("no active tasks remain")

// Mode selects the advancement algorithm.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeRandom     Mode = "random"
)

// Config holds run-loop configuration.
type Config struct {
	Mode               Mode
	KeepPreviousActive bool
	// WorkInterval is how long to stay on a task before rotating.
	// Ignored when Cron is set.
	WorkInterval time.Duration
	// Cron optionally schedules rotation instead of WorkInterval.
	Cron string
	// Travel bounds the teleport-arrival poll.
	Travel rotation.TravelOptions
	// MaxSwitches stops the loop after that many completed switches.
	// Zero means run until the context is cancelled.
	MaxSwitches int
}

// DefaultConfig returns the standard run-loop configuration.
func DefaultConfig() Config {
	return Config{
		Mode:               ModeSequential,
		KeepPreviousActive: true,
		WorkInterval:       20 * time.Minute,
		Travel:             rotation.DefaultTravelOptions(),
	}
}

// Orchestrator owns one rotation run.
type Orchestrator struct {
	registry *rotation.Registry
	client   client.Client
	store    *state.State
	config   Config
	log      *logging.Logger
	handler  EventHandler

	mu      sync.Mutex
	pending *Config
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRegistry sets the task registry.
func WithRegistry(r *rotation.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = r
	}
}

// WithClient sets the game client.
func WithClient(c client.Client) Option {
	return func(o *Orchestrator) {
		o.client = c
	}
}

// WithState sets the optional session store; without it nothing is
// persisted.
func WithState(s *state.State) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithConfig sets run-loop configuration.
func WithConfig(c Config) Option {
	return func(o *Orchestrator) {
		o.config = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// WithEventHandler sets an optional callback for real-time events.
func WithEventHandler(h EventHandler) Option {
	return func(o *Orchestrator) {
		o.handler = h
	}
}

// New creates an orchestrator with the given options.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		config: DefaultConfig(),
		log:    logging.Component("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) emit(e Event) {
	if o.handler != nil {
		e.Time = time.Now()
		if o.registry != nil {
			e.Tasks = SnapshotTasks(o.registry)
		}
		o.handler(e)
	}
}

// ApplyConfig queues new run-loop configuration. The loop adopts it
// before the next work period, rebuilding the trigger when the
// schedule changed. Safe to call from any goroutine, which makes it
// the target for live config reloads.
func (o *Orchestrator) ApplyConfig(c Config) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = &c
}

func (o *Orchestrator) takePending() (Config, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return Config{}, false
	}
	c := *o.pending
	o.pending = nil
	return c, true
}

// newTrigger builds the rotation trigger from config.
func (o *Orchestrator) newTrigger() (*scheduler.Trigger, error) {
	if o.config.Cron != "" {
		return scheduler.NewCron(o.config.Cron)
	}
	return scheduler.NewInterval(o.config.WorkInterval)
}

// Run executes the rotation loop until the context is cancelled, the
// switch budget is spent, or no active task remains. Travel failures
// and ineligible targets are not fatal: the loop logs them and moves
// on, matching the recoverable-by-retry contract of the core.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.registry == nil || o.registry.Len() == 0 {
		return errors.New("no tasks registered")
	}
	if o.client == nil {
		return errors.New("no game client configured")
	}

	trigger, err := o.newTrigger()
	if err != nil {
		return fmt.Errorf("building rotation trigger: %w", err)
	}
	defer func() { trigger.Stop() }()

	switches := 0
	for {
		if next, ok := o.takePending(); ok {
			reschedule := next.WorkInterval != o.config.WorkInterval || next.Cron != o.config.Cron
			o.config = next
			if reschedule {
				trigger.Stop()
				trigger, err = o.newTrigger()
				if err != nil {
					return fmt.Errorf("rebuilding rotation trigger: %w", err)
				}
			}
			o.log.Info("configuration reloaded")
		}

		cur := o.registry.Current()

		worked, stopped := o.workOn(ctx, cur, trigger)
		if stopped {
			o.emit(Event{Type: EventStopped, Task: cur.Name, Switches: switches})
			return nil
		}

		if !o.advance(cur, worked) {
			if o.registry.CountActive() == 0 {
				o.emit(Event{Type: EventStopped, Task: cur.Name, Switches: switches, Message: ErrAllInactive.Error()})
				return ErrAllInactive
			}
			// Unlucky pick (e.g. target not eligible yet); try again
			// on the next trigger.
			continue
		}

		switches++
		if o.config.MaxSwitches > 0 && switches >= o.config.MaxSwitches {
			o.log.Infof("switch budget spent after %d switches", switches)
			o.emit(Event{Type: EventStopped, Task: o.registry.Current().Name, Switches: switches})
			return nil
		}
	}
}

// workOn travels to the task and works it until the trigger fires or
// the context ends. Returns the time worked and whether the loop should
// stop.
func (o *Orchestrator) workOn(ctx context.Context, task *rotation.Task, trigger *scheduler.Trigger) (time.Duration, bool) {
	if task.MembersOnly && !o.isMember() {
		o.log.Warnf("task %q is members-only and the account is not; skipping work", task.Name)
	} else {
		o.emit(Event{Type: EventTravelStart, Task: task.Name})
		arrived := task.TravelTo(ctx, o.client, o.config.Travel)
		o.emit(Event{Type: EventTravelEnd, Task: task.Name, OK: arrived})
		if !arrived {
			o.log.Warnf("could not reach %q, rotating on", task.Name)
		}
	}

	start := time.Now()
	task.Work.Resume()
	o.emit(Event{Type: EventWorkStart, Task: task.Name})

	defer func() {
		task.Work.Pause()
	}()

	select {
	case <-ctx.Done():
		worked := time.Since(start)
		o.recordWork(task.Name, start, worked)
		o.emit(Event{Type: EventWorkEnd, Task: task.Name, Worked: worked})
		return worked, true
	case <-trigger.C:
		worked := time.Since(start)
		o.recordWork(task.Name, start, worked)
		o.emit(Event{Type: EventWorkEnd, Task: task.Name, Worked: worked})
		return worked, false
	}
}

// advance moves the registry to the next task per the configured mode
// and records the attempt.
func (o *Orchestrator) advance(from *rotation.Task, worked time.Duration) bool {
	var ok bool
	reason := "next"
	switch o.config.Mode {
	case ModeRandom:
		reason = "random"
		ok = o.registry.RandomNext(o.config.KeepPreviousActive)
	default:
		ok = o.registry.Next(o.config.KeepPreviousActive)
	}

	to := o.registry.Current()
	o.recordSwitch(from.Name, to.Name, reason, ok)
	o.emit(Event{Type: EventSwitch, Task: from.Name, ToTask: to.Name, OK: ok, Worked: worked})
	return ok
}

func (o *Orchestrator) isMember() bool {
	if src, has := o.client.(client.MembershipSource); has {
		return src.IsMember()
	}
	return false
}

func (o *Orchestrator) recordWork(task string, start time.Time, d time.Duration) {
	if o.store == nil {
		return
	}
	if err := o.store.RecordWork(task, start, d); err != nil {
		o.log.Err(err).Msg("persisting work session")
		return
	}
	if total, err := o.store.TaskWork(task); err == nil {
		o.log.Debugf("%s lifetime work now %s", task, total)
	}
}

func (o *Orchestrator) recordSwitch(from, to, reason string, ok bool) {
	if o.store == nil {
		return
	}
	if err := o.store.RecordSwitch(from, to, reason, ok); err != nil {
		o.log.Err(err).Msg("persisting switch")
	}
}
