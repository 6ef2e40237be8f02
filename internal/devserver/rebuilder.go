package devserver

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// State is the phase of the rebuild loop.
type State int32

const (
	// StateIdle waits for a change.
	StateIdle State = iota
	// StatePending has a debounce timer running.
	StatePending
	// StateBuilding has a build in flight.
	StateBuilding
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateBuilding:
		return "building"
	default:
		return "idle"
	}
}

// BuildFunc regenerates the site.
type BuildFunc func(ctx context.Context) error

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 200 * time.Millisecond

// RebuilderConfig wires a Rebuilder.
type RebuilderConfig struct {
	Build    BuildFunc
	Notify   func()
	Debounce time.Duration
	Logger   interfaces.Logger
}

// Rebuilder debounces change events into builds. Changes during a pending
// window restart the timer; changes during a build schedule exactly one
// follow-up build.
type Rebuilder struct {
	build    BuildFunc
	notify   func()
	debounce time.Duration
	logger   interfaces.Logger

	changes chan struct{}
	state   atomic.Int32
	builds  atomic.Int64
}

func NewRebuilder(cfg RebuilderConfig) *Rebuilder {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	build := cfg.Build
	if build == nil {
		build = func(context.Context) error { return nil }
	}
	notify := cfg.Notify
	if notify == nil {
		notify = func() {}
	}
	return &Rebuilder{
		build:    build,
		notify:   notify,
		debounce: debounce,
		logger:   logging.Ensure(cfg.Logger),
		changes:  make(chan struct{}, 1),
	}
}

// Changed records a change. It never blocks; changes already queued
// coalesce.
func (r *Rebuilder) Changed() {
	select {
	case r.changes <- struct{}{}:
	default:
	}
}

// State returns the current phase.
func (r *Rebuilder) State() State {
	return State(r.state.Load())
}

// Builds returns how many builds have been started.
func (r *Rebuilder) Builds() int64 {
	return r.builds.Load()
}

// Run drives the state machine until ctx is done. An in-flight build is
// waited for before Run returns.
func (r *Rebuilder) Run(ctx context.Context) error {
	var (
		timer    *time.Timer
		fire     <-chan time.Time
		done     chan error
		followUp bool
	)
	arm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(r.debounce)
		fire = timer.C
		r.transition(StatePending)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			if done != nil {
				<-done
			}
			r.transition(StateIdle)
			return ctx.Err()

		case <-r.changes:
			if r.State() == StateBuilding {
				followUp = true
				continue
			}
			arm()

		case <-fire:
			fire = nil
			r.transition(StateBuilding)
			r.builds.Add(1)
			done = make(chan error, 1)
			go func(done chan<- error) {
				done <- r.build(ctx)
			}(done)

		case err := <-done:
			done = nil
			if err != nil {
				r.logger.Error("build failure", "error", err)
			} else {
				r.notify()
			}
			if followUp {
				followUp = false
				arm()
				continue
			}
			r.transition(StateIdle)
		}
	}
}

func (r *Rebuilder) transition(next State) {
	prev := State(r.state.Swap(int32(next)))
	if prev != next {
		r.logger.Debug("rebuilder.transition", "from", prev.String(), "to", next.String())
	}
}
