package server

import (
	"sync"
	"time"
)

// DebounceState is the state of a Debouncer.
type DebounceState int

const (
	// StateIdle means no rebuild is armed or running.
	StateIdle DebounceState = iota
	// StateDebouncing means the quiet-window timer is armed.
	StateDebouncing
	// StateRebuilding means the rebuild func is running.
	StateRebuilding
)

func (s DebounceState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}

// Debouncer coalesces bursts of change events into single rebuilds.
//
// Trigger arms a quiet-window timer, replacing any armed one. When the timer
// fires the rebuild func runs on the timer goroutine. Triggers that arrive
// while it runs set a pending flag and re-arm the timer once it returns, so at
// most one rebuild runs at a time and a running one is never interrupted.
type Debouncer struct {
	delay   time.Duration
	rebuild func(trigger string)

	mu      sync.Mutex
	state   DebounceState
	timer   *time.Timer
	gen     uint64
	pending bool
	trigger string
	stopped bool
	idle    *sync.Cond
}

// NewDebouncer creates a debouncer that calls rebuild after delay of quiet.
func NewDebouncer(delay time.Duration, rebuild func(trigger string)) *Debouncer {
	d := &Debouncer{delay: delay, rebuild: rebuild}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Trigger records a change. The trigger of the latest event names the rebuild.
func (d *Debouncer) Trigger(trigger string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.trigger = trigger
	if d.state == StateRebuilding {
		d.pending = true
		return
	}
	d.arm()
}

// arm must be called with mu held.
func (d *Debouncer) arm() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.state = StateDebouncing
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A timer that was replaced may still fire; only the latest one counts.
	if gen != d.gen || d.state != StateDebouncing || d.stopped {
		d.mu.Unlock()
		return
	}
	d.state = StateRebuilding
	d.pending = false
	trigger := d.trigger
	d.mu.Unlock()

	d.rebuild(trigger)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending && !d.stopped {
		d.pending = false
		d.arm()
		return
	}
	d.pending = false
	d.state = StateIdle
	d.idle.Broadcast()
}

// State returns the current state.
func (d *Debouncer) State() DebounceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Stop disarms the timer and waits for a running rebuild to return. Later
// triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	for d.state == StateRebuilding {
		d.idle.Wait()
	}
	d.state = StateIdle
}
