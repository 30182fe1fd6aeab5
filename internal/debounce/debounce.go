package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used when none is configured.
const DefaultDelay = 2 * time.Second

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through a small adapter.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Option func(*Debouncer)

// WithAfterFunc replaces the scheduler, mostly for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(d *Debouncer) {
		if fn != nil {
			d.afterFunc = fn
		}
	}
}

// Debouncer owns a single cancellable timer. Every Trigger replaces the pending
// callback, so only the last one runs once the quiet period has elapsed.
// Callbacks must not call Flush or Stop.
type Debouncer struct {
	delay     time.Duration
	afterFunc AfterFunc

	// running is held while a callback executes. It is taken before mu.
	running sync.Mutex

	mu      sync.Mutex
	timer   Timer
	pending func()
	seq     uint64
	stopped bool
}

func New(delay time.Duration, opts ...Option) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}

	d := &Debouncer{
		delay:     delay,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger cancels the pending callback and schedules fn after the quiet period.
// It is a no-op after Stop.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.pending = fn
	d.timer = d.afterFunc(d.delay, func() { d.fire(seq) })
}

// fire runs the callback only if no newer Trigger, Flush or Stop happened meanwhile.
func (d *Debouncer) fire(seq uint64) {
	d.running.Lock()
	defer d.running.Unlock()

	d.mu.Lock()
	if d.stopped || seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// Flush runs the pending callback immediately, if any. It returns only after a
// callback already started by the timer has finished.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.mu.Unlock()

	d.running.Lock()
	defer d.running.Unlock()
	if fn != nil {
		fn()
	}
}

// Pending reports whether a callback is waiting for its quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels the pending callback without running it and waits for one
// already started by the timer. Further Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.pending = nil
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	// Wait for a callback the timer already started.
	d.running.Lock()
	d.running.Unlock()
}
