package debounce

import (
	"sync"
	"testing"
	"time"
)

// manualClock hands out timers that only fire when the test says so.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &manualTimer{fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

// fireAll runs every scheduled callback, including stopped ones, the way a
// timer that already fired concurrently with Stop would.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, timer := range timers {
		timer.fn()
	}
}

func TestDebouncerRunsOnlyLastCallback(t *testing.T) {
	clock := &manualClock{}
	d := New(time.Second, WithAfterFunc(clock.AfterFunc))

	var got []string
	d.Trigger(func() { got = append(got, "first") })
	d.Trigger(func() { got = append(got, "second") })

	if !clock.timers[0].stopped {
		t.Fatal("expected first timer to be stopped")
	}

	clock.fireAll()

	if len(got) != 1 || got[0] != "second" {
		t.Fatalf("expected only second callback, got %v", got)
	}

	if d.Pending() {
		t.Fatal("expected nothing pending after fire")
	}
}

func TestDebouncerStopDiscardsPending(t *testing.T) {
	clock := &manualClock{}
	d := New(time.Second, WithAfterFunc(clock.AfterFunc))

	called := false
	d.Trigger(func() { called = true })
	d.Stop()
	clock.fireAll()

	if called {
		t.Fatal("callback must not run after Stop")
	}

	d.Trigger(func() { called = true })
	if len(clock.timers) != 1 {
		t.Fatalf("expected Trigger after Stop to be ignored, got %d timers", len(clock.timers))
	}
}

func TestDebouncerFlush(t *testing.T) {
	clock := &manualClock{}
	d := New(time.Second, WithAfterFunc(clock.AfterFunc))

	calls := 0
	d.Trigger(func() { calls++ })
	d.Flush()
	clock.fireAll()

	if calls != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}

	d.Flush()
	if calls != 1 {
		t.Fatalf("flush without pending callback must be a no-op, got %d calls", calls)
	}
}

func TestDebouncerRealTimer(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	done := make(chan string, 2)
	d.Trigger(func() { done <- "first" })
	d.Trigger(func() { done <- "second" })

	select {
	case v := <-done:
		if v != "second" {
			t.Fatalf("expected second, got %s", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debounced callback did not fire")
	}

	select {
	case v := <-done:
		t.Fatalf("unexpected extra callback %s", v)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestNewDefaultsDelay(t *testing.T) {
	if d := New(0); d.delay != DefaultDelay {
		t.Fatalf("expected default delay, got %v", d.delay)
	}
}

// startBlockingFire fires the pending timer on its own goroutine and returns
// once the callback is running. The callback finishes when release is closed.
func startBlockingFire(t *testing.T, d *Debouncer, clock *manualClock) (release chan struct{}, finished *bool) {
	t.Helper()

	started := make(chan struct{})
	release = make(chan struct{})
	finished = new(bool)
	d.Trigger(func() {
		close(started)
		<-release
		*finished = true
	})

	go clock.fireAll()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("callback did not start")
	}
	return release, finished
}

func TestDebouncerWaitsForRunningCallback(t *testing.T) {
	for name, finish := range map[string]func(*Debouncer){
		"flush": (*Debouncer).Flush,
		"stop":  (*Debouncer).Stop,
	} {
		t.Run(name, func(t *testing.T) {
			clock := &manualClock{}
			d := New(time.Second, WithAfterFunc(clock.AfterFunc))
			release, finished := startBlockingFire(t, d, clock)

			done := make(chan struct{})
			go func() {
				finish(d)
				close(done)
			}()

			select {
			case <-done:
				t.Fatal("returned while the callback was still running")
			case <-time.After(50 * time.Millisecond):
			}

			close(release)

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("did not return after the callback finished")
			}
			if !*finished {
				t.Fatal("expected the callback to have finished")
			}
		})
	}
}
