package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced Clock. AfterFunc callbacks run synchronously
// on the goroutine calling Advance, in deadline order, with Now reporting
// the callback's own deadline while it runs. Ticks are delivered with a
// non-blocking send, matching time.Ticker's drop-when-full behavior.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*fakeTimer
}

type fakeTimer struct {
	fake     *Fake
	id       uint64
	deadline time.Time
	period   time.Duration
	fn       func()
	ch       chan time.Time
	stopped  bool
}

// NewFake returns a Fake clock reading start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(d, 0, fn, nil)
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeTicker{f.addLocked(d, d, nil, make(chan time.Time, 1))}
}

// Advance moves the clock forward by d, firing everything that falls due.
// Timers armed by a callback fire in the same call if their deadline is
// within the advanced window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		next := f.nextDueLocked(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = next.deadline
		if next.period > 0 {
			next.deadline = next.deadline.Add(next.period)
		} else {
			f.removeLocked(next)
		}
		now := f.now
		f.mu.Unlock()

		if next.fn != nil {
			next.fn()
			continue
		}
		select {
		case next.ch <- now:
		default:
		}
	}
}

// Pending returns the number of timers and tickers still armed.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func (f *Fake) addLocked(d, period time.Duration, fn func(), ch chan time.Time) *fakeTimer {
	if d < 0 {
		d = 0
	}
	f.seq++
	timer := &fakeTimer{
		fake:     f,
		id:       f.seq,
		deadline: f.now.Add(d),
		period:   period,
		fn:       fn,
		ch:       ch,
	}
	f.pending = append(f.pending, timer)
	return timer
}

func (f *Fake) nextDueLocked(target time.Time) *fakeTimer {
	var next *fakeTimer
	for _, timer := range f.pending {
		if timer.deadline.After(target) {
			continue
		}
		if next == nil || timer.deadline.Before(next.deadline) ||
			(timer.deadline.Equal(next.deadline) && timer.id < next.id) {
			next = timer
		}
	}
	return next
}

func (f *Fake) removeLocked(target *fakeTimer) bool {
	for i, timer := range f.pending {
		if timer == target {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return true
		}
	}
	return false
}

func (t *fakeTimer) Stop() bool {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return t.fake.removeLocked(t)
}

type fakeTicker struct {
	timer *fakeTimer
}

func (t fakeTicker) C() <-chan time.Time {
	return t.timer.ch
}

func (t fakeTicker) Stop() {
	t.timer.Stop()
}
