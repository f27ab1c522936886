package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancellable one-shot callback.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time and deferred callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(delay time.Duration, fn func()) Timer
}

type realClock struct{}

// Real returns the system clock.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(delay time.Duration, fn func()) Timer {
	return time.AfterFunc(delay, fn)
}

// Fake is a manually advanced clock for tests.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	nextID int
}

type fakeTimer struct {
	clock   *Fake
	id      int
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

// NewFake creates a fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the current fake time.
func (fake *Fake) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

// AfterFunc registers fn to run once the clock reaches now+delay.
func (fake *Fake) AfterFunc(delay time.Duration, fn func()) Timer {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.nextID++
	timer := &fakeTimer{clock: fake, id: fake.nextID, at: fake.now.Add(delay), fn: fn}
	fake.timers = append(fake.timers, timer)
	return timer
}

// Set moves the clock to t without firing timers.
func (fake *Fake) Set(t time.Time) {
	fake.mu.Lock()
	fake.now = t
	fake.mu.Unlock()
}

// Advance moves the clock forward and runs every timer that became due, in order.
func (fake *Fake) Advance(delta time.Duration) {
	fake.mu.Lock()
	target := fake.now.Add(delta)
	fake.mu.Unlock()

	for {
		fake.mu.Lock()
		due := fake.popDueLocked(target)
		if due == nil {
			fake.now = target
			fake.mu.Unlock()
			return
		}
		if due.at.After(fake.now) {
			fake.now = due.at
		}
		fake.mu.Unlock()
		due.fn()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (fake *Fake) Pending() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	count := 0
	for _, timer := range fake.timers {
		if !timer.stopped && !timer.fired {
			count++
		}
	}
	return count
}

func (fake *Fake) popDueLocked(target time.Time) *fakeTimer {
	sort.SliceStable(fake.timers, func(i, j int) bool {
		return fake.timers[i].at.Before(fake.timers[j].at)
	})
	for _, timer := range fake.timers {
		if timer.stopped || timer.fired {
			continue
		}
		if timer.at.After(target) {
			return nil
		}
		timer.fired = true
		return timer
	}
	return nil
}

func (timer *fakeTimer) Stop() bool {
	timer.clock.mu.Lock()
	defer timer.clock.mu.Unlock()
	if timer.stopped || timer.fired {
		return false
	}
	timer.stopped = true
	return true
}
