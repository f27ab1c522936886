package scheduler

import (
	"time"

	"blinkaway/internal/core/model"
)

// State represents the current scheduler mode.
type State string

const (
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateBreak   State = "break"
)

// EventType defines the type of scheduler event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventFired       EventType = "fired"
	EventCountdown   EventType = "countdown"
	EventSettings    EventType = "settings"
)

// Event represents a scheduler update for observers.
type Event struct {
	Type        EventType
	State       State
	Kind        model.ReminderKind
	SecondsLeft int
	Message     string
	At          time.Time
}

// Subscribe registers a new observer channel. Slow observers miss events rather than block the scheduler.
func (sched *Scheduler) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	sched.mu.Lock()
	sched.events = append(sched.events, ch)
	sched.mu.Unlock()
	return ch
}

func (sched *Scheduler) emitLocked(event Event) {
	if event.At.IsZero() {
		event.At = sched.clock.Now()
	}
	for _, ch := range sched.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func (sched *Scheduler) currentStateLocked() State {
	switch {
	case sched.session != nil:
		return StateBreak
	case !sched.state.Enabled:
		return StatePaused
	default:
		return StateRunning
	}
}
