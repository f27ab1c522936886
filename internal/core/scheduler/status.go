package scheduler

import (
	"fmt"
	"time"

	"blinkaway/internal/core/model"
)

// Status is a point-in-time view of the scheduler for the tray and CLI.
type Status struct {
	State               State
	OutsideWorkingHours bool
	BreakSecondsLeft    int
	UntilTwentyTwenty   time.Duration
	UntilBlink          time.Duration
	UntilPosture        time.Duration
	At                  time.Time
}

// Status captures the current scheduler state.
func (sched *Scheduler) Status() Status {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	return statusOf(sched.state, sched.session, sched.clock.Now())
}

// StatusOf computes the status of a persisted schedule without a running scheduler.
func StatusOf(state model.ScheduleState, now time.Time) Status {
	return statusOf(state, nil, now)
}

func statusOf(state model.ScheduleState, active *session, now time.Time) Status {
	hours := state.WorkingHours()
	status := Status{
		State:               StateRunning,
		OutsideWorkingHours: hours.Enabled && !hours.Contains(now),
		UntilTwentyTwenty:   until(state.NextTwentyTwentyAt, now),
		UntilBlink:          until(state.NextBlinkAt, now),
		UntilPosture:        until(state.NextPostureAt, now),
		At:                  now,
	}
	switch {
	case !state.Enabled:
		status.State = StatePaused
	case active != nil:
		status.State = StateBreak
		status.BreakSecondsLeft = active.secondsLeft
	}
	return status
}

// Until returns how long until a reminder is due, never negative.
func (sched *Scheduler) Until(kind model.ReminderKind) time.Duration {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	return until(sched.state.NextAt(kind), sched.clock.Now())
}

func until(deadline int64, now time.Time) time.Duration {
	remaining := time.UnixMilli(deadline).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Title renders the tray title for a status.
func Title(status Status) string {
	switch status.State {
	case StatePaused:
		if status.OutsideWorkingHours {
			return "🌙"
		}
		return "💤"
	case StateBreak:
		return fmt.Sprintf("🥰 0:%02d", status.BreakSecondsLeft)
	default:
		return "👁️ " + FormatCountdown(status.UntilTwentyTwenty)
	}
}

// FormatCountdown renders a duration as m:ss, truncating partial seconds.
func FormatCountdown(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	totalSeconds := int(remaining / time.Second)
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}
