package scheduler

import (
	"fmt"
	"time"

	"blinkaway/internal/core/model"
	"blinkaway/internal/logx"

	"github.com/robfig/cron/v3"
)

// CheckWorkingHours reconciles the enabled flag with the working-hours window.
//
// Entering the window clears the manual-resume flag and resumes reminders
// if they are paused. Outside the window, enabled reminders are paused
// unless the user resumed them manually while outside. The first check
// after start treats the current side of the window as freshly entered.
func (sched *Scheduler) CheckWorkingHours() {
	var fx effects
	sched.mu.Lock()
	if sched.closed {
		sched.mu.Unlock()
		return
	}

	now := sched.clock.Now()
	hours := sched.state.WorkingHours()
	within := hours.Contains(now)
	entered := within && (sched.lastWithin == nil || !*sched.lastWithin)
	sched.lastWithin = &within

	if !hours.Enabled {
		sched.mu.Unlock()
		return
	}

	var changed []model.Key
	switch {
	case entered:
		if sched.state.ManuallyResumedOutsideHours {
			sched.state.ManuallyResumedOutsideHours = false
			changed = append(changed, model.KeyManuallyResumedOutsideHours)
		}
		if !sched.state.Enabled {
			sched.cancelPendingResumeLocked()
			changed = append(changed, sched.enableLocked(now, &fx)...)
			sched.log.Info("working hours started, reminders resumed")
		}
	case !within && sched.state.Enabled && !sched.state.ManuallyResumedOutsideHours:
		sched.disableLocked(&fx)
		changed = append(changed, model.KeyEnabled)
		sched.log.Info("outside working hours, reminders paused",
			logx.String("start", hours.Start.String()),
			logx.String("end", hours.End.String()),
		)
	}
	sched.persistLocked(changed...)
	sched.mu.Unlock()
	fx.run()
}

// NextWorkStart returns the next time the working-hours window opens after now.
func (sched *Scheduler) NextWorkStart() time.Time {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	return nextOccurrence(sched.clock.Now(), sched.state.WorkingHoursStart)
}

// nextOccurrence finds the next wall-clock time strictly after now that
// matches at, today or tomorrow, in now's location.
func nextOccurrence(now time.Time, at model.ClockTime) time.Time {
	schedule, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", at.Minute, at.Hour))
	if err != nil {
		return now.Add(24 * time.Hour)
	}
	return schedule.Next(now)
}
