package scheduler

import (
	"blinkaway/internal/core/model"
	"blinkaway/internal/logx"
)

// ApplySettings applies a partial settings update.
//
// Each changed interval restarts its timer from now plus the desync offset,
// and spacing is repaired afterwards. A present Enabled field starts or
// stops ticking; otherwise ticking is restarted so new intervals apply.
func (sched *Scheduler) ApplySettings(update model.SettingsUpdate) {
	if update.IsEmpty() {
		return
	}

	var fx effects
	sched.mu.Lock()
	now := sched.clock.Now()
	var changed []model.Key

	for _, kind := range model.Kinds {
		minutes, ok := update.Interval(kind)
		if !ok {
			continue
		}
		if minutes < 1 {
			minutes = 1
		}
		sched.setIntervalLocked(kind, minutes)
		sched.state.SetNextAt(kind, now.Add(sched.state.Interval(kind)+desyncOffset(kind)).UnixMilli())
		changed = append(changed, model.IntervalKey(kind), model.NextAtKey(kind))
	}
	if update.HasIntervals() {
		changed = append(changed, sched.repairLocked()...)
	}

	if update.WorkingHoursEnabled != nil {
		sched.state.WorkingHoursEnabled = *update.WorkingHoursEnabled
		changed = append(changed, model.KeyWorkingHoursEnabled)
	}
	if update.WorkingHoursStart != nil {
		sched.state.WorkingHoursStart = *update.WorkingHoursStart
		changed = append(changed, model.KeyWorkingHoursStart)
	}
	if update.WorkingHoursEnd != nil {
		sched.state.WorkingHoursEnd = *update.WorkingHoursEnd
		changed = append(changed, model.KeyWorkingHoursEnd)
	}

	switch {
	case update.Enabled == nil:
		if ticker := sched.ticker; ticker != nil {
			fx.add(ticker.StopTicking)
			if sched.state.Enabled {
				fx.add(ticker.StartTicking)
			}
		}
	case *update.Enabled:
		sched.cancelPendingResumeLocked()
		changed = append(changed, sched.enableLocked(now, &fx)...)
	default:
		sched.cancelPendingResumeLocked()
		sched.disableLocked(&fx)
		changed = append(changed, model.KeyEnabled)
	}

	sched.persistLocked(changed...)
	sched.emitLocked(Event{Type: EventSettings, State: sched.currentStateLocked(), At: now})
	sched.log.Info("settings applied",
		logx.Int("twenty_twenty_min", sched.state.TwentyTwentyIntervalMin),
		logx.Int("blink_min", sched.state.BlinkIntervalMin),
		logx.Int("posture_min", sched.state.PostureIntervalMin),
		logx.Bool("enabled", sched.state.Enabled),
		logx.Bool("working_hours", sched.state.WorkingHoursEnabled),
	)
	sched.mu.Unlock()
	fx.run()
}

func (sched *Scheduler) setIntervalLocked(kind model.ReminderKind, minutes int) {
	switch kind {
	case model.KindTwentyTwenty:
		sched.state.TwentyTwentyIntervalMin = minutes
	case model.KindBlink:
		sched.state.BlinkIntervalMin = minutes
	case model.KindPosture:
		sched.state.PostureIntervalMin = minutes
	}
}
