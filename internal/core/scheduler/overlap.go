package scheduler

import (
	"time"

	"blinkaway/internal/core/model"
)

const (
	// OverlapBuffer is the minimum spacing kept between two deadlines.
	OverlapBuffer = 60 * time.Second
	// BlinkOffset desynchronizes blink from the 20-20-20 timer.
	BlinkOffset = 60 * time.Second
	// PostureOffset desynchronizes posture from both other timers.
	PostureOffset = 2 * time.Minute

	// Bounded so pathological intervals cannot spin.
	maxDesyncSteps = 16
)

// desyncOffset is the fixed forward shift applied when a timer is (re)started from now.
func desyncOffset(kind model.ReminderKind) time.Duration {
	switch kind {
	case model.KindBlink:
		return BlinkOffset
	case model.KindPosture:
		return PostureOffset
	default:
		return 0
	}
}

func tooClose(a, b int64) bool {
	delta := a - b
	if delta < 0 {
		delta = -delta
	}
	return delta < OverlapBuffer.Milliseconds()
}

// blinkAfter pushes a blink deadline forward until it clears the 20-20-20 deadline.
func blinkAfter(candidate, twentyTwenty int64) int64 {
	for step := 0; step < maxDesyncSteps && tooClose(candidate, twentyTwenty); step++ {
		candidate += BlinkOffset.Milliseconds()
	}
	return candidate
}

// postureAfter pushes a posture deadline forward until it clears both other deadlines.
func postureAfter(candidate, twentyTwenty, blink int64) int64 {
	for step := 0; step < maxDesyncSteps && (tooClose(candidate, twentyTwenty) || tooClose(candidate, blink)); step++ {
		candidate += PostureOffset.Milliseconds()
	}
	return candidate
}

// repairLocked enforces spacing in priority order and returns the keys it moved.
// The 20-20-20 deadline never moves.
func (sched *Scheduler) repairLocked() []model.Key {
	var changed []model.Key

	blink := blinkAfter(sched.state.NextBlinkAt, sched.state.NextTwentyTwentyAt)
	if blink != sched.state.NextBlinkAt {
		sched.state.NextBlinkAt = blink
		changed = append(changed, model.KeyNextBlink)
	}

	posture := postureAfter(sched.state.NextPostureAt, sched.state.NextTwentyTwentyAt, sched.state.NextBlinkAt)
	if posture != sched.state.NextPostureAt {
		sched.state.NextPostureAt = posture
		changed = append(changed, model.KeyNextPosture)
	}
	return changed
}

// nextDeadlineLocked computes the deadline after a firing at now.
func (sched *Scheduler) nextDeadlineLocked(kind model.ReminderKind, now time.Time) int64 {
	candidate := now.Add(sched.state.Interval(kind)).UnixMilli()
	switch kind {
	case model.KindBlink:
		return blinkAfter(candidate, sched.state.NextTwentyTwentyAt)
	case model.KindPosture:
		return postureAfter(candidate, sched.state.NextTwentyTwentyAt, sched.state.NextBlinkAt)
	default:
		return candidate
	}
}

// fastForwardLocked restarts every elapsed deadline from now, then repairs spacing.
func (sched *Scheduler) fastForwardLocked(now time.Time) []model.Key {
	nowMillis := now.UnixMilli()
	var changed []model.Key
	for _, kind := range model.Kinds {
		if sched.state.NextAt(kind) >= nowMillis {
			continue
		}
		sched.state.SetNextAt(kind, now.Add(sched.state.Interval(kind)+desyncOffset(kind)).UnixMilli())
		changed = append(changed, model.NextAtKey(kind))
	}
	return append(changed, sched.repairLocked()...)
}
