package model

import "time"

// ReminderKind identifies one of the three recurring reminders.
type ReminderKind string

const (
	KindTwentyTwenty ReminderKind = "twenty_twenty"
	KindBlink        ReminderKind = "blink"
	KindPosture      ReminderKind = "posture"
)

// Kinds lists reminders in priority order.
var Kinds = []ReminderKind{KindTwentyTwenty, KindBlink, KindPosture}

// ParseReminderKind accepts the canonical names plus a few short aliases.
func ParseReminderKind(value string) (ReminderKind, bool) {
	switch value {
	case string(KindTwentyTwenty), "20-20-20", "twentytwenty", "break":
		return KindTwentyTwenty, true
	case string(KindBlink):
		return KindBlink, true
	case string(KindPosture):
		return KindPosture, true
	default:
		return "", false
	}
}

// ScheduleState is the persisted reminder schedule.
// Deadlines are milliseconds since the Unix epoch; zero means "not scheduled yet".
type ScheduleState struct {
	TwentyTwentyIntervalMin int
	BlinkIntervalMin        int
	PostureIntervalMin      int

	NextTwentyTwentyAt int64
	NextBlinkAt        int64
	NextPostureAt      int64

	Enabled bool

	WorkingHoursEnabled bool
	WorkingHoursStart   ClockTime
	WorkingHoursEnd     ClockTime

	ManuallyResumedOutsideHours bool
}

// DefaultScheduleState returns the first-run schedule.
func DefaultScheduleState() ScheduleState {
	return ScheduleState{
		TwentyTwentyIntervalMin: 20,
		BlinkIntervalMin:        5,
		PostureIntervalMin:      30,
		Enabled:                 true,
		WorkingHoursEnabled:     false,
		WorkingHoursStart:       ClockTime{Hour: 9},
		WorkingHoursEnd:         ClockTime{Hour: 17},
	}
}

// Normalize clamps intervals to at least one minute.
func (state *ScheduleState) Normalize() {
	if state.TwentyTwentyIntervalMin < 1 {
		state.TwentyTwentyIntervalMin = 1
	}
	if state.BlinkIntervalMin < 1 {
		state.BlinkIntervalMin = 1
	}
	if state.PostureIntervalMin < 1 {
		state.PostureIntervalMin = 1
	}
}

// Interval returns the configured interval for a reminder.
func (state ScheduleState) Interval(kind ReminderKind) time.Duration {
	switch kind {
	case KindTwentyTwenty:
		return time.Duration(state.TwentyTwentyIntervalMin) * time.Minute
	case KindBlink:
		return time.Duration(state.BlinkIntervalMin) * time.Minute
	case KindPosture:
		return time.Duration(state.PostureIntervalMin) * time.Minute
	default:
		return 0
	}
}

// NextAt returns the deadline of a reminder in epoch milliseconds.
func (state ScheduleState) NextAt(kind ReminderKind) int64 {
	switch kind {
	case KindTwentyTwenty:
		return state.NextTwentyTwentyAt
	case KindBlink:
		return state.NextBlinkAt
	case KindPosture:
		return state.NextPostureAt
	default:
		return 0
	}
}

// SetNextAt updates the deadline of a reminder.
func (state *ScheduleState) SetNextAt(kind ReminderKind, millis int64) {
	switch kind {
	case KindTwentyTwenty:
		state.NextTwentyTwentyAt = millis
	case KindBlink:
		state.NextBlinkAt = millis
	case KindPosture:
		state.NextPostureAt = millis
	}
}

// WorkingHours returns the configured working-hours window.
func (state ScheduleState) WorkingHours() WorkingHours {
	return WorkingHours{
		Enabled: state.WorkingHoursEnabled,
		Start:   state.WorkingHoursStart,
		End:     state.WorkingHoursEnd,
	}
}

// SettingsUpdate is a partial settings request. Nil fields are left untouched.
type SettingsUpdate struct {
	TwentyTwentyIntervalMin *int
	BlinkIntervalMin        *int
	PostureIntervalMin      *int
	Enabled                 *bool
	WorkingHoursEnabled     *bool
	WorkingHoursStart       *ClockTime
	WorkingHoursEnd         *ClockTime
}

// IsEmpty reports whether the update carries no fields.
func (update SettingsUpdate) IsEmpty() bool {
	return update.TwentyTwentyIntervalMin == nil &&
		update.BlinkIntervalMin == nil &&
		update.PostureIntervalMin == nil &&
		update.Enabled == nil &&
		update.WorkingHoursEnabled == nil &&
		update.WorkingHoursStart == nil &&
		update.WorkingHoursEnd == nil
}

// HasIntervals reports whether any interval field is present.
func (update SettingsUpdate) HasIntervals() bool {
	return update.TwentyTwentyIntervalMin != nil ||
		update.BlinkIntervalMin != nil ||
		update.PostureIntervalMin != nil
}

// Interval returns the requested interval for a reminder, if present.
func (update SettingsUpdate) Interval(kind ReminderKind) (int, bool) {
	var value *int
	switch kind {
	case KindTwentyTwenty:
		value = update.TwentyTwentyIntervalMin
	case KindBlink:
		value = update.BlinkIntervalMin
	case KindPosture:
		value = update.PostureIntervalMin
	}
	if value == nil {
		return 0, false
	}
	return *value, true
}
