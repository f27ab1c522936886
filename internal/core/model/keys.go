package model

import "strconv"

// Key names one field of the flat persisted record.
type Key string

const (
	KeyTwentyTwentyInterval        Key = "twentyTwentyIntervalMin"
	KeyBlinkInterval               Key = "blinkIntervalMin"
	KeyPostureInterval             Key = "postureIntervalMin"
	KeyNextTwentyTwenty            Key = "nextTwentyTwentyAt"
	KeyNextBlink                   Key = "nextBlinkAt"
	KeyNextPosture                 Key = "nextPostureAt"
	KeyEnabled                     Key = "enabled"
	KeyWorkingHoursEnabled         Key = "workingHoursEnabled"
	KeyWorkingHoursStart           Key = "workingHoursStart"
	KeyWorkingHoursEnd             Key = "workingHoursEnd"
	KeyManuallyResumedOutsideHours Key = "manuallyResumedOutsideHours"
)

// AllKeys lists every persisted key.
var AllKeys = []Key{
	KeyTwentyTwentyInterval,
	KeyBlinkInterval,
	KeyPostureInterval,
	KeyNextTwentyTwenty,
	KeyNextBlink,
	KeyNextPosture,
	KeyEnabled,
	KeyWorkingHoursEnabled,
	KeyWorkingHoursStart,
	KeyWorkingHoursEnd,
	KeyManuallyResumedOutsideHours,
}

// NextAtKey maps a reminder to its deadline key.
func NextAtKey(kind ReminderKind) Key {
	switch kind {
	case KindBlink:
		return KeyNextBlink
	case KindPosture:
		return KeyNextPosture
	default:
		return KeyNextTwentyTwenty
	}
}

// IntervalKey maps a reminder to its interval key.
func IntervalKey(kind ReminderKind) Key {
	switch kind {
	case KindBlink:
		return KeyBlinkInterval
	case KindPosture:
		return KeyPostureInterval
	default:
		return KeyTwentyTwentyInterval
	}
}

// Value returns the string encoding of a single field.
func (state ScheduleState) Value(key Key) (string, bool) {
	switch key {
	case KeyTwentyTwentyInterval:
		return strconv.Itoa(state.TwentyTwentyIntervalMin), true
	case KeyBlinkInterval:
		return strconv.Itoa(state.BlinkIntervalMin), true
	case KeyPostureInterval:
		return strconv.Itoa(state.PostureIntervalMin), true
	case KeyNextTwentyTwenty:
		return strconv.FormatInt(state.NextTwentyTwentyAt, 10), true
	case KeyNextBlink:
		return strconv.FormatInt(state.NextBlinkAt, 10), true
	case KeyNextPosture:
		return strconv.FormatInt(state.NextPostureAt, 10), true
	case KeyEnabled:
		return strconv.FormatBool(state.Enabled), true
	case KeyWorkingHoursEnabled:
		return strconv.FormatBool(state.WorkingHoursEnabled), true
	case KeyWorkingHoursStart:
		return state.WorkingHoursStart.String(), true
	case KeyWorkingHoursEnd:
		return state.WorkingHoursEnd.String(), true
	case KeyManuallyResumedOutsideHours:
		return strconv.FormatBool(state.ManuallyResumedOutsideHours), true
	default:
		return "", false
	}
}

// Values encodes the whole state as a flat key-value map.
func (state ScheduleState) Values() map[Key]string {
	values := make(map[Key]string, len(AllKeys))
	for _, key := range AllKeys {
		value, _ := state.Value(key)
		values[key] = value
	}
	return values
}

// SetValue decodes a single field. Unknown keys are ignored.
// On error the field may be left zeroed; use ApplyValues for a safe merge.
func (state *ScheduleState) SetValue(key Key, value string) error {
	var err error
	switch key {
	case KeyTwentyTwentyInterval:
		state.TwentyTwentyIntervalMin, err = parseInterval(value, state.TwentyTwentyIntervalMin)
	case KeyBlinkInterval:
		state.BlinkIntervalMin, err = parseInterval(value, state.BlinkIntervalMin)
	case KeyPostureInterval:
		state.PostureIntervalMin, err = parseInterval(value, state.PostureIntervalMin)
	case KeyNextTwentyTwenty:
		state.NextTwentyTwentyAt, err = strconv.ParseInt(value, 10, 64)
	case KeyNextBlink:
		state.NextBlinkAt, err = strconv.ParseInt(value, 10, 64)
	case KeyNextPosture:
		state.NextPostureAt, err = strconv.ParseInt(value, 10, 64)
	case KeyEnabled:
		state.Enabled, err = strconv.ParseBool(value)
	case KeyWorkingHoursEnabled:
		state.WorkingHoursEnabled, err = strconv.ParseBool(value)
	case KeyWorkingHoursStart:
		state.WorkingHoursStart, err = ParseClockTime(value)
	case KeyWorkingHoursEnd:
		state.WorkingHoursEnd, err = ParseClockTime(value)
	case KeyManuallyResumedOutsideHours:
		state.ManuallyResumedOutsideHours, err = strconv.ParseBool(value)
	}
	return err
}

// ApplyValues decodes every known key in values on top of state.
// Fields that fail to parse keep their current value; the first error is returned.
func (state *ScheduleState) ApplyValues(values map[Key]string) error {
	var firstErr error
	for _, key := range AllKeys {
		value, ok := values[key]
		if !ok {
			continue
		}
		candidate := *state
		if err := candidate.SetValue(key, value); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		*state = candidate
	}
	return firstErr
}

func parseInterval(value string, fallback int) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback, err
	}
	if parsed < 1 {
		return fallback, strconv.ErrRange
	}
	return parsed, nil
}
