package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidClockTime is returned for values that are not "HH:MM".
var ErrInvalidClockTime = errors.New("invalid clock time")

// ClockTime is a time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" (24h).
func ParseClockTime(value string) (ClockTime, error) {
	hourText, minuteText, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	hour, err := strconv.Atoi(hourText)
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	minute, err := strconv.Atoi(minuteText)
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// MustClockTime is ParseClockTime for literals.
func MustClockTime(value string) ClockTime {
	parsed, err := ParseClockTime(value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func (clock ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", clock.Hour, clock.Minute)
}

// MinutesOfDay returns minutes since midnight.
func (clock ClockTime) MinutesOfDay() int {
	return clock.Hour*60 + clock.Minute
}

// MarshalText implements encoding.TextMarshaler.
func (clock ClockTime) MarshalText() ([]byte, error) {
	return []byte(clock.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (clock *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*clock = parsed
	return nil
}

// WorkingHours is a daily window, possibly wrapping midnight.
type WorkingHours struct {
	Enabled bool
	Start   ClockTime
	End     ClockTime
}

// Contains reports whether t falls inside the window, using t's location.
// A disabled window contains every instant.
func (hours WorkingHours) Contains(t time.Time) bool {
	if !hours.Enabled {
		return true
	}
	current := t.Hour()*60 + t.Minute()
	start := hours.Start.MinutesOfDay()
	end := hours.End.MinutesOfDay()
	if end < start {
		return current >= start || current < end
	}
	return current >= start && current < end
}
