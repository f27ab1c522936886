package preferences

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"blinkaway/internal/core/model"
)

var ErrInvalidInterval = errors.New("interval must be a whole number of minutes, at least 1")

// Values are the raw contents of the preferences form.
type Values struct {
	TwentyTwentyMin     string
	BlinkMin            string
	PostureMin          string
	Enabled             bool
	WorkingHoursEnabled bool
	WorkingHoursStart   string
	WorkingHoursEnd     string
	LaunchAtLogin       bool
}

// ValuesOf fills the form from a schedule.
func ValuesOf(state model.ScheduleState, launchAtLogin bool) Values {
	return Values{
		TwentyTwentyMin:     strconv.Itoa(state.TwentyTwentyIntervalMin),
		BlinkMin:            strconv.Itoa(state.BlinkIntervalMin),
		PostureMin:          strconv.Itoa(state.PostureIntervalMin),
		Enabled:             state.Enabled,
		WorkingHoursEnabled: state.WorkingHoursEnabled,
		WorkingHoursStart:   state.WorkingHoursStart.String(),
		WorkingHoursEnd:     state.WorkingHoursEnd.String(),
		LaunchAtLogin:       launchAtLogin,
	}
}

// Diff turns form values into an update holding only the fields that changed.
// Nothing is returned unless every field is valid.
func Diff(current model.ScheduleState, values Values) (model.SettingsUpdate, error) {
	var update model.SettingsUpdate

	intervals := []struct {
		name    string
		raw     string
		current int
		target  **int
	}{
		{"20-20-20 interval", values.TwentyTwentyMin, current.TwentyTwentyIntervalMin, &update.TwentyTwentyIntervalMin},
		{"blink interval", values.BlinkMin, current.BlinkIntervalMin, &update.BlinkIntervalMin},
		{"posture interval", values.PostureMin, current.PostureIntervalMin, &update.PostureIntervalMin},
	}
	for _, interval := range intervals {
		minutes, err := parseMinutes(interval.raw)
		if err != nil {
			return model.SettingsUpdate{}, fmt.Errorf("%s: %w", interval.name, err)
		}
		if minutes != interval.current {
			*interval.target = &minutes
		}
	}

	start, err := model.ParseClockTime(strings.TrimSpace(values.WorkingHoursStart))
	if err != nil {
		return model.SettingsUpdate{}, fmt.Errorf("working hours start: %w", err)
	}
	end, err := model.ParseClockTime(strings.TrimSpace(values.WorkingHoursEnd))
	if err != nil {
		return model.SettingsUpdate{}, fmt.Errorf("working hours end: %w", err)
	}

	if values.Enabled != current.Enabled {
		enabled := values.Enabled
		update.Enabled = &enabled
	}
	if values.WorkingHoursEnabled != current.WorkingHoursEnabled {
		enabled := values.WorkingHoursEnabled
		update.WorkingHoursEnabled = &enabled
	}
	if start != current.WorkingHoursStart {
		update.WorkingHoursStart = &start
	}
	if end != current.WorkingHoursEnd {
		update.WorkingHoursEnd = &end
	}
	return update, nil
}

func parseMinutes(value string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 1 {
		return 0, ErrInvalidInterval
	}
	return parsed, nil
}
