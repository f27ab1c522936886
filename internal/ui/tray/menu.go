package tray

import (
	"fmt"
	"time"

	"blinkaway/internal/core/model"
	"blinkaway/internal/core/scheduler"
)

// Action identifies what a menu entry does when clicked.
type Action int

const (
	ActionNone Action = iota
	ActionPreferences
	ActionPauseFor
	ActionPauseIndefinitely
	ActionPauseUntilWorkStart
	ActionResume
	ActionSkipBreak
	ActionTrigger
	ActionSkipToNear
	ActionQuit
)

// PauseDurations are offered under "Pause for...".
var PauseDurations = []time.Duration{5 * time.Minute, 15 * time.Minute, 60 * time.Minute}

// DebugSkipSeconds is how close "skip to" moves a deadline.
const DebugSkipSeconds = 5

// Entry is one menu line. Separator entries carry no label.
type Entry struct {
	Label     string
	Action    Action
	Duration  time.Duration
	Kind      model.ReminderKind
	Disabled  bool
	Separator bool
	Children  []Entry
}

var kindLabels = map[model.ReminderKind]string{
	model.KindTwentyTwenty: "20-20-20 break",
	model.KindBlink:        "blink reminder",
	model.KindPosture:      "posture reminder",
}

// BuildMenu returns the tray menu for a status.
func BuildMenu(status scheduler.Status, workingHoursEnabled, debug bool) []Entry {
	entries := []Entry{
		{Label: statusLine(status), Disabled: true},
		{Separator: true},
	}

	switch status.State {
	case scheduler.StatePaused:
		entries = append(entries, Entry{Label: "Resume", Action: ActionResume})
	case scheduler.StateBreak:
		entries = append(entries, Entry{Label: "Skip break", Action: ActionSkipBreak})
	}

	if status.State != scheduler.StatePaused {
		pauseFor := Entry{Label: "Pause for..."}
		for _, duration := range PauseDurations {
			pauseFor.Children = append(pauseFor.Children, Entry{
				Label:    formatPause(duration),
				Action:   ActionPauseFor,
				Duration: duration,
			})
		}
		entries = append(entries, pauseFor, Entry{Label: "Pause", Action: ActionPauseIndefinitely})
	}
	if workingHoursEnabled && status.OutsideWorkingHours {
		entries = append(entries, Entry{Label: "Pause until work starts", Action: ActionPauseUntilWorkStart})
	}

	entries = append(entries, Entry{Separator: true}, Entry{Label: "Preferences", Action: ActionPreferences})
	if debug {
		entries = append(entries, debugMenu())
	}
	return append(entries, Entry{Separator: true}, Entry{Label: "Quit", Action: ActionQuit})
}

func debugMenu() Entry {
	menu := Entry{Label: "Debug"}
	for _, kind := range model.Kinds {
		menu.Children = append(menu.Children, Entry{
			Label:  "Trigger " + kindLabels[kind],
			Action: ActionTrigger,
			Kind:   kind,
		})
	}
	menu.Children = append(menu.Children, Entry{Separator: true})
	for _, kind := range model.Kinds {
		menu.Children = append(menu.Children, Entry{
			Label:  fmt.Sprintf("Next %s in %ds", kindLabels[kind], DebugSkipSeconds),
			Action: ActionSkipToNear,
			Kind:   kind,
		})
	}
	return menu
}

func statusLine(status scheduler.Status) string {
	switch status.State {
	case scheduler.StatePaused:
		if status.OutsideWorkingHours {
			return scheduler.Title(status) + " Outside working hours"
		}
		return scheduler.Title(status) + " Paused"
	case scheduler.StateBreak:
		return scheduler.Title(status) + " Break in progress"
	default:
		return scheduler.Title(status) + " until next break"
	}
}

func formatPause(duration time.Duration) string {
	if duration >= time.Hour && duration%time.Hour == 0 {
		hours := int(duration / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d minutes", int(duration/time.Minute))
}
