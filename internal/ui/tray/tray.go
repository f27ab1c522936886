package tray

import (
	"time"

	"blinkaway/internal/core/model"
	"blinkaway/internal/core/scheduler"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnPreferences         func()
	OnPauseFor            func(time.Duration)
	OnPauseIndefinitely   func()
	OnPauseUntilWorkStart func()
	OnResume              func()
	OnSkipBreak           func()
	OnTrigger             func(model.ReminderKind)
	OnSkipToNear          func(model.ReminderKind, int)
	OnQuit                func()
}

// Icons are the tray icons for the running and paused states.
type Icons struct {
	Active fyne.Resource
	Paused fyne.Resource
}

// Manager handles system tray state. Methods must run on the fyne thread.
type Manager struct {
	app          desktop.App
	callbacks    Callbacks
	icons        Icons
	debug        bool
	workingHours bool
	status       scheduler.Status
	lastIcon     fyne.Resource
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, icons Icons, callbacks Callbacks, debug bool) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		icons:     icons,
		debug:     debug,
		status:    scheduler.Status{State: scheduler.StateRunning},
	}
	manager.refreshMenu()
	return manager
}

// SetStatus updates the status line, icon and the actions on offer.
func (manager *Manager) SetStatus(status scheduler.Status) {
	manager.status = status
	manager.refreshIcon()
	manager.refreshMenu()
}

// SetWorkingHoursEnabled toggles the "until work starts" entry.
func (manager *Manager) SetWorkingHoursEnabled(enabled bool) {
	if manager.workingHours == enabled {
		return
	}
	manager.workingHours = enabled
	manager.refreshMenu()
}

// SetDebug shows or hides the debug submenu.
func (manager *Manager) SetDebug(debug bool) {
	if manager.debug == debug {
		return
	}
	manager.debug = debug
	manager.refreshMenu()
}

func (manager *Manager) refreshIcon() {
	icon := manager.icons.Active
	if manager.status.State == scheduler.StatePaused {
		icon = manager.icons.Paused
	}
	if icon == nil || icon == manager.lastIcon || manager.app == nil {
		return
	}
	manager.lastIcon = icon
	manager.app.SetSystemTrayIcon(icon)
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	entries := BuildMenu(manager.status, manager.workingHours, manager.debug)
	manager.app.SetSystemTrayMenu(fyne.NewMenu("BlinkAway", manager.items(entries)...))
}

func (manager *Manager) items(entries []Entry) []*fyne.MenuItem {
	items := make([]*fyne.MenuItem, 0, len(entries))
	for _, entry := range entries {
		if entry.Separator {
			items = append(items, fyne.NewMenuItemSeparator())
			continue
		}
		item := fyne.NewMenuItem(entry.Label, manager.handler(entry))
		item.Disabled = entry.Disabled
		if len(entry.Children) > 0 {
			item.ChildMenu = fyne.NewMenu("", manager.items(entry.Children)...)
		}
		items = append(items, item)
	}
	return items
}

func (manager *Manager) handler(entry Entry) func() {
	callbacks := manager.callbacks
	switch entry.Action {
	case ActionPreferences:
		return call(callbacks.OnPreferences)
	case ActionPauseFor:
		return func() {
			if callbacks.OnPauseFor != nil {
				callbacks.OnPauseFor(entry.Duration)
			}
		}
	case ActionPauseIndefinitely:
		return call(callbacks.OnPauseIndefinitely)
	case ActionPauseUntilWorkStart:
		return call(callbacks.OnPauseUntilWorkStart)
	case ActionResume:
		return call(callbacks.OnResume)
	case ActionSkipBreak:
		return call(callbacks.OnSkipBreak)
	case ActionTrigger:
		return func() {
			if callbacks.OnTrigger != nil {
				callbacks.OnTrigger(entry.Kind)
			}
		}
	case ActionSkipToNear:
		return func() {
			if callbacks.OnSkipToNear != nil {
				callbacks.OnSkipToNear(entry.Kind, DebugSkipSeconds)
			}
		}
	case ActionQuit:
		return call(callbacks.OnQuit)
	default:
		return nil
	}
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}
