package preferences

import (
	"blinkaway/internal/core/model"
	"blinkaway/internal/logx"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Handlers are called when the user saves the form.
type Handlers struct {
	// Current returns the schedule the form is compared against.
	Current         func() model.ScheduleState
	LaunchAtLogin   func() bool
	OnSave          func(model.SettingsUpdate)
	OnLaunchAtLogin func(enabled bool) error
}

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	handlers Handlers
	log      logx.Logger

	twentyTwenty *widget.Entry
	blink        *widget.Entry
	posture      *widget.Entry
	enabled      *widget.Check
	hoursEnabled *widget.Check
	hoursStart   *widget.Entry
	hoursEnd     *widget.Entry
	autostart    *widget.Check
	errorLabel   *widget.Label
}

// New creates a preferences window.
func New(app fyne.App, handlers Handlers, log logx.Logger) *Window {
	window := app.NewWindow("BlinkAway Preferences")

	prefs := &Window{
		window:       window,
		handlers:     handlers,
		log:          log.With(logx.String("component", "preferences")),
		twentyTwenty: widget.NewEntry(),
		blink:        widget.NewEntry(),
		posture:      widget.NewEntry(),
		enabled:      widget.NewCheck("Reminders enabled", nil),
		hoursEnabled: widget.NewCheck("Only remind during working hours", nil),
		hoursStart:   widget.NewEntry(),
		hoursEnd:     widget.NewEntry(),
		autostart:    widget.NewCheck("Launch at login", nil),
		errorLabel:   widget.NewLabel(""),
	}
	prefs.hoursStart.SetPlaceHolder("09:00")
	prefs.hoursEnd.SetPlaceHolder("17:00")
	prefs.errorLabel.Importance = widget.DangerImportance
	prefs.errorLabel.Hide()

	form := container.NewVBox(
		widget.NewLabelWithStyle("Reminders", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("20-20-20 break every"), prefs.twentyTwenty, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Blink reminder every"), prefs.blink, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Posture reminder every"), prefs.posture, widget.NewLabel("min")),
		prefs.enabled,
		widget.NewLabelWithStyle("Working hours", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.hoursEnabled,
		container.NewHBox(widget.NewLabel("From"), prefs.hoursStart, widget.NewLabel("to"), prefs.hoursEnd),
		widget.NewLabelWithStyle("System", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.autostart,
		prefs.errorLabel,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 440))
	window.SetCloseIntercept(window.Hide)
	return prefs
}

// Show refreshes the form from the current schedule and displays the window.
func (prefs *Window) Show() {
	state, launchAtLogin := prefs.current()
	prefs.load(ValuesOf(state, launchAtLogin))
	prefs.window.Show()
	prefs.window.RequestFocus()
}

func (prefs *Window) current() (model.ScheduleState, bool) {
	state := model.DefaultScheduleState()
	if prefs.handlers.Current != nil {
		state = prefs.handlers.Current()
	}
	launchAtLogin := false
	if prefs.handlers.LaunchAtLogin != nil {
		launchAtLogin = prefs.handlers.LaunchAtLogin()
	}
	return state, launchAtLogin
}

func (prefs *Window) load(values Values) {
	prefs.twentyTwenty.SetText(values.TwentyTwentyMin)
	prefs.blink.SetText(values.BlinkMin)
	prefs.posture.SetText(values.PostureMin)
	prefs.enabled.SetChecked(values.Enabled)
	prefs.hoursEnabled.SetChecked(values.WorkingHoursEnabled)
	prefs.hoursStart.SetText(values.WorkingHoursStart)
	prefs.hoursEnd.SetText(values.WorkingHoursEnd)
	prefs.autostart.SetChecked(values.LaunchAtLogin)
	prefs.errorLabel.Hide()
}

func (prefs *Window) read() Values {
	return Values{
		TwentyTwentyMin:     prefs.twentyTwenty.Text,
		BlinkMin:            prefs.blink.Text,
		PostureMin:          prefs.posture.Text,
		Enabled:             prefs.enabled.Checked,
		WorkingHoursEnabled: prefs.hoursEnabled.Checked,
		WorkingHoursStart:   prefs.hoursStart.Text,
		WorkingHoursEnd:     prefs.hoursEnd.Text,
		LaunchAtLogin:       prefs.autostart.Checked,
	}
}

func (prefs *Window) handleSave() {
	state, launchAtLogin := prefs.current()
	values := prefs.read()

	update, err := Diff(state, values)
	if err != nil {
		prefs.showError(err.Error())
		return
	}

	if values.LaunchAtLogin != launchAtLogin && prefs.handlers.OnLaunchAtLogin != nil {
		if err := prefs.handlers.OnLaunchAtLogin(values.LaunchAtLogin); err != nil {
			prefs.log.Warn("launch at login not updated", logx.Err(err))
			prefs.showError("Could not change launch at login: " + err.Error())
			return
		}
	}
	if !update.IsEmpty() && prefs.handlers.OnSave != nil {
		prefs.handlers.OnSave(update)
	}
	prefs.window.Hide()
}

func (prefs *Window) showError(message string) {
	prefs.errorLabel.SetText(message)
	prefs.errorLabel.Show()
}
