package toast

import (
	"math/rand"
	"sync"
	"time"

	"blinkaway/internal/core/model"
	"blinkaway/internal/logx"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Config controls toast behaviour.
type Config struct {
	Duration time.Duration
}

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Window shows one blink or posture toast at a time and hides it after Duration.
type Window struct {
	window  fyne.Window
	icon    *widget.Label
	message *widget.Label
	log     logx.Logger

	mu       sync.Mutex
	config   Config
	rng      *rand.Rand
	hideTime *time.Timer
}

// New creates the toast window. It stays hidden until Show.
func New(app fyne.App, config Config, log logx.Logger) *Window {
	window := app.NewWindow("BlinkAway")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		window = driver.CreateSplashWindow()
	}

	icon := widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})
	message := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	window.SetContent(container.NewPadded(container.NewHBox(icon, message)))
	window.Resize(fyne.NewSize(320, 64))

	if config.Duration <= 0 {
		config.Duration = 6 * time.Second
	}
	return &Window{
		window:  window,
		icon:    icon,
		message: message,
		log:     log.With(logx.String("component", "toast")),
		config:  config,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Show displays a toast. An empty message picks a random one for kind.
// A toast shown while another is visible replaces it and restarts the timer.
func (toast *Window) Show(kind model.ReminderKind, message string) {
	toast.mu.Lock()
	if message == "" {
		message = pickMessage(kind, toast.rng)
	}
	if toast.hideTime != nil {
		toast.hideTime.Stop()
	}
	toast.hideTime = time.AfterFunc(toast.config.Duration, toast.hide)
	toast.mu.Unlock()

	toast.log.Debug("toast shown", logx.String("kind", string(kind)), logx.String("message", message))
	fyne.Do(func() {
		toast.icon.SetText(Icon(kind))
		toast.message.SetText(message)
		toast.window.Show()
	})
}

// UpdateConfig changes the auto-hide delay for future toasts.
func (toast *Window) UpdateConfig(config Config) {
	if config.Duration <= 0 {
		return
	}
	toast.mu.Lock()
	toast.config = config
	toast.mu.Unlock()
}

func (toast *Window) hide() {
	fyne.Do(func() {
		toast.window.Hide()
	})
}
