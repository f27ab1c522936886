package overlay

import (
	"context"
	"fmt"
	"image/color"
	"math/rand"
	"sync"
	"time"

	"blinkaway/internal/core/scheduler"
	"blinkaway/internal/logx"
	"blinkaway/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Instruction is shown under the break message.
const Instruction = "Look at something 20 feet away"

var breakMessages = []string{
	"Give them eyes a rest, champ 👀",
	"Time to gaze into the distance 🌅",
	"Look far, see far 🔭",
	"Your eyes will thank you ✨",
	"Take a visual vacation 🏖️",
	"Time for some eye yoga 🧘",
	"Let those peepers breathe 💨",
	"Focus on the horizon 🌄",
}

// Config defines overlay visuals.
type Config struct {
	Opacity    uint8
	Fullscreen bool
}

// Window is the full-screen 20-20-20 presenter.
type Window struct {
	app           fyne.App
	window        fyne.Window
	config        Config
	background    *canvas.Rectangle
	image         *canvas.Image
	messageLabel  *canvas.Text
	timerLabel    *canvas.Text
	engine        *animation.Engine
	frames        animation.Frames
	log           logx.Logger
	rng           *rand.Rand
	countdownStep time.Duration

	mu     sync.Mutex
	active *countdown
}

const (
	overlayWidthFraction  = float32(0.3)
	overlayHeightFraction = float32(0.3)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the overlay window. It stays hidden until Show.
func New(app fyne.App, config Config, frames animation.Frames, log logx.Logger) *Window {
	window := app.NewWindow("BlinkAway")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: config.Opacity})

	image := canvas.NewImageFromResource(frames.Open)
	image.FillMode = canvas.ImageFillContain
	image.SetMinSize(fyne.NewSize(96, 96))

	messageLabel := canvas.NewText("", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	messageLabel.Alignment = fyne.TextAlignCenter
	messageLabel.TextStyle = fyne.TextStyle{Bold: true}
	messageLabel.TextSize = 28

	timerLabel := canvas.NewText(formatSeconds(scheduler.BreakSeconds), color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 48

	instructionLabel := canvas.NewText(Instruction, color.NRGBA{R: 220, G: 220, B: 220, A: 255})
	instructionLabel.Alignment = fyne.TextAlignCenter
	instructionLabel.TextSize = 16

	overlay := &Window{
		app:           app,
		window:        window,
		config:        config,
		background:    background,
		image:         image,
		messageLabel:  messageLabel,
		timerLabel:    timerLabel,
		frames:        frames,
		log:           log.With(logx.String("component", "overlay")),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		countdownStep: time.Second,
	}

	skipButton := widget.NewButton("Skip (Esc)", overlay.Skip)
	content := container.NewCenter(container.NewVBox(
		container.NewCenter(image),
		messageLabel,
		timerLabel,
		instructionLabel,
		container.NewCenter(skipButton),
	))
	window.SetContent(container.NewStack(background, content))
	window.Canvas().SetOnTypedKey(func(event *fyne.KeyEvent) {
		if event.Name == fyne.KeyEscape {
			overlay.Skip()
		}
	})

	overlay.engine = animation.New(animation.DefaultConfig(), overlay.setSprite)
	overlay.applyWindowMode()
	return overlay
}

// Show starts a break countdown. onComplete runs exactly once, after the
// last tick or after Skip.
func (overlay *Window) Show(onComplete func(), onCountdownTick func(secondsLeft int)) {
	var run *countdown
	run = newCountdown(scheduler.BreakSeconds, overlay.countdownStep,
		func(secondsLeft int) {
			fyne.Do(func() { overlay.setRemaining(secondsLeft) })
			if onCountdownTick != nil {
				onCountdownTick(secondsLeft)
			}
		},
		func() {
			overlay.release(run)
			if onComplete != nil {
				onComplete()
			}
		},
	)

	overlay.mu.Lock()
	previous := overlay.active
	overlay.active = run
	overlay.mu.Unlock()
	if previous != nil {
		overlay.log.Warn("break overlay replaced while active")
		previous.finish()
	}

	message := breakMessages[overlay.rng.Intn(len(breakMessages))]
	fyne.Do(func() {
		overlay.messageLabel.Text = message
		overlay.messageLabel.Refresh()
		overlay.setRemaining(scheduler.BreakSeconds)
		overlay.applyWindowMode()
		overlay.window.Show()
		overlay.window.RequestFocus()
	})
	overlay.engine.StartBlinking(context.Background(), overlay.frames)
	run.start(context.Background())
}

// Skip ends the active break early. It does nothing when no break is shown.
func (overlay *Window) Skip() {
	overlay.mu.Lock()
	run := overlay.active
	overlay.mu.Unlock()
	if run != nil {
		run.finish()
	}
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	fyne.Do(func() {
		overlay.config = config
		overlay.background.FillColor = color.NRGBA{R: 0, G: 0, B: 0, A: config.Opacity}
		canvas.Refresh(overlay.background)
		overlay.applyWindowMode()
	})
}

// release hides the window once the given run is no longer the active one.
func (overlay *Window) release(run *countdown) {
	overlay.mu.Lock()
	current := overlay.active == run
	if current {
		overlay.active = nil
	}
	overlay.mu.Unlock()
	if !current {
		return
	}
	overlay.engine.Stop()
	fyne.Do(func() {
		if overlay.config.Fullscreen {
			overlay.window.SetFullScreen(false)
		}
		overlay.window.Hide()
	})
}

func (overlay *Window) setSprite(resource fyne.Resource) {
	fyne.Do(func() {
		overlay.image.Resource = resource
		overlay.image.Refresh()
	})
}

func (overlay *Window) setRemaining(secondsLeft int) {
	overlay.timerLabel.Text = formatSeconds(secondsLeft)
	overlay.timerLabel.Refresh()
}

func (overlay *Window) applyWindowMode() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(true)
		return
	}
	overlay.window.SetFullScreen(false)
	overlay.resizeToScreenFraction()
	overlay.applyNativeOpacity(overlay.config.Opacity)
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := overlay.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}

func formatSeconds(secondsLeft int) string {
	if secondsLeft < 0 {
		secondsLeft = 0
	}
	return fmt.Sprintf("00:%02d", secondsLeft)
}

// OpacityToAlpha converts a 0..1 opacity into an alpha channel value.
func OpacityToAlpha(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}
