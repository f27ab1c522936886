package animation

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains blink timing values.
type Config struct {
	ClosedDuration    Range
	OpenDuration      Range
	Interval          Range
	DoubleBlinkChance float64
	DoubleBlinkGap    Range
}

// Frames is the sprite pair used for blinking.
type Frames struct {
	Open   fyne.Resource
	Closed fyne.Resource
}

// Engine drives the blinking eye shown during a 20-20-20 break.
type Engine struct {
	mu           sync.Mutex
	config       Config
	updateSprite func(fyne.Resource)
	cancel       context.CancelFunc
	rng          *rand.Rand
}

// New creates a new animation engine.
func New(config Config, updateSprite func(fyne.Resource)) *Engine {
	return &Engine{
		config:       config,
		updateSprite: updateSprite,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartBlinking replaces any running loop with a blink loop bound to ctx.
func (engine *Engine) StartBlinking(ctx context.Context, frames Frames) {
	engine.start(ctx, func(runCtx context.Context) {
		engine.updateSprite(frames.Open)
		for {
			if !sleepWithContext(runCtx, engine.random(engine.config.Interval)) {
				return
			}
			if !engine.blink(runCtx, frames) {
				return
			}
			if engine.chance() <= engine.config.DoubleBlinkChance {
				if !sleepWithContext(runCtx, engine.random(engine.config.DoubleBlinkGap)) {
					return
				}
				if !engine.blink(runCtx, frames) {
					return
				}
			}
		}
	})
}

// Stop terminates any active animation.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

func (engine *Engine) blink(ctx context.Context, frames Frames) bool {
	engine.updateSprite(frames.Closed)
	if !sleepWithContext(ctx, engine.random(engine.config.ClosedDuration)) {
		return false
	}
	engine.updateSprite(frames.Open)
	return sleepWithContext(ctx, engine.random(engine.config.OpenDuration))
}

// rand.Rand is not safe for concurrent use.
func (engine *Engine) random(value Range) time.Duration {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return value.Random(engine.rng)
}

func (engine *Engine) chance() float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.rng.Float64()
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
