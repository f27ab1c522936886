package overlay

import (
	"context"
	"sync"
	"time"
)

// countdown runs one break: it reports every remaining second and finishes
// exactly once, either when it reaches zero or when stopped early.
type countdown struct {
	seconds  int
	step     time.Duration
	onTick   func(secondsLeft int)
	onFinish func()

	cancel context.CancelFunc
	once   sync.Once
}

func newCountdown(seconds int, step time.Duration, onTick func(int), onFinish func()) *countdown {
	if onTick == nil {
		onTick = func(int) {}
	}
	if onFinish == nil {
		onFinish = func() {}
	}
	return &countdown{seconds: seconds, step: step, onTick: onTick, onFinish: onFinish}
}

// start launches the countdown goroutine.
func (timer *countdown) start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	timer.cancel = cancel
	go timer.run(ctx)
}

func (timer *countdown) run(ctx context.Context) {
	ticker := time.NewTicker(timer.step)
	defer ticker.Stop()

	for remaining := timer.seconds; remaining > 0; {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining--
			timer.onTick(remaining)
		}
	}
	timer.finish()
}

// finish stops the goroutine and fires onFinish once.
func (timer *countdown) finish() {
	timer.once.Do(func() {
		if timer.cancel != nil {
			timer.cancel()
		}
		timer.onFinish()
	})
}
