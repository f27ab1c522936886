package animation

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"
)

func TestRangeRandomStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	value := Range{Min: 10 * time.Millisecond, Max: 20 * time.Millisecond}
	for i := 0; i < 100; i++ {
		got := value.Random(rng)
		if got < value.Min || got >= value.Max {
			t.Fatalf("Random() = %v outside [%v, %v)", got, value.Min, value.Max)
		}
	}
	if got := (Range{Min: time.Second, Max: time.Second}).Random(rng); got != time.Second {
		t.Fatalf("degenerate range = %v", got)
	}
}

type spriteRecorder struct {
	mu     sync.Mutex
	frames []string
}

func (recorder *spriteRecorder) update(resource fyne.Resource) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.frames = append(recorder.frames, resource.Name())
}

func (recorder *spriteRecorder) snapshot() []string {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]string(nil), recorder.frames...)
}

func TestStartBlinkingAlternatesUntilStopped(t *testing.T) {
	recorder := &spriteRecorder{}
	fast := Range{Min: time.Millisecond, Max: 2 * time.Millisecond}
	engine := New(Config{ClosedDuration: fast, OpenDuration: fast, Interval: fast, DoubleBlinkGap: fast}, recorder.update)
	frames := Frames{
		Open:   fyne.NewStaticResource("open", nil),
		Closed: fyne.NewStaticResource("closed", nil),
	}

	engine.StartBlinking(context.Background(), frames)
	deadline := time.Now().Add(2 * time.Second)
	for len(recorder.snapshot()) < 5 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	engine.Stop()

	got := recorder.snapshot()
	if len(got) < 5 {
		t.Fatalf("too few frames: %v", got)
	}
	if got[0] != "open" || got[1] != "closed" || got[2] != "open" {
		t.Fatalf("unexpected frame order: %v", got[:3])
	}

	time.Sleep(20 * time.Millisecond)
	settled := len(recorder.snapshot())
	time.Sleep(20 * time.Millisecond)
	if after := len(recorder.snapshot()); after != settled {
		t.Fatalf("frames still updating after Stop: %d -> %d", settled, after)
	}
}

func TestCancelledContextStopsLoop(t *testing.T) {
	recorder := &spriteRecorder{}
	engine := New(DefaultConfig(), recorder.update)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine.StartBlinking(ctx, Frames{
		Open:   fyne.NewStaticResource("open", nil),
		Closed: fyne.NewStaticResource("closed", nil),
	})
	time.Sleep(20 * time.Millisecond)
	if got := recorder.snapshot(); len(got) > 1 {
		t.Fatalf("loop kept running on a cancelled context: %v", got)
	}
}
