package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"blinkaway/internal/core/clock"
	"blinkaway/internal/core/model"
	"blinkaway/internal/logx"
	"blinkaway/internal/storage"

	"github.com/spf13/afero"
)

// Monday morning, comfortably inside 09:00-17:00.
var baseTime = time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)

type fakeOverlay struct {
	mu       sync.Mutex
	shows    int
	complete func()
	tick     func(int)
}

func (overlay *fakeOverlay) Show(onComplete func(), onTick func(int)) {
	overlay.mu.Lock()
	defer overlay.mu.Unlock()
	overlay.shows++
	overlay.complete = onComplete
	overlay.tick = onTick
}

func (overlay *fakeOverlay) Skip() {
	overlay.finish()
}

func (overlay *fakeOverlay) finish() {
	overlay.mu.Lock()
	complete := overlay.complete
	overlay.complete = nil
	overlay.mu.Unlock()
	if complete != nil {
		complete()
	}
}

func (overlay *fakeOverlay) showCount() int {
	overlay.mu.Lock()
	defer overlay.mu.Unlock()
	return overlay.shows
}

type fakeToast struct {
	mu    sync.Mutex
	kinds []model.ReminderKind
}

func (toast *fakeToast) Show(kind model.ReminderKind, message string) {
	toast.mu.Lock()
	defer toast.mu.Unlock()
	toast.kinds = append(toast.kinds, kind)
}

func (toast *fakeToast) shown() []model.ReminderKind {
	toast.mu.Lock()
	defer toast.mu.Unlock()
	return append([]model.ReminderKind(nil), toast.kinds...)
}

type fakeTicks struct {
	mu      sync.Mutex
	starts  int
	stops   int
	ticking bool
}

func (ticks *fakeTicks) StartTicking() {
	ticks.mu.Lock()
	defer ticks.mu.Unlock()
	ticks.starts++
	ticks.ticking = true
}

func (ticks *fakeTicks) StopTicking() {
	ticks.mu.Lock()
	defer ticks.mu.Unlock()
	ticks.stops++
	ticks.ticking = false
}

func (ticks *fakeTicks) isTicking() bool {
	ticks.mu.Lock()
	defer ticks.mu.Unlock()
	return ticks.ticking
}

type harness struct {
	sched   *Scheduler
	clock   *clock.Fake
	store   storage.Store
	overlay *fakeOverlay
	toast   *fakeToast
	ticks   *fakeTicks
}

func newHarness(t *testing.T, start time.Time, mutate func(*model.ScheduleState)) *harness {
	t.Helper()
	store, err := storage.OpenYAML(afero.NewMemMapFs(), "/state.yaml", logx.Nop())
	if err != nil {
		t.Fatalf("OpenYAML: %v", err)
	}
	if mutate != nil {
		state := store.Snapshot()
		mutate(&state)
		if err := store.Save(context.Background(), state); err != nil {
			t.Fatalf("seed state: %v", err)
		}
	}

	h := &harness{
		clock:   clock.NewFake(start),
		store:   store,
		overlay: &fakeOverlay{},
		toast:   &fakeToast{},
		ticks:   &fakeTicks{ticking: true},
	}
	h.sched = New(Options{
		Store:   store,
		Clock:   h.clock,
		Overlay: h.overlay,
		Toast:   h.toast,
	})
	h.sched.SetTickControl(h.ticks)
	return h
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func TestInitializeSeedsDeadlinesWithOffsets(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()

	got := h.sched.Snapshot()
	if got.NextTwentyTwentyAt != millis(baseTime.Add(20*time.Minute)) {
		t.Fatalf("nextTwentyTwentyAt = %v", time.UnixMilli(got.NextTwentyTwentyAt))
	}
	if got.NextBlinkAt != millis(baseTime.Add(6*time.Minute)) {
		t.Fatalf("nextBlinkAt = %v", time.UnixMilli(got.NextBlinkAt))
	}
	if got.NextPostureAt != millis(baseTime.Add(32*time.Minute)) {
		t.Fatalf("nextPostureAt = %v", time.UnixMilli(got.NextPostureAt))
	}
	if persisted := h.store.Snapshot(); persisted != got {
		t.Fatalf("store not updated: %+v", persisted)
	}
	assertSpaced(t, got)

	h.clock.Advance(30 * time.Second)
	h.sched.Initialize()
	if again := h.sched.Snapshot(); again != got {
		t.Fatalf("Initialize is not idempotent: %+v vs %+v", again, got)
	}
}

func TestInitializeKeepsFutureDeadlines(t *testing.T) {
	future := baseTime.Add(3 * time.Minute)
	h := newHarness(t, baseTime, func(state *model.ScheduleState) {
		state.NextTwentyTwentyAt = millis(future)
		state.NextBlinkAt = millis(baseTime.Add(-time.Hour))
		state.NextPostureAt = millis(baseTime.Add(10 * time.Minute))
	})
	h.sched.Initialize()

	got := h.sched.Snapshot()
	if got.NextTwentyTwentyAt != millis(future) {
		t.Fatalf("future 20-20-20 deadline moved to %v", time.UnixMilli(got.NextTwentyTwentyAt))
	}
	if got.NextBlinkAt != millis(baseTime.Add(6*time.Minute)) {
		t.Fatalf("elapsed blink deadline = %v", time.UnixMilli(got.NextBlinkAt))
	}
	if got.NextPostureAt != millis(baseTime.Add(10*time.Minute)) {
		t.Fatalf("posture deadline moved to %v", time.UnixMilli(got.NextPostureAt))
	}
}

func TestRepairOverlapsPushesInPriorityOrder(t *testing.T) {
	twenty := baseTime.Add(10 * time.Minute)
	h := newHarness(t, baseTime, func(state *model.ScheduleState) {
		state.NextTwentyTwentyAt = millis(twenty)
		state.NextBlinkAt = millis(twenty.Add(30 * time.Second))
		state.NextPostureAt = millis(twenty.Add(30 * time.Second))
	})
	h.sched.RepairOverlaps()

	got := h.sched.Snapshot()
	if got.NextTwentyTwentyAt != millis(twenty) {
		t.Fatalf("20-20-20 deadline must never move")
	}
	if got.NextBlinkAt != millis(twenty.Add(90*time.Second)) {
		t.Fatalf("blink = %v, want +90s", time.UnixMilli(got.NextBlinkAt).Sub(twenty))
	}
	if got.NextPostureAt != millis(twenty.Add(150*time.Second)) {
		t.Fatalf("posture = %v, want +150s", time.UnixMilli(got.NextPostureAt).Sub(twenty))
	}
	assertSpaced(t, got)
}

func TestRepairOverlapsSpacesRandomDeadlines(t *testing.T) {
	intervals := []struct{ twenty, blink, posture int }{
		{1, 1, 1},
		{1, 2, 3},
		{20, 5, 30},
		{60, 1, 2},
	}
	rng := rand.New(rand.NewSource(20))

	for _, iv := range intervals {
		t.Run(fmt.Sprintf("%d-%d-%d", iv.twenty, iv.blink, iv.posture), func(t *testing.T) {
			within := func(minutes int) int64 {
				return millis(baseTime) + rng.Int63n(int64(minutes)*time.Minute.Milliseconds()+1)
			}
			for round := 0; round < 200; round++ {
				h := newHarness(t, baseTime, func(state *model.ScheduleState) {
					state.TwentyTwentyIntervalMin = iv.twenty
					state.BlinkIntervalMin = iv.blink
					state.PostureIntervalMin = iv.posture
					state.NextTwentyTwentyAt = within(iv.twenty)
					state.NextBlinkAt = within(iv.blink)
					state.NextPostureAt = within(iv.posture)
				})
				seeded := h.sched.Snapshot()
				h.sched.RepairOverlaps()

				got := h.sched.Snapshot()
				if got.NextTwentyTwentyAt != seeded.NextTwentyTwentyAt {
					t.Fatalf("round %d: 20-20-20 deadline moved", round)
				}
				if got.NextBlinkAt < seeded.NextBlinkAt || got.NextPostureAt < seeded.NextPostureAt {
					t.Fatalf("round %d: repair moved a deadline backwards: %+v -> %+v", round, seeded, got)
				}
				assertSpaced(t, got)
				if persisted := h.store.Snapshot(); persisted != got {
					t.Fatalf("round %d: repaired deadlines not persisted", round)
				}
			}

			h := newHarness(t, baseTime, func(state *model.ScheduleState) {
				state.TwentyTwentyIntervalMin = iv.twenty
				state.BlinkIntervalMin = iv.blink
				state.PostureIntervalMin = iv.posture
			})
			h.sched.Initialize()
			assertSpaced(t, h.sched.Snapshot())
		})
	}
}

func assertSpaced(t *testing.T, state model.ScheduleState) {
	t.Helper()
	if tooClose(state.NextBlinkAt, state.NextTwentyTwentyAt) {
		t.Fatalf("blink within buffer of 20-20-20: %d vs %d", state.NextBlinkAt, state.NextTwentyTwentyAt)
	}
	if tooClose(state.NextPostureAt, state.NextTwentyTwentyAt) || tooClose(state.NextPostureAt, state.NextBlinkAt) {
		t.Fatalf("posture within buffer: %+v", state)
	}
}

func TestTickTwentyTwentyWinsOverToasts(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()
	before := h.sched.Snapshot()

	h.clock.Set(baseTime.Add(40 * time.Minute))
	h.sched.Tick()

	if h.overlay.showCount() != 1 {
		t.Fatalf("overlay shows = %d, want 1", h.overlay.showCount())
	}
	if shown := h.toast.shown(); len(shown) != 0 {
		t.Fatalf("toasts fired alongside break: %v", shown)
	}
	if got := h.sched.Snapshot(); got.NextBlinkAt != before.NextBlinkAt || got.NextPostureAt != before.NextPostureAt {
		t.Fatalf("toast deadlines changed during break tick")
	}
	if status := h.sched.Status(); status.State != StateBreak || status.BreakSecondsLeft != BreakSeconds {
		t.Fatalf("status = %+v, want break with %d seconds", status, BreakSeconds)
	}

	h.sched.Tick()
	h.sched.TriggerTwentyTwenty()
	if h.overlay.showCount() != 1 {
		t.Fatalf("second session started while one was active")
	}

	h.clock.Advance(20 * time.Second)
	completedAt := h.clock.Now()
	h.overlay.finish()

	got := h.sched.Snapshot()
	if got.NextTwentyTwentyAt != millis(completedAt.Add(20*time.Minute)) {
		t.Fatalf("nextTwentyTwentyAt = %v, want completion + interval", time.UnixMilli(got.NextTwentyTwentyAt))
	}

	h.sched.Tick()
	shown := h.toast.shown()
	if len(shown) != 2 || shown[0] != model.KindBlink || shown[1] != model.KindPosture {
		t.Fatalf("toasts after break = %v", shown)
	}
	got = h.sched.Snapshot()
	if got.NextBlinkAt != millis(completedAt.Add(5*time.Minute)) {
		t.Fatalf("nextBlinkAt = %v", time.UnixMilli(got.NextBlinkAt).Sub(completedAt))
	}
	assertSpaced(t, got)
}

func TestTickFiresDueToastAndPersists(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()

	h.clock.Set(baseTime.Add(6 * time.Minute))
	h.sched.Tick()

	if shown := h.toast.shown(); len(shown) != 1 || shown[0] != model.KindBlink {
		t.Fatalf("toasts = %v, want [blink]", shown)
	}
	want := millis(baseTime.Add(11 * time.Minute))
	if got := h.sched.Snapshot().NextBlinkAt; got != want {
		t.Fatalf("nextBlinkAt = %v", time.UnixMilli(got))
	}
	if persisted := h.store.Snapshot().NextBlinkAt; persisted != want {
		t.Fatalf("persisted nextBlinkAt = %v", time.UnixMilli(persisted))
	}

	h.sched.Tick()
	if len(h.toast.shown()) != 1 {
		t.Fatalf("blink fired twice for one deadline")
	}
}

func TestDisabledTickIsInert(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()
	h.sched.Pause(0)
	before := h.sched.Snapshot()

	for i := 0; i < 5; i++ {
		h.clock.Set(baseTime.Add(time.Duration(i+1) * time.Hour))
		h.sched.Tick()
	}

	if h.overlay.showCount() != 0 || len(h.toast.shown()) != 0 {
		t.Fatalf("presenters invoked while disabled")
	}
	if after := h.sched.Snapshot(); after != before {
		t.Fatalf("state mutated while disabled: %+v", after)
	}
}

func TestStaleCompletionIsIgnored(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()
	h.sched.TriggerTwentyTwenty()

	h.overlay.mu.Lock()
	complete := h.overlay.complete
	h.overlay.mu.Unlock()

	h.clock.Advance(20 * time.Second)
	complete()
	first := h.sched.Snapshot().NextTwentyTwentyAt

	h.clock.Advance(5 * time.Minute)
	complete()
	if got := h.sched.Snapshot().NextTwentyTwentyAt; got != first {
		t.Fatalf("second completion rescheduled again: %v", time.UnixMilli(got))
	}
}

func TestSkipCompletesThroughPresenter(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()
	h.sched.TriggerTwentyTwenty()

	h.clock.Advance(7 * time.Second)
	h.sched.SkipTwentyTwenty()

	if status := h.sched.Status(); status.State != StateRunning {
		t.Fatalf("state after skip = %s", status.State)
	}
	if got := h.sched.Snapshot().NextTwentyTwentyAt; got != millis(baseTime.Add(7*time.Second+20*time.Minute)) {
		t.Fatalf("nextTwentyTwentyAt after skip = %v", time.UnixMilli(got))
	}
}

func TestBreakWithoutOverlayCompletesImmediately(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	sched := New(Options{Store: h.store, Clock: h.clock})
	sched.Initialize()
	sched.TriggerTwentyTwenty()

	if status := sched.Status(); status.State != StateRunning {
		t.Fatalf("state = %s, want running", status.State)
	}
	if got := sched.Snapshot().NextTwentyTwentyAt; got != millis(baseTime.Add(20*time.Minute)) {
		t.Fatalf("nextTwentyTwentyAt = %v", time.UnixMilli(got))
	}
}

func TestCountdownUpdatesStatus(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	events := h.sched.Subscribe(8)
	h.sched.TriggerTwentyTwenty()

	h.overlay.mu.Lock()
	tick := h.overlay.tick
	h.overlay.mu.Unlock()
	tick(12)

	if status := h.sched.Status(); status.BreakSecondsLeft != 12 {
		t.Fatalf("BreakSecondsLeft = %d", status.BreakSecondsLeft)
	}
	if title := Title(h.sched.Status()); title != "🥰 0:12" {
		t.Fatalf("title = %q", title)
	}

	started := <-events
	if started.Type != EventStateChange || started.State != StateBreak {
		t.Fatalf("first event = %+v", started)
	}
	countdown := <-events
	if countdown.Type != EventCountdown || countdown.SecondsLeft != 12 {
		t.Fatalf("countdown event = %+v", countdown)
	}
}

func TestTimedPauseResumesAutomatically(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()

	h.sched.Pause(time.Minute)
	if !h.sched.IsPaused() || h.ticks.isTicking() {
		t.Fatalf("pause did not stop ticking")
	}
	h.clock.Advance(59 * time.Second)
	if !h.sched.IsPaused() {
		t.Fatalf("resumed early")
	}
	h.clock.Advance(time.Second)
	if h.sched.IsPaused() || !h.ticks.isTicking() {
		t.Fatalf("timed pause did not resume")
	}
}

func TestManualResumeOutlivesCancelledTimer(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()

	h.sched.Pause(time.Minute)
	h.clock.Advance(10 * time.Second)
	h.sched.Resume()

	h.clock.Advance(60 * time.Second)
	if h.sched.IsPaused() || !h.ticks.isTicking() {
		t.Fatalf("reminders disabled at T+70s after resuming at T+10s")
	}
	if !h.store.Snapshot().Enabled {
		t.Fatalf("persisted state still paused")
	}
}

func TestResumeCancelsPendingTimedResume(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()

	h.sched.Pause(time.Minute)
	h.clock.Advance(10 * time.Second)
	h.sched.Resume()
	if h.clock.Pending() != 0 {
		t.Fatalf("pending resume not cancelled")
	}

	h.clock.Advance(10 * time.Second)
	h.sched.Pause(0)
	h.clock.Advance(50 * time.Second)
	if !h.sched.IsPaused() {
		t.Fatalf("stale timed resume re-enabled an indefinite pause")
	}
}

func TestPauseReplacesPendingResume(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Pause(time.Minute)
	h.sched.Pause(15 * time.Minute)

	h.clock.Advance(2 * time.Minute)
	if !h.sched.IsPaused() {
		t.Fatalf("first pause timer still fired")
	}
	h.clock.Advance(13 * time.Minute)
	if h.sched.IsPaused() {
		t.Fatalf("second pause did not resume")
	}
}

func TestResumeFastForwardsElapsedDeadlines(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()
	h.sched.Pause(0)

	h.clock.Set(baseTime.Add(2 * time.Hour))
	resumedAt := h.clock.Now()
	h.sched.Resume()

	got := h.sched.Snapshot()
	if got.NextTwentyTwentyAt != millis(resumedAt.Add(20*time.Minute)) ||
		got.NextBlinkAt != millis(resumedAt.Add(6*time.Minute)) ||
		got.NextPostureAt != millis(resumedAt.Add(32*time.Minute)) {
		t.Fatalf("deadlines not fast-forwarded: %+v", got)
	}

	h.sched.Tick()
	if h.overlay.showCount() != 0 || len(h.toast.shown()) != 0 {
		t.Fatalf("backlog fired after resume")
	}
}

func TestPauseUntilWorkStart(t *testing.T) {
	evening := time.Date(2025, time.March, 10, 20, 0, 0, 0, time.UTC)
	h := newHarness(t, evening, func(state *model.ScheduleState) {
		state.WorkingHoursEnabled = true
	})

	if want := time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC); !h.sched.NextWorkStart().Equal(want) {
		t.Fatalf("NextWorkStart = %v, want %v", h.sched.NextWorkStart(), want)
	}

	h.sched.PauseUntilWorkStart()
	h.clock.Advance(13*time.Hour - time.Second)
	if !h.sched.IsPaused() {
		t.Fatalf("resumed before work start")
	}
	h.clock.Advance(time.Second)
	if h.sched.IsPaused() {
		t.Fatalf("not resumed at work start")
	}
	if h.sched.Snapshot().ManuallyResumedOutsideHours {
		t.Fatalf("automatic resume must not set the manual flag")
	}
}

func TestPauseUntilWorkStartSameDay(t *testing.T) {
	early := time.Date(2025, time.March, 10, 7, 0, 0, 0, time.UTC)
	h := newHarness(t, early, func(state *model.ScheduleState) {
		state.WorkingHoursEnabled = true
	})
	h.sched.PauseUntilWorkStart()
	h.clock.Advance(2 * time.Hour)
	if h.sched.IsPaused() {
		t.Fatalf("expected resume at 09:00 the same day")
	}
}

func TestCheckWorkingHoursCycle(t *testing.T) {
	day := func(d, hour, minute int) time.Time {
		return time.Date(2025, time.March, d, hour, minute, 0, 0, time.UTC)
	}
	h := newHarness(t, day(10, 10, 0), func(state *model.ScheduleState) {
		state.WorkingHoursEnabled = true
	})
	h.sched.Initialize()

	h.sched.CheckWorkingHours()
	if h.sched.IsPaused() {
		t.Fatalf("paused inside working hours")
	}

	h.clock.Set(day(10, 17, 30))
	h.sched.CheckWorkingHours()
	if !h.sched.IsPaused() {
		t.Fatalf("not auto-paused after working hours")
	}
	if title := Title(h.sched.Status()); title != "🌙" {
		t.Fatalf("title outside hours = %q", title)
	}

	h.clock.Set(day(10, 17, 31))
	h.sched.Resume()
	if !h.sched.Snapshot().ManuallyResumedOutsideHours {
		t.Fatalf("manual resume outside hours not flagged")
	}
	h.clock.Set(day(10, 17, 32))
	h.sched.CheckWorkingHours()
	if h.sched.IsPaused() {
		t.Fatalf("manual resume was overridden")
	}

	h.clock.Set(day(11, 9, 0))
	h.sched.CheckWorkingHours()
	if h.sched.Snapshot().ManuallyResumedOutsideHours {
		t.Fatalf("manual flag not cleared on entering working hours")
	}

	h.clock.Set(day(11, 17, 0))
	h.sched.CheckWorkingHours()
	if !h.sched.IsPaused() {
		t.Fatalf("not paused at end of working hours")
	}

	h.clock.Set(day(12, 9, 30))
	h.sched.CheckWorkingHours()
	if h.sched.IsPaused() || !h.ticks.isTicking() {
		t.Fatalf("not resumed on entering working hours")
	}

	h.sched.Pause(0)
	h.clock.Set(day(12, 10, 5))
	h.sched.CheckWorkingHours()
	if !h.sched.IsPaused() {
		t.Fatalf("manual pause inside working hours was undone")
	}
}

func TestCheckWorkingHoursIgnoredWhenDisabled(t *testing.T) {
	night := time.Date(2025, time.March, 10, 23, 0, 0, 0, time.UTC)
	h := newHarness(t, night, nil)
	h.sched.CheckWorkingHours()
	if h.sched.IsPaused() {
		t.Fatalf("paused although working hours are disabled")
	}
	if !h.sched.IsWithinWorkingHours() {
		t.Fatalf("disabled working hours must always count as within")
	}
}

func TestApplySettingsRestartsChangedTimers(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()
	before := h.sched.Snapshot()
	startsBefore := h.ticks.starts

	one := 1
	h.sched.ApplySettings(model.SettingsUpdate{BlinkIntervalMin: &one})

	got := h.sched.Snapshot()
	if got.BlinkIntervalMin != 1 || got.NextBlinkAt != millis(baseTime.Add(2*time.Minute)) {
		t.Fatalf("blink not restarted: %+v", got)
	}
	if got.NextTwentyTwentyAt != before.NextTwentyTwentyAt || got.NextPostureAt != before.NextPostureAt {
		t.Fatalf("untouched timers moved")
	}
	if h.ticks.starts != startsBefore+1 {
		t.Fatalf("ticking not restarted")
	}
	if persisted, _ := h.store.Get(model.KeyBlinkInterval); persisted != "1" {
		t.Fatalf("blink interval not persisted: %q", persisted)
	}

	zero := 0
	h.sched.ApplySettings(model.SettingsUpdate{PostureIntervalMin: &zero})
	if got := h.sched.Snapshot().PostureIntervalMin; got != 1 {
		t.Fatalf("posture interval not clamped: %d", got)
	}
}

func TestManualBlinkNearBreakIsDesynchronized(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()
	one := 1
	h.sched.ApplySettings(model.SettingsUpdate{BlinkIntervalMin: &one})

	deadline := h.sched.Snapshot().NextTwentyTwentyAt
	h.clock.Set(time.UnixMilli(deadline).Add(-5 * time.Second))
	h.sched.TriggerBlink()

	got := h.sched.Snapshot()
	if got.NextBlinkAt < deadline+OverlapBuffer.Milliseconds() {
		t.Fatalf("nextBlinkAt %d not clear of 20-20-20 %d", got.NextBlinkAt, deadline)
	}
	if shown := h.toast.shown(); len(shown) != 1 || shown[0] != model.KindBlink {
		t.Fatalf("toasts = %v", shown)
	}
}

func TestApplySettingsEnabledTogglesTicking(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()

	off := false
	h.sched.ApplySettings(model.SettingsUpdate{Enabled: &off})
	if !h.sched.IsPaused() || h.ticks.isTicking() {
		t.Fatalf("disable via settings did not stop ticking")
	}

	h.clock.Set(baseTime.Add(3 * time.Hour))
	on := true
	h.sched.ApplySettings(model.SettingsUpdate{Enabled: &on})
	if h.sched.IsPaused() || !h.ticks.isTicking() {
		t.Fatalf("enable via settings did not start ticking")
	}
	if got := h.sched.Snapshot().NextTwentyTwentyAt; got <= millis(h.clock.Now()) {
		t.Fatalf("elapsed deadline not fast-forwarded")
	}
}

func TestTitles(t *testing.T) {
	cases := []struct {
		name   string
		status Status
		want   string
	}{
		{"running", Status{State: StateRunning, UntilTwentyTwenty: 19*time.Minute + 59*time.Second + 400*time.Millisecond}, "👁️ 19:59"},
		{"due", Status{State: StateRunning}, "👁️ 0:00"},
		{"paused", Status{State: StatePaused}, "💤"},
		{"paused outside hours", Status{State: StatePaused, OutsideWorkingHours: true}, "🌙"},
		{"break", Status{State: StateBreak, BreakSecondsLeft: 5}, "🥰 0:05"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Title(tc.status); got != tc.want {
				t.Fatalf("Title() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSkipToNear(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	h.sched.Initialize()
	h.sched.SkipToNear(model.KindPosture, 5)

	if got := h.sched.Until(model.KindPosture); got != 5*time.Second {
		t.Fatalf("Until(posture) = %v", got)
	}
	h.clock.Advance(5 * time.Second)
	h.sched.Tick()
	if shown := h.toast.shown(); len(shown) != 1 || shown[0] != model.KindPosture {
		t.Fatalf("toasts = %v", shown)
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	h := newHarness(t, baseTime, nil)
	events := h.sched.Subscribe(1)
	h.sched.Pause(time.Minute)
	h.sched.Close()

	for range events {
	}
	if h.clock.Pending() != 0 {
		t.Fatalf("Close left a pending resume")
	}
}
