package scheduler

import (
	"context"
	"sync"
	"time"

	"blinkaway/internal/core/clock"
	"blinkaway/internal/core/model"
	"blinkaway/internal/logx"
	"blinkaway/internal/storage"

	"github.com/google/uuid"
)

// BreakSeconds is the length of a 20-20-20 session.
const BreakSeconds = 20

// OverlayPresenter shows the full-screen 20-20-20 countdown.
// onComplete must be invoked exactly once per Show, whether the countdown
// ran out or Skip was called.
type OverlayPresenter interface {
	Show(onComplete func(), onCountdownTick func(secondsLeft int))
	Skip()
}

// ToastPresenter shows a short-lived blink or posture reminder.
// An empty message lets the presenter pick one.
type ToastPresenter interface {
	Show(kind model.ReminderKind, message string)
}

// TickControl starts and stops the once-per-second tick source.
type TickControl interface {
	StartTicking()
	StopTicking()
}

// Options wires the scheduler's collaborators. Clock and Log default to the
// system clock and a no-op logger.
type Options struct {
	Store   storage.Store
	Clock   clock.Clock
	Overlay OverlayPresenter
	Toast   ToastPresenter
	Log     logx.Logger
}

type session struct {
	id          string
	secondsLeft int
	startedAt   time.Time
}

// Scheduler owns the reminder deadlines and decides when each reminder fires.
type Scheduler struct {
	mu      sync.Mutex
	store   storage.Store
	clock   clock.Clock
	overlay OverlayPresenter
	toast   ToastPresenter
	ticker  TickControl
	log     logx.Logger

	state   model.ScheduleState
	session *session

	pendingResume clock.Timer
	resumeGen     uint64

	// nil until the first working-hours check.
	lastWithin *bool

	events []chan Event
	closed bool
}

// New creates a scheduler around the state held by opts.Store.
func New(opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Log.IsZero() {
		opts.Log = logx.Nop()
	}
	state := model.DefaultScheduleState()
	if opts.Store != nil {
		state = opts.Store.Snapshot()
	}
	state.Normalize()

	return &Scheduler{
		store:   opts.Store,
		clock:   opts.Clock,
		overlay: opts.Overlay,
		toast:   opts.Toast,
		log:     opts.Log.With(logx.String("component", "scheduler")),
		state:   state,
	}
}

// SetTickControl injects the tick source driven by pause and resume.
func (sched *Scheduler) SetTickControl(control TickControl) {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	sched.ticker = control
}

// Initialize restarts any elapsed or unset deadline from now and repairs spacing.
// Calling it again with nothing elapsed changes nothing.
func (sched *Scheduler) Initialize() {
	sched.mu.Lock()
	defer sched.mu.Unlock()

	now := sched.clock.Now()
	changed := sched.fastForwardLocked(now)
	sched.persistLocked(changed...)
	sched.log.Info("schedule initialized",
		logx.Time("next_twenty_twenty", time.UnixMilli(sched.state.NextTwentyTwentyAt)),
		logx.Time("next_blink", time.UnixMilli(sched.state.NextBlinkAt)),
		logx.Time("next_posture", time.UnixMilli(sched.state.NextPostureAt)),
	)
}

// RepairOverlaps enforces the minimum spacing between deadlines.
func (sched *Scheduler) RepairOverlaps() {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	sched.persistLocked(sched.repairLocked()...)
}

// Tick evaluates deadlines once. A due 20-20-20 break wins over toasts in the same tick.
func (sched *Scheduler) Tick() {
	var fx effects
	sched.mu.Lock()
	if !sched.state.Enabled || sched.session != nil || sched.closed {
		sched.mu.Unlock()
		return
	}

	now := sched.clock.Now()
	nowMillis := now.UnixMilli()
	if nowMillis >= sched.state.NextTwentyTwentyAt {
		sched.startSessionLocked(now, &fx)
	} else {
		if nowMillis >= sched.state.NextBlinkAt {
			sched.fireToastLocked(model.KindBlink, now, &fx)
		}
		if nowMillis >= sched.state.NextPostureAt {
			sched.fireToastLocked(model.KindPosture, now, &fx)
		}
	}
	sched.mu.Unlock()
	fx.run()
}

// TriggerTwentyTwenty starts a session immediately. It does nothing while one is active.
func (sched *Scheduler) TriggerTwentyTwenty() {
	var fx effects
	sched.mu.Lock()
	if sched.session == nil && !sched.closed {
		sched.startSessionLocked(sched.clock.Now(), &fx)
	}
	sched.mu.Unlock()
	fx.run()
}

// TriggerBlink shows a blink toast now and reschedules the next one.
func (sched *Scheduler) TriggerBlink() {
	sched.trigger(model.KindBlink)
}

// TriggerPosture shows a posture toast now and reschedules the next one.
func (sched *Scheduler) TriggerPosture() {
	sched.trigger(model.KindPosture)
}

// Trigger fires a reminder by kind.
func (sched *Scheduler) Trigger(kind model.ReminderKind) {
	if kind == model.KindTwentyTwenty {
		sched.TriggerTwentyTwenty()
		return
	}
	sched.trigger(kind)
}

func (sched *Scheduler) trigger(kind model.ReminderKind) {
	var fx effects
	sched.mu.Lock()
	if !sched.closed {
		sched.fireToastLocked(kind, sched.clock.Now(), &fx)
	}
	sched.mu.Unlock()
	fx.run()
}

// SkipTwentyTwenty ends the active session early. Completion still flows
// through the presenter's onComplete.
func (sched *Scheduler) SkipTwentyTwenty() {
	sched.mu.Lock()
	active := sched.session
	overlay := sched.overlay
	sched.mu.Unlock()

	if active == nil {
		return
	}
	if overlay == nil {
		sched.completeSession(active.id)
		return
	}
	overlay.Skip()
}

// SkipToNear moves one deadline to now+seconds. Used by the debug menu.
func (sched *Scheduler) SkipToNear(kind model.ReminderKind, seconds int) {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	at := sched.clock.Now().Add(time.Duration(seconds) * time.Second)
	sched.state.SetNextAt(kind, at.UnixMilli())
	sched.persistLocked(model.NextAtKey(kind))
	sched.log.Debug("deadline moved", logx.String("kind", string(kind)), logx.Time("at", at))
}

// Pause disables reminders. A positive duration schedules an automatic
// resume; zero pauses indefinitely. Any earlier pending resume is cancelled.
func (sched *Scheduler) Pause(duration time.Duration) {
	var fx effects
	sched.mu.Lock()
	sched.cancelPendingResumeLocked()
	sched.disableLocked(&fx)
	sched.state.ManuallyResumedOutsideHours = false
	sched.persistLocked(model.KeyEnabled, model.KeyManuallyResumedOutsideHours)
	if duration > 0 {
		sched.scheduleResumeLocked(duration)
	}
	sched.log.Info("reminders paused", logx.Duration("for", duration))
	sched.mu.Unlock()
	fx.run()
}

// PauseUntilWorkStart pauses until the next occurrence of the working-hours start.
func (sched *Scheduler) PauseUntilWorkStart() {
	var fx effects
	sched.mu.Lock()
	sched.cancelPendingResumeLocked()
	sched.disableLocked(&fx)
	sched.state.ManuallyResumedOutsideHours = false
	sched.persistLocked(model.KeyEnabled, model.KeyManuallyResumedOutsideHours)

	now := sched.clock.Now()
	resumeAt := nextOccurrence(now, sched.state.WorkingHoursStart)
	sched.scheduleResumeLocked(resumeAt.Sub(now))
	sched.log.Info("reminders paused until work start", logx.Time("resume_at", resumeAt))
	sched.mu.Unlock()
	fx.run()
}

// Resume enables reminders now. Resuming outside working hours marks the
// resume as manual so the next working-hours check leaves it alone.
func (sched *Scheduler) Resume() {
	var fx effects
	sched.mu.Lock()
	sched.cancelPendingResumeLocked()
	now := sched.clock.Now()
	changed := sched.enableLocked(now, &fx)
	if hours := sched.state.WorkingHours(); hours.Enabled && !hours.Contains(now) {
		sched.state.ManuallyResumedOutsideHours = true
		changed = append(changed, model.KeyManuallyResumedOutsideHours)
	}
	sched.persistLocked(changed...)
	sched.log.Info("reminders resumed")
	sched.mu.Unlock()
	fx.run()
}

// IsPaused reports whether reminders are disabled.
func (sched *Scheduler) IsPaused() bool {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	return !sched.state.Enabled
}

// HasWorkingHoursEnabled reports whether the working-hours window is in effect.
func (sched *Scheduler) HasWorkingHoursEnabled() bool {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	return sched.state.WorkingHoursEnabled
}

// IsWithinWorkingHours reports whether now falls inside the window.
// It is always true when working hours are disabled.
func (sched *Scheduler) IsWithinWorkingHours() bool {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	return sched.state.WorkingHours().Contains(sched.clock.Now())
}

// Snapshot returns a copy of the current schedule.
func (sched *Scheduler) Snapshot() model.ScheduleState {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	return sched.state
}

// Close cancels any pending resume and closes observer channels.
func (sched *Scheduler) Close() {
	sched.mu.Lock()
	if sched.closed {
		sched.mu.Unlock()
		return
	}
	sched.closed = true
	sched.cancelPendingResumeLocked()
	events := sched.events
	sched.events = nil
	sched.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (sched *Scheduler) startSessionLocked(now time.Time, fx *effects) {
	id := uuid.NewString()
	sched.session = &session{id: id, secondsLeft: BreakSeconds, startedAt: now}
	sched.log.Info("20-20-20 break started", logx.String("session", id))
	sched.emitLocked(Event{Type: EventStateChange, State: StateBreak, Kind: model.KindTwentyTwenty, SecondsLeft: BreakSeconds, At: now})

	overlay := sched.overlay
	if overlay == nil {
		sched.log.Warn("no overlay presenter, completing break immediately", logx.String("session", id))
		fx.add(func() { sched.completeSession(id) })
		return
	}
	fx.add(func() {
		overlay.Show(
			func() { sched.completeSession(id) },
			func(secondsLeft int) { sched.countdown(id, secondsLeft) },
		)
	})
}

// completeSession reschedules from the completion time. Stale or repeated
// completions for a session that is no longer active are ignored.
func (sched *Scheduler) completeSession(id string) {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	if sched.session == nil || sched.session.id != id {
		sched.log.Debug("ignoring stale break completion", logx.String("session", id))
		return
	}
	now := sched.clock.Now()
	sched.session = nil
	sched.state.NextTwentyTwentyAt = sched.nextDeadlineLocked(model.KindTwentyTwenty, now)
	sched.persistLocked(model.KeyNextTwentyTwenty)
	sched.log.Info("20-20-20 break finished",
		logx.String("session", id),
		logx.Time("next", time.UnixMilli(sched.state.NextTwentyTwentyAt)),
	)
	sched.emitLocked(Event{Type: EventStateChange, State: sched.currentStateLocked(), Kind: model.KindTwentyTwenty, At: now})
}

func (sched *Scheduler) countdown(id string, secondsLeft int) {
	sched.mu.Lock()
	defer sched.mu.Unlock()
	if sched.session == nil || sched.session.id != id {
		return
	}
	sched.session.secondsLeft = secondsLeft
	sched.emitLocked(Event{Type: EventCountdown, State: StateBreak, Kind: model.KindTwentyTwenty, SecondsLeft: secondsLeft})
}

func (sched *Scheduler) fireToastLocked(kind model.ReminderKind, now time.Time, fx *effects) {
	sched.state.SetNextAt(kind, sched.nextDeadlineLocked(kind, now))
	sched.persistLocked(model.NextAtKey(kind))
	sched.log.Debug("reminder fired",
		logx.String("kind", string(kind)),
		logx.Time("next", time.UnixMilli(sched.state.NextAt(kind))),
	)
	sched.emitLocked(Event{Type: EventFired, State: sched.currentStateLocked(), Kind: kind, At: now})

	if toast := sched.toast; toast != nil {
		fx.add(func() { toast.Show(kind, "") })
	}
}

// enableLocked turns reminders on. Coming out of a pause, elapsed deadlines
// are restarted from now so a backlog never fires at once.
func (sched *Scheduler) enableLocked(now time.Time, fx *effects) []model.Key {
	changed := []model.Key{model.KeyEnabled}
	if !sched.state.Enabled {
		sched.state.Enabled = true
		changed = append(changed, sched.fastForwardLocked(now)...)
		sched.emitLocked(Event{Type: EventStateChange, State: sched.currentStateLocked(), At: now})
	}
	if ticker := sched.ticker; ticker != nil {
		fx.add(ticker.StartTicking)
	}
	return changed
}

func (sched *Scheduler) disableLocked(fx *effects) {
	wasEnabled := sched.state.Enabled
	sched.state.Enabled = false
	if wasEnabled {
		sched.emitLocked(Event{Type: EventStateChange, State: sched.currentStateLocked()})
	}
	if ticker := sched.ticker; ticker != nil {
		fx.add(ticker.StopTicking)
	}
}

func (sched *Scheduler) scheduleResumeLocked(delay time.Duration) {
	gen := sched.resumeGen
	sched.pendingResume = sched.clock.AfterFunc(delay, func() {
		sched.deferredResume(gen)
	})
}

func (sched *Scheduler) cancelPendingResumeLocked() {
	sched.resumeGen++
	if sched.pendingResume != nil {
		sched.pendingResume.Stop()
		sched.pendingResume = nil
	}
}

// deferredResume runs when a timed pause expires. gen guards against a
// timer that fired concurrently with its own cancellation.
func (sched *Scheduler) deferredResume(gen uint64) {
	var fx effects
	sched.mu.Lock()
	if gen != sched.resumeGen || sched.closed {
		sched.mu.Unlock()
		return
	}
	sched.pendingResume = nil
	changed := sched.enableLocked(sched.clock.Now(), &fx)
	sched.persistLocked(changed...)
	sched.log.Info("timed pause ended")
	sched.mu.Unlock()
	fx.run()
}

func (sched *Scheduler) persistLocked(keys ...model.Key) {
	if sched.store == nil || len(keys) == 0 {
		return
	}
	if err := sched.store.Save(context.Background(), sched.state, keys...); err != nil {
		sched.log.Warn("persist schedule failed", logx.Err(err))
	}
}

// effects are presenter and tick-source calls deferred until the lock is released.
type effects []func()

func (fx *effects) add(fn func()) {
	*fx = append(*fx, fn)
}

func (fx effects) run() {
	for _, fn := range fx {
		fn()
	}
}
