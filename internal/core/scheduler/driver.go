package scheduler

import (
	"context"
	"sync"
	"time"

	"blinkaway/internal/logx"

	"github.com/robfig/cron/v3"
)

// DriverConfig contains runtime options for Driver.
type DriverConfig struct {
	TickInterval time.Duration
	// WorkingHoursSchedule is the cron schedule for working-hours checks.
	WorkingHoursSchedule string
	// OnRefresh receives a fresh status after every tick and every stop.
	OnRefresh func(Status)
	Log       logx.Logger
}

// Driver feeds the scheduler its once-per-second tick and the periodic
// working-hours check.
type Driver struct {
	scheduler *Scheduler
	config    DriverConfig
	log       logx.Logger

	mu      sync.Mutex
	parent  context.Context
	cancel  context.CancelFunc
	running bool
}

// NewDriver creates a driver and registers it as the scheduler's tick control.
func NewDriver(scheduler *Scheduler, config DriverConfig) *Driver {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if config.WorkingHoursSchedule == "" {
		config.WorkingHoursSchedule = "@every 1m"
	}
	if config.Log.IsZero() {
		config.Log = logx.Nop()
	}
	driver := &Driver{
		scheduler: scheduler,
		config:    config,
		log:       config.Log.With(logx.String("component", "driver")),
		parent:    context.Background(),
	}
	scheduler.SetTickControl(driver)
	return driver
}

// Run checks working hours once, starts ticking if reminders are enabled and
// blocks until ctx is cancelled.
func (driver *Driver) Run(ctx context.Context) error {
	driver.mu.Lock()
	driver.parent = ctx
	driver.mu.Unlock()

	checker := cron.New()
	if _, err := checker.AddFunc(driver.config.WorkingHoursSchedule, driver.scheduler.CheckWorkingHours); err != nil {
		return err
	}
	checker.Start()
	defer func() { <-checker.Stop().Done() }()

	driver.scheduler.CheckWorkingHours()
	if !driver.scheduler.IsPaused() {
		driver.StartTicking()
	}
	driver.refresh()

	<-ctx.Done()
	driver.StopTicking()
	return nil
}

// StartTicking launches the tick loop. It is a no-op while already running.
func (driver *Driver) StartTicking() {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	if driver.running {
		return
	}
	ctx, cancel := context.WithCancel(driver.parent)
	driver.cancel = cancel
	driver.running = true
	go driver.loop(ctx)
	driver.log.Debug("ticking started")
}

// StopTicking halts the tick loop and publishes one last status.
func (driver *Driver) StopTicking() {
	driver.mu.Lock()
	if driver.running {
		driver.cancel()
		driver.running = false
		driver.log.Debug("ticking stopped")
	}
	driver.mu.Unlock()
	driver.refresh()
}

// Ticking reports whether the tick loop is running.
func (driver *Driver) Ticking() bool {
	driver.mu.Lock()
	defer driver.mu.Unlock()
	return driver.running
}

func (driver *Driver) loop(ctx context.Context) {
	ticker := time.NewTicker(driver.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			driver.scheduler.Tick()
			driver.refresh()
		}
	}
}

func (driver *Driver) refresh() {
	if driver.config.OnRefresh == nil {
		return
	}
	driver.config.OnRefresh(driver.scheduler.Status())
}
