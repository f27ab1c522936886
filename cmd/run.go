package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blinkaway/internal/command"
	"blinkaway/internal/config"
	"blinkaway/internal/core/scheduler"
	"blinkaway/internal/logx"
	"blinkaway/internal/platform"
	"blinkaway/internal/storage"
	"blinkaway/internal/ui/animation"
	"blinkaway/internal/ui/overlay"
	"blinkaway/internal/ui/preferences"
	"blinkaway/internal/ui/toast"
	"blinkaway/internal/ui/tray"
	"blinkaway/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

func runApp(cliCtx *cli.Context) error {
	env, err := setup(cliCtx)
	if err != nil {
		return err
	}
	defer env.close()
	log := env.log

	guard, err := platform.AcquireSingleInstance(command.AppName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		log.Info("already running, asking it to open preferences")
		if notifyErr := platform.NotifyRunning(command.AppName); notifyErr != nil {
			log.Warn("running instance did not answer", logx.Err(notifyErr))
		}
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	if _, statErr := os.Stat(env.paths.ConfigFile); errors.Is(statErr, os.ErrNotExist) {
		if err := config.Save(afero.NewOsFs(), env.paths.ConfigFile, env.cfg); err != nil {
			log.Warn("could not write default config", logx.Err(err))
		}
	}

	store := storage.OpenOrMemory(command.StorageConfig(env.cfg, env.paths.DataDir), log)
	defer store.Close()

	fyneApp := app.NewWithID("com.blinkaway.app")
	icons := resources.NewLoader(afero.NewOsFs(), env.paths.IconsDir)
	fyneApp.SetIcon(icons.Icon(resources.IconApp))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return fmt.Errorf("system tray unsupported on this platform")
	}

	trayWindow := fyneApp.NewWindow("BlinkAway")
	trayWindow.SetContent(widget.NewLabel("BlinkAway is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	overlayWindow := overlay.New(fyneApp, overlayConfig(env.cfg), animation.Frames{
		Open:   icons.Icon(resources.IconEyeOpen),
		Closed: icons.Icon(resources.IconEyeClosed),
	}, log)
	toastWindow := toast.New(fyneApp, toast.Config{Duration: env.cfg.Toast.Duration}, log)

	sched := scheduler.New(scheduler.Options{
		Store:   store,
		Overlay: overlayWindow,
		Toast:   toastWindow,
		Log:     log,
	})
	defer sched.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prefsWindow := preferences.New(fyneApp, preferences.Handlers{
		Current: sched.Snapshot,
		LaunchAtLogin: func() bool {
			enabled, err := env.platform.IsAutostartEnabled(command.AppName)
			if err != nil {
				log.Warn("autostart status unknown", logx.Err(err))
			}
			return enabled
		},
		OnSave: sched.ApplySettings,
		OnLaunchAtLogin: func(enabled bool) error {
			return setAutostart(env.platform, enabled, env.loginArgs)
		},
	}, log)

	trayManager := tray.New(desktopApp, tray.Icons{
		Active: icons.Icon(resources.IconTrayActive),
		Paused: icons.Icon(resources.IconTrayPaused),
	}, tray.Callbacks{
		OnPreferences:         prefsWindow.Show,
		OnPauseFor:            sched.Pause,
		OnPauseIndefinitely:   func() { sched.Pause(0) },
		OnPauseUntilWorkStart: sched.PauseUntilWorkStart,
		OnResume:              sched.Resume,
		OnSkipBreak:           sched.SkipTwentyTwenty,
		OnTrigger:             sched.Trigger,
		OnSkipToNear:          sched.SkipToNear,
		OnQuit: func() {
			cancel()
			fyneApp.Quit()
		},
	}, env.cfg.DebugMenu)
	trayManager.SetWorkingHoursEnabled(sched.HasWorkingHoursEnabled())

	sched.Initialize()
	driver := scheduler.NewDriver(sched, scheduler.DriverConfig{
		TickInterval: time.Second,
		Log:          log,
		OnRefresh: func(status scheduler.Status) {
			fyne.Do(func() { trayManager.SetStatus(status) })
		},
	})

	go func() {
		if err := driver.Run(ctx); err != nil {
			log.Error("scheduler driver stopped", logx.Err(err))
		}
	}()
	go followEvents(sched.Subscribe(16), sched, trayManager, log)
	go watchConfig(ctx, env, overlayWindow, toastWindow, trayManager)
	go guard.Serve(ctx, func() {
		fyne.Do(prefsWindow.Show)
	})

	log.Info("blinkaway started",
		logx.String("data_dir", env.paths.DataDir),
		logx.String("storage", env.cfg.Storage.Driver),
	)
	fyneApp.Run()
	log.Info("blinkaway stopped")
	return nil
}

func followEvents(events <-chan scheduler.Event, sched *scheduler.Scheduler, trayManager *tray.Manager, log logx.Logger) {
	for event := range events {
		switch event.Type {
		case scheduler.EventSettings:
			workingHours := sched.HasWorkingHoursEnabled()
			fyne.Do(func() { trayManager.SetWorkingHoursEnabled(workingHours) })
		case scheduler.EventFired:
			log.Debug("reminder fired", logx.String("kind", string(event.Kind)))
		case scheduler.EventStateChange:
			log.Debug("state changed", logx.String("state", string(event.State)))
		}
	}
}

func watchConfig(ctx context.Context, env *environment, overlayWindow *overlay.Window, toastWindow *toast.Window, trayManager *tray.Manager) {
	updates := env.manager.Subscribe(4)
	go func() {
		if err := env.manager.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			env.log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-updates:
			// --log-level outlives reloads.
			cfg = command.WithLogLevel(cfg, env.logLevel)
			env.logs.Apply(cfg.Log)
			overlayWindow.UpdateConfig(overlayConfig(cfg))
			toastWindow.UpdateConfig(toast.Config{Duration: cfg.Toast.Duration})
			debug := cfg.DebugMenu
			fyne.Do(func() { trayManager.SetDebug(debug) })
			env.log.Info("config reloaded", logx.String("path", env.paths.ConfigFile))
		}
	}
}

func overlayConfig(cfg config.Config) overlay.Config {
	return overlay.Config{
		Opacity:    overlay.OpacityToAlpha(cfg.Overlay.Opacity),
		Fullscreen: cfg.Overlay.Fullscreen,
	}
}

func setAutostart(service platform.Service, enabled bool, args []string) error {
	if !enabled {
		return service.DisableAutostart(command.AppName)
	}
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}
	return service.EnableAutostart(command.AppName, platform.LaunchCommand{
		Executable: execPath,
		Args:       args,
	})
}
