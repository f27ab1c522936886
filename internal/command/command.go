// Package command holds the non-GUI pieces of the blinkaway CLI: path
// resolution and the status and reset commands.
package command

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"blinkaway/internal/config"
	"blinkaway/internal/core/model"
	"blinkaway/internal/core/scheduler"
	"blinkaway/internal/storage"
)

// AppName names the config directory, the autostart entry and the instance lock.
const AppName = "BlinkAway"

// Paths are the resolved on-disk locations for one run.
type Paths struct {
	DataDir    string
	ConfigFile string
	IconsDir   string
}

// ResolvePaths applies flag overrides on top of the platform data dir.
func ResolvePaths(defaultDataDir, dataDirFlag, configFlag string) Paths {
	dataDir := strings.TrimSpace(dataDirFlag)
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	configFile := strings.TrimSpace(configFlag)
	if configFile == "" {
		configFile = filepath.Join(dataDir, config.FileName)
	}
	return Paths{
		DataDir:    dataDir,
		ConfigFile: configFile,
		IconsDir:   filepath.Join(dataDir, "icons"),
	}
}

// LoginArgs is the argument list the login item relaunches with, so a run
// started at login reads the same config and state as this one. Relative
// paths are made absolute against the current directory.
func LoginArgs(dataDirFlag, configFlag string) []string {
	var args []string
	if dataDir := strings.TrimSpace(dataDirFlag); dataDir != "" {
		args = append(args, "--data-dir", absPath(dataDir))
	}
	if configFile := strings.TrimSpace(configFlag); configFile != "" {
		args = append(args, "--config", absPath(configFile))
	}
	return append(args, "run")
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// StorageConfig fills in the default state path for the configured driver.
func StorageConfig(cfg config.Config, dataDir string) storage.Config {
	storageConfig := cfg.Storage
	if strings.TrimSpace(storageConfig.Path) == "" {
		storageConfig.Path = storage.DefaultPath(storageConfig.Driver, dataDir)
	}
	return storageConfig
}

// WithLogLevel overrides the configured level when level is set.
func WithLogLevel(cfg config.Config, level string) config.Config {
	if level = strings.TrimSpace(level); level != "" {
		cfg.Log.Level = level
	}
	return cfg
}

// PrintStatus writes the persisted schedule as seen at now.
func PrintStatus(w io.Writer, state model.ScheduleState, now time.Time) error {
	status := scheduler.StatusOf(state, now)
	hours := "off"
	if state.WorkingHoursEnabled {
		hours = fmt.Sprintf("%s-%s", state.WorkingHoursStart, state.WorkingHoursEnd)
	}

	lines := []string{
		fmt.Sprintf("title:          %s", scheduler.Title(status)),
		fmt.Sprintf("state:          %s", status.State),
		fmt.Sprintf("enabled:        %t", state.Enabled),
		fmt.Sprintf("working hours:  %s", hours),
		fmt.Sprintf("20-20-20:       every %dm, next in %s", state.TwentyTwentyIntervalMin, scheduler.FormatCountdown(status.UntilTwentyTwenty)),
		fmt.Sprintf("blink:          every %dm, next in %s", state.BlinkIntervalMin, scheduler.FormatCountdown(status.UntilBlink)),
		fmt.Sprintf("posture:        every %dm, next in %s", state.PostureIntervalMin, scheduler.FormatCountdown(status.UntilPosture)),
	}
	if state.ManuallyResumedOutsideHours {
		lines = append(lines, "note:           resumed manually outside working hours")
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Reset restores the default schedule, keeping nothing from the old state.
func Reset(ctx context.Context, store storage.Store) error {
	if err := store.Save(ctx, model.DefaultScheduleState()); err != nil {
		return fmt.Errorf("reset schedule: %w", err)
	}
	return nil
}
