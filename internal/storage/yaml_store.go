package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"blinkaway/internal/core/model"
	"blinkaway/internal/logx"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type yamlState struct {
	TwentyTwentyIntervalMin     int    `yaml:"twentyTwentyIntervalMin"`
	BlinkIntervalMin            int    `yaml:"blinkIntervalMin"`
	PostureIntervalMin          int    `yaml:"postureIntervalMin"`
	NextTwentyTwentyAt          int64  `yaml:"nextTwentyTwentyAt"`
	NextBlinkAt                 int64  `yaml:"nextBlinkAt"`
	NextPostureAt               int64  `yaml:"nextPostureAt"`
	Enabled                     bool   `yaml:"enabled"`
	WorkingHoursEnabled         bool   `yaml:"workingHoursEnabled"`
	WorkingHoursStart           string `yaml:"workingHoursStart"`
	WorkingHoursEnd             string `yaml:"workingHoursEnd"`
	ManuallyResumedOutsideHours bool   `yaml:"manuallyResumedOutsideHours"`
}

type yamlStore struct {
	fs   afero.Fs
	path string
	log  logx.Logger

	mu     sync.Mutex
	state  model.ScheduleState
	closed bool
}

// OpenYAML loads the state file at path on fs.
// A missing or corrupt file yields defaults; only directory creation errors are fatal.
func OpenYAML(fs afero.Fs, path string, log logx.Logger) (Store, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	store := &yamlStore{fs: fs, path: path, log: log, state: model.DefaultScheduleState()}

	values, err := loadYAMLValues(fs, path)
	switch {
	case err == nil:
		if err := store.state.ApplyValues(values); err != nil {
			log.Warn("state file partially invalid, defaults kept for bad keys", logx.String("path", path), logx.Err(err))
		}
	case errors.Is(err, os.ErrNotExist):
		log.Debug("state file missing, using defaults", logx.String("path", path))
	default:
		log.Warn("state file unreadable, using defaults", logx.String("path", path), logx.Err(err))
	}
	return store, nil
}

func loadYAMLValues(fs afero.Fs, path string) (map[model.Key]string, error) {
	rawData, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	var values map[string]string
	if err := yaml.Unmarshal(rawData, &values); err != nil {
		return nil, fmt.Errorf("parse state yaml: %w", err)
	}
	keyed := make(map[model.Key]string, len(values))
	for key, value := range values {
		keyed[model.Key(key)] = value
	}
	return keyed, nil
}

func (store *yamlStore) Snapshot() model.ScheduleState {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.state
}

func (store *yamlStore) Get(key model.Key) (string, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.state.Value(key)
}

func (store *yamlStore) Set(_ context.Context, key model.Key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		return ErrClosed
	}
	next := store.state
	if err := next.ApplyValues(map[model.Key]string{key: value}); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	store.state = next
	return store.writeLocked()
}

// Save rewrites the whole file; keys only matter to per-key backends.
func (store *yamlStore) Save(_ context.Context, state model.ScheduleState, _ ...model.Key) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		return ErrClosed
	}
	store.state = state
	return store.writeLocked()
}

func (store *yamlStore) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.closed = true
	return nil
}

func (store *yamlStore) writeLocked() error {
	state := store.state
	fileData := yamlState{
		TwentyTwentyIntervalMin:     state.TwentyTwentyIntervalMin,
		BlinkIntervalMin:            state.BlinkIntervalMin,
		PostureIntervalMin:          state.PostureIntervalMin,
		NextTwentyTwentyAt:          state.NextTwentyTwentyAt,
		NextBlinkAt:                 state.NextBlinkAt,
		NextPostureAt:               state.NextPostureAt,
		Enabled:                     state.Enabled,
		WorkingHoursEnabled:         state.WorkingHoursEnabled,
		WorkingHoursStart:           state.WorkingHoursStart.String(),
		WorkingHoursEnd:             state.WorkingHoursEnd.String(),
		ManuallyResumedOutsideHours: state.ManuallyResumedOutsideHours,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal state yaml: %w", err)
	}

	tmpPath := store.path + ".tmp"
	if err := afero.WriteFile(store.fs, tmpPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := store.fs.Rename(tmpPath, store.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
