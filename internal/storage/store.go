// Package storage persists the reminder schedule as a flat key-value record.
//
// Two drivers are available:
//   - yaml: a single state.yaml file rewritten on every change (default)
//   - sqlite: one row per key in a local SQLite database
//
// Both fall back to model.DefaultScheduleState when the backing data is
// missing or unreadable; the tray app must keep running either way.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"blinkaway/internal/core/model"
	"blinkaway/internal/logx"

	"github.com/spf13/afero"
)

// ErrUnknownDriver is returned by Open for unsupported driver names.
var ErrUnknownDriver = errors.New("unknown storage driver")

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("store closed")

// Store is the schedule persistence API used by the scheduler.
type Store interface {
	// Snapshot returns the full current state.
	Snapshot() model.ScheduleState
	// Get returns the encoded value of a single key.
	Get(key model.Key) (string, bool)
	// Set decodes and durably writes a single key.
	Set(ctx context.Context, key model.Key, value string) error
	// Save replaces the in-memory state and durably writes the listed keys
	// (every key when none are given).
	Save(ctx context.Context, state model.ScheduleState, keys ...model.Key) error
	Close() error
}

// Config selects the backing driver.
type Config struct {
	Driver string
	Path   string
}

const (
	DriverYAML   = "yaml"
	DriverSQLite = "sqlite"

	stateFileName = "state.yaml"
	dbFileName    = "state.db"
)

// DefaultPath returns the state location for a driver inside dataDir.
func DefaultPath(driver, dataDir string) string {
	if normalizeDriver(driver) == DriverSQLite {
		return filepath.Join(dataDir, dbFileName)
	}
	return filepath.Join(dataDir, stateFileName)
}

// Open initializes the configured store. Corrupt data is logged and replaced by defaults.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage path is required")
	}

	switch normalizeDriver(cfg.Driver) {
	case DriverYAML:
		return OpenYAML(afero.NewOsFs(), path, log)
	case DriverSQLite:
		return OpenSQLite(path, log)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}

// OpenOrMemory is Open for the tray app: when the configured store cannot be
// opened at all, it logs and returns an in-memory store seeded with defaults,
// so reminders keep running for this session without persistence.
func OpenOrMemory(cfg Config, log logx.Logger) Store {
	if log.IsZero() {
		log = logx.Nop()
	}
	store, err := Open(cfg, log)
	if err == nil {
		return store
	}
	log.Warn("schedule store unavailable, changes will not survive a restart",
		logx.String("driver", cfg.Driver),
		logx.String("path", cfg.Path),
		logx.Err(err),
	)
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = stateFileName
	}
	return &yamlStore{fs: afero.NewMemMapFs(), path: path, log: log, state: model.DefaultScheduleState()}
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "yaml", "yml", "file":
		return DriverYAML
	case "sqlite", "sqlite3":
		return DriverSQLite
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}
