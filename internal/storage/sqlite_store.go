package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"blinkaway/internal/core/model"
	"blinkaway/internal/logx"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS schedule_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger

	mu    sync.Mutex
	state model.ScheduleState
}

// corruptSuffix is appended to a state database that could not be opened.
const corruptSuffix = ".corrupt"

var sqlitePragmas = []string{
	"PRAGMA busy_timeout = 2000",
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
}

// OpenSQLite opens (or creates) the SQLite state database at path.
// A file that is not a usable database is moved aside to path+".corrupt"
// and a fresh database is created in its place.
func OpenSQLite(path string, log logx.Logger) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	db, values, err := openStateDB(path, log)
	if err != nil {
		log.Warn("state db unusable, starting a fresh one", logx.String("path", path), logx.Err(err))
		if moveErr := moveAside(path); moveErr != nil {
			return nil, fmt.Errorf("move corrupt state db: %w", moveErr)
		}
		db, values, err = openStateDB(path, log)
		if err != nil {
			return nil, err
		}
	}

	store := &sqliteStore{db: db, log: log, state: model.DefaultScheduleState()}
	if err := store.state.ApplyValues(values); err != nil {
		log.Warn("state db partially invalid, defaults kept for bad keys", logx.String("path", path), logx.Err(err))
	}
	return store, nil
}

func openStateDB(path string, log logx.Logger) (*sql.DB, map[model.Key]string, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open state db: %w", err)
	}
	// One writer is all a tray app ever needs.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range sqlitePragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Debug("state db pragma failed", logx.String("pragma", pragma), logx.Err(err))
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate state db: %w", err)
	}
	values, err := loadValues(context.Background(), db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("read state db: %w", err)
	}
	return db, values, nil
}

// moveAside renames a broken database and drops its WAL side files.
func moveAside(path string) error {
	if err := os.Rename(path, path+corruptSuffix); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func loadValues(ctx context.Context, db *sql.DB) (map[model.Key]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM schedule_state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := map[model.Key]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[model.Key(key)] = value
	}
	return values, rows.Err()
}

func (store *sqliteStore) Snapshot() model.ScheduleState {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.state
}

func (store *sqliteStore) Get(key model.Key) (string, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.state.Value(key)
}

func (store *sqliteStore) Set(ctx context.Context, key model.Key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.db == nil {
		return ErrClosed
	}
	next := store.state
	if err := next.ApplyValues(map[model.Key]string{key: value}); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	store.state = next
	return store.writeLocked(ctx, []model.Key{key})
}

func (store *sqliteStore) Save(ctx context.Context, state model.ScheduleState, keys ...model.Key) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.db == nil {
		return ErrClosed
	}
	store.state = state
	if len(keys) == 0 {
		keys = model.AllKeys
	}
	return store.writeLocked(ctx, keys)
}

func (store *sqliteStore) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.db == nil {
		return nil
	}
	err := store.db.Close()
	store.db = nil
	return err
}

func (store *sqliteStore) writeLocked(ctx context.Context, keys []model.Key) error {
	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state write: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO schedule_state(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare state write: %w", err)
	}
	defer stmt.Close()

	updatedAt := time.Now().UTC().Format(time.RFC3339Nano)
	for _, key := range keys {
		value, ok := store.state.Value(key)
		if !ok {
			continue
		}
		if _, err := stmt.ExecContext(ctx, string(key), value, updatedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state write: %w", err)
	}
	return nil
}
