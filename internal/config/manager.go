package config

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"blinkaway/internal/logx"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

const (
	reloadDebounce     = 250 * time.Millisecond
	restartBackoffBase = 250 * time.Millisecond
	restartBackoffMax  = 5 * time.Second
)

// Manager owns the current Config and republishes it when the file changes on disk.
type Manager struct {
	fs   afero.Fs
	path string
	log  logx.Logger

	mu       sync.RWMutex
	cfg      Config
	lastHash uint64

	subsMu sync.Mutex
	subs   []chan Config
}

// NewManager creates a manager for the config file at path.
func NewManager(path string, log logx.Logger) *Manager {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Manager{
		fs:   afero.NewOsFs(),
		path: path,
		log:  log.With(logx.String("component", "config")),
		cfg:  Default(),
	}
}

// Path returns the watched file.
func (m *Manager) Path() string { return m.path }

// Load reads the file and commits it. A missing file commits the defaults.
func (m *Manager) Load() (Config, error) {
	rawData, err := afero.ReadFile(m.fs, m.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg := Default()
		m.commit(cfg, 0)
		return cfg, nil
	case err != nil:
		return Default(), fmt.Errorf("read config file: %w", err)
	}
	cfg, err := parse(rawData)
	if err != nil {
		return cfg, err
	}
	m.commit(cfg, hashBytes(rawData))
	return cfg, nil
}

// Get returns the current config.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Subscribe returns a channel that receives every newly committed config.
func (m *Manager) Subscribe(buffer int) <-chan Config {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Config, buffer)
	m.subsMu.Lock()
	m.subs = append(m.subs, ch)
	m.subsMu.Unlock()
	return ch
}

func (m *Manager) commit(cfg Config, hash uint64) {
	m.mu.Lock()
	m.cfg = cfg
	m.lastHash = hash
	m.mu.Unlock()
}

// publish delivers the newest config, dropping the oldest queued one for slow subscribers.
func (m *Manager) publish(cfg Config) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- cfg:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cfg:
		default:
			m.log.Debug("config update dropped (subscriber slow)", logx.Int("queue_cap", cap(ch)))
		}
	}
}

func (m *Manager) reload() {
	rawData, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		m.log.Warn("config read failed", logx.String("path", m.path), logx.Err(err))
		return
	}

	hash := hashBytes(rawData)
	m.mu.RLock()
	unchanged := hash != 0 && hash == m.lastHash
	m.mu.RUnlock()
	if unchanged {
		m.log.Debug("config unchanged; skipping publish", logx.String("path", m.path))
		return
	}

	cfg, err := parse(rawData)
	if err != nil {
		m.log.Warn("config rejected", logx.String("path", m.path), logx.Err(err))
		return
	}
	m.commit(cfg, hash)
	m.publish(cfg)
	m.log.Info("config reloaded", logx.String("path", m.path), logx.String("hash", fmt.Sprintf("%x", hash)))
}

// Watch reloads the config on change until ctx is cancelled. The directory
// is watched rather than the file so editors that replace files are seen.
// A broken watcher is recreated with backoff.
func (m *Manager) Watch(ctx context.Context) error {
	dir := filepath.Dir(m.path)
	file := filepath.Base(m.path)
	backoff := restartBackoffBase

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(reloadDebounce, m.reload)
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	wait := func() bool {
		delay := backoff
		backoff *= 2
		if backoff > restartBackoffMax {
			backoff = restartBackoffMax
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
			return true
		}
	}

	for ctx.Err() == nil {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			m.log.Warn("config watch init failed", logx.Err(err), logx.String("dir", dir))
			if !wait() {
				return nil
			}
			continue
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			m.log.Warn("config watch add failed", logx.Err(err), logx.String("dir", dir))
			if !wait() {
				return nil
			}
			continue
		}

		backoff = restartBackoffBase
		m.log.Debug("config watcher started", logx.String("dir", dir), logx.String("file", file))

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = watcher.Close()
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					broken = true
					break
				}
				if strings.EqualFold(filepath.Base(event.Name), file) &&
					event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					debounce()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					broken = true
					break
				}
				m.log.Warn("config watch error", logx.Err(err), logx.String("dir", dir))
			}
		}

		_ = watcher.Close()
		m.log.Warn("config watcher stopped; restarting", logx.String("dir", dir))
		if !wait() {
			return nil
		}
	}
	return nil
}

func hashBytes(b []byte) uint64 {
	if len(b) == 0 {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
