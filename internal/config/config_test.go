package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"blinkaway/internal/logx"
	"blinkaway/internal/storage"

	"github.com/spf13/afero"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "/cfg/config.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadClampsOutOfRangeValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
log:
  level: debug
  console: false
storage:
  driver: sqlite
overlay:
  opacity: 0.2
  fullscreen: false
toast:
  duration_seconds: 600
debug_menu: true
`
	if err := afero.WriteFile(fs, "/config.yaml", []byte(content), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cfg, err := Load(fs, "/config.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	defaults := Default()
	if cfg.Log.Level != "debug" || cfg.Log.Console {
		t.Fatalf("log section not applied: %+v", cfg.Log)
	}
	if cfg.Storage.Driver != storage.DriverSQLite {
		t.Fatalf("storage driver = %q", cfg.Storage.Driver)
	}
	if cfg.Overlay.Opacity != defaults.Overlay.Opacity {
		t.Fatalf("opacity 0.2 should be rejected, got %v", cfg.Overlay.Opacity)
	}
	if cfg.Overlay.Fullscreen {
		t.Fatalf("fullscreen not applied")
	}
	if cfg.Toast.Duration != defaults.Toast.Duration {
		t.Fatalf("toast duration 600s should be rejected, got %v", cfg.Toast.Duration)
	}
	if !cfg.DebugMenu {
		t.Fatalf("debug_menu not applied")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/config.yaml", []byte("log: [unterminated"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cfg, err := Load(fs, "/config.yaml")
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg != Default() {
		t.Fatalf("invalid yaml should still return defaults")
	}
}

func TestSaveThenLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := Default()
	cfg.Log.Level = "warn"
	cfg.Log.File = logx.FileConfig{Enabled: true, Path: "/logs/blinkaway.log"}
	cfg.Overlay.Opacity = 0.9
	cfg.Toast.Duration = 10 * time.Second
	cfg.DebugMenu = true

	if err := Save(fs, "/cfg/BlinkAway/config.yaml", cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(fs, "/cfg/BlinkAway/config.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Fatalf("Load() = %+v, want %+v", got, cfg)
	}
}

func TestReloadSkipsUnchangedContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/config.yaml", []byte("debug_menu: false\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m := NewManager("/config.yaml", logx.Nop())
	m.fs = fs
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	updates := m.Subscribe(4)

	m.reload()
	select {
	case cfg := <-updates:
		t.Fatalf("unchanged file published %+v", cfg)
	default:
	}

	if err := afero.WriteFile(fs, "/config.yaml", []byte("debug_menu: true\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	m.reload()
	select {
	case cfg := <-updates:
		if !cfg.DebugMenu || !m.Get().DebugMenu {
			t.Fatalf("published config = %+v", cfg)
		}
	default:
		t.Fatalf("changed file was not published")
	}

	if err := afero.WriteFile(fs, "/config.yaml", []byte("log: [broken"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	m.reload()
	if !m.Get().DebugMenu {
		t.Fatalf("invalid file replaced the committed config")
	}
}

func TestWatchPublishesFileChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("debug_menu: false\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m := NewManager(path, logx.Nop())
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	updates := m.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	deadline := time.After(5 * time.Second)
	rewrite := time.NewTicker(300 * time.Millisecond)
	defer rewrite.Stop()
	for {
		select {
		case cfg := <-updates:
			if !cfg.DebugMenu {
				t.Fatalf("published config = %+v", cfg)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned %v", err)
			}
			return
		case <-rewrite.C:
			// The watcher may not be registered yet on the first write.
			if err := os.WriteFile(path, []byte("debug_menu: true\n"), 0o644); err != nil {
				t.Fatalf("rewrite: %v", err)
			}
		case <-deadline:
			t.Fatalf("no config published after file change")
		}
	}
}
