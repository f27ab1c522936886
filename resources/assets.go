// Package resources resolves icons, preferring user-supplied PNGs from an
// icons directory and falling back to the built-in theme icons.
package resources

import (
	"fmt"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/spf13/afero"
)

// Icon file names looked up in the override directory.
const (
	IconApp        = "app.png"
	IconTrayActive = "tray_active.png"
	IconTrayPaused = "tray_paused.png"
	IconEyeOpen    = "eye_open.png"
	IconEyeClosed  = "eye_closed.png"
	IconBlink      = "blink.png"
	IconPosture    = "posture.png"
)

// Loader loads icons from dir on fs and caches them.
type Loader struct {
	fs    afero.Fs
	dir   string
	cache sync.Map
}

// NewLoader creates a loader rooted at dir. An empty dir disables overrides.
func NewLoader(fs afero.Fs, dir string) *Loader {
	return &Loader{fs: fs, dir: dir}
}

// Icon returns the override for name if present, else the theme fallback.
func (loader *Loader) Icon(name string) fyne.Resource {
	resource, err := loader.Override(name)
	if err != nil || resource == nil {
		return fallback(name)
	}
	return resource
}

// Override loads name from the override directory. It returns nil, nil when
// overrides are disabled.
func (loader *Loader) Override(name string) (fyne.Resource, error) {
	if loader == nil || loader.fs == nil || loader.dir == "" {
		return nil, nil
	}
	path := filepath.Join(loader.dir, name)
	if cached, ok := loader.cache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := afero.ReadFile(loader.fs, path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(name, data)
	loader.cache.Store(path, resource)
	return resource, nil
}

func fallback(name string) fyne.Resource {
	switch name {
	case IconTrayPaused, IconEyeClosed:
		return theme.VisibilityOffIcon()
	case IconPosture:
		return theme.AccountIcon()
	case IconBlink:
		return theme.InfoIcon()
	default:
		return theme.VisibilityIcon()
	}
}
