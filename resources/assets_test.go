package resources

import (
	"testing"

	"github.com/spf13/afero"
)

func TestOverrideLoadsAndCaches(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/icons/tray_active.png", []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	loader := NewLoader(fs, "/icons")

	first, err := loader.Override(IconTrayActive)
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	if first.Name() != IconTrayActive || string(first.Content()) != "png-bytes" {
		t.Fatalf("unexpected resource %q", first.Name())
	}

	if err := fs.Remove("/icons/tray_active.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	second, err := loader.Override(IconTrayActive)
	if err != nil || second != first {
		t.Fatalf("cached resource not reused: %v", err)
	}
}

func TestOverrideMissingFile(t *testing.T) {
	loader := NewLoader(afero.NewMemMapFs(), "/icons")
	if _, err := loader.Override(IconEyeClosed); err == nil {
		t.Fatalf("expected error for missing override")
	}
}

func TestOverrideDisabled(t *testing.T) {
	loader := NewLoader(afero.NewMemMapFs(), "")
	resource, err := loader.Override(IconApp)
	if err != nil || resource != nil {
		t.Fatalf("Override() = %v, %v; want nil, nil", resource, err)
	}
}
