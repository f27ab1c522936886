//go:build windows

package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (service *platformService) EnableAutostart(appName string, command LaunchCommand) error {
	entry, err := newAutostartEntry(appName, command)
	if err == nil {
		err = entry.requireCommand()
	}
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	output, err := exec.Command("reg", "add", registryRunKey,
		"/v", entry.Name, "/t", "REG_SZ", "/d", entry.runValue(), "/f",
	).CombinedOutput()
	if err != nil {
		return fmt.Errorf("enable autostart: reg add failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	entry, err := newAutostartEntry(appName, LaunchCommand{})
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	enabled, err := service.IsAutostartEnabled(appName)
	if err != nil || !enabled {
		return err
	}
	output, err := exec.Command("reg", "delete", registryRunKey, "/v", entry.Name, "/f").CombinedOutput()
	if err != nil {
		return fmt.Errorf("disable autostart: reg delete failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// IsAutostartEnabled reports whether the Run key carries a value for the app.
// reg query exits non-zero when the value is missing.
func (service *platformService) IsAutostartEnabled(appName string) (bool, error) {
	entry, err := newAutostartEntry(appName, LaunchCommand{})
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	if err := exec.Command("reg", "query", registryRunKey, "/v", entry.Name).Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("autostart status: reg query failed: %w", err)
	}
	return true, nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}

// runValue is the command line stored under the Run key. The executable is
// always quoted so paths under "Program Files" resolve.
func (entry autostartEntry) runValue() string {
	parts := []string{`"` + entry.Command.Executable + `"`}
	for _, arg := range entry.Command.Args {
		parts = append(parts, syscall.EscapeArg(arg))
	}
	return strings.Join(parts, " ")
}
