//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (service *platformService) EnableAutostart(appName string, command LaunchCommand) error {
	entry, err := newAutostartEntry(appName, command)
	if err == nil {
		err = entry.requireCommand()
	}
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	path, err := service.desktopFilePath(entry)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(entry.desktopFile()), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	entry, err := newAutostartEntry(appName, LaunchCommand{})
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	path, err := service.desktopFilePath(entry)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}
	return nil
}

func (service *platformService) IsAutostartEnabled(appName string) (bool, error) {
	entry, err := newAutostartEntry(appName, LaunchCommand{})
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	path, err := service.desktopFilePath(entry)
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return fileExists(path)
}

// desktopFilePath follows the XDG autostart layout: $XDG_CONFIG_HOME/autostart.
func (service *platformService) desktopFilePath(entry autostartEntry) (string, error) {
	configDir, err := service.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", entry.Slug+".desktop"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

func (entry autostartEntry) desktopFile() string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Eye-health break reminders
Exec=%s
Icon=%s
X-GNOME-Autostart-enabled=true
X-GNOME-Autostart-Delay=5
Terminal=false
`,
		entry.Name,
		desktopExecLine(entry.Command.Argv()),
		entry.Slug,
	)
}

// desktopExecLine renders argv for an Exec key. Arguments holding reserved
// characters are double-quoted with ", `, $ and \ escaped; the value is then
// escaped once more for the key-file string syntax, and % is doubled so no
// argument reads as a field code.
func desktopExecLine(argv []string) string {
	quoted := make([]string, 0, len(argv))
	for _, arg := range argv {
		quoted = append(quoted, quoteExecArg(arg))
	}
	line := strings.Join(quoted, " ")
	line = strings.ReplaceAll(line, `\`, `\\`)
	return strings.ReplaceAll(line, "%", "%%")
}

func quoteExecArg(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\"'\\><~|&;$*?#()`") {
		return arg
	}
	escaper := strings.NewReplacer(`"`, `\"`, "`", "\\`", `$`, `\$`, `\`, `\\`)
	return `"` + escaper.Replace(arg) + `"`
}
