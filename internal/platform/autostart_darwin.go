//go:build darwin

package platform

import (
	"encoding/xml"
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

	path, err := launchAgentPath(entry)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create LaunchAgents dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(entry.launchAgentPlist()), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write plist: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	entry, err := newAutostartEntry(appName, LaunchCommand{})
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	path, err := launchAgentPath(entry)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable autostart: remove plist: %w", err)
	}
	return nil
}

func (service *platformService) IsAutostartEnabled(appName string) (bool, error) {
	entry, err := newAutostartEntry(appName, LaunchCommand{})
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	path, err := launchAgentPath(entry)
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return fileExists(path)
}

func launchAgentPath(entry autostartEntry) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, "Library", "LaunchAgents", entry.Label()+".plist"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}

// launchAgentPlist runs the app once per login in the GUI session.
func (entry autostartEntry) launchAgentPlist() string {
	var arguments strings.Builder
	for _, arg := range entry.Command.Argv() {
		arguments.WriteString("\t\t<string>")
		arguments.WriteString(xmlEscape(arg))
		arguments.WriteString("</string>\n")
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
%s	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>ProcessType</key>
	<string>Interactive</string>
	<key>LimitLoadToSessionType</key>
	<string>Aqua</string>
</dict>
</plist>
`, xmlEscape(entry.Label()), arguments.String())
}

func xmlEscape(value string) string {
	var builder strings.Builder
	_ = xml.EscapeText(&builder, []byte(value))
	return builder.String()
}
