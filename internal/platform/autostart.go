package platform

import (
	"errors"
	"strings"
)

var (
	errEmptyAppName    = errors.New("app name is empty")
	errEmptyExecutable = errors.New("executable path is empty")
)

// LaunchCommand is the command line the OS runs at login.
type LaunchCommand struct {
	Executable string
	Args       []string
}

// Argv returns the executable followed by its arguments.
func (command LaunchCommand) Argv() []string {
	argv := make([]string, 0, len(command.Args)+1)
	argv = append(argv, command.Executable)
	return append(argv, command.Args...)
}

// autostartEntry is the OS-neutral login item. Each OS renders it into a
// desktop file, a LaunchAgent plist or a Run key value, and derives the
// location it checks for status from the same Slug.
type autostartEntry struct {
	Name    string
	Slug    string
	Command LaunchCommand
}

func newAutostartEntry(appName string, command LaunchCommand) (autostartEntry, error) {
	name := strings.TrimSpace(appName)
	if name == "" {
		return autostartEntry{}, errEmptyAppName
	}
	command.Executable = strings.Trim(strings.TrimSpace(command.Executable), `"`)
	return autostartEntry{Name: name, Slug: slug(name), Command: command}, nil
}

// requireCommand reports whether the entry can be registered.
func (entry autostartEntry) requireCommand() error {
	if entry.Command.Executable == "" {
		return errEmptyExecutable
	}
	return nil
}

// Label is the reverse-DNS identifier used where the OS wants one.
func (entry autostartEntry) Label() string {
	return "com." + entry.Slug + ".agent"
}

func slug(name string) string {
	var builder strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			builder.WriteRune(r)
		case r == ' ' || r == '_':
			builder.WriteByte('-')
		}
	}
	if builder.Len() == 0 {
		return "blinkaway"
	}
	return builder.String()
}
