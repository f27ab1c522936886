//go:build windows

package platform

import "testing"

func TestRunValueQuotesPaths(t *testing.T) {
	entry, err := newAutostartEntry("BlinkAway", LaunchCommand{
		Executable: `C:\Program Files\BlinkAway\blinkaway.exe`,
		Args:       []string{"--data-dir", `D:\My Data`, "run"},
	})
	if err != nil {
		t.Fatalf("newAutostartEntry: %v", err)
	}
	want := `"C:\Program Files\BlinkAway\blinkaway.exe" --data-dir "D:\My Data" run`
	if got := entry.runValue(); got != want {
		t.Fatalf("runValue = %s, want %s", got, want)
	}
}
