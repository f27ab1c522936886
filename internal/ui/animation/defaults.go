package animation

import "time"

// DefaultConfig returns a relaxed, natural blink rhythm.
func DefaultConfig() Config {
	return Config{
		ClosedDuration: Range{
			Min: 150 * time.Millisecond,
			Max: 200 * time.Millisecond,
		},
		OpenDuration: Range{
			Min: 150 * time.Millisecond,
			Max: 200 * time.Millisecond,
		},
		Interval: Range{
			Min: 2 * time.Second,
			Max: 4 * time.Second,
		},
		DoubleBlinkChance: 0.12,
		DoubleBlinkGap: Range{
			Min: 50 * time.Millisecond,
			Max: 100 * time.Millisecond,
		},
	}
}
