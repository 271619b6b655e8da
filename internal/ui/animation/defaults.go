package animation

import "time"

// DefaultConfig returns the rotation used by the break overlay.
func DefaultConfig() Config {
	return Config{
		TipInterval: 30 * time.Second,
		Tips:        DefaultTips(),
	}
}
