package animation

import "time"

// DefaultConfig returns defaults tuned for a 60 Hz display.
func DefaultConfig() Config {
	return Config{
		FrameInterval:  16 * time.Millisecond,
		MinScale:       0.45,
		MaxScale:       1,
		RestScale:      0.6,
		PulseAmplitude: 0.03,
		PulsePeriod:    4 * time.Second,
	}
}
