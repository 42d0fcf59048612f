package broadcaster

import "time"

// Options represents configuration options for the Broadcaster.
type Options struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultOptions returns the default broadcaster options.
func DefaultOptions() *Options {
	return &Options{
		PollInterval: 500 * time.Millisecond,
		BatchSize:    100,
	}
}
