package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultBusyTimeout   = time.Second
	DefaultWatchDebounce = 250 * time.Millisecond
)

// Durations holds the parsed duration fields of a Config, defaults applied.
type Durations struct {
	BusyTimeout   time.Duration
	WatchDebounce time.Duration
}

// Durations parses every duration string in c. Validate calls it, so a
// loaded config never fails here.
func (c *Config) Durations() (Durations, error) {
	busy, err := parseDuration("storage.busy_timeout", c.Storage.BusyTimeout, DefaultBusyTimeout)
	if err != nil {
		return Durations{}, err
	}
	debounce, err := parseDuration("watch.debounce", c.Watch.Debounce, DefaultWatchDebounce)
	if err != nil {
		return Durations{}, err
	}
	return Durations{BusyTimeout: busy, WatchDebounce: debounce}, nil
}

// parseDuration reads a Go duration string; blank or zero yields def.
func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", field)
	}
	if d == 0 {
		return def, nil
	}
	return d, nil
}
