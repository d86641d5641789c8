package config

import "strings"

// Config is the loopkit CLI configuration.
//
// All durations are Go duration strings (e.g. "250ms", "5s").
// Every section may be omitted; Defaults() fills the gaps.
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Storage   StorageConfig   `json:"storage"`
	Watch     WatchConfig     `json:"watch"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SchedulerConfig controls every scheduler the CLI creates.
//
// Defaults (when fields are omitted/zero):
//   - history_size: 200
//   - error_log_rate: 5 (per second, default error logger only)
//   - max_steps: 100000 (0 in the file means "use the default"; -1 disables)
type SchedulerConfig struct {
	HistorySize  int     `json:"history_size,omitempty"`
	ErrorLogRate float64 `json:"error_log_rate,omitempty"`
	MaxSteps     int     `json:"max_steps,omitempty"`
}

// StorageConfig controls where recorded runs are kept.
//
// Driver values:
//   - "none" or "": recording disabled
//   - "file": JSON Lines file
//   - "sqlite" (or "sqlite3"): SQLite database file
//
// Example:
//
//	"storage": { "driver": "file", "path": "./loopkit_runs" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

// NormalizedDriver lower-cases Driver and folds its aliases: "" becomes
// "none" and "sqlite3" becomes "sqlite".
func (s StorageConfig) NormalizedDriver() string {
	switch d := strings.ToLower(strings.TrimSpace(s.Driver)); d {
	case "":
		return "none"
	case "sqlite3":
		return "sqlite"
	default:
		return d
	}
}

// WatchConfig controls `run --watch`.
type WatchConfig struct {
	// Debounce is a Go duration string; default "250ms".
	Debounce string `json:"debounce,omitempty"`
}

const defaultMaxSteps = 100000

// Defaults returns the configuration used when no config file exists.
func Defaults() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Console: true},
		Scheduler: SchedulerConfig{
			HistorySize:  200,
			ErrorLogRate: 5,
			MaxSteps:     defaultMaxSteps,
		},
		Storage: StorageConfig{Driver: "none"},
		Watch:   WatchConfig{Debounce: "250ms"},
	}
}

// applyDefaults fills zero values in place.
func (c *Config) applyDefaults() {
	d := Defaults()
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Scheduler.HistorySize <= 0 {
		c.Scheduler.HistorySize = d.Scheduler.HistorySize
	}
	if c.Scheduler.ErrorLogRate <= 0 {
		c.Scheduler.ErrorLogRate = d.Scheduler.ErrorLogRate
	}
	switch {
	case c.Scheduler.MaxSteps == 0:
		c.Scheduler.MaxSteps = d.Scheduler.MaxSteps
	case c.Scheduler.MaxSteps < 0:
		c.Scheduler.MaxSteps = 0
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = d.Storage.Driver
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = d.Watch.Debounce
	}
}
