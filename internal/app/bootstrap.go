package app

import (
	"strings"

	"loopkit/internal/config"
	"loopkit/internal/storage"
	"loopkit/internal/task/scheduler"
	logx "loopkit/pkg/logx"
)

func mapLogConfig(cfg *config.Config, levelOverride string) logx.Config {
	lc := logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
	if strings.TrimSpace(levelOverride) != "" {
		lc.Level = levelOverride
	}
	return lc
}

func mapSchedulerOptions(cfg *config.Config) scheduler.Options {
	return scheduler.Options{
		HistorySize:  cfg.Scheduler.HistorySize,
		ErrorLogRate: cfg.Scheduler.ErrorLogRate,
		MaxSteps:     cfg.Scheduler.MaxSteps,
	}
}

func mapStorageConfig(cfg *config.Config) (storage.Config, bool, error) {
	driver := cfg.Storage.NormalizedDriver()
	if driver == "none" {
		return storage.Config{}, false, nil
	}
	d, err := cfg.Durations()
	if err != nil {
		return storage.Config{}, false, err
	}
	out := storage.Config{Driver: driver, Path: strings.TrimSpace(cfg.Storage.Path)}
	if driver == "sqlite" {
		out.BusyTimeout = d.BusyTimeout
	}
	return out, true, nil
}
