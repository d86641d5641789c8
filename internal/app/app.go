package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"loopkit/internal/config"
	"loopkit/internal/eventbus"
	"loopkit/internal/runtime/supervisor"
	"loopkit/internal/scenario"
	"loopkit/internal/storage"
	"loopkit/internal/task/scheduler"
	"loopkit/internal/watch"
	logx "loopkit/pkg/logx"
)

var ErrRecordingDisabled = errors.New("recording needs storage.driver set to file or sqlite")

// Options are command-line overrides applied on top of the config file.
type Options struct {
	LogLevel string
}

// App holds everything a loopkit command needs: config, logging, the event
// bus, the optional run store, and a factory for configured schedulers.
type App struct {
	cfgPath string
	opts    Options

	cfgm *config.Manager

	mu  sync.RWMutex
	cfg *config.Config

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	sup *supervisor.Supervisor
}

func New(cfgPath string, opts Options) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" && !logx.ValidLevel(opts.LogLevel) {
		return nil, errors.New("unknown log level: " + opts.LogLevel)
	}

	logSvc, log := logx.New(mapLogConfig(cfg, opts.LogLevel))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))
	log = log.With(logx.String("comp", "app"))

	var store storage.Store
	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		_ = logSvc.Close()
		return nil, err
	} else if enabled {
		st, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
		if err != nil {
			_ = logSvc.Close()
			return nil, err
		}
		store = st
		log.Debug("storage enabled", logx.String("driver", sc.Driver))
	}

	a := &App{
		cfgPath: cfgPath,
		opts:    opts,
		cfgm:    cfgm,
		cfg:     cfg,
		log:     log,
		logs:    logSvc,
		bus:     eventbus.New(),
		store:   store,
	}
	// Watcher failures end the command.
	a.sup = supervisor.New(context.Background(),
		supervisor.WithLogger(log.With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true),
	)
	a.startEventLog()
	return a, nil
}

func (a *App) Logger() logx.Logger { return a.log }

func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// NewScheduler returns a fresh scheduler configured from the current config
// and wired to the app's logger and event bus.
func (a *App) NewScheduler() *scheduler.Scheduler {
	return scheduler.New(mapSchedulerOptions(a.Config()), a.log.With(logx.String("comp", "scheduler")), a.bus)
}

// startEventLog mirrors scheduler lifecycle events into the debug log.
func (a *App) startEventLog() {
	ch, unsub := a.bus.Subscribe(256)
	log := a.log.With(logx.String("comp", "events"))
	a.sup.Go0("events", func(ctx context.Context) {
		defer unsub()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-ch:
				if !ok {
					return
				}
				switch d := e.Data.(type) {
				case scheduler.TaskEvent:
					log.Trace(e.Type, logx.Uint64("id", uint64(d.ID)), logx.String("task", d.Name), logx.String("class", d.Class))
				default:
					log.Trace(e.Type, logx.Any("data", d))
				}
			}
		}
	})
}

// RunScenario runs sc on a fresh scheduler. With record set the result is
// appended to the store.
func (a *App) RunScenario(ctx context.Context, sc *scenario.Scenario, source string, record bool) (scenario.Result, error) {
	if record && a.store == nil {
		return scenario.Result{}, ErrRecordingDisabled
	}
	res, err := scenario.Run(ctx, sc, a.NewScheduler())
	if err != nil {
		return res, err
	}
	a.log.Debug("scenario finished",
		logx.String("scenario", res.Name),
		logx.Uint64("executed", res.Executed),
		logx.Int("errors", len(res.Errors)),
		logx.Bool("matched", res.Matches()),
		logx.Duration("took", res.Took),
	)
	if !record {
		return res, nil
	}

	rec := storage.NewRunRecord(res.Name)
	rec.Source = source
	rec.Trace = res.Trace
	rec.Errors = res.Errors
	rec.Executed = res.Executed
	rec.Cancelled = res.Cancelled
	rec.Matched = res.Matches()
	rec.Took = res.Took
	if err := a.store.AppendRun(ctx, rec); err != nil {
		return res, err
	}
	a.log.Debug("run recorded", logx.String("id", rec.ID.String()))
	return res, nil
}

// RunFile loads the scenario at path and runs it.
func (a *App) RunFile(ctx context.Context, path string, record bool) (scenario.Result, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return scenario.Result{}, err
	}
	return a.RunScenario(ctx, sc, path, record)
}

// WatchFile runs the scenario at path, then again after every change, until
// ctx is done. A config file change is applied before the next run. Runs
// happen on the calling goroutine; report receives each outcome.
func (a *App) WatchFile(ctx context.Context, path string, record bool, report func(scenario.Result, error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scenarioChanged := make(chan struct{}, 1)
	configChanged := make(chan struct{}, 1)
	notify := func(ch chan struct{}) func() {
		return func() {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}

	durations, err := a.Config().Durations()
	if err != nil {
		return err
	}
	debounce := durations.WatchDebounce
	wlog := a.log.With(logx.String("comp", "watch"))
	a.sup.Go("watch.scenario", func(context.Context) error {
		return watch.File(ctx, path, debounce, wlog, notify(scenarioChanged))
	})
	if a.cfgPath != "" && filepath.Clean(a.cfgPath) != filepath.Clean(path) {
		a.sup.Go("watch.config", func(context.Context) error {
			return watch.File(ctx, a.cfgPath, debounce, wlog, notify(configChanged))
		})
	}

	report(a.RunFile(ctx, path, record))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.sup.Context().Done():
			return a.sup.Err()
		case <-configChanged:
			a.reloadConfig()
		case <-scenarioChanged:
			a.log.Info("scenario changed; rerunning", logx.String("path", path))
			report(a.RunFile(ctx, path, record))
		}
	}
}

// reloadConfig applies logging and scheduler changes. Storage changes need
// a restart.
func (a *App) reloadConfig() {
	cfg, changed, err := a.cfgm.Reload()
	if err != nil {
		a.log.Warn("config rejected", logx.String("path", a.cfgPath), logx.Err(err))
		return
	}
	if !changed {
		return
	}
	a.mu.Lock()
	prev := a.cfg
	a.cfg = cfg
	a.mu.Unlock()

	a.logs.Apply(mapLogConfig(cfg, a.opts.LogLevel))
	if prev.Storage != cfg.Storage {
		a.log.Warn("storage config changed; restart to apply")
	}
	a.log.Info("config reloaded", logx.String("path", a.cfgPath))
}

// History lists recorded runs, newest first.
func (a *App) History(ctx context.Context, limit int) ([]storage.RunRecord, error) {
	if a.store == nil {
		return nil, ErrRecordingDisabled
	}
	return a.store.ListRuns(ctx, limit)
}

func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.sup.Stop(ctx)
	if a.store != nil {
		err = errors.Join(err, a.store.Close())
	}
	return errors.Join(err, a.logs.Close())
}
