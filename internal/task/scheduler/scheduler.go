package scheduler

import (
	"container/heap"
	"context"
	"time"

	"golang.org/x/time/rate"
	"loopkit/internal/eventbus"
	logx "loopkit/pkg/logx"
)

// New creates an idle scheduler with empty queues. bus may be nil.
func New(opts Options, log logx.Logger, bus eventbus.Bus) *Scheduler {
	if log.IsZero() {
		log = logx.Nop()
	}
	opts = opts.withDefaults()
	burst := int(opts.ErrorLogRate)
	if burst < 1 {
		burst = 1
	}
	return &Scheduler{
		opts:    opts,
		log:     log,
		bus:     bus,
		byID:    map[TaskID]*task{},
		state:   Idle,
		limiter: rate.NewLimiter(rate.Limit(opts.ErrorLogRate), burst),
	}
}

// OnError registers the hook that receives task failures. Passing nil
// restores the default (rate-limited warn logging).
func (s *Scheduler) OnError(fn func(*TaskError)) {
	s.mu.Lock()
	s.onErr = fn
	s.mu.Unlock()
}

// ErrorHook returns the hook registered with OnError, or nil.
func (s *Scheduler) ErrorHook() func(*TaskError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onErr
}

// SubmitMicrotask appends fn to the microtask queue.
func (s *Scheduler) SubmitMicrotask(fn func() error) TaskID {
	return s.SubmitMicrotaskNamed("", fn)
}

func (s *Scheduler) SubmitMicrotaskNamed(name string, fn func() error) TaskID {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.newTaskLocked(name, Microtask, 0, fn)
	t.index = -1
	s.micro = append(s.micro, t)
	return t.id
}

// SubmitMacrotask inserts fn into the macrotask queue ordered by
// (delay, submission order). Negative delays are treated as 0.
func (s *Scheduler) SubmitMacrotask(fn func() error, delay int64) TaskID {
	return s.SubmitMacrotaskNamed("", fn, delay)
}

func (s *Scheduler) SubmitMacrotaskNamed(name string, fn func() error, delay int64) TaskID {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.newTaskLocked(name, Macrotask, delay, fn)
	heap.Push(&s.macro, t)
	return t.id
}

func (s *Scheduler) newTaskLocked(name string, class Class, delay int64, fn func() error) *task {
	if fn == nil {
		fn = func() error { return nil }
	}
	s.seq++
	t := &task{id: TaskID(s.seq), name: name, class: class, delay: delay, fn: fn}
	s.byID[t.id] = t
	return t
}

// Cancel removes a queued task. It reports false if the task is unknown,
// already executed, or currently executing.
func (s *Scheduler) Cancel(id TaskID) bool {
	s.mu.Lock()
	t, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.byID, id)
	s.removeLocked(t)
	s.cancelled++
	s.mu.Unlock()

	s.log.Debug("task.cancelled", logx.Uint64("id", uint64(id)), logx.String("task", t.label()))
	s.publish(eventbus.TaskCancelled, t, "")
	return true
}

// State returns the current run-cycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pending returns the number of queued microtasks and macrotasks.
func (s *Scheduler) Pending() (micro, macro int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.micro), s.macro.Len()
}

// RunToCompletion pumps the loop until both queues are empty:
// drain every microtask (including ones queued while draining), run one
// macrotask, repeat.
//
// Task failures never stop the loop. The returned error is non-nil only when
// ctx is cancelled, MaxSteps is hit, or the call is re-entrant; in those cases
// unexecuted work stays queued and the state returns to Idle.
func (s *Scheduler) RunToCompletion(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrReentrantRun
	}
	s.running = true
	s.mu.Unlock()

	start := time.Now()
	steps := 0
	defer func() {
		s.mu.Lock()
		s.running = false
		if s.state != Drained {
			s.state = Idle
		}
		s.lastRun = time.Since(start)
		s.mu.Unlock()
	}()

	for {
		if err := ctx.Err(); err != nil {
			s.log.Debug("run interrupted", logx.Int("steps", steps), logx.Err(err))
			return err
		}

		s.mu.Lock()
		if s.opts.MaxSteps > 0 && steps >= s.opts.MaxSteps && (len(s.micro) > 0 || s.macro.Len() > 0) {
			s.mu.Unlock()
			s.log.Warn("run stopped at step limit", logx.Int("max_steps", s.opts.MaxSteps))
			return ErrStepLimit
		}
		t, st := s.nextLocked()
		s.state = st
		if t == nil {
			s.mu.Unlock()
			s.log.Debug("loop.drained", logx.Int("steps", steps), logx.Duration("took", time.Since(start)))
			if s.bus != nil && steps > 0 {
				s.bus.Publish(eventbus.Event{Type: eventbus.LoopDrained, Data: steps})
			}
			return nil
		}
		delete(s.byID, t.id)
		s.mu.Unlock()

		steps++
		s.execOne(t)
	}
}

// Reset clears counters and history. Queued work is kept.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.executed, s.failed, s.cancelled, s.suppressed = 0, 0, 0, 0
	s.lastRun = 0
	s.history = nil
	s.mu.Unlock()
}

func (s *Scheduler) publish(typ string, t *task, errStr string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{Type: typ, Time: time.Now(), Data: TaskEvent{
		ID:    t.id,
		Name:  t.label(),
		Class: t.class.String(),
		Delay: t.delay,
		Error: errStr,
	}})
}
