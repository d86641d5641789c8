package scheduler

import (
	"fmt"
	"runtime/debug"

	"loopkit/internal/eventbus"
	logx "loopkit/pkg/logx"
)

// execOne runs a single task body outside the lock and records the result.
func (s *Scheduler) execOne(t *task) {
	if s.log.Enabled(logx.LevelTrace) {
		s.log.Trace("task.started", logx.String("task", t.label()), logx.String("class", t.class.String()))
	}
	s.publish(eventbus.TaskStarted, t, "")

	err := s.call(t)

	item := HistoryItem{ID: t.id, Name: t.name, Class: t.class, Delay: t.delay}
	if err != nil {
		item.Error = err.Error()
	}

	s.mu.Lock()
	s.executed++
	if err != nil {
		s.failed++
	}
	s.history = append(s.history, item)
	if len(s.history) > s.opts.HistorySize {
		s.history = s.history[len(s.history)-s.opts.HistorySize:]
	}
	hook := s.onErr
	s.mu.Unlock()

	if err == nil {
		s.publish(eventbus.TaskFinished, t, "")
		return
	}
	s.publish(eventbus.TaskFailed, t, item.Error)

	te := &TaskError{ID: t.id, Name: t.name, Class: t.class, Err: err}
	if hook != nil {
		hook(te)
		return
	}
	s.reportTaskError(te)
}

// call converts task panics into errors so one bad task can't take down the loop.
func (s *Scheduler) call(t *task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			err = &panicError{value: r, stack: stack}
			s.log.Error("task.panic", logx.String("task", t.label()), logx.String("panic", fmt.Sprint(r)), logx.Stack(string(stack)))
		}
	}()
	return t.fn()
}
