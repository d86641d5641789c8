package scheduler

import (
	logx "loopkit/pkg/logx"
)

// reportTaskError is the fallback when no OnError hook is registered.
// Failures are logged at warn, throttled so a failing microtask chain
// can't flood the log; dropped reports are counted and surfaced on the
// next line that gets through.
func (s *Scheduler) reportTaskError(te *TaskError) {
	if !s.limiter.Allow() {
		s.mu.Lock()
		s.suppressed++
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	dropped := s.suppressed
	s.mu.Unlock()

	fields := []logx.Field{
		logx.Uint64("id", uint64(te.ID)),
		logx.String("class", te.Class.String()),
		logx.Err(te.Err),
	}
	if te.Name != "" {
		fields = append(fields, logx.String("task", te.Name))
	}
	if dropped > 0 {
		fields = append(fields, logx.Uint64("suppressed", dropped))
	}
	s.log.Warn("task.failed", fields...)
}
