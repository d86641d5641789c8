package scheduler

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	hist := make([]HistoryItem, len(s.history))
	copy(hist, s.history)

	return Snapshot{
		State:      s.state,
		MicroLen:   len(s.micro),
		MacroLen:   s.macro.Len(),
		Executed:   s.executed,
		Failed:     s.failed,
		Cancelled:  s.cancelled,
		Suppressed: s.suppressed,
		LastRun:    s.lastRun,
		History:    hist,
	}
}
