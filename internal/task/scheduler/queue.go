package scheduler

import "container/heap"

// macroHeap is a min-heap of macrotasks keyed by (delay, id).
type macroHeap []*task

func (h macroHeap) Len() int { return len(h) }

func (h macroHeap) Less(i, j int) bool {
	if h[i].delay != h[j].delay {
		return h[i].delay < h[j].delay
	}
	return h[i].id < h[j].id
}

func (h macroHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *macroHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *macroHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// nextLocked pops the next task to run and the state it runs in.
// Microtasks always win over macrotasks. Call with s.mu held.
func (s *Scheduler) nextLocked() (*task, State) {
	if len(s.micro) > 0 {
		t := s.micro[0]
		s.micro[0] = nil
		s.micro = s.micro[1:]
		return t, Draining
	}
	if s.macro.Len() > 0 {
		return heap.Pop(&s.macro).(*task), RunningMacrotask
	}
	return nil, Drained
}

// removeLocked drops a queued task. Call with s.mu held.
func (s *Scheduler) removeLocked(t *task) {
	switch t.class {
	case Microtask:
		for i, m := range s.micro {
			if m == t {
				copy(s.micro[i:], s.micro[i+1:])
				s.micro[len(s.micro)-1] = nil
				s.micro = s.micro[:len(s.micro)-1]
				return
			}
		}
	case Macrotask:
		if t.index >= 0 && t.index < s.macro.Len() && s.macro[t.index] == t {
			heap.Remove(&s.macro, t.index)
		}
	}
}
