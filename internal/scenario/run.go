package scenario

import (
	"context"
	"errors"
	"time"

	"github.com/google/go-cmp/cmp"
	"loopkit/internal/task/promise"
	"loopkit/internal/task/scheduler"
	"loopkit/internal/traverse"
)

// Result is the outcome of one scenario run.
type Result struct {
	Name      string
	Trace     []string
	Errors    []string
	Expect    []string
	Executed  uint64
	Cancelled uint64
	Took      time.Duration
}

// Matches reports whether the trace equals the scenario's expectation.
// A scenario without an expectation always matches.
func (r Result) Matches() bool {
	return len(r.Expect) == 0 || cmp.Equal(r.Expect, r.Trace)
}

// Diff renders the expectation mismatch (-expect +trace), or "".
func (r Result) Diff() string {
	if r.Matches() {
		return ""
	}
	return cmp.Diff(r.Expect, r.Trace)
}

type runner struct {
	s      *scheduler.Scheduler
	trace  []string
	ids    map[string]scheduler.TaskID
	errors []string
}

// Run replays sc on s and drives s to completion. Top-level log steps are
// traced synchronously, before any task runs, exactly like the body of a
// script. Task failures end up in Result.Errors and never abort the run.
//
// Run collects errors through its own hook on s for the duration of the
// run; a previously registered hook also sees them and is restored after.
func Run(ctx context.Context, sc *Scenario, s *scheduler.Scheduler) (Result, error) {
	if sc == nil {
		return Result{}, errors.New("scenario: nil scenario")
	}
	r := &runner{s: s, ids: map[string]scheduler.TaskID{}}
	prev := s.ErrorHook()
	s.OnError(func(te *scheduler.TaskError) {
		r.errors = append(r.errors, te.Error())
		if prev != nil {
			prev(te)
		}
	})
	defer s.OnError(prev)

	before := s.Snapshot()
	start := time.Now()
	r.steps(sc.Steps)
	err := s.RunToCompletion(ctx)
	after := s.Snapshot()

	res := Result{
		Name:      sc.Name,
		Trace:     r.trace,
		Errors:    r.errors,
		Expect:    sc.Expect,
		Executed:  after.Executed - before.Executed,
		Cancelled: after.Cancelled - before.Cancelled,
		Took:      time.Since(start),
	}
	if res.Trace == nil {
		res.Trace = []string{}
	}
	return res, err
}

func (r *runner) steps(steps []Step) {
	traverse.ForEach(steps, func(st Step, _ int, _ []Step) { r.step(st) })
}

func (r *runner) step(st Step) {
	label := st.Label()
	switch st.Kind() {
	case KindLog:
		r.trace = append(r.trace, label)
	case KindMicro:
		r.ids[label] = r.s.SubmitMicrotaskNamed(label, r.body(st))
	case KindMacro:
		r.ids[label] = r.s.SubmitMacrotaskNamed(label, r.body(st), st.Delay)
	case KindAwait:
		// await delay(n): the timer resolves the promise, the continuation
		// is its own microtask.
		var p *promise.Promise[string]
		if st.Delay > 0 {
			p = promise.Delay(r.s, label, st.Delay)
		} else {
			p = promise.Resolved(r.s, label)
		}
		body := r.body(st)
		promise.Done(promise.Then(p, func(string) (struct{}, error) {
			return struct{}{}, body()
		}))
	case KindCancel:
		if id, ok := r.ids[label]; ok {
			r.s.Cancel(id)
		}
	}
}

func (r *runner) body(st Step) func() error {
	return func() error {
		r.trace = append(r.trace, st.Label())
		r.steps(st.Then)
		if st.Fail != "" {
			return errors.New(st.Fail)
		}
		return nil
	}
}
