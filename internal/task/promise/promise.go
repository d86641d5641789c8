// Package promise models await-style suspension on top of the scheduler.
//
// A Promise settles exactly once. Reactions attached with Then/Catch/Finally
// never run synchronously: each one is submitted to the scheduler as a
// microtask, either when the promise settles (for reactions registered
// earlier, in registration order) or immediately (for reactions registered
// after settlement).
package promise

import (
	"errors"
	"fmt"
	"sync"

	"loopkit/internal/task/scheduler"
)

// Status is the settlement state of a Promise.
type Status int

const (
	StatusPending Status = iota
	StatusFulfilled
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFulfilled:
		return "fulfilled"
	case StatusRejected:
		return "rejected"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

var (
	// ErrUnhandled is reported through the scheduler's error hook when a
	// rejection reaches Done.
	ErrUnhandled = errors.New("promise: unhandled rejection")
	ErrPending   = errors.New("promise: not settled")
)

// Promise is a one-shot value container bound to a scheduler.
type Promise[T any] struct {
	s *scheduler.Scheduler

	mu        sync.Mutex
	status    Status
	value     T
	err       error
	reactions []func() error
}

// New returns a pending promise and its settle functions. Only the first
// call to either settle function has any effect.
func New[T any](s *scheduler.Scheduler) (*Promise[T], func(T), func(error)) {
	p := &Promise[T]{s: s}
	return p, p.resolve, p.reject
}

// Resolved returns a promise already fulfilled with v.
func Resolved[T any](s *scheduler.Scheduler, v T) *Promise[T] {
	p, resolve, _ := New[T](s)
	resolve(v)
	return p
}

// Rejected returns a promise already rejected with err.
func Rejected[T any](s *scheduler.Scheduler, err error) *Promise[T] {
	p, _, reject := New[T](s)
	reject(err)
	return p
}

// Delay returns a promise fulfilled with v by a macrotask with the given
// delay, the analogue of wrapping setTimeout in a promise.
func Delay[T any](s *scheduler.Scheduler, v T, delay int64) *Promise[T] {
	p, resolve, _ := New[T](s)
	s.SubmitMacrotaskNamed("promise.delay", func() error {
		resolve(v)
		return nil
	}, delay)
	return p
}

// Status reports the current settlement state.
func (p *Promise[T]) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Result returns the settled value, the rejection error, or ErrPending.
func (p *Promise[T]) Result() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusPending {
		var zero T
		return zero, ErrPending
	}
	return p.value, p.err
}

func (p *Promise[T]) resolve(v T) {
	p.settle(StatusFulfilled, v, nil)
}

func (p *Promise[T]) reject(err error) {
	if err == nil {
		err = errors.New("promise: rejected with nil error")
	}
	var zero T
	p.settle(StatusRejected, zero, err)
}

func (p *Promise[T]) settle(st Status, v T, err error) {
	p.mu.Lock()
	if p.status != StatusPending {
		p.mu.Unlock()
		return
	}
	p.status = st
	p.value = v
	p.err = err
	reactions := p.reactions
	p.reactions = nil
	p.mu.Unlock()

	for _, r := range reactions {
		p.s.SubmitMicrotaskNamed("promise.reaction", r)
	}
}

// subscribe runs fn as a microtask once p settles.
func (p *Promise[T]) subscribe(fn func() error) {
	p.mu.Lock()
	if p.status == StatusPending {
		p.reactions = append(p.reactions, fn)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.s.SubmitMicrotaskNamed("promise.reaction", fn)
}

// Then chains onFulfilled. A rejection skips onFulfilled and propagates to
// the returned promise; an error returned by onFulfilled rejects it.
func Then[T, R any](p *Promise[T], onFulfilled func(T) (R, error)) *Promise[R] {
	next, resolve, reject := New[R](p.s)
	p.subscribe(func() error {
		v, err := p.Result()
		if err != nil {
			reject(err)
			return nil
		}
		r, ferr := call(func() (R, error) { return onFulfilled(v) })
		if ferr != nil {
			reject(ferr)
			return nil
		}
		resolve(r)
		return nil
	})
	return next
}

// Catch chains onRejected, which may recover by returning a value.
func Catch[T any](p *Promise[T], onRejected func(error) (T, error)) *Promise[T] {
	next, resolve, reject := New[T](p.s)
	p.subscribe(func() error {
		v, err := p.Result()
		if err == nil {
			resolve(v)
			return nil
		}
		r, ferr := call(func() (T, error) { return onRejected(err) })
		if ferr != nil {
			reject(ferr)
			return nil
		}
		resolve(r)
		return nil
	})
	return next
}

// Finally runs fn after settlement and passes the original outcome through.
// A panic in fn rejects the returned promise instead.
func Finally[T any](p *Promise[T], fn func()) *Promise[T] {
	next, resolve, reject := New[T](p.s)
	p.subscribe(func() error {
		if _, ferr := call(func() (struct{}, error) { fn(); return struct{}{}, nil }); ferr != nil {
			reject(ferr)
			return nil
		}
		v, err := p.Result()
		if err != nil {
			reject(err)
			return nil
		}
		resolve(v)
		return nil
	})
	return next
}

// Done terminates a chain: a rejection that reaches it becomes a task
// failure wrapping ErrUnhandled, so it flows to the scheduler's error hook.
func Done[T any](p *Promise[T]) {
	p.subscribe(func() error {
		if _, err := p.Result(); err != nil {
			return fmt.Errorf("%w: %w", ErrUnhandled, err)
		}
		return nil
	})
}

// All resolves with every value in input order once all promises fulfil,
// or rejects with the first rejection observed.
func All[T any](s *scheduler.Scheduler, ps ...*Promise[T]) *Promise[[]T] {
	out, resolve, reject := New[[]T](s)
	if len(ps) == 0 {
		resolve([]T{})
		return out
	}
	vals := make([]T, len(ps))
	remaining := len(ps)
	for i, p := range ps {
		i, p := i, p
		p.subscribe(func() error {
			v, err := p.Result()
			if err != nil {
				reject(err)
				return nil
			}
			vals[i] = v
			remaining--
			if remaining == 0 {
				resolve(vals)
			}
			return nil
		})
	}
	return out
}

// call converts a panic in a reaction into a rejection, like a throw inside
// a then-callback.
func call[R any](fn func() (R, error)) (r R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("promise: reaction panicked: %v", rec)
		}
	}()
	return fn()
}
