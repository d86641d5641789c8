package traverse

import "errors"

// ErrEmptyReduce is returned by Reduce and ReduceRight when the sequence is
// empty and no initial value was supplied.
var ErrEmptyReduce = errors.New("reduce of empty sequence with no initial value")

// Map returns a new slice where element i is fn(s[i], i, s).
func Map[T, R any](s []T, fn func(v T, i int, s []T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v, i, s)
	}
	return out
}

// Filter returns, in original order, the elements for which pred holds.
func Filter[T any](s []T, pred func(v T, i int, s []T) bool) []T {
	out := make([]T, 0, len(s))
	for i, v := range s {
		if pred(v, i, s) {
			out = append(out, v)
		}
	}
	return out
}

// Find returns the lowest-index element satisfying pred.
// The second result is false when nothing matched.
func Find[T any](s []T, pred func(v T, i int, s []T) bool) (T, bool) {
	for i, v := range s {
		if pred(v, i, s) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// FindIndex is Find returning the index, or -1.
func FindIndex[T any](s []T, pred func(v T, i int, s []T) bool) int {
	for i, v := range s {
		if pred(v, i, s) {
			return i
		}
	}
	return -1
}

// Reduce folds s left to right, seeding the accumulator with s[0] and
// starting at index 1.
func Reduce[T any](s []T, fn func(acc, v T, i int, s []T) T) (T, error) {
	if len(s) == 0 {
		var zero T
		return zero, ErrEmptyReduce
	}
	acc := s[0]
	for i := 1; i < len(s); i++ {
		acc = fn(acc, s[i], i, s)
	}
	return acc, nil
}

// Fold folds s left to right starting from init at index 0.
func Fold[T, A any](s []T, fn func(acc A, v T, i int, s []T) A, init A) A {
	acc := init
	for i, v := range s {
		acc = fn(acc, v, i, s)
	}
	return acc
}

// ReduceRight is Reduce walking from the last element towards the first.
func ReduceRight[T any](s []T, fn func(acc, v T, i int, s []T) T) (T, error) {
	if len(s) == 0 {
		var zero T
		return zero, ErrEmptyReduce
	}
	last := len(s) - 1
	acc := s[last]
	for i := last - 1; i >= 0; i-- {
		acc = fn(acc, s[i], i, s)
	}
	return acc, nil
}

// ForEach calls fn for every element.
func ForEach[T any](s []T, fn func(v T, i int, s []T)) {
	for i, v := range s {
		fn(v, i, s)
	}
}

// Some reports whether any element satisfies pred. False on empty input.
func Some[T any](s []T, pred func(v T, i int, s []T) bool) bool {
	return FindIndex(s, pred) >= 0
}

// Every reports whether all elements satisfy pred. True on empty input.
func Every[T any](s []T, pred func(v T, i int, s []T) bool) bool {
	for i, v := range s {
		if !pred(v, i, s) {
			return false
		}
	}
	return true
}
