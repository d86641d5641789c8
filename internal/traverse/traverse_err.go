package traverse

// MapErr is Map with a fallible transform.
func MapErr[T, R any](s []T, fn func(v T, i int, s []T) (R, error)) ([]R, error) {
	out := make([]R, len(s))
	for i, v := range s {
		r, err := fn(v, i, s)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// FilterErr is Filter with a fallible predicate.
func FilterErr[T any](s []T, pred func(v T, i int, s []T) (bool, error)) ([]T, error) {
	out := make([]T, 0, len(s))
	for i, v := range s {
		ok, err := pred(v, i, s)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// FindErr is Find with a fallible predicate. Elements after the first match
// are never evaluated.
func FindErr[T any](s []T, pred func(v T, i int, s []T) (bool, error)) (T, bool, error) {
	var zero T
	for i, v := range s {
		ok, err := pred(v, i, s)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return zero, false, nil
}

// ReduceErr is Reduce with a fallible reducer.
func ReduceErr[T any](s []T, fn func(acc, v T, i int, s []T) (T, error)) (T, error) {
	var zero T
	if len(s) == 0 {
		return zero, ErrEmptyReduce
	}
	acc := s[0]
	for i := 1; i < len(s); i++ {
		next, err := fn(acc, s[i], i, s)
		if err != nil {
			return zero, err
		}
		acc = next
	}
	return acc, nil
}

// FoldErr is Fold with a fallible reducer.
func FoldErr[T, A any](s []T, fn func(acc A, v T, i int, s []T) (A, error), init A) (A, error) {
	acc := init
	for i, v := range s {
		next, err := fn(acc, v, i, s)
		if err != nil {
			var zero A
			return zero, err
		}
		acc = next
	}
	return acc, nil
}
