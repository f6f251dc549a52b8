package singleton

// Wrap turns a constructor into an accessor that builds its value once and
// returns the same value on every later call. A failed build is retried by
// the next call.
func Wrap[T any](fn func() (T, error)) func() (T, error) {
	h := &Holder[T]{New: fn}
	return h.Get
}

// MustWrap is Wrap for constructors that cannot fail.
func MustWrap[T any](fn func() T) func() T {
	h := &Holder[T]{New: func() (T, error) {
		return fn(), nil
	}}
	return h.MustGet
}
