package singleton

import (
	"context"
	"sync"

	"github.com/efficientgo/core/errors"
)

// Slot is a value that is set once by one party and read by others, who may
// wait for it. Unlike Holder, the value is supplied from outside instead of
// being constructed on demand. The zero value is an empty slot.
type Slot[T any] struct {
	initOnce sync.Once
	setOnce  sync.Once
	ready    chan struct{}
	value    T
}

// NewSlot returns an empty slot. It is equivalent to new(Slot[T]).
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{}
}

func (s *Slot[T]) readyCh() chan struct{} {
	s.initOnce.Do(func() {
		s.ready = make(chan struct{})
	})
	return s.ready
}

// Set stores v if the slot is empty and reports whether it did.
func (s *Slot[T]) Set(v T) bool {
	ready := s.readyCh()
	set := false
	s.setOnce.Do(func() {
		s.value = v
		close(ready)
		set = true
	})
	return set
}

// Wait blocks until the slot is set or ctx is done.
func (s *Slot[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-s.readyCh():
		return s.value, nil
	case <-ctx.Done():
		var zero T
		return zero, errors.Wrap(ctx.Err(), "wait for slot")
	}
}

// TryGet returns the value without blocking. The boolean is false while the
// slot is still empty.
func (s *Slot[T]) TryGet() (T, bool) {
	select {
	case <-s.readyCh():
		return s.value, true
	default:
		var zero T
		return zero, false
	}
}
