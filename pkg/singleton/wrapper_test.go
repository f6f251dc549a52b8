package singleton

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestWrap(t *testing.T) {
	calls := 0
	get := Wrap(func() (*payload, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("not yet")
		}
		return &payload{id: calls}, nil
	})

	_, err := get()
	require.Error(t, err)

	a, err := get()
	require.NoError(t, err)
	b, err := get()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 2, calls)
}

func TestMustWrap(t *testing.T) {
	calls := 0
	get := MustWrap(func() *payload {
		calls++
		return &payload{id: calls}
	})

	assert.Same(t, get(), get())
	assert.Equal(t, 1, calls)
}

func TestSlot(t *testing.T) {
	s := NewSlot[*payload]()

	_, ok := s.TryGet()
	assert.False(t, ok)

	first := &payload{id: 1}
	waiters := make([]*payload, 10)
	var eg errgroup.Group
	for i := range waiters {
		eg.Go(func() error {
			p, err := s.Wait(context.Background())
			waiters[i] = p
			return err
		})
	}

	assert.True(t, s.Set(first))
	assert.False(t, s.Set(&payload{id: 2}))
	require.NoError(t, eg.Wait())

	for _, p := range waiters {
		assert.Same(t, first, p)
	}
	got, ok := s.TryGet()
	assert.True(t, ok)
	assert.Same(t, first, got)
}

func TestSlotWaitCanceled(t *testing.T) {
	s := NewSlot[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSlotZeroValue(t *testing.T) {
	var s Slot[int]

	_, ok := s.TryGet()
	assert.False(t, ok)

	done := make(chan int)
	go func() {
		v, err := s.Wait(context.Background())
		assert.NoError(t, err)
		done <- v
	}()

	assert.True(t, s.Set(1))
	assert.False(t, s.Set(2))

	select {
	case v := <-done:
		assert.Equal(t, 1, v)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after Set")
	}

	got, ok := s.TryGet()
	assert.True(t, ok)
	assert.Equal(t, 1, got)
}
