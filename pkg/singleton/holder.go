package singleton

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/efficientgo/core/errors"
	"k8s.io/klog/v2"
)

// Event reports how a single Get call was satisfied.
type Event int

const (
	// EventConstructed means the call built and published the instance.
	EventConstructed Event = iota
	// EventExisting means the call returned an already published instance.
	EventExisting
	// EventFailed means the constructor returned an error.
	EventFailed
)

func (e Event) String() string {
	switch e {
	case EventConstructed:
		return "constructed"
	case EventExisting:
		return "existing"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrClosed is returned by Get when the holder was closed before it was ever
// initialized.
var ErrClosed = errors.New("singleton holder closed before initialization")

// Holder owns at most one instance of T. The instance is built lazily by the
// first successful Get and is never replaced afterwards.
//
// Readers that find the instance published take no lock. Everything else, the
// second presence check, construction and publication, happens under mu, and
// publication is the last step so no reader can see a partially built value.
// A failed construction leaves the holder uninitialized and the next Get
// retries.
//
// A Holder must not be copied after first use.
type Holder[T any] struct {
	// Name identifies the holder in logs and errors.
	Name string
	// New builds the instance.
	New func() (T, error)

	instance atomic.Pointer[T]
	observer atomic.Pointer[func(Event)]

	mu     sync.Mutex
	closed bool
}

// NewHolder returns a holder that builds its instance with fn.
func NewHolder[T any](name string, fn func() (T, error)) *Holder[T] {
	return &Holder[T]{Name: name, New: fn}
}

// Get returns the shared instance, constructing it on the first call.
func (h *Holder[T]) Get() (T, error) {
	if p := h.instance.Load(); p != nil {
		klog.V(4).InfoS("Returning existing singleton", "holder", h.name())
		h.emit(EventExisting)
		return *p, nil
	}

	v, ev, err := h.getSlow()
	h.emit(ev)
	return v, err
}

func (h *Holder[T]) getSlow() (T, Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if p := h.instance.Load(); p != nil {
		return *p, EventExisting, nil
	}
	if h.closed {
		return zero, EventFailed, ErrClosed
	}
	if h.New == nil {
		return zero, EventFailed, errors.Newf("singleton holder %q has no constructor", h.name())
	}

	v, err := h.New()
	if err != nil {
		klog.ErrorS(err, "Singleton construction failed", "holder", h.name())
		return zero, EventFailed, errors.Wrapf(err, "construct %s", h.name())
	}
	h.instance.Store(&v)

	klog.V(2).InfoS("Constructed singleton", "holder", h.name())
	if logV := klog.V(5); logV.Enabled() {
		logV.InfoS("Singleton value", "holder", h.name(), "value", spew.Sdump(v))
	}
	return v, EventConstructed, nil
}

// MustGet is like Get but panics if construction fails.
func (h *Holder[T]) MustGet() T {
	v, err := h.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Initialized reports whether the instance has been published.
func (h *Holder[T]) Initialized() bool {
	return h.instance.Load() != nil
}

// Observe installs fn as the event observer and returns the one it replaced,
// or nil. A nil fn removes the observer. The observer runs on the calling
// goroutine after the holder's lock is released, so it may call Get.
func (h *Holder[T]) Observe(fn func(Event)) func(Event) {
	var next *func(Event)
	if fn != nil {
		next = &fn
	}
	if prev := h.observer.Swap(next); prev != nil {
		return *prev
	}
	return nil
}

func (h *Holder[T]) emit(ev Event) {
	if fn := h.observer.Load(); fn != nil {
		(*fn)(ev)
	}
}

// Close is the shutdown hook. If the instance exists and implements io.Closer
// it is closed, once. The instance stays published: Get keeps returning it.
// A holder closed before initialization refuses to construct.
func (h *Holder[T]) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	p := h.instance.Load()
	if p == nil {
		return nil
	}
	c, ok := any(*p).(io.Closer)
	if !ok {
		return nil
	}
	if err := c.Close(); err != nil {
		return errors.Wrapf(err, "close %s", h.name())
	}
	return nil
}

func (h *Holder[T]) name() string {
	if h.Name == "" {
		return "singleton"
	}
	return h.Name
}
