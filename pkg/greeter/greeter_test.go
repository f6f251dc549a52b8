package greeter

import (
	"bytes"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/yuanqijing/singleton/pkg/singleton"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("k8s.io/klog/v2.(*flushDaemon).run.func1"))
}

func TestGetInstance(t *testing.T) {
	a := GetInstance()
	b := GetInstance()
	assert.Same(t, a, b)
	assert.Same(t, a, Default().MustGet())
	assert.Equal(t, int64(1), Constructions())
}

func TestGetInstanceConcurrent(t *testing.T) {
	const callers = 100

	got := make([]*Greeter, callers)
	start := make(chan struct{})
	var eg errgroup.Group
	for i := 0; i < callers; i++ {
		eg.Go(func() error {
			<-start
			got[i] = GetInstance()
			return nil
		})
	}
	close(start)
	require.NoError(t, eg.Wait())

	for _, g := range got {
		assert.Same(t, got[0], g)
	}
	assert.Equal(t, int64(1), Constructions())
}

func TestDelayedConstructionBuildsOnce(t *testing.T) {
	const callers = 100

	var n atomic.Int64
	base := newHolder(&n)
	h := singleton.NewHolder("slow-greeter", func() (*Greeter, error) {
		time.Sleep(20 * time.Millisecond)
		return base.Get()
	})

	got := make([]*Greeter, callers)
	start := make(chan struct{})
	var eg errgroup.Group
	for i := 0; i < callers; i++ {
		eg.Go(func() error {
			<-start
			g, err := h.Get()
			got[i] = g
			return err
		})
	}
	close(start)
	require.NoError(t, eg.Wait())

	assert.Equal(t, int64(1), n.Load())
	for _, g := range got {
		assert.Same(t, got[0], g)
	}
}

func TestWriteMessageSameForEveryReference(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, GetInstance().WriteMessage(&first))
	require.NoError(t, GetInstance().WriteMessage(&second))

	assert.Equal(t, "Hello from Singleton!\n\n", first.String())
	assert.Equal(t, first.String(), second.String())
}

func TestNewHolderIsIndependent(t *testing.T) {
	h := NewHolder()
	g := h.MustGet()
	assert.NotSame(t, GetInstance(), g)
	assert.Same(t, g, h.MustGet())
	assert.Equal(t, int64(1), Constructions())
}

func TestObserve(t *testing.T) {
	GetInstance()

	var events []singleton.Event
	Observe(func(ev singleton.Event) { events = append(events, ev) })
	t.Cleanup(func() { Observe(nil) })

	GetInstance()
	assert.Equal(t, []singleton.Event{singleton.EventExisting}, events)
}

func TestShutdownKeepsInstance(t *testing.T) {
	g := GetInstance()
	require.NoError(t, Shutdown())
	assert.Same(t, g, GetInstance())
}

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() { SetOutput(prev) })

	GetInstance().ShowMessage()
	assert.Equal(t, "Hello from Singleton!\n\n", buf.String())

	assert.Same(t, &buf, SetOutput(nil))
}

func ExampleGreeter_ShowMessage() {
	GetInstance().ShowMessage()
	// Output: Hello from Singleton!
}
