// Package greeter provides a process-wide Greeter that is built on first use
// and shared by every caller afterwards.
package greeter

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/yuanqijing/singleton/pkg/singleton"
)

const defaultMessage = "Hello from Singleton!"

// Greeter is the shared payload. It has no mutable state; every reference
// obtained from GetInstance prints the same thing.
type Greeter struct {
	message string
}

// ShowMessage prints the greeting to the package output, standard output
// unless SetOutput redirected it.
func (g *Greeter) ShowMessage() {
	var w io.Writer = os.Stdout
	if p := output.Load(); p != nil {
		w = *p
	}
	_ = g.WriteMessage(w)
}

// WriteMessage writes the greeting, followed by a blank line, to w.
func (g *Greeter) WriteMessage(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\n\n", g.message)
	return err
}

var (
	constructions atomic.Int64
	instance      = newHolder(&constructions)
	output        atomic.Pointer[io.Writer]
)

// SetOutput redirects ShowMessage to w and returns the previous destination,
// nil meaning standard output. A nil w restores standard output.
func SetOutput(w io.Writer) io.Writer {
	var next *io.Writer
	if w != nil {
		next = &w
	}
	if prev := output.Swap(next); prev != nil {
		return *prev
	}
	return nil
}

func newHolder(counter *atomic.Int64) *singleton.Holder[*Greeter] {
	return singleton.NewHolder("greeter", func() (*Greeter, error) {
		if counter != nil {
			counter.Add(1)
		}
		return &Greeter{message: defaultMessage}, nil
	})
}

// GetInstance returns the process-wide Greeter, creating it on the first call.
func GetInstance() *Greeter {
	return instance.MustGet()
}

// Default returns the holder behind GetInstance.
func Default() *singleton.Holder[*Greeter] {
	return instance
}

// NewHolder returns a holder independent of the process-wide one. Each holder
// still builds at most one Greeter.
func NewHolder() *singleton.Holder[*Greeter] {
	return newHolder(nil)
}

// Constructions returns how many times the process-wide Greeter was built.
func Constructions() int64 {
	return constructions.Load()
}

// Observe installs fn as the observer of the process-wide holder and returns
// the observer it replaced.
func Observe(fn func(singleton.Event)) func(singleton.Event) {
	return instance.Observe(fn)
}

// Shutdown runs the process-wide holder's shutdown hook.
func Shutdown() error {
	return instance.Close()
}
