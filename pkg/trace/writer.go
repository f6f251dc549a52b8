// Package trace writes glog-style diagnostic lines, one per event, tagged with
// the OS thread that produced them.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

var bufferPool = Buffers{}

// Writer serializes trace lines onto an underlying writer. Output is buffered
// until Flush.
type Writer struct {
	mu  sync.Mutex
	out *bufio.Writer

	now func() time.Time
	tid func() int
}

type Option func(*Writer)

// WithClock overrides the time source used for headers.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// WithThreadID overrides the thread id source used for headers.
func WithThreadID(tid func() int) Option {
	return func(w *Writer) { w.tid = tid }
}

// NewWriter returns a Writer that buffers lines for out. Headers use the
// wall clock and the calling OS thread unless overridden by opts.
func NewWriter(out io.Writer, opts ...Option) *Writer {
	w := &Writer{
		out: bufio.NewWriter(out),
		now: time.Now,
		tid: threadID,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Output writes msg with a header naming the caller depth frames above
// Output's caller.
func (w *Writer) Output(severity byte, depth int, msg string) error {
	_, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		file = "???"
		line = 1
	} else {
		file = filepath.Base(file)
	}

	buf := bufferPool.GetBuffer()
	defer bufferPool.PutBuffer(buf)

	buf.FormatHeader(severity, w.tid(), file, line, w.now())
	buf.WriteString(msg)
	if msg == "" || msg[len(msg)-1] != '\n' {
		buf.WriteByte('\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.out.Write(buf.Bytes())
	return err
}

func (w *Writer) Infof(format string, args ...interface{}) error {
	return w.Output(SeverityInfo, 1, fmt.Sprintf(format, args...))
}

func (w *Writer) Errorf(format string, args ...interface{}) error {
	return w.Output(SeverityError, 1, fmt.Sprintf(format, args...))
}

// Flush writes any buffered lines to the underlying writer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Flush()
}
