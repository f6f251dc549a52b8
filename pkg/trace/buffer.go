package trace

import (
	"bytes"
	"strconv"
	"sync"
	"time"
)

// Severity letters used as the first byte of a header.
const (
	SeverityInfo    byte = 'I'
	SeverityWarning byte = 'W'
	SeverityError   byte = 'E'
)

// Lines longer than this are not worth keeping around.
const maxPooledBuffer = 256

// Buffer holds one trace line while it is being rendered.
type Buffer struct {
	bytes.Buffer
	header [32]byte
}

// Buffers hands out reusable line buffers. It is safe for concurrent use.
type Buffers struct {
	pool sync.Pool
}

// GetBuffer returns an empty buffer.
func (bl *Buffers) GetBuffer() *Buffer {
	if b, ok := bl.pool.Get().(*Buffer); ok {
		b.Reset()
		return b
	}
	return new(Buffer)
}

// PutBuffer hands b back for reuse. Oversized buffers are dropped.
func (bl *Buffers) PutBuffer(b *Buffer) {
	if b.Cap() > maxPooledBuffer {
		return
	}
	bl.pool.Put(b)
}

// appendPadded appends d right-aligned in width columns, filling with pad.
// Zero renders as padding only, and digits beyond width are cut from the left.
func appendPadded(dst []byte, d, width int, pad byte) []byte {
	var s string
	if d > 0 {
		s = strconv.Itoa(d)
	}
	if len(s) > width {
		s = s[len(s)-width:]
	}
	for n := width - len(s); n > 0; n-- {
		dst = append(dst, pad)
	}
	return append(dst, s...)
}

// FormatHeader writes a line header for the given severity, thread id and
// call site:
//
//	Lmmdd hh:mm:ss.uuuuuu threadid file:line]
func (buf *Buffer) FormatHeader(severity byte, tid int, file string, line int, now time.Time) {
	if line < 0 {
		line = 0
	}

	_, month, day := now.Date()
	hour, minute, second := now.Clock()

	h := append(buf.header[:0], severity)
	h = appendPadded(h, int(month), 2, '0')
	h = appendPadded(h, day, 2, '0')
	h = append(h, ' ')
	h = appendPadded(h, hour, 2, '0')
	h = append(h, ':')
	h = appendPadded(h, minute, 2, '0')
	h = append(h, ':')
	h = appendPadded(h, second, 2, '0')
	h = append(h, '.')
	h = appendPadded(h, now.Nanosecond()/1000, 6, '0')
	h = append(h, ' ')
	h = appendPadded(h, tid, 7, ' ')
	h = append(h, ' ')
	buf.Write(h)

	buf.WriteString(file)
	buf.WriteByte(':')
	buf.Write(strconv.AppendInt(buf.header[:0], int64(line), 10))
	buf.WriteString("] ")
}
