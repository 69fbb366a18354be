// Package logio adapts line-oriented log output to printf-style log functions,
// such as testing.T.Logf.
package logio

import (
	"bytes"
	"sync"
)

// Writer implements an io.Writer that forwards each completed line to Logf.
type Writer struct {
	Logf func(string, ...interface{})

	// Prefix is prepended to every forwarded line.
	Prefix string

	mu  sync.Mutex
	buf bytes.Buffer
}

// Write buffers p, forwarding any completed lines; it is safe to call from
// multiple goroutines and never returns an error.
func (lw *Writer) Write(p []byte) (n int, err error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.buf.Write(p)
	lw.flushLines(false)
	return len(p), nil
}

// Sync forwards any partial line left in the buffer.
func (lw *Writer) Sync() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.flushLines(true)
	return nil
}

// Close calls Sync.
func (lw *Writer) Close() error {
	return lw.Sync()
}

func (lw *Writer) flushLines(all bool) {
	for lw.buf.Len() > 0 {
		line := lw.buf.Bytes()
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			lw.Logf("%s%s", lw.Prefix, line[:i])
			lw.buf.Next(i + 1)
		} else if all {
			lw.Logf("%s%s", lw.Prefix, line)
			lw.buf.Reset()
		} else {
			break
		}
	}
}
