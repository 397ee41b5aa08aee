package walcore

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/kvsst/lsmtable/segmentmanager"
)

// ErrClosed is returned by Writer.Append after Close.
var ErrClosed = os.ErrClosed

// Writer serializes concurrent Append calls onto a single background
// goroutine so segment rotation and fsync never race each other.
type Writer struct {
	mu     sync.Mutex
	ch     chan *request
	done   chan struct{}
	closed bool
	sm     *segmentmanager.DiskSegmentManager
	wg     sync.WaitGroup
}

type request struct {
	rec  Record
	done chan error
}

// NewWriter starts a Writer backed by sm. buffer sizes the internal
// request channel.
func NewWriter(buffer int, sm *segmentmanager.DiskSegmentManager) *Writer {
	w := &Writer{
		ch:   make(chan *request, buffer),
		done: make(chan struct{}),
		sm:   sm,
	}
	go w.loop()
	return w
}

// Append durably logs rec before returning, or returns an error if the
// writer is closed or the underlying segment write failed.
func (w *Writer) Append(rec Record) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	req := &request{rec: rec, done: make(chan error, 1)}

	select {
	case w.ch <- req:
		return <-req.done
	case <-w.done:
		return ErrClosed
	}
}

// Close waits for in-flight Append calls to finish, then shuts down the
// background goroutine and the underlying segment manager.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.wg.Wait()
	close(w.ch)
	<-w.done
	return w.sm.Close()
}

func (w *Writer) loop() {
	defer close(w.done)

	for req := range w.ch {
		buf, err := req.rec.Encode()
		if err != nil {
			req.done <- err
			continue
		}

		err = w.sm.WriteActive(len(buf), func(dst io.Writer) {
			if _, werr := dst.Write(buf); werr != nil {
				fmt.Fprintf(os.Stderr, "walcore: write failed: %v\n", werr)
			}
		})
		req.done <- err
	}
}
