package tivity

import (
	"context"
	"sync"
)

type writeOp struct {
	snap   *Snapshot
	remove bool
	done   chan error
}

type flushWaiter struct {
	target uint64
	ch     chan struct{}
}

// persistWriter applies storage operations one at a time in enqueue order.
// Nothing runs until start is called.
type persistWriter struct {
	apply func(op writeOp) error

	mu        sync.Mutex
	queue     []writeOp
	started   bool
	closed    bool
	enqueued  uint64
	completed uint64
	err       error
	waiters   []flushWaiter

	wake    chan struct{}
	stopped chan struct{}
}

func newPersistWriter(apply func(op writeOp) error) *persistWriter {
	return &persistWriter{
		apply:   apply,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

func (w *persistWriter) start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.run()
}

func (w *persistWriter) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *persistWriter) enqueue(op writeOp) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	w.queue = append(w.queue, op)
	w.enqueued++
	w.mu.Unlock()
	w.signal()
	return true
}

// discardWrites drops queued set operations. Removals stay queued.
func (w *persistWriter) discardWrites() {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.queue[:0]
	for _, op := range w.queue {
		if op.remove {
			kept = append(kept, op)
			continue
		}
		w.completed++
	}
	w.queue = kept
	w.releaseLocked()
}

func (w *persistWriter) run() {
	defer close(w.stopped)
	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closed {
			w.mu.Unlock()
			<-w.wake
			w.mu.Lock()
		}
		if len(w.queue) == 0 {
			w.mu.Unlock()
			return
		}
		op := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		err := w.apply(op)
		if op.done != nil {
			op.done <- err
		}

		w.mu.Lock()
		w.completed++
		if err != nil && w.err == nil {
			w.err = err
		}
		w.releaseLocked()
		w.mu.Unlock()
	}
}

func (w *persistWriter) releaseLocked() {
	kept := w.waiters[:0]
	for _, waiter := range w.waiters {
		if waiter.target <= w.completed {
			close(waiter.ch)
			continue
		}
		kept = append(kept, waiter)
	}
	w.waiters = kept
}

// flush waits for every operation enqueued so far and returns the first
// error recorded since the previous flush.
func (w *persistWriter) flush(ctx context.Context) error {
	w.mu.Lock()
	if w.completed >= w.enqueued {
		err := w.takeErrLocked()
		w.mu.Unlock()
		return err
	}
	waiter := flushWaiter{target: w.enqueued, ch: make(chan struct{})}
	w.waiters = append(w.waiters, waiter)
	w.mu.Unlock()

	select {
	case <-waiter.ch:
	case <-ctx.Done():
		return ctx.Err()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.takeErrLocked()
}

func (w *persistWriter) takeErrLocked() error {
	err := w.err
	w.err = nil
	return err
}

// close drains the queue and stops the loop. Later enqueues are rejected.
func (w *persistWriter) close() error {
	w.mu.Lock()
	if w.closed {
		err := w.takeErrLocked()
		w.mu.Unlock()
		return err
	}
	w.closed = true
	if !w.started {
		w.started = true
		go w.run()
	}
	w.mu.Unlock()
	w.signal()
	<-w.stopped

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.takeErrLocked()
}
