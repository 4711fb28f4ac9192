// Package msgq turns a single-reader message stream into many
// independently awaited sub-streams. Queue matches by predicate,
// Correlator by correlation id; ErrorQueue latches the first
// error-classified message and SharedEndQueue lets two sub-streams
// share one terminal event.
package msgq

import (
	"context"
	"sync"
)

// Predicate selects messages a receiver is interested in.
type Predicate[T any] func(T) bool

// ReceiveFunc pulls the next message from the underlying stream. It
// returns io.EOF once the stream ends and any other error on
// transport failure.
type ReceiveFunc[T any] func() (T, error)

type result[T any] struct {
	msg T
	err error
}

type waiter[T any] struct {
	pred Predicate[T]
	ch   chan result[T]
}

// Queue buffers messages read from a single-reader source and hands
// each one to at most one receiver. At most one goroutine polls the
// source at any time; it is started by the first receiver that finds
// nothing buffered and exits as soon as no receivers are waiting.
type Queue[T any] struct {
	mu      sync.Mutex
	recv    ReceiveFunc[T]
	isError Predicate[T]
	stored  []T
	waiters []*waiter[T]
	polling bool
	done    error
	latched *T
}

func New[T any](recv ReceiveFunc[T]) *Queue[T] {
	return &Queue[T]{recv: recv}
}

// Receive returns the first message satisfying pred, in arrival
// order. Buffered messages win over new ones. It returns io.EOF once
// the source is drained and the source's error on transport failure.
//
// If ctx is cancelled after a message was already claimed for this
// receiver, the message is re-offered to the queue rather than
// dropped; a re-offered message is ordered behind messages buffered
// in the meantime.
func (q *Queue[T]) Receive(ctx context.Context, pred Predicate[T]) (T, error) {
	var zero T

	q.mu.Lock()
	if q.latched != nil {
		m := *q.latched
		q.mu.Unlock()
		return m, nil
	}
	for i, m := range q.stored {
		if pred(m) {
			q.stored = append(q.stored[:i], q.stored[i+1:]...)
			q.mu.Unlock()
			return m, nil
		}
	}
	if q.done != nil {
		err := q.done
		q.mu.Unlock()
		return zero, err
	}

	w := &waiter[T]{pred: pred, ch: make(chan result[T], 1)}
	q.waiters = append(q.waiters, w)
	if !q.polling {
		q.polling = true
		go q.poll()
	}
	q.mu.Unlock()

	select {
	case r := <-w.ch:
		return r.msg, r.err
	case <-ctx.Done():
		q.mu.Lock()
		if q.removeWaiter(w) {
			q.mu.Unlock()
			return zero, ctx.Err()
		}
		q.mu.Unlock()
		// The waiter was already resolved; put a claimed message back
		// so no other receiver loses it.
		r := <-w.ch
		if r.err == nil {
			q.Requeue(r.msg)
		}
		return zero, ctx.Err()
	}
}

// Requeue offers a message back to the queue as if it had just been
// read, waking the first matching waiter or buffering it.
func (q *Queue[T]) Requeue(m T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deliverLocked(m)
}

// latchLocked resolves every waiting receiver with m and makes all
// future Receive calls return m immediately. The first latched message
// wins.
func (q *Queue[T]) latchLocked(m T) {
	if q.latched != nil {
		return
	}
	q.latched = &m
	for _, w := range q.waiters {
		w.ch <- result[T]{msg: m}
	}
	q.waiters = nil
}

// Buffered reports how many unclaimed messages are held.
func (q *Queue[T]) Buffered() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.stored)
}

func (q *Queue[T]) removeWaiter(w *waiter[T]) bool {
	for i, cand := range q.waiters {
		if cand == w {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue[T]) deliverLocked(m T) {
	// An error-classified message must be latched before any waiter can
	// see a later message.
	if q.isError != nil && q.isError(m) {
		q.latchLocked(m)
		return
	}
	for i, w := range q.waiters {
		if w.pred(m) {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			w.ch <- result[T]{msg: m}
			return
		}
	}
	q.stored = append(q.stored, m)
}

func (q *Queue[T]) poll() {
	for {
		m, err := q.recv()

		q.mu.Lock()
		if err != nil {
			q.done = err
			for _, w := range q.waiters {
				w.ch <- result[T]{err: err}
			}
			q.waiters = nil
			q.polling = false
			q.mu.Unlock()
			return
		}
		q.deliverLocked(m)
		if len(q.waiters) == 0 {
			q.polling = false
			q.mu.Unlock()
			return
		}
		q.mu.Unlock()
	}
}

// ErrorQueue wraps a Queue so that the first message classified as an
// error is returned to every past, present and future receiver,
// regardless of their predicate. The classification happens inside the
// poll loop, under the queue mutex, before the message could be
// offered to any waiter; once latched, no receiver can observe later
// traffic.
type ErrorQueue[T any] struct {
	q *Queue[T]
}

func NewWithError[T any](recv ReceiveFunc[T], isError Predicate[T]) *ErrorQueue[T] {
	q := New(recv)
	q.isError = isError
	return &ErrorQueue[T]{q: q}
}

// Receive behaves like Queue.Receive but also resolves on the first
// error-classified message, which is latched for all receivers.
func (e *ErrorQueue[T]) Receive(ctx context.Context, pred Predicate[T]) (T, error) {
	return e.q.Receive(ctx, pred)
}

// Requeue offers a message back to the underlying queue.
func (e *ErrorQueue[T]) Requeue(m T) { e.q.Requeue(m) }

// Buffered reports how many unclaimed messages are held.
func (e *ErrorQueue[T]) Buffered() int { return e.q.Buffered() }
