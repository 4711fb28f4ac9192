package msgq

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// KeyFunc extracts the correlation key a message is routed by. It
// reports false when the message carries no key.
type KeyFunc[T any] func(T) (string, bool)

// Correlator is the id-keyed variant of Queue, for the case where
// many per-entity receivers are live at once. Messages are routed to
// per-key buffers instead of one linear scan; within a key, receivers
// can refine with a predicate. Same single-reader, no-reorder and
// end-of-stream guarantees as Queue.
type Correlator[T any] struct {
	mu      sync.Mutex
	recv    CtxReceiveFunc[T]
	key     KeyFunc[T]
	isError Predicate[T]
	logger  *slog.Logger

	stored     map[string][]T
	waiters    map[string][]*waiter[T]
	polling    bool
	cancelPoll context.CancelFunc
	done       error
	latched    *T
}

func NewCorrelator[T any](recv CtxReceiveFunc[T], key KeyFunc[T], isError Predicate[T], logger *slog.Logger) *Correlator[T] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Correlator[T]{
		recv:    recv,
		key:     key,
		isError: isError,
		logger:  logger,
		stored:  make(map[string][]T),
		waiters: make(map[string][]*waiter[T]),
	}
}

// Receive returns the next message for key that satisfies pred, in
// arrival order. A nil pred matches any message of the key. An
// error-classified message resolves every receiver on every key and
// is latched for future calls; io.EOF does the same once the source
// ends.
func (c *Correlator[T]) Receive(ctx context.Context, key string, pred Predicate[T]) (T, error) {
	var zero T
	if pred == nil {
		pred = func(T) bool { return true }
	}

	c.mu.Lock()
	if c.latched != nil {
		m := *c.latched
		c.mu.Unlock()
		return m, nil
	}
	buf := c.stored[key]
	for i, m := range buf {
		if pred(m) {
			c.stored[key] = append(buf[:i:i], buf[i+1:]...)
			if len(c.stored[key]) == 0 {
				delete(c.stored, key)
			}
			c.mu.Unlock()
			return m, nil
		}
	}
	if c.done != nil {
		err := c.done
		c.mu.Unlock()
		return zero, err
	}

	w := &waiter[T]{pred: pred, ch: make(chan result[T], 1)}
	c.waiters[key] = append(c.waiters[key], w)
	if !c.polling {
		c.polling = true
		pollCtx, cancel := context.WithCancel(context.Background())
		c.cancelPoll = cancel
		go c.poll(pollCtx)
	}
	c.mu.Unlock()

	select {
	case r := <-w.ch:
		return r.msg, r.err
	case <-ctx.Done():
		c.mu.Lock()
		if c.removeWaiterLocked(key, w) {
			c.mu.Unlock()
			return zero, ctx.Err()
		}
		c.mu.Unlock()
		r := <-w.ch
		if r.err == nil {
			c.mu.Lock()
			c.deliverLocked(key, r.msg)
			c.mu.Unlock()
		}
		return zero, ctx.Err()
	}
}

func (c *Correlator[T]) removeWaiterLocked(key string, w *waiter[T]) bool {
	ws := c.waiters[key]
	for i, cand := range ws {
		if cand == w {
			c.waiters[key] = append(ws[:i:i], ws[i+1:]...)
			if len(c.waiters[key]) == 0 {
				delete(c.waiters, key)
			}
			// The poll goroutine has nobody left to serve; unblock it.
			if c.polling && c.waiterCountLocked() == 0 {
				c.cancelPoll()
			}
			return true
		}
	}
	return false
}

func (c *Correlator[T]) deliverLocked(key string, m T) {
	ws := c.waiters[key]
	for i, w := range ws {
		if w.pred(m) {
			c.waiters[key] = append(ws[:i:i], ws[i+1:]...)
			if len(c.waiters[key]) == 0 {
				delete(c.waiters, key)
			}
			w.ch <- result[T]{msg: m}
			return
		}
	}
	c.stored[key] = append(c.stored[key], m)
}

func (c *Correlator[T]) resolveAllLocked(r result[T]) {
	for _, ws := range c.waiters {
		for _, w := range ws {
			w.ch <- r
		}
	}
	c.waiters = make(map[string][]*waiter[T])
}

func (c *Correlator[T]) poll(ctx context.Context) {
	for {
		m, err := c.recv(ctx)

		c.mu.Lock()
		if err != nil {
			if ctx.Err() != nil {
				// Stopped because the last waiter cancelled. If another
				// registered in the meantime, keep going with a fresh
				// context; otherwise wind down without latching.
				if c.waiterCountLocked() > 0 {
					pollCtx, cancel := context.WithCancel(context.Background())
					c.cancelPoll = cancel
					c.mu.Unlock()
					ctx = pollCtx
					continue
				}
				c.polling = false
				c.mu.Unlock()
				return
			}
			c.done = err
			c.resolveAllLocked(result[T]{err: err})
			c.polling = false
			c.mu.Unlock()
			return
		}
		if c.isError != nil && c.isError(m) {
			c.latched = &m
			c.resolveAllLocked(result[T]{msg: m})
			c.polling = false
			c.mu.Unlock()
			return
		}
		if key, ok := c.key(m); ok {
			c.deliverLocked(key, m)
		} else {
			// Nothing to correlate the message to.
			c.logger.Warn("dropping message without correlation key")
		}
		if c.waiterCountLocked() == 0 {
			c.polling = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

func (c *Correlator[T]) waiterCountLocked() int {
	n := 0
	for _, ws := range c.waiters {
		n += len(ws)
	}
	return n
}
