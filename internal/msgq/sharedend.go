package msgq

import "context"

// CtxReceiveFunc pulls the next message from an upstream receiver,
// honouring ctx while blocked.
type CtxReceiveFunc[T any] func(ctx context.Context) (T, error)

// SharedEndQueue serves two sub-streams that read from one upstream
// sequence and share a single terminal event. The terminal event can
// be consumed from upstream only once, so when it arrives while a
// receiver was asking for something else it is kept buffered; every
// later Receive observes it again, whatever its predicate.
type SharedEndQueue[T any] struct {
	recv    CtxReceiveFunc[T]
	isError Predicate[T]
	isEnd   Predicate[T]
	sem     chan struct{}
	stored  []T
}

func NewSharedEnd[T any](recv CtxReceiveFunc[T], isError, isEnd Predicate[T]) *SharedEndQueue[T] {
	return &SharedEndQueue[T]{
		recv:    recv,
		isError: isError,
		isEnd:   isEnd,
		sem:     make(chan struct{}, 1),
	}
}

// Receive returns the first buffered or upstream message satisfying
// pred. The shared terminal event resolves any Receive call and stays
// buffered; error-classified messages resolve the call immediately.
// Only one Receive consumes from upstream at a time.
func (s *SharedEndQueue[T]) Receive(ctx context.Context, pred Predicate[T]) (T, error) {
	var zero T

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	defer func() { <-s.sem }()

	for i, m := range s.stored {
		if pred(m) {
			s.stored = append(s.stored[:i], s.stored[i+1:]...)
			return m, nil
		}
		if s.isEnd(m) {
			return m, nil
		}
	}

	for {
		m, err := s.recv(ctx)
		if err != nil {
			return zero, err
		}
		if s.isError(m) || pred(m) {
			return m, nil
		}
		if s.isEnd(m) {
			s.stored = append(s.stored, m)
			return m, nil
		}
		s.stored = append(s.stored, m)
	}
}
