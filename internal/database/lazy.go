package database

import (
	"context"
	"sync"
)

// State mirrors the connection states reported by the health probe.
type State int

const (
	Disconnected State = iota
	Connected
	Connecting
	Disconnecting
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Connecting:
		return "connecting"
	case Disconnecting:
		return "disconnecting"
	default:
		return "disconnected"
	}
}

// DialFunc establishes a new connection.
type DialFunc[T any] func(ctx context.Context) (T, error)

// CloseFunc releases a connection obtained from a DialFunc.
type CloseFunc[T any] func(ctx context.Context, conn T) error

type attempt[T any] struct {
	done chan struct{}
	conn T
	err  error
}

// Lazy holds a process-wide connection that is established on first use and
// reused afterwards. Concurrent first callers share a single dial; a failed
// dial is forgotten so the next caller tries again.
type Lazy[T any] struct {
	dial  DialFunc[T]
	close CloseFunc[T]

	mu       sync.Mutex
	state    State
	conn     T
	inflight *attempt[T]
}

// NewLazy creates a handle that dials with dial and releases with closeFn.
// closeFn may be nil.
func NewLazy[T any](dial DialFunc[T], closeFn CloseFunc[T]) *Lazy[T] {
	return &Lazy[T]{dial: dial, close: closeFn}
}

// Get returns the cached connection, establishing it if needed.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	if l.state == Connected {
		conn := l.conn
		l.mu.Unlock()
		return conn, nil
	}

	a := l.inflight
	if a == nil {
		a = &attempt[T]{done: make(chan struct{})}
		l.inflight = a
		l.state = Connecting
		go l.run(a)
	}
	l.mu.Unlock()

	select {
	case <-a.done:
		return a.conn, a.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// run dials detached from any single caller so that one caller giving up
// does not fail the attempt for the others waiting on it.
func (l *Lazy[T]) run(a *attempt[T]) {
	conn, err := l.dial(context.Background())

	l.mu.Lock()
	defer l.mu.Unlock()

	a.conn, a.err = conn, err
	l.inflight = nil
	if err != nil {
		l.state = Disconnected
	} else {
		l.conn = conn
		l.state = Connected
	}
	close(a.done)
}

// State reports the current connection state.
func (l *Lazy[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Close releases the cached connection, if any.
func (l *Lazy[T]) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.state != Connected {
		l.mu.Unlock()
		return nil
	}
	conn := l.conn
	l.state = Disconnecting
	l.mu.Unlock()

	var err error
	if l.close != nil {
		err = l.close(ctx, conn)
	}

	l.mu.Lock()
	var zero T
	l.conn = zero
	l.state = Disconnected
	l.mu.Unlock()
	return err
}
