// Package changefeed carries invoice changes from the write path to the
// aggregation worker. Delivery is at-least-once: consumers must tolerate
// duplicates.
package changefeed

import (
	"context"
	"errors"
	"sync"

	"github.com/MrJamesThe3rd/tally/internal/invoice"
)

var ErrClosed = errors.New("change feed closed")

// Delivery is one change handed to a consumer. Ack marks it processed.
type Delivery struct {
	Change invoice.Change
	Ack    func(ctx context.Context) error
}

type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

func noAck(context.Context) error { return nil }

// Memory is an in-process feed backed by a buffered channel. It suits a
// single process running both the API and the worker.
type Memory struct {
	ch     chan Delivery
	mu     sync.RWMutex
	closed bool
}

func NewMemory(buffer int) *Memory {
	return &Memory{ch: make(chan Delivery, buffer)}
}

// Publish blocks while the buffer is full, until ctx is done.
func (m *Memory) Publish(ctx context.Context, change invoice.Change) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	select {
	case m.ch <- Delivery{Change: change, Ack: noAck}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns the shared delivery channel. Each change goes to exactly
// one subscriber.
func (m *Memory) Subscribe(context.Context) (<-chan Delivery, error) {
	return m.ch, nil
}

// Close stops accepting changes and closes the channel once pending
// publishers have returned.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.ch)
	}

	return nil
}
