// Package eventbus provides in-process publish/subscribe for domain events.
package eventbus

import (
	"context"
	"sync"

	"github.com/walletguard/walletd/pkg/domain/events"
)

// HandlerFunc handles a single event.
type HandlerFunc func(context.Context, events.Event)

// Bus is the contract for publishing and subscribing to domain events.
type Bus interface {
	Publish(ctx context.Context, e events.Event) error
	Subscribe(eventType string, h HandlerFunc)
}

// Memory is a synchronous in-process Bus. Handlers run on the publisher's
// goroutine, in subscription order.
type Memory struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

// NewMemory creates an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{handlers: make(map[string][]HandlerFunc)}
}

// Publish delivers the event to every handler subscribed to its type.
func (b *Memory) Publish(ctx context.Context, e events.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers[e.Type()] {
		h(ctx, e)
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (b *Memory) Subscribe(eventType string, h HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}
