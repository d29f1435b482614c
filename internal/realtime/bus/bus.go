package bus

import (
	"context"
	"sync"

	"github.com/yungbote/supplesafe-backend/internal/domain"
)

// Bus delivers session transitions to every subscriber on this instance
// (and, for the redis bus, on every other instance).
type Bus interface {
	Publish(ctx context.Context, evt domain.SessionEvent) error
	Subscribe(handler func(domain.SessionEvent)) *Subscription
	Close() error
}

// Subscription is released with Unsubscribe; calling it twice is harmless.
type Subscription struct {
	once    sync.Once
	release func()
}

func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

type memoryBus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]func(domain.SessionEvent)
}

func NewMemoryBus() Bus {
	return newMemoryBus()
}

func newMemoryBus() *memoryBus {
	return &memoryBus{handlers: map[uint64]func(domain.SessionEvent){}}
}

func (b *memoryBus) Publish(_ context.Context, evt domain.SessionEvent) error {
	b.dispatch(evt)
	return nil
}

func (b *memoryBus) dispatch(evt domain.SessionEvent) {
	b.mu.RLock()
	handlers := make([]func(domain.SessionEvent), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		h(evt)
	}
}

func (b *memoryBus) Subscribe(handler func(domain.SessionEvent)) *Subscription {
	if handler == nil {
		return &Subscription{}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[id] = handler
	b.mu.Unlock()
	return &Subscription{release: func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}}
}

func (b *memoryBus) subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	b.handlers = map[uint64]func(domain.SessionEvent){}
	b.mu.Unlock()
	return nil
}
