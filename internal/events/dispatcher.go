package events

import (
	"context"
	"sync"
)

// Handler consumes one pipeline event. Handler errors are the handler's
// own business; publication never fails because a subscriber did.
type Handler func(ctx context.Context, event Event) error

// Dispatcher fans pipeline events out to registered handlers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler Handler)
}

type memoryDispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewInMemoryDispatcher returns a synchronous in-process dispatcher.
// Handlers run on the publishing goroutine, so the audit trail for a
// request is written before its HTTP response goes out.
func NewInMemoryDispatcher() Dispatcher {
	return &memoryDispatcher{handlers: make(map[EventType][]Handler)}
}

func (d *memoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subscribed := make([]Handler, len(d.handlers[event.Type]))
	copy(subscribed, d.handlers[event.Type])
	d.mu.RUnlock()

	for _, handle := range subscribed {
		_ = handle(ctx, event)
	}
	return nil
}

func (d *memoryDispatcher) Subscribe(eventType EventType, handler Handler) {
	d.mu.Lock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
	d.mu.Unlock()
}
