package infrastructure

import (
	"context"
	"sync"

	"hotelReservas/internal/modules/realtime/application/port"
	"hotelReservas/internal/modules/realtime/domain"
)

// HandlerRegistry routes consumed events to the handler registered for their source topic.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]port.TopicHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]port.TopicHandler)}
}

func (r *HandlerRegistry) Register(h port.TopicHandler) {
	r.mu.Lock()
	r.handlers[h.Topic()] = h
	r.mu.Unlock()
}

// Topics lists the source topics with a registered handler.
func (r *HandlerRegistry) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	return topics
}

// Dispatch hands msg to the handler registered for source. Unknown sources are ignored.
func (r *HandlerRegistry) Dispatch(ctx context.Context, source string, msg *domain.Message) error {
	r.mu.RLock()
	handler, ok := r.handlers[source]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return handler.Handle(ctx, msg)
}
