// Package msgbus implements the in-process publish/subscribe bus the
// engine treats as an opaque collaborator: Publish fans an
// event out to every topic subscriber, Send delivers to one named
// endpoint, and SendResponse routes a request's eventual answer back to
// whoever issued it. Each subscriber is served off its own bounded
// deliveryQueue (queue.go), so a slow subscriber falls behind — oldest
// messages evicted past the depth bound — rather than ever blocking the
// publisher.
package msgbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Topic addresses a publish/subscribe channel. Construction is the
// Switchboard's job (switchboard.go); the bus itself treats a Topic as
// an opaque string.
type Topic string

// EndpointId addresses a point-to-point handler registered with Send.
type EndpointId string

// Handler receives one message off a topic or endpoint.
type Handler func(msg any)

// Bus is the engine's message bus.
type Bus struct {
	logger *slog.Logger

	mu            sync.RWMutex
	subscriptions map[Topic][]*subscription
	endpoints     map[EndpointId]Handler
	pending       map[uuid.UUID]Handler

	maxDepth int
}

type subscription struct {
	queue *deliveryQueue
	done  chan struct{}
}

// New constructs a Bus. maxDepth bounds each subscriber's undelivered
// backlog; past it the subscriber's oldest messages are evicted.
func New(maxDepth int, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	if maxDepth < 1 {
		maxDepth = 64
	}
	return &Bus{
		logger:        logger,
		subscriptions: make(map[Topic][]*subscription),
		endpoints:     make(map[EndpointId]Handler),
		pending:       make(map[uuid.UUID]Handler),
		maxDepth:      maxDepth,
	}
}

// Subscribe registers handler to receive every message published on
// topic. Delivery happens on a dedicated goroutine so Publish never
// blocks on a slow handler.
func (b *Bus) Subscribe(topic Topic, handler Handler) {
	sub := &subscription{
		queue: newDeliveryQueue(b.maxDepth),
		done:  make(chan struct{}),
	}

	b.mu.Lock()
	b.subscriptions[topic] = append(b.subscriptions[topic], sub)
	b.mu.Unlock()

	go func() {
		defer close(sub.done)
		for {
			msg, ok := sub.queue.pop()
			if !ok {
				return
			}
			handler(msg)
		}
	}()
}

// Publish fans msg out to every subscriber of topic. A subscriber whose
// backlog is at the depth bound loses its oldest undelivered message,
// logged so a persistently lagging handler is visible.
func (b *Bus) Publish(topic Topic, msg any) {
	b.mu.RLock()
	subs := b.subscriptions[topic]
	b.mu.RUnlock()

	for _, sub := range subs {
		if sub.queue.push(msg) {
			b.logger.Warn("msgbus: subscriber lagging, oldest message evicted",
				"topic", string(topic),
				"evicted_total", sub.queue.evictedCount(),
			)
		}
	}
}

// Register binds handler to a well-known point-to-point endpoint id,
// e.g. the engine's SubscriptionCommandHandler under "data_engine_execute".
func (b *Bus) Register(endpoint EndpointId, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.endpoints[endpoint]; exists {
		return fmt.Errorf("msgbus: endpoint %q already registered", endpoint)
	}
	b.endpoints[endpoint] = handler
	return nil
}

// Send delivers msg to the handler registered under endpoint. Returns an
// error if no handler is registered; the caller is expected to log and
// drop, matching the engine's command-dispatch behavior.
func (b *Bus) Send(endpoint EndpointId, msg any) error {
	b.mu.RLock()
	handler, ok := b.endpoints[endpoint]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("msgbus: no handler registered for endpoint %q", endpoint)
	}
	handler(msg)
	return nil
}

// RegisterResponseHandler arranges for handler to receive the single
// SendResponse call matching correlationID, then forgets it.
func (b *Bus) RegisterResponseHandler(correlationID uuid.UUID, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[correlationID] = handler
}

// SendResponse routes a response back to whoever issued the matching
// request. Unknown correlation ids are logged and dropped rather than
// treated as an error, since a late or duplicate response is not itself
// a bug in the caller.
func (b *Bus) SendResponse(correlationID uuid.UUID, msg any) {
	b.mu.Lock()
	handler, ok := b.pending[correlationID]
	if ok {
		delete(b.pending, correlationID)
	}
	b.mu.Unlock()

	if !ok {
		b.logger.Warn("msgbus: response for unknown correlation id", "correlation_id", correlationID)
		return
	}
	handler(msg)
}

// Close shuts down every subscriber's delivery goroutine. Messages
// already queued still drain before each goroutine exits.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, subs := range b.subscriptions {
		for _, sub := range subs {
			sub.queue.close()
		}
	}
}
