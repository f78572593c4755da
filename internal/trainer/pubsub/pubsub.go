package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// PubSub provides in-memory publish-subscribe messaging within one process.
// Delivery never blocks the publisher: a subscriber whose buffer is full
// misses the message.
type PubSub[T any] interface {
	// Publish sends a message to the specified topic.
	Publish(ctx context.Context, topic string, message T) error

	// Subscribe creates a subscription to the specified topic. The returned
	// function unsubscribes and closes the channel; cancelling ctx does the same.
	Subscribe(ctx context.Context, topic string) (<-chan Message[T], func(), error)

	// SubscriberCount returns the number of live subscriptions on a topic.
	SubscriberCount(topic string) int

	// Close gracefully shuts down the pub-sub system.
	Close() error

	// Health returns the current health status.
	Health(ctx context.Context) error
}

// Message represents a published message with metadata.
type Message[T any] struct {
	ID        uint64
	Topic     string
	Payload   T
	Timestamp time.Time
}

type subscriber[T any] struct {
	ch     chan Message[T]
	cancel context.CancelFunc
}

type memoryPubSub[T any] struct {
	mu         sync.RWMutex
	topics     map[string]map[uint64]*subscriber[T]
	bufferSize int
	closed     bool
	nextID     atomic.Uint64
}

// Option represents a functional option for configuring the PubSub system.
type Option[T any] func(*memoryPubSub[T])

// WithBufferSize sets the buffer size for subscriber channels.
func WithBufferSize[T any](size int) Option[T] {
	return func(p *memoryPubSub[T]) {
		if size > 0 {
			p.bufferSize = size
		}
	}
}

// NewPubSub creates a new in-memory pub-sub system with functional options.
func NewPubSub[T any](opts ...Option[T]) PubSub[T] {
	p := &memoryPubSub[T]{
		topics:     make(map[string]map[uint64]*subscriber[T]),
		bufferSize: 10,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Publish sends a message to every current subscriber of the topic.
// Topics without subscribers are not materialized.
func (p *memoryPubSub[T]) Publish(ctx context.Context, topic string, message T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// The read lock is held while sending so unsubscribe cannot close a
	// channel under us; sends never block.
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	subscribers := p.topics[topic]
	if len(subscribers) == 0 {
		return nil
	}

	msg := Message[T]{
		ID:        p.nextID.Add(1),
		Topic:     topic,
		Payload:   message,
		Timestamp: time.Now(),
	}

	for _, sub := range subscribers {
		select {
		case sub.ch <- msg:
		default:
			// Channel is full, skip this subscriber
		}
	}

	return nil
}

// Subscribe creates a subscription to the specified topic.
func (p *memoryPubSub[T]) Subscribe(ctx context.Context, topic string) (<-chan Message[T], func(), error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, nil, ErrSubscriberClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	id := p.nextID.Add(1)
	ch := make(chan Message[T], p.bufferSize)
	if p.topics[topic] == nil {
		p.topics[topic] = make(map[uint64]*subscriber[T])
	}
	p.topics[topic][id] = &subscriber[T]{ch: ch, cancel: cancel}
	p.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()

			p.mu.Lock()
			defer p.mu.Unlock()
			subscribers, ok := p.topics[topic]
			if !ok {
				return // closed together with the whole system
			}
			if sub, exists := subscribers[id]; exists {
				delete(subscribers, id)
				close(sub.ch)
			}
			if len(subscribers) == 0 {
				delete(p.topics, topic)
			}
		})
	}

	go func() {
		<-subCtx.Done()
		unsubscribe()
	}()

	return ch, unsubscribe, nil
}

// SubscriberCount returns the number of live subscriptions on a topic.
func (p *memoryPubSub[T]) SubscriberCount(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.topics[topic])
}

// Close closes every subscription and rejects further use.
func (p *memoryPubSub[T]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, subscribers := range p.topics {
		for _, sub := range subscribers {
			sub.cancel()
			close(sub.ch)
		}
	}
	p.topics = make(map[string]map[uint64]*subscriber[T])
	return nil
}

// Health returns the current health status.
func (p *memoryPubSub[T]) Health(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}
	return nil
}
