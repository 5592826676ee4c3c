// Package pubsub fans layout events out to in-process subscribers. Slow
// subscribers never block the publisher; messages that do not fit in a
// subscriber's buffer are dropped and counted.
package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dd0wney/cluso-forcegraph/pkg/logging"
)

// AllTopics subscribes to every topic
const AllTopics = "*"

// DefaultBufferSize is the per-subscription channel capacity
const DefaultBufferSize = 100

// ErrClosed is returned when subscribing to a bus that has shut down
var ErrClosed = errors.New("pubsub: bus is shut down")

// Event is the envelope delivered to subscribers
type Event struct {
	Topic    string    `json:"topic"`
	Sequence uint64    `json:"sequence"`
	Time     time.Time `json:"time"`
	Payload  any       `json:"payload"`
}

// Bus provides publish/subscribe for layout events
type Bus struct {
	subscribers map[string]map[*Subscription]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool

	bufferSize int
	logger     logging.Logger
	sequence   atomic.Uint64
	dropped    atomic.Uint64
}

// Option configures a Bus
type Option func(*Bus)

// WithBufferSize sets the per-subscription buffer
func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// WithLogger sets the logger used to report dropped events
func WithLogger(logger logging.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Subscription represents a subscription to a topic
type Subscription struct {
	topic     string
	channel   chan Event
	bus       *Bus
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once // Ensures channel is only closed once
}

// NewBus creates a new Bus
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[string]map[*Subscription]bool),
		shutdown:    make(chan struct{}),
		bufferSize:  DefaultBufferSize,
		logger:      logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe creates a subscription to topic, or to every topic with
// AllTopics. It ends when ctx is cancelled or Unsubscribe is called.
func (b *Bus) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return nil, ErrClosed
	}
	b.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topic:   topic,
		channel: make(chan Event, b.bufferSize),
		bus:     b,
		ctx:     subCtx,
		cancel:  cancel,
	}

	b.mu.Lock()
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[*Subscription]bool)
	}
	b.subscribers[topic][sub] = true
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			b.mu.Lock()
			sub.removeLocked()
			b.mu.Unlock()
		}
	}()

	return sub, nil
}

// Publish sends message to every subscriber of topic and of AllTopics.
// It never blocks.
func (b *Bus) Publish(topic string, message any) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.shutdownMu.Unlock()

	// Snapshot subscribers so sends happen outside the lock
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subscribers[topic])+len(b.subscribers[AllTopics]))
	for sub := range b.subscribers[topic] {
		subs = append(subs, sub)
	}
	if topic != AllTopics {
		for sub := range b.subscribers[AllTopics] {
			subs = append(subs, sub)
		}
	}
	b.mu.RUnlock()
	if len(subs) == 0 {
		return
	}

	event := Event{
		Topic:    topic,
		Sequence: b.sequence.Add(1),
		Time:     time.Now(),
		Payload:  message,
	}
	for _, sub := range subs {
		sub.deliver(event)
	}
}

// SubscriberCount returns the number of subscribers registered for topic
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Dropped returns how many deliveries were skipped because a buffer was full
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Shutdown closes all subscriptions and shuts down the Bus
func (b *Bus) Shutdown() {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.isShutdown = true
	b.shutdownMu.Unlock()

	close(b.shutdown)

	b.mu.Lock()
	for topic := range b.subscribers {
		for sub := range b.subscribers[topic] {
			sub.close()
		}
		delete(b.subscribers, topic)
	}
	b.mu.Unlock()
}

// deliver sends without blocking. The read lock keeps the channel from
// being closed by Unsubscribe or Shutdown mid-send.
func (s *Subscription) deliver(event Event) {
	s.bus.mu.RLock()
	defer s.bus.mu.RUnlock()
	if !s.bus.subscribers[s.topic][s] {
		return
	}
	select {
	case s.channel <- event:
	default:
		s.bus.dropped.Add(1)
		s.bus.logger.Debug("Dropping event for slow subscriber",
			logging.String("topic", event.Topic),
			logging.String("subscription", s.topic))
	}
}

// Topic returns the topic the subscription listens on
func (s *Subscription) Topic() string {
	return s.topic
}

// Channel returns the subscription's event channel. It is closed when the
// subscription ends.
func (s *Subscription) Channel() <-chan Event {
	return s.channel
}

// Unsubscribe removes the subscription
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	s.removeLocked()
}

// removeLocked drops the subscription from the bus and closes its channel.
// The caller holds bus.mu, so deliver never sees a closed channel that is
// still registered.
func (s *Subscription) removeLocked() {
	if s.bus.subscribers[s.topic] != nil {
		delete(s.bus.subscribers[s.topic], s)
		if len(s.bus.subscribers[s.topic]) == 0 {
			delete(s.bus.subscribers, s.topic)
		}
	}
	s.close()
}

// close closes the subscription channel safely (idempotent)
func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
