package eventbus

import (
	"sync"
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"

	"ico-builder-go/internal/platform/logging"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

// Publisher is the subset of Bus that domain services depend on.
type Publisher interface {
	Publish(topic string, args ...interface{})
	PublishAsync(topic string, args ...interface{})
}

// Bus wraps EventBus with a bounded worker pool for async delivery.
type Bus struct {
	bus     evbus.Bus
	workers int
	queue   chan asyncEvent
	logger  *logging.Logger

	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
	stopOnce sync.Once
	dropped  atomic.Int64
}

type asyncEvent struct {
	topic string
	args  []interface{}
}

// New creates a bus. Call Start before PublishAsync and Stop on shutdown.
func New(workers, queueSize int, logger *logging.Logger) *Bus {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = logging.Default
	}
	return &Bus{
		bus:     evbus.New(),
		workers: workers,
		queue:   make(chan asyncEvent, queueSize),
		logger:  logger,
	}
}

func (b *Bus) Start() {
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
}

// Stop refuses new async events and waits for queued ones to be delivered.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.queue)
		b.mu.Unlock()
		b.wg.Wait()
	})
}

func (b *Bus) worker() {
	defer b.wg.Done()
	for event := range b.queue {
		b.deliver(event)
	}
}

func (b *Bus) deliver(event asyncEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorTag("Event", "handler for %s panicked: %v", event.topic, r)
		}
	}()
	b.bus.Publish(event.topic, event.args...)
}

// Publish delivers synchronously on the caller's goroutine.
func (b *Bus) Publish(topic string, args ...interface{}) {
	b.deliver(asyncEvent{topic: topic, args: args})
}

// PublishAsync queues the event. When the queue is full or the bus is
// stopped the event is dropped and counted.
func (b *Bus) PublishAsync(topic string, args ...interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.dropped.Add(1)
		return
	}
	select {
	case b.queue <- asyncEvent{topic: topic, args: args}:
	default:
		b.dropped.Add(1)
		b.logger.WarnTag("Event", "queue full, dropped %s", topic)
	}
}

func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	return b.bus.Unsubscribe(topic, fn)
}

func (b *Bus) HasCallback(topic string) bool {
	return b.bus.HasCallback(topic)
}

// Dropped reports how many async events were discarded.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}
