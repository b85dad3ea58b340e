package bus

import (
	"context"
	"sync"

	"clinic-booking-saga/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

// defaultWorkersPerType bounds how many deliveries run concurrently on the
// single worker pool shared by every event type, so multiple handlers run
// simultaneously on the same component even without a real broker.
const defaultWorkersPerType = 16

// InMemoryBus is a process-local Bus: Publish enqueues onto one shared
// channel that Run drains into a conc worker pool. Used by default
// locally (no network, no broker).
type InMemoryBus struct {
	log *logrus.Logger

	mu       sync.RWMutex
	handlers map[entity.EventType][]Handler

	queue chan entity.Event
	pool  *pool.ContextPool
}

func NewInMemoryBus(log *logrus.Logger) *InMemoryBus {
	return &InMemoryBus{
		log:      log,
		handlers: make(map[entity.EventType][]Handler),
		queue:    make(chan entity.Event, 4096),
	}
}

func (b *InMemoryBus) Subscribe(eventType entity.EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *InMemoryBus) Publish(ctx context.Context, evt entity.Event) error {
	select {
	case b.queue <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is cancelled, dispatching each event to
// every subscribed handler on a bounded worker pool so unrelated
// transactions never serialize behind one another.
func (b *InMemoryBus) Run(ctx context.Context) error {
	b.pool = pool.New().WithContext(ctx).WithMaxGoroutines(defaultWorkersPerType)
	for {
		select {
		case evt := <-b.queue:
			b.dispatch(ctx, evt)
		case <-ctx.Done():
			b.pool.Wait()
			return nil
		}
	}
}

func (b *InMemoryBus) dispatch(ctx context.Context, evt entity.Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[evt.Type]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		handler := h
		b.pool.Go(func(ctx context.Context) error {
			if err := handler(ctx, evt); err != nil {
				b.log.WithFields(logrus.Fields{
					"event_type":     evt.Type,
					"transaction_id": evt.TransactionID,
				}).Errorf("handler failed: %v", err)
			}
			return nil
		})
	}
}

func (b *InMemoryBus) Close() error {
	return nil
}
