// Package bus hides the event-transport choice behind one capability, per
// the design note "the source embeds HTTP routing keyed on event_type to
// emulate the bus... the rewrite must hide it behind a Bus capability with
// two implementations (in-memory, real pub/sub)."
package bus

import (
	"context"

	"clinic-booking-saga/internal/domain/entity"
)

// Handler processes one delivered event. Handlers are never required to
// be safe against reentrancy on a single transaction by the bus itself —
// that serialization, where needed, is the handler's job.
type Handler func(ctx context.Context, evt entity.Event) error

// Bus publishes events and lets components subscribe to the event types
// they consume — Validator/Pricer/Quota/Orchestrator are all just
// subscribers against the same topic.
type Bus interface {
	Publish(ctx context.Context, evt entity.Event) error
	Subscribe(eventType entity.EventType, handler Handler)
	// Run blocks dispatching until ctx is cancelled. InMemoryBus runs its
	// worker pool; KafkaBus runs its consumer loop.
	Run(ctx context.Context) error
	Close() error
}
