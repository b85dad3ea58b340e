package repository

import (
	"context"

	"clinic-booking-saga/internal/domain/entity"
)

// EventRepository owns the append-only transaction_events log.
type EventRepository interface {
	// Append inserts the event if no row with the same
	// (transaction_id, event_type, timestamp) already exists. Returns
	// whether a new row was actually inserted (false means a duplicate
	// delivery was absorbed).
	Append(ctx context.Context, evt *entity.TransactionEvent) (bool, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]entity.TransactionEvent, error)
	// HasType reports whether the log for a transaction already contains
	// an event of the given type.
	HasType(ctx context.Context, transactionID string, t entity.EventType) (bool, error)
}
