package repository

import (
	"context"

	"clinic-booking-saga/internal/domain/entity"
)

// StateRepository owns the per-transaction current_state summary row.
type StateRepository interface {
	Upsert(ctx context.Context, transactionID string, state entity.EventType) error
	Get(ctx context.Context, transactionID string) (*entity.TransactionState, error)
	// MarkCompensationEmitted atomically flips compensation_emitted from
	// false to true, returning true iff this call was the one that flipped
	// it — at most one compensate is ever emitted per transaction.
	MarkCompensationEmitted(ctx context.Context, transactionID string) (bool, error)
}
