package repository

import (
	"context"

	"clinic-booking-saga/internal/domain/entity"
)

// BookingRepository writes the terminal booking record exactly once per
// transaction_id.
type BookingRepository interface {
	// Create inserts the booking. If a booking already exists for
	// booking.TransactionID, Create returns (false, nil) instead of an
	// error — finalization is idempotent.
	Create(ctx context.Context, booking *entity.Booking) (created bool, err error)
	FindByTransaction(ctx context.Context, transactionID string) (*entity.Booking, error)
	ExistsReferenceID(ctx context.Context, referenceID string) (bool, error)
}
