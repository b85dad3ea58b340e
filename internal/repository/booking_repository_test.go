package repository_test

import (
	"context"
	"testing"

	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testBooking(transactionID, referenceID string) *entity.Booking {
	return &entity.Booking{
		TransactionID: transactionID,
		UserName:      "Asha",
		UserGender:    "female",
		UserDOB:       "1990-01-01",
		ServiceIDs:    entity.IntSlice{1},
		BasePrice:     decimal.RequireFromString("300.00"),
		FinalPrice:    decimal.RequireFromString("264.00"),
		ReferenceID:   referenceID,
	}
}

func TestBookingRepository_CreateIsIdempotentPerTransaction(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewBookingRepository(db)

	created, err := repo.Create(context.Background(), testBooking("tx1", "BK20260731-000001"))
	require.NoError(t, err)
	require.True(t, created)

	createdAgain, err := repo.Create(context.Background(), testBooking("tx1", "BK20260731-000001"))
	require.NoError(t, err)
	require.False(t, createdAgain)

	booking, err := repo.FindByTransaction(context.Background(), "tx1")
	require.NoError(t, err)
	require.NotNil(t, booking)
	require.Equal(t, "BK20260731-000001", booking.ReferenceID)
}

func TestBookingRepository_FindByTransactionUnknownReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewBookingRepository(db)

	booking, err := repo.FindByTransaction(context.Background(), "never-seen")
	require.NoError(t, err)
	require.Nil(t, booking)
}

func TestBookingRepository_ExistsReferenceID(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewBookingRepository(db)

	_, err := repo.Create(context.Background(), testBooking("tx1", "BK20260731-000001"))
	require.NoError(t, err)

	exists, err := repo.ExistsReferenceID(context.Background(), "BK20260731-000001")
	require.NoError(t, err)
	require.True(t, exists)

	notExists, err := repo.ExistsReferenceID(context.Background(), "BK20260731-999999")
	require.NoError(t, err)
	require.False(t, notExists)
}
