package repository_test

import (
	"context"
	"testing"
	"time"

	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestEventRepository_AppendDedupsReplayedDelivery(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewEventRepository(db)

	ts := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	evt := &entity.TransactionEvent{
		TransactionID: "tx1",
		EventType:     entity.EventBookingInitiated,
		Timestamp:     ts,
	}

	inserted, err := repo.Append(context.Background(), evt)
	require.NoError(t, err)
	require.True(t, inserted)

	replay := &entity.TransactionEvent{
		TransactionID: "tx1",
		EventType:     entity.EventBookingInitiated,
		Timestamp:     ts,
	}
	insertedAgain, err := repo.Append(context.Background(), replay)
	require.NoError(t, err)
	require.False(t, insertedAgain)

	events, err := repo.ListByTransaction(context.Background(), "tx1")
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestEventRepository_ListByTransactionOrdersByInsertion(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewEventRepository(db)

	base := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	types := []entity.EventType{
		entity.EventBookingInitiated,
		entity.EventBookingValidated,
		entity.EventBookingPriced,
	}
	for i, et := range types {
		_, err := repo.Append(context.Background(), &entity.TransactionEvent{
			TransactionID: "tx2",
			EventType:     et,
			Timestamp:     base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	events, err := repo.ListByTransaction(context.Background(), "tx2")
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, entity.EventBookingInitiated, events[0].EventType)
	require.Equal(t, entity.EventBookingPriced, events[2].EventType)
}

func TestEventRepository_HasType(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewEventRepository(db)

	_, err := repo.Append(context.Background(), &entity.TransactionEvent{
		TransactionID: "tx3",
		EventType:     entity.EventBookingCompleted,
		Timestamp:     time.Now().UTC(),
	})
	require.NoError(t, err)

	has, err := repo.HasType(context.Background(), "tx3", entity.EventBookingCompleted)
	require.NoError(t, err)
	require.True(t, has)

	hasNot, err := repo.HasType(context.Background(), "tx3", entity.EventBookingFailed)
	require.NoError(t, err)
	require.False(t, hasNot)
}
