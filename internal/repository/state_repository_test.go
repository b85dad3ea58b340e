package repository_test

import (
	"context"
	"testing"

	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestStateRepository_UpsertThenGet(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewStateRepository(db)

	require.NoError(t, repo.Upsert(context.Background(), "tx1", entity.EventBookingInitiated))

	state, err := repo.Get(context.Background(), "tx1")
	require.NoError(t, err)
	require.NotNil(t, state)
	require.Equal(t, entity.EventBookingInitiated, state.CurrentState)

	require.NoError(t, repo.Upsert(context.Background(), "tx1", entity.EventBookingValidated))

	state, err = repo.Get(context.Background(), "tx1")
	require.NoError(t, err)
	require.Equal(t, entity.EventBookingValidated, state.CurrentState)
}

func TestStateRepository_GetUnknownReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewStateRepository(db)

	state, err := repo.Get(context.Background(), "never-seen")
	require.NoError(t, err)
	require.Nil(t, state)
}

// At most one call to MarkCompensationEmitted wins the
// compensation_emitted flip per transaction.
func TestStateRepository_MarkCompensationEmittedOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewStateRepository(db)

	require.NoError(t, repo.Upsert(context.Background(), "tx1", entity.EventBookingValidationFailed))

	first, err := repo.MarkCompensationEmitted(context.Background(), "tx1")
	require.NoError(t, err)
	require.True(t, first)

	second, err := repo.MarkCompensationEmitted(context.Background(), "tx1")
	require.NoError(t, err)
	require.False(t, second)
}
