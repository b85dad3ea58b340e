package repository

import (
	"context"
	"errors"

	"clinic-booking-saga/internal/domain/entity"
	domainRepo "clinic-booking-saga/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type stateRepository struct {
	db *gorm.DB
}

func NewStateRepository(db *gorm.DB) domainRepo.StateRepository {
	return &stateRepository{db: db}
}

// Upsert sets current_state to the latest observed event type regardless
// of wall-clock arrival order — callers are expected to only call this
// with events already appended to the log, in log order.
func (r *stateRepository) Upsert(ctx context.Context, transactionID string, state entity.EventType) error {
	row := entity.TransactionState{
		TransactionID: transactionID,
		CurrentState:  state,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"current_state", "updated_at"}),
		}).
		Create(&row).Error
}

func (r *stateRepository) Get(ctx context.Context, transactionID string) (*entity.TransactionState, error) {
	var state entity.TransactionState
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

// MarkCompensationEmitted flips the flag via a RowsAffected-checked
// conditional update: 1 row affected means this call won the race and
// owns emitting compensate.
func (r *stateRepository) MarkCompensationEmitted(ctx context.Context, transactionID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.TransactionState{}).
		Where("transaction_id = ? AND compensation_emitted = ?", transactionID, false).
		Update("compensation_emitted", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
