package repository

import (
	"context"

	"clinic-booking-saga/internal/domain/entity"
	domainRepo "clinic-booking-saga/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) domainRepo.EventRepository {
	return &eventRepository{db: db}
}

// Append relies on the unique index on (transaction_id, event_type,
// timestamp) declared in the migration: a duplicate delivery of the same
// event hits DoNothing and RowsAffected comes back 0, the at-least-once
// dedup the orchestrator's delivery semantics require.
func (r *eventRepository) Append(ctx context.Context, evt *entity.TransactionEvent) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(evt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *eventRepository) ListByTransaction(ctx context.Context, transactionID string) ([]entity.TransactionEvent, error) {
	var events []entity.TransactionEvent
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) HasType(ctx context.Context, transactionID string, t entity.EventType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.TransactionEvent{}).
		Where("transaction_id = ? AND event_type = ?", transactionID, t).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
