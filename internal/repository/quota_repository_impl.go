package repository

import (
	"context"

	"clinic-booking-saga/internal/domain/entity"
	domainRepo "clinic-booking-saga/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type quotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) domainRepo.QuotaRepository {
	return &quotaRepository{db: db}
}

// RecordAcquired runs second in the two-phase acquire: the Redis
// reservation has already happened by the time this is called, so this
// write only ever needs to persist the outcome, absorbing duplicate
// deliveries via the transaction_id unique index.
func (r *quotaRepository) RecordAcquired(ctx context.Context, transactionID, date string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entity.QuotaAllocation{
			TransactionID: transactionID,
			Date:          date,
			Released:      false,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Duplicate delivery: allocation already recorded, counter
			// already reflects it. Nothing further to do.
			return nil
		}
		return upsertCounterIncrement(tx, date, 1)
	})
}

// RecordReleased flips the allocation to released via a conditional
// update; RowsAffected tells us whether this call performed the
// transition or a replay already had.
func (r *quotaRepository) RecordReleased(ctx context.Context, transactionID string) (bool, error) {
	var transitioned bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var alloc entity.QuotaAllocation
		err := tx.Where("transaction_id = ?", transactionID).First(&alloc).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		result := tx.Model(&entity.QuotaAllocation{}).
			Where("transaction_id = ? AND released = ?", transactionID, false).
			Update("released", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		transitioned = true
		return upsertCounterIncrement(tx, alloc.Date, -1)
	})
	return transitioned, err
}

func (r *quotaRepository) AllocationDate(ctx context.Context, transactionID string) (string, bool, error) {
	var alloc entity.QuotaAllocation
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&alloc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return alloc.Date, true, nil
}

func (r *quotaRepository) Used(ctx context.Context, date string) (int, error) {
	var counter entity.QuotaCounter
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&counter).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return counter.Used, nil
}

func upsertCounterIncrement(tx *gorm.DB, date string, delta int) error {
	result := tx.Model(&entity.QuotaCounter{}).
		Where("date = ?", date).
		UpdateColumn("used", gorm.Expr("used + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	used := delta
	if used < 0 {
		used = 0
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entity.QuotaCounter{
		Date: date,
		Used: used,
	}).Error
}
