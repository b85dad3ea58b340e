package repository

import (
	"context"
	"errors"

	"clinic-booking-saga/internal/domain/entity"
	domainRepo "clinic-booking-saga/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) domainRepo.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(booking)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *bookingRepository) FindByTransaction(ctx context.Context, transactionID string) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) ExistsReferenceID(ctx context.Context, referenceID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Booking{}).Where("reference_id = ?", referenceID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
