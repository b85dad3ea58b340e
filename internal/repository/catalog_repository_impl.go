package repository

import (
	"context"
	"errors"

	"clinic-booking-saga/internal/domain/entity"
	domainRepo "clinic-booking-saga/internal/domain/repository"

	"gorm.io/gorm"
)

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) domainRepo.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) FindByID(ctx context.Context, id int) (*entity.Service, error) {
	var svc entity.Service
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&svc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &svc, nil
}

func (r *catalogRepository) FindByIDs(ctx context.Context, ids []int) ([]entity.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var services []entity.Service
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *catalogRepository) List(ctx context.Context, gender string) ([]entity.Service, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if gender != "" {
		q = q.Where("gender IN ?", []string{gender, string(entity.ServiceGenderBoth)})
	}
	var services []entity.Service
	if err := q.Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}
