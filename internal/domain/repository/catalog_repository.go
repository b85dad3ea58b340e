package repository

import (
	"context"

	"clinic-booking-saga/internal/domain/entity"
)

// CatalogRepository is the single read-only catalog capability every
// component resolves service ids against (Design Note: "duplicated
// catalog → single capability").
type CatalogRepository interface {
	FindByID(ctx context.Context, id int) (*entity.Service, error)
	FindByIDs(ctx context.Context, ids []int) ([]entity.Service, error)
	List(ctx context.Context, gender string) ([]entity.Service, error)
}
