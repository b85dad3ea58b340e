package repository_test

import (
	"context"
	"testing"

	"clinic-booking-saga/internal/domain/entity"
	"clinic-booking-saga/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepository_FindByID(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&entity.Service{ID: 1, Name: "General Consultation", Gender: entity.ServiceGenderBoth, BasePrice: decimal.RequireFromString("300.00")}).Error)

	repo := repository.NewCatalogRepository(db)

	svc, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, svc)
	require.Equal(t, "General Consultation", svc.Name)

	missing, err := repo.FindByID(context.Background(), 999)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestCatalogRepository_FindByIDs(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&entity.Service{ID: 1, Name: "General Consultation", Gender: entity.ServiceGenderBoth, BasePrice: decimal.RequireFromString("300.00")}).Error)
	require.NoError(t, db.Create(&entity.Service{ID: 2, Name: "Gynecology", Gender: entity.ServiceGenderFemale, BasePrice: decimal.RequireFromString("500.00")}).Error)

	repo := repository.NewCatalogRepository(db)

	services, err := repo.FindByIDs(context.Background(), []int{1, 2, 999})
	require.NoError(t, err)
	require.Len(t, services, 2)

	empty, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestCatalogRepository_ListFiltersByGender(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&entity.Service{ID: 1, Name: "General Consultation", Gender: entity.ServiceGenderBoth, BasePrice: decimal.RequireFromString("300.00")}).Error)
	require.NoError(t, db.Create(&entity.Service{ID: 2, Name: "Gynecology", Gender: entity.ServiceGenderFemale, BasePrice: decimal.RequireFromString("500.00")}).Error)
	require.NoError(t, db.Create(&entity.Service{ID: 6, Name: "Urology", Gender: entity.ServiceGenderMale, BasePrice: decimal.RequireFromString("550.00")}).Error)

	repo := repository.NewCatalogRepository(db)

	female, err := repo.List(context.Background(), "female")
	require.NoError(t, err)
	require.Len(t, female, 2) // Gynecology + the "both" General Consultation

	all, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}
