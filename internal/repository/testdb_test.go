package repository_test

import (
	"testing"

	"clinic-booking-saga/internal/domain/entity"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB builds an in-memory sqlite database with the same schema the
// production migrations create, so the gorm repository implementations
// under test run against real SQL rather than a hand-written fake.
// "cache=shared" plus a single open connection keeps every statement on
// one in-memory database — sqlite's ":memory:" is otherwise per-connection
// and gorm's pool would otherwise see a fresh, empty database per query.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.Service{},
		&entity.TransactionEvent{},
		&entity.TransactionState{},
		&entity.QuotaCounter{},
		&entity.QuotaAllocation{},
		&entity.Booking{},
	))

	return db
}
