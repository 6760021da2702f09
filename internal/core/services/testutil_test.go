package services

import (
	"testing"
	"time"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/adapters/persistence/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory sqlite database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newBillingService(t *testing.T, db *gorm.DB) *BillingService {
	t.Helper()
	return NewBillingService(db, repositories.NewSettingsRepository(db))
}

// seedMember inserts a member row with the given balances.
func seedMember(t *testing.T, db *gorm.DB, name, status string, totalPaid, pending int64, joined time.Time) *models.Member {
	t.Helper()

	m := &models.Member{
		Name:       name,
		JoinedDate: joined,
		TotalPaid:  decimal.NewFromInt(totalPaid),
		Pending:    decimal.NewFromInt(pending),
		Status:     status,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// reload fetches the member's current stored state.
func reload(t *testing.T, db *gorm.DB, id uint) *models.Member {
	t.Helper()

	var m models.Member
	require.NoError(t, db.First(&m, id).Error)
	return &m
}

// assertDec compares a decimal against its expected string value.
func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)),
		"expected %s, got %s", want, got)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
