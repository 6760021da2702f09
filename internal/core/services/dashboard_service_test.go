package services

import (
	"context"
	"testing"
	"time"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/adapters/persistence/repositories"
	"samiti-duespay/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDashboardService(t *testing.T, db *gorm.DB) *DashboardService {
	t.Helper()
	return NewDashboardService(db,
		repositories.NewMemberRepository(db),
		repositories.NewBillRepository(db),
		repositories.NewPaymentRepository(db),
	)
}

func TestGetAdminDashboard(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardService(t, db)
	billingSvc := newBillingService(t, db)
	ctx := context.Background()

	a := seedMember(t, db, "Ram", "pending", 0, 500, date(2024, time.January, 1))
	seedMember(t, db, "Sita", "pending", 0, 250, date(2024, time.January, 1))
	seedMember(t, db, "Hari", "deceased", 0, 0, date(2023, time.January, 1))

	_, err := billingSvc.RecordPayment(ctx, a.ID, &RecordPaymentInput{Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Expenditure{
		Title: "Community hall rent", Amount: decimal.NewFromInt(1200),
		SpentOn: date(2024, time.May, 1), RecordedBy: 1,
	}).Error)

	dashboard, err := svc.GetAdminDashboard(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 3, dashboard.TotalMembers)
	assert.EqualValues(t, 2, dashboard.MembersByStatus["pending"])
	assert.EqualValues(t, 1, dashboard.MembersByStatus["deceased"])
	assertDec(t, "300", dashboard.TotalCollected)
	assertDec(t, "450", dashboard.TotalOutstanding) // 200 + 250
	assertDec(t, "1200", dashboard.TotalSpent)
	require.Len(t, dashboard.RecentPayments, 1)
	assert.Equal(t, a.ID, dashboard.RecentPayments[0].MemberID)
}

func TestGetMemberDashboard(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 500, date(2024, time.January, 1))
	ctx := context.Background()

	oldest := date(2024, time.February, 1)
	for _, due := range []time.Time{date(2024, time.March, 1), oldest} {
		require.NoError(t, db.Create(&models.Bill{
			MemberID: m.ID, Amount: decimal.NewFromInt(250), DueDate: due,
			Status: string(domain.BillPending),
		}).Error)
	}

	dashboard, err := svc.GetMemberDashboard(ctx, m.ID)
	require.NoError(t, err)

	assert.Equal(t, m.ID, dashboard.Member.ID)
	require.Len(t, dashboard.PendingBills, 2)
	// Oldest unpaid bill first, and surfaced as owed-since.
	assert.Equal(t, oldest, dashboard.PendingBills[0].DueDate.UTC())
	require.NotNil(t, dashboard.OwedSince)
	assert.Equal(t, oldest, dashboard.OwedSince.UTC())
}

func TestGetMemberDashboardNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newDashboardService(t, db)

	_, err := svc.GetMemberDashboard(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}
