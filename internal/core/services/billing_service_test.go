package services

import (
	"context"
	"testing"
	"time"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPaymentReducesPending(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 500, date(2024, time.January, 1))

	got, err := svc.RecordPayment(context.Background(), m.ID, &RecordPaymentInput{
		Amount: decimal.NewFromInt(200),
		Notes:  "cash at meeting",
	})
	require.NoError(t, err)

	assertDec(t, "200", got.TotalPaid)
	assertDec(t, "300", got.Pending)
	assert.Equal(t, string(domain.StatusPending), got.Status)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("member_id = ?", m.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordPaymentNeverDrivesPendingNegative(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Sita", "pending", 0, 100, date(2024, time.January, 1))

	got, err := svc.RecordPayment(context.Background(), m.ID, &RecordPaymentInput{
		Amount: decimal.NewFromInt(250),
	})
	require.NoError(t, err)

	// Overpayment clamps at zero and settles the member.
	assertDec(t, "250", got.TotalPaid)
	assertDec(t, "0", got.Pending)
	assert.Equal(t, string(domain.StatusPaid), got.Status)
}

func TestRecordPaymentValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Hari", "pending", 0, 100, date(2024, time.January, 1))

	_, err := svc.RecordPayment(context.Background(), m.ID, &RecordPaymentInput{
		Amount: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.RecordPayment(context.Background(), 9999, &RecordPaymentInput{
		Amount: decimal.NewFromInt(50),
	})
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestRecordMissedBillForcesPending(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Gita", "paid", 1000, 0, date(2024, time.January, 1))

	got, err := svc.RecordMissedBill(context.Background(), m.ID, &RecordMissedBillInput{
		Amount:       decimal.NewFromInt(250),
		BillingMonth: date(2024, time.March, 15),
	})
	require.NoError(t, err)

	// A settled member owes again once a missed bill is booked.
	assertDec(t, "250", got.Pending)
	assert.Equal(t, string(domain.StatusPending), got.Status)

	var bill models.Bill
	require.NoError(t, db.Where("member_id = ?", m.ID).First(&bill).Error)
	assert.Equal(t, date(2024, time.March, 1), bill.DueDate.UTC())
	assert.Equal(t, string(domain.BillPending), bill.Status)
}

func TestReverseLastPaymentRestoresBalance(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 500, date(2024, time.January, 1))
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, m.ID, &RecordPaymentInput{Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	got, err := svc.ReverseLastPayment(ctx, m.ID)
	require.NoError(t, err)

	assertDec(t, "0", got.TotalPaid)
	assertDec(t, "500", got.Pending)
	assert.Equal(t, string(domain.StatusPending), got.Status)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("member_id = ?", m.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestReverseLastPaymentPicksMostRecent(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 500, date(2024, time.January, 1))
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, m.ID, &RecordPaymentInput{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, m.ID, &RecordPaymentInput{Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)

	got, err := svc.ReverseLastPayment(ctx, m.ID)
	require.NoError(t, err)

	// The 300 entry goes; the earlier 100 stays booked.
	assertDec(t, "100", got.TotalPaid)
	assertDec(t, "400", got.Pending)

	var remaining models.Payment
	require.NoError(t, db.Where("member_id = ?", m.ID).First(&remaining).Error)
	assertDec(t, "100", remaining.Amount)
}

func TestReverseLastPaymentNoPayments(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 500, date(2024, time.January, 1))

	_, err := svc.ReverseLastPayment(context.Background(), m.ID)
	assert.ErrorIs(t, err, domain.ErrNoPaymentsFound)

	// A failed reversal leaves the stored balance untouched.
	assertDec(t, "500", reload(t, db, m.ID).Pending)
}

func TestReverseLastBill(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Gita", "paid", 1000, 0, date(2024, time.January, 1))
	ctx := context.Background()

	_, err := svc.RecordMissedBill(ctx, m.ID, &RecordMissedBillInput{
		Amount:       decimal.NewFromInt(250),
		BillingMonth: date(2024, time.March, 1),
	})
	require.NoError(t, err)

	got, err := svc.ReverseLastBill(ctx, m.ID)
	require.NoError(t, err)

	// Reversing the only bill settles the member again.
	assertDec(t, "0", got.Pending)
	assert.Equal(t, string(domain.StatusPaid), got.Status)

	var count int64
	require.NoError(t, db.Model(&models.Bill{}).Where("member_id = ?", m.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestReverseLastBillNoBills(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Gita", "paid", 0, 0, date(2024, time.January, 1))

	_, err := svc.ReverseLastBill(context.Background(), m.ID)
	assert.ErrorIs(t, err, domain.ErrNoBillsFound)
}

func TestRecordGatewayPaymentIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 500, date(2024, time.January, 1))
	ctx := context.Background()

	_, err := svc.RecordGatewayPayment(ctx, m.ID, decimal.NewFromInt(250), "gw_abc123")
	require.NoError(t, err)

	// Redelivered confirmation must not double-book.
	got, err := svc.RecordGatewayPayment(ctx, m.ID, decimal.NewFromInt(250), "gw_abc123")
	require.NoError(t, err)

	assertDec(t, "250", got.TotalPaid)
	assertDec(t, "250", got.Pending)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("member_id = ?", m.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestMarkBillPaid(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 250, date(2024, time.January, 1))
	ctx := context.Background()

	_, err := svc.RecordMissedBill(ctx, m.ID, &RecordMissedBillInput{
		Amount:       decimal.NewFromInt(250),
		BillingMonth: date(2024, time.March, 1),
	})
	require.NoError(t, err)

	var bill models.Bill
	require.NoError(t, db.Where("member_id = ?", m.ID).First(&bill).Error)

	got, err := svc.MarkBillPaid(ctx, m.ID, bill.ID, decimal.NewFromInt(250))
	require.NoError(t, err)
	assertDec(t, "250", got.TotalPaid)
	assertDec(t, "250", got.Pending)

	require.NoError(t, db.First(&bill, bill.ID).Error)
	assert.Equal(t, string(domain.BillPaid), bill.Status)

	var payment models.Payment
	require.NoError(t, db.Where("member_id = ?", m.ID).First(&payment).Error)
	require.NotNil(t, payment.BillID)
	assert.Equal(t, bill.ID, *payment.BillID)

	// Settling the same bill twice is rejected.
	_, err = svc.MarkBillPaid(ctx, m.ID, bill.ID, decimal.NewFromInt(250))
	assert.ErrorIs(t, err, domain.ErrBillAlreadyPaid)
}

func TestMarkBillPaidNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 250, date(2024, time.January, 1))

	_, err := svc.MarkBillPaid(context.Background(), m.ID, 42, decimal.NewFromInt(250))
	assert.ErrorIs(t, err, domain.ErrBillNotFound)
}

func TestRecalculateUntilDate(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Ram", "pending", 123, 456, date(2020, time.January, 1))
	ctx := context.Background()

	// A stale pending bill that the recalculation must replace.
	stale := models.Bill{
		MemberID: m.ID,
		Amount:   decimal.NewFromInt(999),
		DueDate:  date(2021, time.January, 1),
		Status:   string(domain.BillPending),
	}
	require.NoError(t, db.Create(&stale).Error)

	got, err := svc.recalculateUntilDate(ctx, m.ID, date(2022, time.December, 15), date(2023, time.June, 1))
	require.NoError(t, err)

	// Joined 2020-01 through 2022-12 at 200/month counts as paid.
	assertDec(t, "7200", got.TotalPaid)
	// 2023-01 through 2023-06 at 200/month is owed.
	assertDec(t, "1200", got.Pending)
	assert.Equal(t, string(domain.StatusPending), got.Status)

	var bills []models.Bill
	require.NoError(t, db.Where("member_id = ? AND status = ?", m.ID, string(domain.BillPending)).
		Order("due_date ASC").Find(&bills).Error)
	require.Len(t, bills, 6)
	assert.Equal(t, date(2023, time.January, 1), bills[0].DueDate.UTC())
	assert.Equal(t, date(2023, time.June, 1), bills[5].DueDate.UTC())
	for _, b := range bills {
		assertDec(t, "200", b.Amount)
	}
}

func TestRecalculateFullyPaid(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Ram", "overdue", 0, 900, date(2024, time.April, 1))

	got, err := svc.recalculateUntilDate(context.Background(), m.ID,
		date(2024, time.June, 30), date(2024, time.June, 10))
	require.NoError(t, err)

	// Paid ahead of now: nothing owed, member settles.
	assertDec(t, "750", got.TotalPaid)
	assertDec(t, "0", got.Pending)
	assert.Equal(t, string(domain.StatusPaid), got.Status)
}

func TestRunMonthlyBillingSweep(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	ctx := context.Background()

	a := seedMember(t, db, "Ram", "paid", 1000, 0, date(2024, time.January, 1))
	b := seedMember(t, db, "Sita", "pending", 0, 250, date(2024, time.January, 1))
	dead := seedMember(t, db, "Hari", "deceased", 0, 0, date(2024, time.January, 1))

	result, err := svc.runMonthlyBilling(ctx, date(2024, time.July, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Billed)
	assert.Empty(t, result.Failed)

	// Default monthly amount is 250.
	ma := reload(t, db, a.ID)
	assertDec(t, "250", ma.Pending)
	assert.Equal(t, string(domain.StatusPending), ma.Status)

	assertDec(t, "500", reload(t, db, b.ID).Pending)

	// Deceased members are never billed.
	md := reload(t, db, dead.ID)
	assertDec(t, "0", md.Pending)
	assert.Equal(t, string(domain.StatusDeceased), md.Status)

	var count int64
	require.NoError(t, db.Model(&models.Bill{}).Where("member_id = ?", dead.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	var bill models.Bill
	require.NoError(t, db.Where("member_id = ?", a.ID).First(&bill).Error)
	assert.Equal(t, date(2024, time.July, 1), bill.DueDate.UTC())
	assert.Equal(t, "Monthly dues", bill.Notes)
}

func TestMarkOverdueMembers(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	ctx := context.Background()
	now := date(2024, time.June, 1)

	old := seedMember(t, db, "Ram", "pending", 0, 250, date(2023, time.January, 1))
	recent := seedMember(t, db, "Sita", "pending", 0, 250, date(2024, time.January, 1))
	dead := seedMember(t, db, "Hari", "deceased", 0, 250, date(2023, time.January, 1))

	for _, tc := range []struct {
		memberID uint
		due      time.Time
	}{
		{old.ID, date(2024, time.January, 1)},  // >90 days past due
		{recent.ID, date(2024, time.May, 1)},   // within grace period
		{dead.ID, date(2024, time.January, 1)}, // deceased stays deceased
	} {
		require.NoError(t, db.Create(&models.Bill{
			MemberID: tc.memberID,
			Amount:   decimal.NewFromInt(250),
			DueDate:  tc.due,
			Status:   string(domain.BillPending),
		}).Error)
	}

	marked, err := svc.markOverdueMembers(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	assert.Equal(t, string(domain.StatusOverdue), reload(t, db, old.ID).Status)
	assert.Equal(t, string(domain.StatusPending), reload(t, db, recent.ID).Status)
	assert.Equal(t, string(domain.StatusDeceased), reload(t, db, dead.ID).Status)
}

func TestDeceasedStatusSurvivesBalanceOps(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db)
	m := seedMember(t, db, "Hari", "deceased", 0, 500, date(2023, time.January, 1))
	ctx := context.Background()

	// Manual ops still move the balance but never clear the override.
	got, err := svc.RecordPayment(ctx, m.ID, &RecordPaymentInput{Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)
	assertDec(t, "0", got.Pending)
	assert.Equal(t, string(domain.StatusDeceased), got.Status)

	got, err = svc.RecordMissedBill(ctx, m.ID, &RecordMissedBillInput{
		Amount:       decimal.NewFromInt(250),
		BillingMonth: date(2024, time.January, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusDeceased), got.Status)
}
