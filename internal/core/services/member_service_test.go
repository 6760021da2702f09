package services

import (
	"context"
	"testing"
	"time"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/adapters/persistence/repositories"

	"samiti-duespay/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMemberService(t *testing.T, db *gorm.DB) *MemberService {
	t.Helper()
	return NewMemberService(db, repositories.NewMemberRepository(db))
}

func TestRegisterAccruesDuesFromJoinedDate(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(t, db)

	// Joined 2006-11, registered 2007-06: six months at 30, two at 50.
	got, err := svc.register(context.Background(), &RegisterMemberInput{
		Name:       "Ram Bahadur",
		Phone:      "9841000000",
		JoinedDate: "2006-11-10",
	}, date(2006, time.November, 10), date(2007, time.June, 20))
	require.NoError(t, err)

	assertDec(t, "280", got.Pending)
	assertDec(t, "0", got.TotalPaid)
	assert.Equal(t, string(domain.StatusPending), got.Status)

	var bills []models.Bill
	require.NoError(t, db.Where("member_id = ?", got.ID).Order("due_date ASC").Find(&bills).Error)
	require.Len(t, bills, 8)
	assert.Equal(t, date(2006, time.November, 1), bills[0].DueDate.UTC())
	assertDec(t, "30", bills[0].Amount)
	assert.Equal(t, date(2007, time.June, 1), bills[7].DueDate.UTC())
	assertDec(t, "50", bills[7].Amount)
}

func TestRegisterSameMonth(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(t, db)

	got, err := svc.register(context.Background(), &RegisterMemberInput{
		Name:       "Sita",
		JoinedDate: "2024-06-05",
	}, date(2024, time.June, 5), date(2024, time.June, 20))
	require.NoError(t, err)

	// One billed month at the current tier.
	assertDec(t, "250", got.Pending)

	var count int64
	require.NoError(t, db.Model(&models.Bill{}).Where("member_id = ?", got.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterMemberInput{JoinedDate: "2024-01-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Register(ctx, &RegisterMemberInput{Name: "Ram", JoinedDate: "01/05/2024"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(t, db)

	_, err := svc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(t, db)

	_, _, err := svc.List(context.Background(), &ListInput{Status: "vanished", Limit: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListFiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(t, db)

	seedMember(t, db, "Ram", "paid", 0, 0, date(2024, time.January, 1))
	seedMember(t, db, "Sita", "pending", 0, 250, date(2024, time.January, 1))
	seedMember(t, db, "Hari", "pending", 0, 500, date(2024, time.January, 1))

	members, total, err := svc.List(context.Background(), &ListInput{Status: "pending", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, members, 2)
}

func TestUpdateTouchesProfileOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(t, db)
	m := seedMember(t, db, "Ram", "pending", 100, 400, date(2024, time.January, 1))

	got, err := svc.Update(context.Background(), m.ID, &UpdateMemberInput{
		Name:  "Ram Bahadur",
		Phone: "9841000000",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ram Bahadur", got.Name)
	assertDec(t, "100", got.TotalPaid)
	assertDec(t, "400", got.Pending)
	assert.Equal(t, string(domain.StatusPending), got.Status)
}

func TestMarkDeceasedIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(t, db)
	m := seedMember(t, db, "Hari", "pending", 0, 250, date(2023, time.January, 1))
	ctx := context.Background()

	got, err := svc.MarkDeceased(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusDeceased), got.Status)

	_, err = svc.MarkDeceased(ctx, m.ID)
	assert.ErrorIs(t, err, ErrMemberAlreadyDeceased)
}

func TestDeleteRemovesDependentRecords(t *testing.T) {
	db := newTestDB(t)
	svc := newMemberService(t, db)
	m := seedMember(t, db, "Ram", "pending", 0, 250, date(2024, time.January, 1))
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Bill{
		MemberID: m.ID, Amount: m.Pending, DueDate: date(2024, time.January, 1),
		Status: string(domain.BillPending),
	}).Error)
	require.NoError(t, db.Create(&models.Payment{
		MemberID: m.ID, Amount: m.Pending, Date: date(2024, time.February, 1),
		Source: string(domain.SourceManual),
	}).Error)
	memberID := m.ID
	require.NoError(t, db.Create(&models.User{
		Username: "ram", Email: "ram@example.org", Password: "x",
		Role: string(domain.RoleMember), MemberID: &memberID, IsActive: true,
	}).Error)

	require.NoError(t, svc.Delete(ctx, m.ID))

	for _, model := range []interface{}{&models.Bill{}, &models.Payment{}, &models.User{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("member_id = ?", m.ID).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	}

	_, err := svc.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}
