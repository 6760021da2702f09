package services

import (
	"context"
	"errors"
	"time"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/adapters/persistence/repositories"
	"samiti-duespay/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService aggregates portal figures for the admin and member
// dashboards. Read-only; balances are never written here.
type DashboardService struct {
	db          *gorm.DB
	memberRepo  repositories.MemberRepository
	billRepo    repositories.BillRepository
	paymentRepo repositories.PaymentRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	db *gorm.DB,
	memberRepo repositories.MemberRepository,
	billRepo repositories.BillRepository,
	paymentRepo repositories.PaymentRepository,
) *DashboardService {
	return &DashboardService{
		db:          db,
		memberRepo:  memberRepo,
		billRepo:    billRepo,
		paymentRepo: paymentRepo,
	}
}

// AdminDashboard is the committee-wide summary
type AdminDashboard struct {
	MembersByStatus  map[string]int64   `json:"members_by_status"`
	TotalMembers     int64              `json:"total_members"`
	TotalCollected   decimal.Decimal    `json:"total_collected"`
	TotalOutstanding decimal.Decimal    `json:"total_outstanding"`
	TotalSpent       decimal.Decimal    `json:"total_spent"`
	RecentPayments   []*models.Payment  `json:"recent_payments"`
}

// GetAdminDashboard builds the admin summary
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	counts, err := s.memberRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var totalMembers int64
	for _, c := range counts {
		totalMembers += c
	}

	collected, err := s.sumColumn(ctx, &models.Payment{}, "amount")
	if err != nil {
		return nil, err
	}
	outstanding, err := s.sumColumn(ctx, &models.Member{}, "pending")
	if err != nil {
		return nil, err
	}
	spent, err := s.sumColumn(ctx, &models.Expenditure{}, "amount")
	if err != nil {
		return nil, err
	}

	recent, err := s.paymentRepo.Recent(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &AdminDashboard{
		MembersByStatus:  counts,
		TotalMembers:     totalMembers,
		TotalCollected:   collected,
		TotalOutstanding: outstanding,
		TotalSpent:       spent,
		RecentPayments:   recent,
	}, nil
}

// MemberDashboard is what a signed-in member sees
type MemberDashboard struct {
	Member       *models.MemberResponse `json:"member"`
	OwedSince    *time.Time             `json:"owed_since,omitempty"`
	PendingBills []*models.Bill         `json:"pending_bills"`
	Payments     []*models.Payment      `json:"payments"`
}

// GetMemberDashboard builds the member-facing overview: own balance,
// unpaid bills ascending by due date, recent payment history.
func (s *DashboardService) GetMemberDashboard(ctx context.Context, memberID uint) (*MemberDashboard, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	pendingBills, err := s.billRepo.PendingByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	owedSince, err := s.billRepo.OldestPendingDueDate(ctx, memberID)
	if err != nil {
		return nil, err
	}

	payments, _, err := s.paymentRepo.ListByMember(ctx, memberID, 0, 10)
	if err != nil {
		return nil, err
	}

	return &MemberDashboard{
		Member:       member.ToResponse(),
		OwedSince:    owedSince,
		PendingBills: pendingBills,
		Payments:     payments,
	}, nil
}

// sumColumn sums one decimal column over a whole table
func (s *DashboardService) sumColumn(ctx context.Context, model interface{}, column string) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := s.db.WithContext(ctx).
		Model(model).
		Select("COALESCE(SUM(" + column + "), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
