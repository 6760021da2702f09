package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/adapters/persistence/repositories"
	"samiti-duespay/internal/core/billing"
	"samiti-duespay/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// overdueAfter is how far past due the oldest unpaid bill must be before
// the daily job marks a member overdue.
const overdueAfter = 90 * 24 * time.Hour

// BillingService applies payments, bills, corrections and recalculations
// to member balances. Every operation runs as one transaction against the
// member row: the balance update and its ledger records commit together
// or not at all.
type BillingService struct {
	db           *gorm.DB
	settingsRepo repositories.SettingsRepository
}

// NewBillingService creates a new billing service
func NewBillingService(db *gorm.DB, settingsRepo repositories.SettingsRepository) *BillingService {
	return &BillingService{db: db, settingsRepo: settingsRepo}
}

// RecordPaymentInput represents record payment input
type RecordPaymentInput struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Date   time.Time       `json:"date"`
	Notes  string          `json:"notes,omitempty"`
}

// RecordMissedBillInput represents missed bill input
type RecordMissedBillInput struct {
	Amount       decimal.Decimal `json:"amount" validate:"required,gt=0"`
	BillingMonth time.Time       `json:"billing_month" validate:"required"`
	Notes        string          `json:"notes,omitempty"`
}

// RecordPayment adds a manual payment to a member's balance:
// totalPaid += amount, pending is reduced but never below zero,
// status re-derived from the remaining pending.
func (s *BillingService) RecordPayment(ctx context.Context, memberID uint, input *RecordPaymentInput) (*models.Member, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var member *models.Member
	err := s.inMemberTx(ctx, memberID, func(tx *gorm.DB, m *models.Member) error {
		applyPayment(m, input.Amount)

		payment := &models.Payment{
			MemberID: m.ID,
			Amount:   input.Amount,
			Date:     date,
			Source:   string(domain.SourceManual),
			Notes:    input.Notes,
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		member = m
		return tx.Save(m).Error
	})
	return member, err
}

// RecordGatewayPayment records a confirmed gateway payment. A replayed
// confirmation with a known gateway payment ID is a safe no-op.
func (s *BillingService) RecordGatewayPayment(ctx context.Context, memberID uint, amount decimal.Decimal, gatewayPaymentID string) (*models.Member, error) {
	if !amount.IsPositive() || gatewayPaymentID == "" {
		return nil, domain.ErrInvalidInput
	}

	var member *models.Member
	err := s.inMemberTx(ctx, memberID, func(tx *gorm.DB, m *models.Member) error {
		var existing models.Payment
		err := tx.Where("gateway_payment_id = ?", gatewayPaymentID).First(&existing).Error
		if err == nil {
			// Already booked; the gateway redelivered the webhook.
			member = m
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		applyPayment(m, amount)

		payment := &models.Payment{
			MemberID:         m.ID,
			Amount:           amount,
			Date:             time.Now().UTC(),
			Source:           string(domain.SourceGateway),
			GatewayPaymentID: &gatewayPaymentID,
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		member = m
		return tx.Save(m).Error
	})
	return member, err
}

// RecordMissedBill adds a bill the regular sweep missed:
// pending += amount and status is forced to pending even when the
// member was previously settled.
func (s *BillingService) RecordMissedBill(ctx context.Context, memberID uint, input *RecordMissedBillInput) (*models.Member, error) {
	if !input.Amount.IsPositive() || input.BillingMonth.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	var member *models.Member
	err := s.inMemberTx(ctx, memberID, func(tx *gorm.DB, m *models.Member) error {
		m.Pending = m.Pending.Add(input.Amount)
		m.ApplyStatus(domain.StatusPending)

		bill := &models.Bill{
			MemberID: m.ID,
			Amount:   input.Amount,
			DueDate:  billing.MonthStart(input.BillingMonth),
			Status:   string(domain.BillPending),
			Notes:    input.Notes,
		}
		if err := tx.Create(bill).Error; err != nil {
			return err
		}
		member = m
		return tx.Save(m).Error
	})
	return member, err
}

// ReverseLastPayment deletes the member's most recently created payment
// and undoes its balance effect. Tie-break is creation order, not the
// payment date the admin entered.
func (s *BillingService) ReverseLastPayment(ctx context.Context, memberID uint) (*models.Member, error) {
	var member *models.Member
	err := s.inMemberTx(ctx, memberID, func(tx *gorm.DB, m *models.Member) error {
		var payment models.Payment
		err := tx.Where("member_id = ?", m.ID).
			Order("created_at DESC, id DESC").
			First(&payment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNoPaymentsFound
			}
			return err
		}

		if err := tx.Delete(&payment).Error; err != nil {
			return err
		}

		m.TotalPaid = floorZero(m.TotalPaid.Sub(payment.Amount))
		m.Pending = m.Pending.Add(payment.Amount)
		m.ApplyStatus(domain.StatusPending)

		member = m
		return tx.Save(m).Error
	})
	return member, err
}

// ReverseLastBill deletes the member's most recently created bill and
// undoes its balance effect; status is re-derived from the new pending.
func (s *BillingService) ReverseLastBill(ctx context.Context, memberID uint) (*models.Member, error) {
	var member *models.Member
	err := s.inMemberTx(ctx, memberID, func(tx *gorm.DB, m *models.Member) error {
		var bill models.Bill
		err := tx.Where("member_id = ?", m.ID).
			Order("created_at DESC, id DESC").
			First(&bill).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNoBillsFound
			}
			return err
		}

		if err := tx.Delete(&bill).Error; err != nil {
			return err
		}

		m.Pending = floorZero(m.Pending.Sub(bill.Amount))
		m.ApplyStatus(domain.StatusForPending(m.Pending))

		member = m
		return tx.Save(m).Error
	})
	return member, err
}

// RecalculateUntilDate overwrites a member's running totals from the fee
// schedule alone: everything through paidUntil counts as paid, everything
// from the following month to now is owed. The member's unpaid bills are
// replaced by the recomputed monthly breakdown in the same transaction;
// paid bills and payment history are left untouched.
func (s *BillingService) RecalculateUntilDate(ctx context.Context, memberID uint, paidUntil time.Time) (*models.Member, error) {
	return s.recalculateUntilDate(ctx, memberID, paidUntil, time.Now().UTC())
}

func (s *BillingService) recalculateUntilDate(ctx context.Context, memberID uint, paidUntil, now time.Time) (*models.Member, error) {
	if paidUntil.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	var member *models.Member
	err := s.inMemberTx(ctx, memberID, func(tx *gorm.DB, m *models.Member) error {
		paid, err := billing.CalculateDues(m.JoinedDate, billing.MonthEnd(paidUntil))
		if err != nil {
			return err
		}
		owed, err := billing.CalculateDues(billing.NextMonth(paidUntil), now)
		if err != nil {
			return err
		}

		m.TotalPaid = paid.Total
		m.Pending = owed.Total
		m.ApplyStatus(domain.StatusForPending(owed.Total))

		err = tx.Where("member_id = ? AND status = ?", m.ID, string(domain.BillPending)).
			Delete(&models.Bill{}).Error
		if err != nil {
			return err
		}

		for _, due := range owed.Breakdown {
			bill := models.Bill{
				MemberID: m.ID,
				Amount:   due.Fee,
				DueDate:  due.Month,
				Status:   string(domain.BillPending),
				Notes:    "Balance recalculation",
			}
			if err := tx.Create(&bill).Error; err != nil {
				return err
			}
		}

		member = m
		return tx.Save(m).Error
	})
	return member, err
}

// MarkBillPaid settles a named bill: same balance update as a manual
// payment, plus the bill flips to paid and the payment references it.
func (s *BillingService) MarkBillPaid(ctx context.Context, memberID, billID uint, amount decimal.Decimal) (*models.Member, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	var member *models.Member
	err := s.inMemberTx(ctx, memberID, func(tx *gorm.DB, m *models.Member) error {
		var bill models.Bill
		err := tx.Where("id = ? AND member_id = ?", billID, m.ID).First(&bill).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBillNotFound
			}
			return err
		}
		if bill.Status == string(domain.BillPaid) {
			return domain.ErrBillAlreadyPaid
		}

		bill.Status = string(domain.BillPaid)
		if err := tx.Save(&bill).Error; err != nil {
			return err
		}

		applyPayment(m, amount)

		payment := &models.Payment{
			MemberID: m.ID,
			BillID:   &bill.ID,
			Amount:   amount,
			Date:     time.Now().UTC(),
			Source:   string(domain.SourceManual),
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		member = m
		return tx.Save(m).Error
	})
	return member, err
}

// SweepResult is the outcome of one monthly billing pass.
type SweepResult struct {
	Billed int      `json:"billed"`
	Failed []uint   `json:"failed,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// RunMonthlyBilling adds one month's fee to every active member and
// creates the matching bill. Deceased members are filtered out. One
// member's failure is logged and does not abort the sweep; each member
// is its own transaction.
func (s *BillingService) RunMonthlyBilling(ctx context.Context) (*SweepResult, error) {
	return s.runMonthlyBilling(ctx, time.Now().UTC())
}

func (s *BillingService) runMonthlyBilling(ctx context.Context, now time.Time) (*SweepResult, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	monthly := settings.MonthlyAmount
	dueDate := billing.MonthStart(now)

	var memberIDs []uint
	err = s.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("status <> ?", string(domain.StatusDeceased)).
		Order("id ASC").
		Pluck("id", &memberIDs).Error
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, id := range memberIDs {
		err := s.inMemberTx(ctx, id, func(tx *gorm.DB, m *models.Member) error {
			m.Pending = m.Pending.Add(monthly)
			m.ApplyStatus(domain.StatusPending)

			bill := &models.Bill{
				MemberID: m.ID,
				Amount:   monthly,
				DueDate:  dueDate,
				Status:   string(domain.BillPending),
				Notes:    "Monthly dues",
			}
			if err := tx.Create(bill).Error; err != nil {
				return err
			}
			return tx.Save(m).Error
		})
		if err != nil {
			log.Printf("⚠️ Monthly billing failed for member %d: %v", id, err)
			result.Failed = append(result.Failed, id)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Billed++
	}

	log.Printf("✅ Monthly billing sweep: %d billed, %d failed", result.Billed, len(result.Failed))
	return result, nil
}

// MarkOverdueMembers flags members whose oldest unpaid bill is more than
// 90 days past due. Deceased members keep their status.
func (s *BillingService) MarkOverdueMembers(ctx context.Context) (int, error) {
	return s.markOverdueMembers(ctx, time.Now().UTC())
}

func (s *BillingService) markOverdueMembers(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-overdueAfter)

	var memberIDs []uint
	err := s.db.WithContext(ctx).
		Model(&models.Bill{}).
		Distinct("bills.member_id").
		Joins("JOIN members ON members.id = bills.member_id").
		Where("bills.status = ? AND bills.due_date < ?", string(domain.BillPending), cutoff).
		Where("members.status = ?", string(domain.StatusPending)).
		Pluck("bills.member_id", &memberIDs).Error
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, id := range memberIDs {
		err := s.inMemberTx(ctx, id, func(tx *gorm.DB, m *models.Member) error {
			m.ApplyStatus(domain.StatusOverdue)
			return tx.Save(m).Error
		})
		if err != nil {
			log.Printf("⚠️ Failed to mark member %d overdue: %v", id, err)
			continue
		}
		marked++
	}
	return marked, nil
}

// inMemberTx runs fn inside one transaction holding the member row,
// retrying once on a write conflict. Any error rolls the whole
// operation back, leaving the stored balance unchanged.
func (s *BillingService) inMemberTx(ctx context.Context, memberID uint, fn func(tx *gorm.DB, m *models.Member) error) error {
	run := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var member models.Member
			query := tx
			// sqlite has no row locks; its single writer serializes us.
			if tx.Dialector.Name() != "sqlite" {
				query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
			}
			if err := query.Where("id = ?", memberID).First(&member).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrMemberNotFound
				}
				return err
			}
			return fn(tx, &member)
		})
	}

	err := run()
	if err != nil && isLockConflict(err) {
		log.Printf("⚠️ Retrying balance update for member %d after conflict: %v", memberID, err)
		err = run()
	}
	return err
}

// isLockConflict reports whether err looks like a concurrent write
// collision worth one automatic retry.
func isLockConflict(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Deadlock found") ||
		strings.Contains(msg, "Lock wait timeout") ||
		strings.Contains(msg, "database is locked")
}

// applyPayment applies the shared balance effect of any funds-received
// event: pending never goes negative and status is re-derived.
func applyPayment(m *models.Member, amount decimal.Decimal) {
	m.TotalPaid = m.TotalPaid.Add(amount)
	m.Pending = floorZero(m.Pending.Sub(amount))
	m.ApplyStatus(domain.StatusForPending(m.Pending))
}

// floorZero clamps a decimal at zero.
func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
