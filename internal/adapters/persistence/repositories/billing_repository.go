package repositories

import (
	"context"
	"time"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/core/domain"

	"gorm.io/gorm"
)

// billRepository implements BillRepository interface
type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

// GetByID gets a bill by ID
func (r *billRepository) GetByID(ctx context.Context, id uint) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&bill).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// ListByMember lists a member's bills with pagination, newest due date first
func (r *billRepository) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Bill, int64, error) {
	var bills []*models.Bill
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Bill{}).Where("member_id = ?", memberID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("due_date DESC").Offset(offset).Limit(limit).Find(&bills).Error
	if err != nil {
		return nil, 0, err
	}

	return bills, total, nil
}

// PendingByMember lists a member's unpaid bills ascending by due date
func (r *billRepository) PendingByMember(ctx context.Context, memberID uint) ([]*models.Bill, error) {
	var bills []*models.Bill
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND status = ?", memberID, string(domain.BillPending)).
		Order("due_date ASC").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

// OldestPendingDueDate returns the due date of the member's oldest unpaid
// bill, or nil when everything is settled.
func (r *billRepository) OldestPendingDueDate(ctx context.Context, memberID uint) (*time.Time, error) {
	var bill models.Bill
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND status = ?", memberID, string(domain.BillPending)).
		Order("due_date ASC").
		First(&bill).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &bill.DueDate, nil
}

// paymentRepository implements PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// ListByMember lists a member's payments with pagination, newest first
func (r *paymentRepository) ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{}).Where("member_id = ?", memberID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// Recent lists the most recent payments across all members
func (r *paymentRepository) Recent(ctx context.Context, limit int) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Preload("Member").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
