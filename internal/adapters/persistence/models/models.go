package models

import (
	"time"

	"samiti-duespay/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table (portal accounts, admin and member)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	MemberID  *uint          `gorm:"uniqueIndex" json:"member_id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'MEMBER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	MemberID  *uint     `json:"member_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		MemberID:  u.MemberID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Billing Tables
// ============================================================

// Member is the balance record every reconciliation
// operation reads and writes. TotalPaid/Pending are running counters;
// bills and payments justify them as the audit trail.
type Member struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"size:100;not null;index" json:"name"`
	Phone      string          `gorm:"size:20" json:"phone"`
	JoinedDate time.Time       `gorm:"type:date;not null" json:"joined_date"`
	TotalPaid  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_paid"`
	Pending    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"pending"`
	Status     string          `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes      string          `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Bills    []Bill    `gorm:"foreignKey:MemberID" json:"bills,omitempty"`
	Payments []Payment `gorm:"foreignKey:MemberID" json:"payments,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

// MemberResponse DTO
type MemberResponse struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	JoinedDate time.Time       `json:"joined_date"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	Pending    decimal.Decimal `json:"pending"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:         m.ID,
		Name:       m.Name,
		Phone:      m.Phone,
		JoinedDate: m.JoinedDate,
		TotalPaid:  m.TotalPaid,
		Pending:    m.Pending,
		Status:     m.Status,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
	}
}

// ApplyStatus sets the member status unless the deceased override is in
// effect. Deceased is terminal and only an explicit admin action sets or
// clears it.
func (m *Member) ApplyStatus(status domain.MemberStatus) {
	if m.Status == string(domain.StatusDeceased) {
		return
	}
	m.Status = string(status)
}

// Bill is one row per billed month, or a manual missed-bill
// entry. Replaced wholesale by a balance recalculation.
type Bill struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	MemberID  uint            `gorm:"not null;index" json:"member_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate   time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Status    string          `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes     string          `gorm:"type:text" json:"notes"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Bill) TableName() string {
	return "bills"
}

// Payment is append-only except for the reverse-last-payment
// correction. GatewayPaymentID is unique so a redelivered webhook
// confirmation cannot double-book.
type Payment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	MemberID         uint            `gorm:"not null;index" json:"member_id"`
	BillID           *uint           `gorm:"index" json:"bill_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date             time.Time       `gorm:"type:date;not null" json:"date"`
	Source           string          `gorm:"size:20;not null;default:'manual'" json:"source"`
	GatewayPaymentID *string         `gorm:"size:100;uniqueIndex" json:"gateway_payment_id"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Bill   *Bill   `gorm:"foreignKey:BillID" json:"bill,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// BillingSettings singleton row (ID is always 1)
type BillingSettings struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	MonthlyAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monthly_amount"`
	RemindersEnabled bool            `gorm:"default:true" json:"reminders_enabled"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BillingSettings) TableName() string {
	return "billing_settings"
}

// Expenditure is a committee spending entry
type Expenditure struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Title      string          `gorm:"size:200;not null" json:"title"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	SpentOn    time.Time       `gorm:"type:date;not null;index" json:"spent_on"`
	Notes      string          `gorm:"type:text" json:"notes"`
	RecordedBy uint            `gorm:"not null" json:"recorded_by"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`

	Recorder *User `gorm:"foreignKey:RecordedBy" json:"recorder,omitempty"`
}

func (Expenditure) TableName() string {
	return "expenditures"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Member{},
		&Bill{},
		&Payment{},
		&BillingSettings{},
		&Expenditure{},
	)
}
