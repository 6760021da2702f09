package repositories

import (
	"context"
	"time"

	"samiti-duespay/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByMemberID(ctx context.Context, memberID uint) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByMemberID(ctx context.Context, memberID uint) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// MemberListFilter narrows member list queries.
type MemberListFilter struct {
	Status string
	Search string
}

// MemberRepository defines member repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	List(ctx context.Context, filter MemberListFilter, offset, limit int) ([]*models.Member, int64, error)
	ListActive(ctx context.Context) ([]*models.Member, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// BillRepository defines bill repository interface
type BillRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Bill, error)
	ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Bill, int64, error)
	PendingByMember(ctx context.Context, memberID uint) ([]*models.Bill, error)
	OldestPendingDueDate(ctx context.Context, memberID uint) (*time.Time, error)
}

// PaymentRepository defines payment repository interface
type PaymentRepository interface {
	ListByMember(ctx context.Context, memberID uint, offset, limit int) ([]*models.Payment, int64, error)
	Recent(ctx context.Context, limit int) ([]*models.Payment, error)
}

// SettingsRepository defines billing settings repository interface
type SettingsRepository interface {
	Get(ctx context.Context) (*models.BillingSettings, error)
	Update(ctx context.Context, settings *models.BillingSettings) error
}

// ExpenditureRepository defines expenditure repository interface
type ExpenditureRepository interface {
	Create(ctx context.Context, exp *models.Expenditure) error
	GetByID(ctx context.Context, id uint) (*models.Expenditure, error)
	Update(ctx context.Context, exp *models.Expenditure) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Expenditure, int64, error)
}
