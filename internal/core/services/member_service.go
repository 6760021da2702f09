package services

import (
	"context"
	"errors"
	"log"
	"time"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/adapters/persistence/repositories"
	"samiti-duespay/internal/core/billing"
	"samiti-duespay/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Member service errors
var (
	ErrMemberAlreadyDeceased = errors.New("member already marked deceased")
)

// MemberService handles member registration and lifecycle
type MemberService struct {
	db         *gorm.DB
	memberRepo repositories.MemberRepository
}

// NewMemberService creates a new member service
func NewMemberService(db *gorm.DB, memberRepo repositories.MemberRepository) *MemberService {
	return &MemberService{db: db, memberRepo: memberRepo}
}

// RegisterMemberInput represents member registration input
type RegisterMemberInput struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone,omitempty"`
	JoinedDate string `json:"joined_date" validate:"required"` // YYYY-MM-DD
	Notes      string `json:"notes,omitempty"`
}

// Register creates a member and accrues dues from the joined date to
// now, one pending bill per elapsed month, in a single transaction.
func (s *MemberService) Register(ctx context.Context, input *RegisterMemberInput) (*models.Member, error) {
	if input.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	joined, err := time.Parse("2006-01-02", input.JoinedDate)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return s.register(ctx, input, joined, time.Now().UTC())
}

func (s *MemberService) register(ctx context.Context, input *RegisterMemberInput, joined, now time.Time) (*models.Member, error) {
	accrued, err := billing.CalculateDues(joined, now)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		Name:       input.Name,
		Phone:      input.Phone,
		JoinedDate: joined,
		TotalPaid:  decimal.Zero,
		Pending:    accrued.Total,
		Status:     string(domain.StatusForPending(accrued.Total)),
		Notes:      input.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		for _, due := range accrued.Breakdown {
			bill := models.Bill{
				MemberID: member.ID,
				Amount:   due.Fee,
				DueDate:  due.Month,
				Status:   string(domain.BillPending),
				Notes:    "Monthly dues",
			}
			if err := tx.Create(&bill).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Member registered: %s (joined %s, %s pending)",
		member.Name, joined.Format("2006-01-02"), member.Pending)
	return member, nil
}

// GetByID gets a member by ID
func (s *MemberService) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// ListInput represents member list input
type ListInput struct {
	Offset int
	Limit  int
	Status string
	Search string
}

// List lists members with pagination
func (s *MemberService) List(ctx context.Context, input *ListInput) ([]*models.Member, int64, error) {
	if input.Status != "" && !domain.MemberStatus(input.Status).Valid() {
		return nil, 0, domain.ErrInvalidInput
	}
	filter := repositories.MemberListFilter{Status: input.Status, Search: input.Search}
	return s.memberRepo.List(ctx, filter, input.Offset, input.Limit)
}

// UpdateMemberInput represents member profile update input
type UpdateMemberInput struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Update updates a member's profile fields. Balances and status are
// owned by the billing service and are not touched here.
func (s *MemberService) Update(ctx context.Context, id uint, input *UpdateMemberInput) (*models.Member, error) {
	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		member.Name = input.Name
	}
	if input.Phone != "" {
		member.Phone = input.Phone
	}
	if input.Notes != "" {
		member.Notes = input.Notes
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// MarkDeceased sets the terminal deceased status. Billing never clears
// it; the monthly sweep stops billing the member from here on.
func (s *MemberService) MarkDeceased(ctx context.Context, id uint) (*models.Member, error) {
	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member.Status == string(domain.StatusDeceased) {
		return nil, ErrMemberAlreadyDeceased
	}

	member.Status = string(domain.StatusDeceased)
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	log.Printf("✅ Member %d marked deceased", id)
	return member, nil
}

// Delete removes a member together with their bills, payments and
// portal account in one transaction.
func (s *MemberService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("member_id = ?", id).Delete(&models.Bill{}).Error; err != nil {
			return err
		}
		if err := tx.Where("member_id = ?", id).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Member{}, id).Error
	})
	if err != nil {
		return err
	}

	log.Printf("✅ Member %d deleted with dependent records", id)
	return nil
}
