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

// Expenditure errors
var (
	ErrExpenditureNotFound = errors.New("expenditure not found")
)

// ExpenditureService handles committee spending entries
type ExpenditureService struct {
	expenditureRepo repositories.ExpenditureRepository
}

// NewExpenditureService creates a new expenditure service
func NewExpenditureService(expenditureRepo repositories.ExpenditureRepository) *ExpenditureService {
	return &ExpenditureService{expenditureRepo: expenditureRepo}
}

// ExpenditureInput represents create/update expenditure input
type ExpenditureInput struct {
	Title   string          `json:"title" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"required,gt=0"`
	SpentOn string          `json:"spent_on" validate:"required"` // YYYY-MM-DD
	Notes   string          `json:"notes,omitempty"`
}

// Create records a new expenditure
func (s *ExpenditureService) Create(ctx context.Context, input *ExpenditureInput, recordedBy uint) (*models.Expenditure, error) {
	if input.Title == "" || !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	spentOn, err := time.Parse("2006-01-02", input.SpentOn)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	exp := &models.Expenditure{
		Title:      input.Title,
		Amount:     input.Amount,
		SpentOn:    spentOn,
		Notes:      input.Notes,
		RecordedBy: recordedBy,
	}
	if err := s.expenditureRepo.Create(ctx, exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// GetByID gets an expenditure by ID
func (s *ExpenditureService) GetByID(ctx context.Context, id uint) (*models.Expenditure, error) {
	exp, err := s.expenditureRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenditureNotFound
		}
		return nil, err
	}
	return exp, nil
}

// Update updates an expenditure
func (s *ExpenditureService) Update(ctx context.Context, id uint, input *ExpenditureInput) (*models.Expenditure, error) {
	exp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		exp.Title = input.Title
	}
	if input.Amount.IsPositive() {
		exp.Amount = input.Amount
	}
	if input.SpentOn != "" {
		spentOn, err := time.Parse("2006-01-02", input.SpentOn)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		exp.SpentOn = spentOn
	}
	if input.Notes != "" {
		exp.Notes = input.Notes
	}

	if err := s.expenditureRepo.Update(ctx, exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// Delete removes an expenditure
func (s *ExpenditureService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.expenditureRepo.Delete(ctx, id)
}

// List lists expenditures with pagination
func (s *ExpenditureService) List(ctx context.Context, offset, limit int) ([]*models.Expenditure, int64, error) {
	return s.expenditureRepo.List(ctx, offset, limit)
}
