package repositories

import (
	"context"

	"samiti-duespay/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// expenditureRepository implements ExpenditureRepository interface
type expenditureRepository struct {
	db *gorm.DB
}

// NewExpenditureRepository creates a new expenditure repository
func NewExpenditureRepository(db *gorm.DB) ExpenditureRepository {
	return &expenditureRepository{db: db}
}

// Create creates a new expenditure
func (r *expenditureRepository) Create(ctx context.Context, exp *models.Expenditure) error {
	return r.db.WithContext(ctx).Create(exp).Error
}

// GetByID gets an expenditure by ID
func (r *expenditureRepository) GetByID(ctx context.Context, id uint) (*models.Expenditure, error) {
	var exp models.Expenditure
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&exp).Error
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// Update updates an expenditure
func (r *expenditureRepository) Update(ctx context.Context, exp *models.Expenditure) error {
	return r.db.WithContext(ctx).Save(exp).Error
}

// Delete soft deletes an expenditure
func (r *expenditureRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Expenditure{}, id).Error
}

// List lists expenditures with pagination, most recent spend first
func (r *expenditureRepository) List(ctx context.Context, offset, limit int) ([]*models.Expenditure, int64, error) {
	var exps []*models.Expenditure
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Expenditure{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("spent_on DESC").
		Offset(offset).
		Limit(limit).
		Find(&exps).Error
	if err != nil {
		return nil, 0, err
	}

	return exps, total, nil
}
