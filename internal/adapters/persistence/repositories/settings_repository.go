package repositories

import (
	"context"

	"samiti-duespay/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// settingsID is the primary key of the singleton billing settings row.
const settingsID = 1

// settingsRepository implements SettingsRepository interface
type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the billing settings, creating the default row on first use
func (r *settingsRepository) Get(ctx context.Context) (*models.BillingSettings, error) {
	settings := models.BillingSettings{
		ID:               settingsID,
		MonthlyAmount:    decimal.NewFromInt(250),
		RemindersEnabled: true,
	}
	err := r.db.WithContext(ctx).
		Where("id = ?", settingsID).
		FirstOrCreate(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update updates the billing settings
func (r *settingsRepository) Update(ctx context.Context, settings *models.BillingSettings) error {
	settings.ID = settingsID
	return r.db.WithContext(ctx).Save(settings).Error
}
