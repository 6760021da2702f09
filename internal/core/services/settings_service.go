package services

import (
	"context"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/adapters/persistence/repositories"
	"samiti-duespay/internal/core/domain"

	"github.com/shopspring/decimal"
)

// SettingsService reads and updates the singleton billing settings row.
// Callers that bill (the sweep, the cron trigger) read the settings once
// per invocation rather than holding a process-wide copy.
type SettingsService struct {
	settingsRepo repositories.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repositories.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// Get returns the current billing settings
func (s *SettingsService) Get(ctx context.Context) (*models.BillingSettings, error) {
	return s.settingsRepo.Get(ctx)
}

// UpdateSettingsInput represents settings update input
type UpdateSettingsInput struct {
	MonthlyAmount    decimal.Decimal `json:"monthly_amount" validate:"required,gt=0"`
	RemindersEnabled bool            `json:"reminders_enabled"`
}

// Update replaces the billing settings
func (s *SettingsService) Update(ctx context.Context, input *UpdateSettingsInput) (*models.BillingSettings, error) {
	if !input.MonthlyAmount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.MonthlyAmount = input.MonthlyAmount
	settings.RemindersEnabled = input.RemindersEnabled
	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}
