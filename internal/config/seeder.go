package config

import (
	"log"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/core/domain"
	"samiti-duespay/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedData seeds the default admin account and billing settings
func SeedData(db *gorm.DB) error {
	if err := seedAdminUser(db); err != nil {
		return err
	}
	if err := seedBillingSettings(db); err != nil {
		return err
	}
	log.Println("✅ Seed data checked")
	return nil
}

// seedAdminUser creates the bootstrap admin account once
func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	// Change this password immediately after first login
	hashed, err := password.Hash(getEnv("ADMIN_PASSWORD", "changeme123"))
	if err != nil {
		return err
	}

	admin := models.User{
		Username: getEnv("ADMIN_USERNAME", "admin"),
		Email:    getEnv("ADMIN_EMAIL", "admin@duespay.local"),
		Password: hashed,
		Role:     string(domain.RoleAdmin),
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Bootstrap admin account created: %s", admin.Username)
	return nil
}

// seedBillingSettings creates the singleton settings row once
func seedBillingSettings(db *gorm.DB) error {
	settings := models.BillingSettings{
		ID:               1,
		MonthlyAmount:    decimal.NewFromInt(250),
		RemindersEnabled: true,
	}
	return db.Where("id = ?", 1).FirstOrCreate(&settings).Error
}
