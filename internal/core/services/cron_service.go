package services

import (
	"context"
	"log"

	"samiti-duespay/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService owns the scheduled billing triggers: the monthly dues
// sweep on the 1st and a daily pass that flags overdue members and,
// when enabled in the billing settings, logs payment reminders.
type CronService struct {
	cron             *cron.Cron
	billingService   *BillingService
	settingsRepo     repositories.SettingsRepository
	memberRepo       repositories.MemberRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(
	billingService *BillingService,
	settingsRepo repositories.SettingsRepository,
	memberRepo repositories.MemberRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *CronService {
	return &CronService{
		cron:             cron.New(),
		billingService:   billingService,
		settingsRepo:     settingsRepo,
		memberRepo:       memberRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() {
	// Monthly dues sweep, 02:00 on the 1st
	s.cron.AddFunc("0 2 1 * *", func() {
		ctx := context.Background()
		result, err := s.billingService.RunMonthlyBilling(ctx)
		if err != nil {
			log.Printf("❌ Monthly billing sweep failed: %v", err)
			return
		}
		log.Printf("✅ Monthly billing sweep billed %d members", result.Billed)
	})

	// Daily overdue check, token cleanup and reminders, 08:30
	s.cron.AddFunc("30 8 * * *", func() {
		ctx := context.Background()

		if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
			log.Printf("❌ Expired token cleanup failed: %v", err)
		}

		marked, err := s.billingService.MarkOverdueMembers(ctx)
		if err != nil {
			log.Printf("❌ Overdue check failed: %v", err)
		} else if marked > 0 {
			log.Printf("⚠️ Marked %d members overdue", marked)
		}

		settings, err := s.settingsRepo.Get(ctx)
		if err != nil {
			log.Printf("❌ Failed to load billing settings: %v", err)
			return
		}
		if !settings.RemindersEnabled {
			return
		}
		s.sendReminders(ctx)
	})

	s.cron.Start()
	log.Println("✅ Cron service started (monthly sweep + daily reminders)")
}

// Stop stops the scheduled jobs
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("🛑 Cron service stopped")
}

// sendReminders logs a reminder for every member carrying a balance.
// Delivery (SMS/LINE) is a deployment concern; the portal only records
// that a reminder was due.
func (s *CronService) sendReminders(ctx context.Context) {
	members, err := s.memberRepo.ListActive(ctx)
	if err != nil {
		log.Printf("❌ Failed to list members for reminders: %v", err)
		return
	}

	count := 0
	for _, m := range members {
		if m.Pending.IsPositive() {
			log.Printf("🔔 Reminder due: member %d (%s) owes %s", m.ID, m.Name, m.Pending)
			count++
		}
	}
	if count > 0 {
		log.Printf("✅ %d payment reminders issued", count)
	}
}
