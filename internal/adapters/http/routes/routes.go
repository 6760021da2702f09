package routes

import (
	"time"

	"samiti-duespay/internal/adapters/http/handlers"
	"samiti-duespay/internal/adapters/http/middleware"
	"samiti-duespay/internal/adapters/persistence/repositories"
	"samiti-duespay/internal/config"
	"samiti-duespay/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	billRepo := repositories.NewBillRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	expenditureRepo := repositories.NewExpenditureRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, memberRepo, cfg)
	memberService := services.NewMemberService(db, memberRepo)
	billingService := services.NewBillingService(db, settingsRepo)
	settingsService := services.NewSettingsService(settingsRepo)
	gatewayService := services.NewGatewayService(db, billingService, cfg.Gateway)
	expenditureService := services.NewExpenditureService(expenditureRepo)
	dashboardService := services.NewDashboardService(db, memberRepo, billRepo, paymentRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	memberHandler := handlers.NewMemberHandler(memberService, billRepo, paymentRepo)
	billingHandler := handlers.NewBillingHandler(billingService, settingsService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, gatewayService)
	webhookHandler := handlers.NewWebhookHandler(gatewayService)
	expenditureHandler := handlers.NewExpenditureHandler(expenditureService)

	// ============================================================
	// Public routes
	// ============================================================
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api/v1")
	api.Get("/", healthHandler.APIInfo)

	// Auth routes (rate limited)
	auth := api.Group("/auth")
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", middleware.AuthMiddleware(cfg), authHandler.LogoutAll)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// Gateway webhook (shared secret, not JWT)
	webhooks := api.Group("/webhooks")
	webhooks.Post("/gateway", middleware.WebhookRateLimiter(), webhookHandler.Gateway)

	// ============================================================
	// Member portal routes (MEMBER role)
	// ============================================================
	me := api.Group("/me", middleware.AuthMiddleware(cfg), middleware.MemberOnly())
	me.Get("/", middleware.NoCache(), dashboardHandler.Me)
	me.Post("/pay", dashboardHandler.Pay)

	// ============================================================
	// Admin routes (ADMIN role)
	// ============================================================
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.AdminOnly())

	// Dashboard
	admin.Get("/dashboard", middleware.CacheControl(30*time.Second), dashboardHandler.Admin)

	// Member management
	admin.Post("/members", memberHandler.Create)
	admin.Get("/members", memberHandler.List)
	admin.Get("/members/:id", memberHandler.Get)
	admin.Put("/members/:id", memberHandler.Update)
	admin.Delete("/members/:id", memberHandler.Delete)
	admin.Post("/members/:id/deceased", memberHandler.MarkDeceased)
	admin.Get("/members/:id/bills", memberHandler.ListBills)
	admin.Get("/members/:id/payments", memberHandler.ListPayments)

	// Balance reconciliation
	admin.Post("/members/:id/payments", billingHandler.RecordPayment)
	admin.Post("/members/:id/payments/reverse", billingHandler.ReverseLastPayment)
	admin.Post("/members/:id/missed-bills", billingHandler.RecordMissedBill)
	admin.Post("/members/:id/bills/reverse", billingHandler.ReverseLastBill)
	admin.Post("/members/:id/bills/:billID/pay", billingHandler.MarkBillPaid)
	admin.Post("/members/:id/recalculate", billingHandler.Recalculate)
	admin.Post("/members/:id/payment-link", dashboardHandler.PaymentLink)

	// Billing triggers and settings
	admin.Post("/billing/sweep", billingHandler.RunSweep)
	admin.Post("/billing/overdue-check", billingHandler.RunOverdueCheck)
	admin.Get("/billing/settings", billingHandler.GetSettings)
	admin.Put("/billing/settings", billingHandler.UpdateSettings)

	// Expenditures
	admin.Post("/expenditures", expenditureHandler.Create)
	admin.Get("/expenditures", expenditureHandler.List)
	admin.Get("/expenditures/:id", expenditureHandler.Get)
	admin.Put("/expenditures/:id", expenditureHandler.Update)
	admin.Delete("/expenditures/:id", expenditureHandler.Delete)
}
