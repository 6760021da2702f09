package handlers

import (
	"errors"
	"time"

	"samiti-duespay/internal/core/domain"
	"samiti-duespay/internal/core/services"
	"samiti-duespay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// BillingHandler handles balance reconciliation and billing endpoints
type BillingHandler struct {
	billingService  *services.BillingService
	settingsService *services.SettingsService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(
	billingService *services.BillingService,
	settingsService *services.SettingsService,
) *BillingHandler {
	return &BillingHandler{
		billingService:  billingService,
		settingsService: settingsService,
	}
}

// RecordPayment handles a manual payment entry
// @Summary Record payment
// @Description Record a manual payment against a member's balance
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Param body body services.RecordPaymentInput true "Payment data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id}/payments [post]
func (h *BillingHandler) RecordPayment(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	var input services.RecordPaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.billingService.RecordPayment(c.Context(), uint(memberID), &input)
	if err != nil {
		return h.mapBillingError(c, err, "Failed to record payment")
	}

	return response.Success(c, "Payment recorded successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// RecordMissedBill handles a manual missed-bill entry
// @Summary Record missed bill
// @Description Add a missed bill to a member's pending balance
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Param body body services.RecordMissedBillInput true "Bill data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id}/missed-bills [post]
func (h *BillingHandler) RecordMissedBill(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	var input services.RecordMissedBillInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.billingService.RecordMissedBill(c.Context(), uint(memberID), &input)
	if err != nil {
		return h.mapBillingError(c, err, "Failed to record missed bill")
	}

	return response.Success(c, "Missed bill recorded successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// ReverseLastPayment undoes a member's most recent payment
// @Summary Reverse last payment
// @Description Remove the most recent payment and restore the balance
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id}/payments/reverse [post]
func (h *BillingHandler) ReverseLastPayment(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.billingService.ReverseLastPayment(c.Context(), uint(memberID))
	if err != nil {
		if errors.Is(err, domain.ErrNoPaymentsFound) {
			return response.NotFound(c, "No payments to reverse")
		}
		return h.mapBillingError(c, err, "Failed to reverse payment")
	}

	return response.Success(c, "Last payment reversed", fiber.Map{
		"member": member.ToResponse(),
	})
}

// ReverseLastBill undoes a member's most recent pending bill
// @Summary Reverse last bill
// @Description Remove the most recent pending bill and reduce the balance
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id}/bills/reverse [post]
func (h *BillingHandler) ReverseLastBill(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.billingService.ReverseLastBill(c.Context(), uint(memberID))
	if err != nil {
		if errors.Is(err, domain.ErrNoBillsFound) {
			return response.NotFound(c, "No pending bills to reverse")
		}
		return h.mapBillingError(c, err, "Failed to reverse bill")
	}

	return response.Success(c, "Last bill reversed", fiber.Map{
		"member": member.ToResponse(),
	})
}

// RecalculateRequest represents a recalculation request body
type RecalculateRequest struct {
	PaidUntil string `json:"paid_until"` // YYYY-MM-DD
}

// Recalculate rebuilds a member's balances from a paid-until date
// @Summary Recalculate balance
// @Description Rebuild total paid and pending from the fee schedule given a paid-until date
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Param body body RecalculateRequest true "Paid-until date"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{id}/recalculate [post]
func (h *BillingHandler) Recalculate(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req RecalculateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	paidUntil, err := time.Parse("2006-01-02", req.PaidUntil)
	if err != nil {
		return response.BadRequest(c, "paid_until must be YYYY-MM-DD")
	}

	member, err := h.billingService.RecalculateUntilDate(c.Context(), uint(memberID), paidUntil)
	if err != nil {
		return h.mapBillingError(c, err, "Failed to recalculate balance")
	}

	return response.Success(c, "Balance recalculated successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// MarkBillPaidRequest represents a mark-bill-paid request body
type MarkBillPaidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// MarkBillPaid settles a specific bill
// @Summary Mark bill paid
// @Description Settle a specific pending bill with a payment
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Param billID path int true "Bill ID"
// @Param body body MarkBillPaidRequest true "Payment amount (defaults to bill amount)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/members/{id}/bills/{billID}/pay [post]
func (h *BillingHandler) MarkBillPaid(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}
	billID, err := c.ParamsInt("billID")
	if err != nil || billID <= 0 {
		return response.BadRequest(c, "Invalid bill ID")
	}

	var req MarkBillPaidRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.billingService.MarkBillPaid(c.Context(), uint(memberID), uint(billID), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBillNotFound):
			return response.NotFound(c, "Bill not found")
		case errors.Is(err, domain.ErrBillAlreadyPaid):
			return response.Conflict(c, "Bill already paid")
		default:
			return h.mapBillingError(c, err, "Failed to mark bill paid")
		}
	}

	return response.Success(c, "Bill marked paid", fiber.Map{
		"member": member.ToResponse(),
	})
}

// RunSweep triggers the monthly billing sweep on demand
// @Summary Run monthly sweep
// @Description Bill every non-deceased member the configured monthly amount
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/billing/sweep [post]
func (h *BillingHandler) RunSweep(c *fiber.Ctx) error {
	result, err := h.billingService.RunMonthlyBilling(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to run billing sweep")
	}

	return response.Success(c, "Billing sweep completed", fiber.Map{
		"billed": result.Billed,
		"failed": result.Failed,
		"errors": result.Errors,
	})
}

// RunOverdueCheck triggers the overdue marking pass on demand
// @Summary Run overdue check
// @Description Mark members overdue whose oldest pending bill is past the grace period
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/billing/overdue-check [post]
func (h *BillingHandler) RunOverdueCheck(c *fiber.Ctx) error {
	marked, err := h.billingService.MarkOverdueMembers(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to run overdue check")
	}

	return response.Success(c, "Overdue check completed", fiber.Map{
		"marked": marked,
	})
}

// GetSettings returns the billing settings
// @Summary Get billing settings
// @Description Get the monthly amount and reminder flag
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/billing/settings [get]
func (h *BillingHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settingsService.Get(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get billing settings")
	}

	return response.Success(c, "Settings retrieved successfully", fiber.Map{
		"settings": settings,
	})
}

// UpdateSettings replaces the billing settings
// @Summary Update billing settings
// @Description Update the monthly amount and reminder flag
// @Tags Billing
// @Accept json
// @Produce json
// @Param body body services.UpdateSettingsInput true "Settings"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/billing/settings [put]
func (h *BillingHandler) UpdateSettings(c *fiber.Ctx) error {
	var input services.UpdateSettingsInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	settings, err := h.settingsService.Update(c.Context(), &input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "monthly_amount must be positive")
		}
		return response.InternalServerError(c, "Failed to update billing settings")
	}

	return response.Success(c, "Settings updated successfully", fiber.Map{
		"settings": settings,
	})
}

// mapBillingError maps shared billing service errors to responses
func (h *BillingHandler) mapBillingError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrMemberNotFound):
		return response.NotFound(c, "Member not found")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, "Amount must be positive")
	default:
		return response.InternalServerError(c, fallback)
	}
}
