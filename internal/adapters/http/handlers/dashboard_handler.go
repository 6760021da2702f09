package handlers

import (
	"errors"

	"samiti-duespay/internal/core/domain"
	"samiti-duespay/internal/core/services"
	"samiti-duespay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// DashboardHandler handles admin and member dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
	gatewayService   *services.GatewayService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	dashboardService *services.DashboardService,
	gatewayService *services.GatewayService,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		gatewayService:   gatewayService,
	}
}

// Admin returns the committee overview
// @Summary Admin dashboard
// @Description Member counts by status, collected/outstanding totals and recent payments
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	dashboard, err := h.dashboardService.GetAdminDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", dashboard)
}

// Me returns the signed-in member's own view
// @Summary Member dashboard
// @Description The member's balance, pending bills and payment history
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /me [get]
func (h *DashboardHandler) Me(c *fiber.Ctx) error {
	memberID, ok := c.Locals("memberID").(uint)
	if !ok || memberID == 0 {
		return response.Forbidden(c, "No member record linked to this account")
	}

	dashboard, err := h.dashboardService.GetMemberDashboard(c.Context(), memberID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", dashboard)
}

// PayRequest represents a payment-link request body
type PayRequest struct {
	Amount decimal.Decimal `json:"amount"` // optional, defaults to pending balance
}

// Pay creates a gateway payment link for the signed-in member
// @Summary Create payment link
// @Description Ask the payment gateway for a redirect URL to settle the balance
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PayRequest true "Optional amount"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /me/pay [post]
func (h *DashboardHandler) Pay(c *fiber.Ctx) error {
	memberID, ok := c.Locals("memberID").(uint)
	if !ok || memberID == 0 {
		return response.Forbidden(c, "No member record linked to this account")
	}

	var req PayRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	url, err := h.gatewayService.CreatePaymentLink(c.Context(), memberID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Nothing to pay")
		case errors.Is(err, services.ErrGatewayUnavailable):
			return response.Error(c, fiber.StatusBadGateway, "Payment gateway unavailable")
		default:
			return response.InternalServerError(c, "Failed to create payment link")
		}
	}

	return response.Success(c, "Payment link created", fiber.Map{
		"payment_url": url,
	})
}

// PaymentLink creates a gateway payment link for any member (admin)
// @Summary Create payment link for member
// @Description Ask the payment gateway for a redirect URL on a member's behalf
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body PayRequest true "Optional amount"
// @Success 200 {object} response.Response
// @Router /admin/members/{id}/payment-link [post]
func (h *DashboardHandler) PaymentLink(c *fiber.Ctx) error {
	memberID, err := c.ParamsInt("id")
	if err != nil || memberID <= 0 {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req PayRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	url, err := h.gatewayService.CreatePaymentLink(c.Context(), uint(memberID), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Nothing to pay")
		case errors.Is(err, services.ErrGatewayUnavailable):
			return response.Error(c, fiber.StatusBadGateway, "Payment gateway unavailable")
		default:
			return response.InternalServerError(c, "Failed to create payment link")
		}
	}

	return response.Success(c, "Payment link created", fiber.Map{
		"payment_url": url,
	})
}
