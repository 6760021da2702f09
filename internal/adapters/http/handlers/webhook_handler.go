package handlers

import (
	"errors"
	"log"

	"samiti-duespay/internal/core/domain"
	"samiti-duespay/internal/core/services"
	"samiti-duespay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler handles payment gateway callbacks
type WebhookHandler struct {
	gatewayService *services.GatewayService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(gatewayService *services.GatewayService) *WebhookHandler {
	return &WebhookHandler{gatewayService: gatewayService}
}

// Gateway handles the confirmed-payment callback
// @Summary Gateway webhook
// @Description Record a confirmed gateway payment; redeliveries are no-ops
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Shared webhook secret"
// @Param body body services.WebhookEvent true "Confirmed payment event"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /webhooks/gateway [post]
func (h *WebhookHandler) Gateway(c *fiber.Ctx) error {
	// Shared-secret check before touching the body
	if !h.gatewayService.VerifySecret(c.Get("X-Webhook-Secret")) {
		return response.Unauthorized(c, "Invalid webhook secret")
	}

	var event services.WebhookEvent
	if err := c.BodyParser(&event); err != nil {
		return response.BadRequest(c, "Invalid webhook payload")
	}

	member, err := h.gatewayService.HandleWebhook(c.Context(), &event)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidWebhook):
			return response.BadRequest(c, "Invalid webhook payload")
		case errors.Is(err, domain.ErrMemberNotFound):
			// Acknowledge so the gateway stops retrying an unknown member
			log.Printf("⚠️ Webhook for unknown member %d (payment %s)", event.MemberID, event.GatewayPaymentID)
			return response.Success(c, "Event ignored", nil)
		default:
			return response.InternalServerError(c, "Failed to process webhook")
		}
	}

	return response.Success(c, "Payment recorded", fiber.Map{
		"member": member.ToResponse(),
	})
}
