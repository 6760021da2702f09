package services

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/config"
	"samiti-duespay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Gateway errors
var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidWebhook     = errors.New("invalid webhook payload")
)

// GatewayService talks to the payment-link gateway and maps its webhook
// confirmations onto the billing service.
type GatewayService struct {
	db             *gorm.DB
	billingService *BillingService
	cfg            config.GatewayConfig
	client         *http.Client
}

// NewGatewayService creates a new gateway service
func NewGatewayService(db *gorm.DB, billingService *BillingService, cfg config.GatewayConfig) *GatewayService {
	return &GatewayService{
		db:             db,
		billingService: billingService,
		cfg:            cfg,
		client:         &http.Client{Timeout: 10 * time.Second},
	}
}

// paymentLinkRequest is the gateway's create-link payload
type paymentLinkRequest struct {
	ReferenceID string `json:"reference_id"`
	MemberID    uint   `json:"member_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// paymentLinkResponse is the gateway's create-link response
type paymentLinkResponse struct {
	PaymentURL string `json:"payment_url"`
}

// CreatePaymentLink asks the gateway for a redirect URL the member can
// pay at. The amount defaults to the member's pending balance.
func (s *GatewayService) CreatePaymentLink(ctx context.Context, memberID uint, amount decimal.Decimal) (string, error) {
	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrMemberNotFound
		}
		return "", err
	}

	if amount.IsZero() {
		amount = member.Pending
	}
	if !amount.IsPositive() {
		return "", domain.ErrInvalidInput
	}

	payload := paymentLinkRequest{
		ReferenceID: uuid.New().String(),
		MemberID:    member.ID,
		Amount:      amount.StringFixed(2),
		Description: fmt.Sprintf("Membership dues for %s", member.Name),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.BaseURL+"/v1/payment-links", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: status %d: %s", ErrGatewayUnavailable, resp.StatusCode, string(respBody))
	}

	var linkResp paymentLinkResponse
	if err := json.Unmarshal(respBody, &linkResp); err != nil {
		return "", err
	}
	if linkResp.PaymentURL == "" {
		return "", fmt.Errorf("%w: empty payment_url", ErrGatewayUnavailable)
	}

	return linkResp.PaymentURL, nil
}

// WebhookEvent is the gateway's confirmed-payment callback payload
type WebhookEvent struct {
	MemberID         uint   `json:"member_id"`
	Amount           string `json:"amount"`
	GatewayPaymentID string `json:"gateway_payment_id"`
}

// VerifySecret checks the shared webhook secret in constant time
func (s *GatewayService) VerifySecret(got string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.WebhookSecret)) == 1
}

// HandleWebhook maps a confirmed-payment event 1:1 to a gateway payment.
// The gateway may redeliver; a known gateway payment ID is a no-op.
func (s *GatewayService) HandleWebhook(ctx context.Context, event *WebhookEvent) (*models.Member, error) {
	if event.GatewayPaymentID == "" || event.MemberID == 0 {
		return nil, ErrInvalidWebhook
	}
	amount, err := decimal.NewFromString(event.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidWebhook
	}

	return s.billingService.RecordGatewayPayment(ctx, event.MemberID, amount, event.GatewayPaymentID)
}
