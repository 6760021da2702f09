package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"samiti-duespay/internal/adapters/persistence/models"
	"samiti-duespay/internal/config"
	"samiti-duespay/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGatewayService(t *testing.T, db *gorm.DB, baseURL string) *GatewayService {
	t.Helper()
	return NewGatewayService(db, newBillingService(t, db), config.GatewayConfig{
		BaseURL:       baseURL,
		APIKey:        "test-api-key",
		WebhookSecret: "test-secret",
	})
}

func TestCreatePaymentLink(t *testing.T) {
	db := newTestDB(t)
	m := seedMember(t, db, "Ram", "pending", 0, 500, date(2024, time.January, 1))

	var gotReq paymentLinkRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment-links", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(paymentLinkResponse{PaymentURL: "https://pay.example.com/l/abc"})
	}))
	defer server.Close()

	svc := newGatewayService(t, db, server.URL)

	url, err := svc.CreatePaymentLink(context.Background(), m.ID, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/l/abc", url)

	// Zero amount defaults to the member's pending balance.
	assert.Equal(t, "500.00", gotReq.Amount)
	assert.Equal(t, m.ID, gotReq.MemberID)
	assert.NotEmpty(t, gotReq.ReferenceID)
}

func TestCreatePaymentLinkNothingToPay(t *testing.T) {
	db := newTestDB(t)
	m := seedMember(t, db, "Gita", "paid", 1000, 0, date(2024, time.January, 1))
	svc := newGatewayService(t, db, "http://localhost:1")

	_, err := svc.CreatePaymentLink(context.Background(), m.ID, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreatePaymentLinkGatewayDown(t *testing.T) {
	db := newTestDB(t)
	m := seedMember(t, db, "Ram", "pending", 0, 500, date(2024, time.January, 1))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := newGatewayService(t, db, server.URL)

	_, err := svc.CreatePaymentLink(context.Background(), m.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestVerifySecret(t *testing.T) {
	db := newTestDB(t)
	svc := newGatewayService(t, db, "http://localhost:1")

	assert.True(t, svc.VerifySecret("test-secret"))
	assert.False(t, svc.VerifySecret("wrong"))
	assert.False(t, svc.VerifySecret(""))
}

func TestHandleWebhook(t *testing.T) {
	db := newTestDB(t)
	m := seedMember(t, db, "Ram", "pending", 0, 500, date(2024, time.January, 1))
	svc := newGatewayService(t, db, "http://localhost:1")
	ctx := context.Background()

	event := &WebhookEvent{
		MemberID:         m.ID,
		Amount:           "250.00",
		GatewayPaymentID: "gw_evt_1",
	}

	got, err := svc.HandleWebhook(ctx, event)
	require.NoError(t, err)
	assertDec(t, "250", got.Pending)
	assertDec(t, "250", got.TotalPaid)

	// Redelivery of the same event is a no-op.
	got, err = svc.HandleWebhook(ctx, event)
	require.NoError(t, err)
	assertDec(t, "250", got.Pending)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("member_id = ?", m.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestHandleWebhookRejectsBadPayload(t *testing.T) {
	db := newTestDB(t)
	svc := newGatewayService(t, db, "http://localhost:1")
	ctx := context.Background()

	cases := []*WebhookEvent{
		{MemberID: 0, Amount: "100", GatewayPaymentID: "gw_1"},
		{MemberID: 1, Amount: "100", GatewayPaymentID: ""},
		{MemberID: 1, Amount: "not-a-number", GatewayPaymentID: "gw_1"},
		{MemberID: 1, Amount: "-50", GatewayPaymentID: "gw_1"},
	}
	for _, event := range cases {
		_, err := svc.HandleWebhook(ctx, event)
		assert.ErrorIs(t, err, ErrInvalidWebhook)
	}
}
