package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"rental-backend/internal/ledger"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
)

// GatewayService handles online rent collection through Razorpay. Orders
// are tracked locally so webhook replays and double deliveries stay
// idempotent: an order moves created -> paid exactly once.
type GatewayService struct {
	client        *razorpay.Client
	keyID         string
	webhookSecret string
	Orders        *repositories.GatewayOrderRepository
	Leases        leaseReader
	Allocator     *AllocationService
	Ledger        *LedgerService
}

func NewGatewayService(keyID, keySecret, webhookSecret string, orders *repositories.GatewayOrderRepository, leases leaseReader, allocator *AllocationService, ledgerSvc *LedgerService) *GatewayService {
	var client *razorpay.Client
	if keyID != "" && keySecret != "" {
		client = razorpay.NewClient(keyID, keySecret)
	}
	return &GatewayService{
		client:        client,
		keyID:         keyID,
		webhookSecret: webhookSecret,
		Orders:        orders,
		Leases:        leases,
		Allocator:     allocator,
		Ledger:        ledgerSvc,
	}
}

// Enabled reports whether gateway credentials are configured
func (s *GatewayService) Enabled() bool {
	return s.client != nil
}

// KeyID is exposed to the payment page for checkout initialization
func (s *GatewayService) KeyID() string {
	return s.keyID
}

// CreateOrder opens a gateway order for a lease. A zero amount means the
// lease's full outstanding balance.
func (s *GatewayService) CreateOrder(ctx context.Context, req *models.CreateGatewayOrderRequest) (*models.GatewayOrder, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: online payments are not configured", ledger.ErrValidation)
	}
	lease, err := s.Leases.Get(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}

	amount := req.Amount
	if amount.Sign() == 0 {
		view, err := s.Ledger.LeaseLedger(ctx, lease.ID)
		if err != nil {
			return nil, err
		}
		amount = view.Outstanding
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: nothing outstanding on lease %d", ledger.ErrValidation, lease.ID)
	}

	// Razorpay amounts are in the currency's smallest unit
	subunits := amount.Mul(decimal.NewFromInt(100)).IntPart()
	orderData := map[string]interface{}{
		"amount":   subunits,
		"currency": "AED",
		"receipt":  fmt.Sprintf("lease_%d", lease.ID),
		"notes": map[string]interface{}{
			"lease_id": lease.ID,
			"tenant":   lease.TenantName,
		},
	}
	created, err := s.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}
	orderID, _ := created["id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("gateway returned no order id")
	}

	order := &models.GatewayOrder{
		LeaseID: lease.ID,
		OrderID: orderID,
		Amount:  amount,
		Status:  "created",
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	log.Printf("[Gateway] order %s opened for lease %d (%s)", orderID, lease.ID, amount.StringFixed(2))
	return order, nil
}

// webhookEvent is the slice of the Razorpay webhook body we care about
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Method  string `json:"method"`
				Amount  int64  `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook verifies and applies a gateway webhook delivery. Captured
// payments are recorded on the ledger through the normal allocator; every
// other event type is acknowledged and ignored.
func (s *GatewayService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.verifyWebhookSignature(body, signature) {
		metrics.GatewayWebhooks.WithLabelValues("bad_signature").Inc()
		return fmt.Errorf("%w: invalid webhook signature", ledger.ErrValidation)
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.GatewayWebhooks.WithLabelValues("malformed").Inc()
		return fmt.Errorf("%w: malformed webhook body", ledger.ErrValidation)
	}
	if event.Event != "payment.captured" {
		metrics.GatewayWebhooks.WithLabelValues("ignored").Inc()
		return nil
	}

	entity := event.Payload.Payment.Entity
	order, err := s.Orders.GetByOrderID(ctx, entity.OrderID)
	if err != nil {
		metrics.GatewayWebhooks.WithLabelValues("unknown_order").Inc()
		return err
	}
	if order.Status == "paid" {
		// Replayed delivery, already applied
		metrics.GatewayWebhooks.WithLabelValues("replay").Inc()
		return nil
	}

	method := models.MethodBankTransfer
	if entity.Method == "upi" {
		method = models.MethodUPI
	}
	result, err := s.Allocator.RecordPayment(ctx, &models.CreatePaymentRequest{
		LeaseID:   order.LeaseID,
		Amount:    order.Amount,
		Method:    method,
		Reference: fmt.Sprintf("razorpay %s", entity.ID),
	}, 0)
	if err != nil {
		return err
	}

	if err := s.Orders.MarkPaid(ctx, order.OrderID, entity.ID, result.Payment.ID); err != nil {
		return err
	}
	metrics.GatewayWebhooks.WithLabelValues("applied").Inc()
	log.Printf("[Gateway] order %s paid, payment %d recorded on lease %d", order.OrderID, result.Payment.ID, order.LeaseID)
	return nil
}

// VerifyCheckoutSignature checks the signature Razorpay hands the browser
// after checkout, before the frontend treats the payment as done
func (s *GatewayService) VerifyCheckoutSignature(orderID, paymentID, signature, keySecret string) bool {
	data := orderID + "|" + paymentID
	h := hmac.New(sha256.New, []byte(keySecret))
	h.Write([]byte(data))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *GatewayService) verifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(s.webhookSecret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
