package services

import (
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/config"
)

// PaymentGateway abstracts the Razorpay API surface the payment service uses
type PaymentGateway interface {
	CreateOrder(amount float64, currency, receipt string, notes map[string]interface{}) (string, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
	KeyID() string
	IsConfigured() bool
}

// RazorpayService is the production PaymentGateway backed by the Razorpay SDK
type RazorpayService struct {
	config *config.RazorpayConfig
	client *razorpay.Client
	logger *logrus.Logger
}

// NewRazorpayService creates the gateway client. With empty credentials the
// service reports unconfigured and order creation fails fast, which keeps
// local development possible without gateway keys.
func NewRazorpayService(cfg *config.RazorpayConfig, logger *logrus.Logger) *RazorpayService {
	var client *razorpay.Client
	if cfg.KeyID != "" && cfg.KeySecret != "" {
		client = razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	} else {
		logger.Warn("Razorpay credentials not set, gateway calls will fail")
	}

	return &RazorpayService{
		config: cfg,
		client: client,
		logger: logger,
	}
}

// IsConfigured reports whether gateway credentials are present
func (s *RazorpayService) IsConfigured() bool {
	return s.client != nil
}

// KeyID returns the public key id the frontend checkout needs
func (s *RazorpayService) KeyID() string {
	return s.config.KeyID
}

// CreateOrder creates a gateway order and returns the Razorpay order id.
// Amount is in currency units; Razorpay wants the smallest unit (paise).
func (s *RazorpayService) CreateOrder(amount float64, currency, receipt string, notes map[string]interface{}) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("razorpay client not configured")
	}

	data := map[string]interface{}{
		"amount":   int64(math.Round(amount * 100)),
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	order, err := s.client.Order.Create(data, nil)
	if err != nil {
		s.logger.WithError(err).Error("Razorpay order creation failed")
		return "", fmt.Errorf("failed to create razorpay order: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("razorpay order response missing id")
	}

	s.logger.WithFields(logrus.Fields{
		"razorpay_order_id": orderID,
		"amount":            amount,
		"currency":          currency,
	}).Info("Razorpay order created")

	return orderID, nil
}

// VerifyPaymentSignature checks the checkout callback signature
// (HMAC-SHA256 over "order_id|payment_id" with the key secret)
func (s *RazorpayService) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, s.config.KeySecret)
}

// VerifyWebhookSignature checks the x-razorpay-signature header against the
// raw request body using the webhook secret
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	return utils.VerifyWebhookSignature(string(body), signature, s.config.WebhookSecret)
}
