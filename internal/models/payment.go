package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// AmountEpsilon is the tolerance for amount comparisons. Amounts travel
// through client-controlled request bodies at two separate points in the
// flow and must be revalidated against server-side state each time.
const AmountEpsilon = 0.01

// AmountsMatch reports whether two currency amounts are equal within
// AmountEpsilon
func AmountsMatch(a, b float64) bool {
	return math.Abs(a-b) <= AmountEpsilon
}

// ============================================================================
// PAYMENT ORDER & TRANSACTION
// ============================================================================

// PaymentOrderStatus represents the lifecycle of a gateway order
type PaymentOrderStatus string

const (
	PaymentOrderCreated PaymentOrderStatus = "created"
	PaymentOrderPaid    PaymentOrderStatus = "paid"
	PaymentOrderFailed  PaymentOrderStatus = "failed"
)

// PaymentOrder represents a Razorpay order tied to exactly one session or
// quotation. The recorded amount always matches the target's stored amount
// within AmountEpsilon at creation time.
type PaymentOrder struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	SessionID    *uuid.UUID `json:"session_id,omitempty" db:"session_id"`
	QuotationID  *uuid.UUID `json:"quotation_id,omitempty" db:"quotation_id"`
	ConsultantID uuid.UUID  `json:"consultant_id" db:"consultant_id"`

	RazorpayOrderID string             `json:"razorpay_order_id" db:"razorpay_order_id"`
	Amount          float64            `json:"amount" db:"amount"`
	Currency        string             `json:"currency" db:"currency"`
	Status          PaymentOrderStatus `json:"status" db:"status"`

	ClientEmail string  `json:"client_email" db:"client_email"`
	ClientName  string  `json:"client_name" db:"client_name"`
	Notes       JSONB   `json:"notes,omitempty" db:"notes"`
	ErrorCode   *string `json:"error_code,omitempty" db:"error_code"`
	ErrorDesc   *string `json:"error_description,omitempty" db:"error_description"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PaymentTransaction is the persisted record of a verified payment.
// razorpay_payment_id is unique, which is what makes verify/webhook
// replays idempotent.
type PaymentTransaction struct {
	ID      uuid.UUID `json:"id" db:"id"`
	OrderID uuid.UUID `json:"order_id" db:"order_id"`

	RazorpayOrderID   string `json:"razorpay_order_id" db:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id" db:"razorpay_payment_id"`
	Signature         string `json:"signature" db:"signature"`

	Amount   float64 `json:"amount" db:"amount"`
	Currency string  `json:"currency" db:"currency"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Quotation is a minimal priced offer a payment order may target instead
// of a session (authenticated route only)
type Quotation struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ConsultantID uuid.UUID `json:"consultant_id" db:"consultant_id"`
	ClientEmail  string    `json:"client_email" db:"client_email"`
	ClientName   string    `json:"client_name" db:"client_name"`
	Amount       float64   `json:"amount" db:"amount"`
	Currency     string    `json:"currency" db:"currency"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ============================================================================
// REQUEST / RESPONSE PAYLOADS
// ============================================================================

// CreateOrderRequest is the payload for creating a gateway order.
// Exactly one of SessionID / QuotationID must be set; the public route
// requires SessionID specifically.
type CreateOrderRequest struct {
	SessionID   *uuid.UUID `json:"sessionId,omitempty"`
	QuotationID *uuid.UUID `json:"quotationId,omitempty"`
	Amount      float64    `json:"amount" binding:"required"`
	Currency    string     `json:"currency"`
	ClientEmail string     `json:"clientEmail" binding:"required,email"`
	ClientName  string     `json:"clientName" binding:"required"`
	Notes       JSONB      `json:"notes,omitempty"`
}

// CreateOrderResponse is the gateway order payload returned to the client
type CreateOrderResponse struct {
	OrderID         uuid.UUID `json:"orderId"`
	RazorpayOrderID string    `json:"razorpayOrderId"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	KeyID           string    `json:"keyId"`
}

// VerifyPaymentRequest carries the gateway's signed confirmation triple
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	RazorpaySignature string `json:"razorpaySignature" binding:"required"`
}

// VerifyPaymentResponse is returned on a successful (or replayed) verification
type VerifyPaymentResponse struct {
	TransactionID uuid.UUID `json:"transactionId"`
	Amount        float64   `json:"amount"`
}

// PaymentFailedRequest records a failed-payment callback from the client
type PaymentFailedRequest struct {
	OrderID          string `json:"orderId" binding:"required"`
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
}

// WebhookResult is the internal outcome of webhook processing. The HTTP
// response to the gateway is always 200 regardless of Processed.
type WebhookResult struct {
	Processed bool   `json:"success"`
	Message   string `json:"message"`
}

// WebhookEvent is the subset of the Razorpay webhook envelope this
// pipeline consumes
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity WebhookPaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// WebhookPaymentEntity is the payment entity inside a webhook event.
// Amount is in the smallest currency unit (paise).
type WebhookPaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}
