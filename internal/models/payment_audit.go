package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType represents the type of payment event
type PaymentEventType string

const (
	PaymentEventOrderCreated    PaymentEventType = "order_created"
	PaymentEventVerifySuccess   PaymentEventType = "verify_success"
	PaymentEventVerifyFailed    PaymentEventType = "verify_failed"
	PaymentEventWebhookReceived PaymentEventType = "webhook_received"
	PaymentEventWebhookRejected PaymentEventType = "webhook_rejected"
	PaymentEventPaymentFailed   PaymentEventType = "payment_failed"
	PaymentEventDuplicate       PaymentEventType = "duplicate_replay"
	PaymentEventError           PaymentEventType = "error"
)

// PaymentEventSource identifies where the event originated
type PaymentEventSource string

const (
	PaymentSourceBackend        PaymentEventSource = "backend"
	PaymentSourceClientCallback PaymentEventSource = "client_callback"
	PaymentSourceGatewayWebhook PaymentEventSource = "gateway_webhook"
)

// PaymentAudit represents an immutable audit log entry for payment events.
// Webhook failures are observable only here, never through the HTTP
// response to the gateway.
type PaymentAudit struct {
	ID      uuid.UUID  `json:"id" db:"id"`
	OrderID *uuid.UUID `json:"order_id,omitempty" db:"order_id"`

	RazorpayOrderID   *string `json:"razorpay_order_id,omitempty" db:"razorpay_order_id"`
	RazorpayPaymentID *string `json:"razorpay_payment_id,omitempty" db:"razorpay_payment_id"`

	EventType   PaymentEventType   `json:"event_type" db:"event_type"`
	EventSource PaymentEventSource `json:"event_source" db:"event_source"`

	// Amount tracking - the fraud/consistency cross-check trail
	ExpectedAmount *float64 `json:"expected_amount,omitempty" db:"expected_amount"`
	ReceivedAmount *float64 `json:"received_amount,omitempty" db:"received_amount"`
	Currency       *string  `json:"currency,omitempty" db:"currency"`
	AmountsMatch   *bool    `json:"amounts_match,omitempty" db:"amounts_match"`

	RawBody      *string `json:"raw_body,omitempty" db:"raw_body"`
	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`
	ErrorCode    *string `json:"error_code,omitempty" db:"error_code"`

	IsDuplicate bool `json:"is_duplicate" db:"is_duplicate"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
