package database

import (
	"context"
	"fmt"

	"github.com/consultly/consultly-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PaymentAuditRepository writes the append-only payment audit trail
type PaymentAuditRepository struct {
	db *sqlx.DB
}

// NewPaymentAuditRepository creates a new PaymentAuditRepository
func NewPaymentAuditRepository(db *sqlx.DB) *PaymentAuditRepository {
	return &PaymentAuditRepository{db: db}
}

// Log inserts an audit entry. Audit writes must never fail the payment
// flow, so callers log and continue on error.
func (r *PaymentAuditRepository) Log(ctx context.Context, audit *models.PaymentAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}

	query := `
		INSERT INTO payment_audits (
			id, order_id, razorpay_order_id, razorpay_payment_id,
			event_type, event_source,
			expected_amount, received_amount, currency, amounts_match,
			raw_body, error_message, error_code, is_duplicate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		audit.ID, audit.OrderID, audit.RazorpayOrderID, audit.RazorpayPaymentID,
		audit.EventType, audit.EventSource,
		audit.ExpectedAmount, audit.ReceivedAmount, audit.Currency, audit.AmountsMatch,
		audit.RawBody, audit.ErrorMessage, audit.ErrorCode, audit.IsDuplicate,
	).Scan(&audit.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to write payment audit: %w", err)
	}
	return nil
}

// ListByOrder returns the audit trail for an order, oldest first
func (r *PaymentAuditRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentAudit, error) {
	audits := []models.PaymentAudit{}
	query := `
		SELECT id, order_id, razorpay_order_id, razorpay_payment_id,
		       event_type, event_source,
		       expected_amount, received_amount, currency, amounts_match,
		       raw_body, error_message, error_code, is_duplicate, created_at
		FROM payment_audits
		WHERE order_id = $1
		ORDER BY created_at`

	if err := r.db.SelectContext(ctx, &audits, query, orderID); err != nil {
		return nil, fmt.Errorf("failed to list payment audits: %w", err)
	}
	return audits, nil
}
