package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/consultly/consultly-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrDuplicatePayment is returned when a transaction for the same gateway
// payment id already exists. Callers treat it as a replay, not a failure.
var ErrDuplicatePayment = fmt.Errorf("payment already recorded")

// PaymentRepository handles payment orders, transactions and quotations
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const orderColumns = `
	id, session_id, quotation_id, consultant_id, razorpay_order_id,
	amount, currency, status, client_email, client_name, notes,
	error_code, error_description, created_at, updated_at`

const transactionColumns = `
	id, order_id, razorpay_order_id, razorpay_payment_id, signature,
	amount, currency, created_at`

// CreateOrder persists a gateway order record
func (r *PaymentRepository) CreateOrder(ctx context.Context, order *models.PaymentOrder) error {
	query := `
		INSERT INTO payment_orders (
			id, session_id, quotation_id, consultant_id, razorpay_order_id,
			amount, currency, status, client_email, client_name, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		order.ID, order.SessionID, order.QuotationID, order.ConsultantID,
		order.RazorpayOrderID, order.Amount, order.Currency, order.Status,
		order.ClientEmail, order.ClientName, order.Notes,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment order: %w", err)
	}
	return nil
}

// GetOrderByRazorpayID retrieves an order by its gateway order id.
// Returns nil (no error) when absent.
func (r *PaymentRepository) GetOrderByRazorpayID(ctx context.Context, razorpayOrderID string) (*models.PaymentOrder, error) {
	order := &models.PaymentOrder{}
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE razorpay_order_id = $1`

	err := r.db.GetContext(ctx, order, query, razorpayOrderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment order: %w", err)
	}
	return order, nil
}

// MarkOrderPaid transitions an order created -> paid. Returns false when
// the order was not in created state.
func (r *PaymentRepository) MarkOrderPaid(ctx context.Context, orderID uuid.UUID) (bool, error) {
	query := `
		UPDATE payment_orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`

	result, err := r.db.ExecContext(ctx, query,
		orderID, models.PaymentOrderPaid, models.PaymentOrderCreated)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check order update: %w", err)
	}
	return rows == 1, nil
}

// MarkOrderFailed records a failure against an order. Paid orders are never
// downgraded.
func (r *PaymentRepository) MarkOrderFailed(ctx context.Context, orderID uuid.UUID, errorCode, errorDesc string) (bool, error) {
	query := `
		UPDATE payment_orders
		SET status = $2, error_code = $3, error_description = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5`

	result, err := r.db.ExecContext(ctx, query,
		orderID, models.PaymentOrderFailed, errorCode, errorDesc, models.PaymentOrderCreated)
	if err != nil {
		return false, fmt.Errorf("failed to mark order failed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check order update: %w", err)
	}
	return rows == 1, nil
}

// CreateTransaction records a verified payment. The unique constraint on
// razorpay_payment_id makes replays surface as ErrDuplicatePayment.
func (r *PaymentRepository) CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (
			id, order_id, razorpay_order_id, razorpay_payment_id, signature,
			amount, currency
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		txn.ID, txn.OrderID, txn.RazorpayOrderID, txn.RazorpayPaymentID,
		txn.Signature, txn.Amount, txn.Currency,
	).Scan(&txn.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}
	return nil
}

// GetTransactionByPaymentID retrieves a transaction by gateway payment id.
// Returns nil (no error) when absent.
func (r *PaymentRepository) GetTransactionByPaymentID(ctx context.Context, razorpayPaymentID string) (*models.PaymentTransaction, error) {
	txn := &models.PaymentTransaction{}
	query := `SELECT ` + transactionColumns + ` FROM payment_transactions WHERE razorpay_payment_id = $1`

	err := r.db.GetContext(ctx, txn, query, razorpayPaymentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}
	return txn, nil
}

// GetQuotationByID retrieves a quotation. Returns nil (no error) when absent.
func (r *PaymentRepository) GetQuotationByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	quotation := &models.Quotation{}
	query := `
		SELECT id, consultant_id, client_email, client_name, amount, currency, status, created_at
		FROM quotations WHERE id = $1`

	err := r.db.GetContext(ctx, quotation, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	return quotation, nil
}
