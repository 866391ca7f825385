package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/consultly/consultly-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SessionRepository handles the session ledger
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, consultant_id, client_id, title, session_type, status, payment_status,
	scheduled_date, scheduled_time, duration_minutes, amount, currency,
	client_notes, booking_source, device_info, created_at, updated_at`

// GetByID retrieves a session by id. Returns nil (no error) when absent.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session := &models.Session{}
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	err := r.db.GetContext(ctx, session, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// HasActiveSessionAt reports whether the consultant already has a live
// session at the exact date and time. Used as an advisory pre-check; the
// transactional slot claim is the authoritative gate.
func (r *SessionRepository) HasActiveSessionAt(ctx context.Context, consultantID uuid.UUID, date time.Time, startTime string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM sessions
			WHERE consultant_id = $1
			  AND scheduled_date = $2
			  AND scheduled_time = $3
			  AND status = ANY($4)
		)`

	active := make([]string, len(models.ActiveSessionStatuses))
	for i, s := range models.ActiveSessionStatuses {
		active[i] = string(s)
	}
	err := r.db.GetContext(ctx, &exists, query,
		consultantID, date, startTime, pq.Array(active))
	if err != nil {
		return false, fmt.Errorf("failed to check existing session: %w", err)
	}
	return exists, nil
}

// MarkPaid transitions payment_status PENDING -> PAID. Returns false when
// the session was not pending, which callers treat as an already-settled
// replay rather than a failure.
func (r *SessionRepository) MarkPaid(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	query := `
		UPDATE sessions
		SET payment_status = $2, updated_at = NOW()
		WHERE id = $1 AND payment_status = $3`

	result, err := r.db.ExecContext(ctx, query,
		sessionID, models.PaymentStatusPaid, models.PaymentStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark session paid: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check session payment update: %w", err)
	}
	return rows == 1, nil
}

// MarkPaymentFailed transitions payment_status PENDING -> FAILED
func (r *SessionRepository) MarkPaymentFailed(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	query := `
		UPDATE sessions
		SET payment_status = $2, updated_at = NOW()
		WHERE id = $1 AND payment_status = $3`

	result, err := r.db.ExecContext(ctx, query,
		sessionID, models.PaymentStatusFailed, models.PaymentStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark session payment failed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check session payment update: %w", err)
	}
	return rows == 1, nil
}

// UpdateStatus applies a lifecycle transition after validating it against
// the session state machine
func (r *SessionRepository) UpdateStatus(ctx context.Context, sessionID uuid.UUID, from, to models.SessionStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("invalid session transition %s -> %s", from, to)
	}

	query := `
		UPDATE sessions
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, sessionID, to, from)
	if err != nil {
		return false, fmt.Errorf("failed to update session status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check session status update: %w", err)
	}
	return rows == 1, nil
}

// ListByConsultant returns a consultant's sessions, newest first
func (r *SessionRepository) ListByConsultant(ctx context.Context, consultantID uuid.UUID, limit, offset int) ([]models.Session, error) {
	sessions := []models.Session{}
	query := `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE consultant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &sessions, query, consultantID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
