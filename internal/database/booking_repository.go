package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/consultly/consultly-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// ErrSlotUnavailable is returned when the requested slot was booked or
// blocked between the advisory check and the transactional claim
var ErrSlotUnavailable = errors.New("slot is no longer available")

// BookingRepository executes the atomic booking transaction
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// BookingParams carries everything the booking transaction writes
type BookingParams struct {
	ConsultantID  uuid.UUID
	ClientName    string
	ClientEmail   string
	ClientPhone   string
	Title         string
	SessionType   models.SessionType
	Amount        float64
	Currency      string
	Duration      int
	ClientNotes   *string
	ScheduledDate *time.Time
	ScheduledTime *string
	BookingSource string
	DeviceInfo    models.JSONB
}

// CreateBooking runs the booking transaction: upsert the client, insert the
// session, bump the client's session counter, and claim the slot when the
// booking is scheduled. Either every write lands or none do. Returns
// ErrSlotUnavailable when a concurrent booking claimed the slot first.
func (r *BookingRepository) CreateBooking(ctx context.Context, params BookingParams) (*models.BookingResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin booking transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logrus.WithError(err).Error("Failed to rollback booking transaction")
		}
	}()

	client, err := r.upsertClient(ctx, tx, params)
	if err != nil {
		return nil, err
	}

	session, err := r.insertSession(ctx, tx, client.ID, params)
	if err != nil {
		return nil, err
	}

	incrQuery := `
		UPDATE clients
		SET total_sessions = total_sessions + 1, updated_at = NOW()
		WHERE id = $1`
	if _, err := tx.ExecContext(ctx, incrQuery, client.ID); err != nil {
		return nil, fmt.Errorf("failed to increment client session count: %w", err)
	}
	client.TotalSessions++

	if session.IsScheduled() {
		if err := r.claimSlot(ctx, tx, session, params); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	return &models.BookingResult{Session: session, Client: client}, nil
}

// upsertClient inserts or refreshes the client keyed by (consultant_id, email).
// Phone is last-write-wins but never blanked by an empty value.
func (r *BookingRepository) upsertClient(ctx context.Context, tx *sqlx.Tx, params BookingParams) (*models.Client, error) {
	firstName, lastName := models.SplitFullName(params.ClientName)
	client := &models.Client{}
	query := `
		INSERT INTO clients (
			id, consultant_id, first_name, last_name, name, email, phone,
			total_sessions, total_amount_paid
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0)
		ON CONFLICT (consultant_id, email) DO UPDATE
		SET phone = COALESCE(NULLIF(EXCLUDED.phone, ''), clients.phone),
		    updated_at = NOW()
		RETURNING ` + clientColumns

	err := tx.GetContext(ctx, client, query,
		uuid.New(), params.ConsultantID, firstName, lastName,
		params.ClientName, params.ClientEmail, params.ClientPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert client: %w", err)
	}
	return client, nil
}

func (r *BookingRepository) insertSession(ctx context.Context, tx *sqlx.Tx, clientID uuid.UUID, params BookingParams) (*models.Session, error) {
	session := &models.Session{
		ID:              uuid.New(),
		ConsultantID:    params.ConsultantID,
		ClientID:        clientID,
		Title:           params.Title,
		SessionType:     params.SessionType,
		Status:          models.SessionStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		ScheduledDate:   params.ScheduledDate,
		ScheduledTime:   params.ScheduledTime,
		DurationMinutes: params.Duration,
		Amount:          params.Amount,
		Currency:        params.Currency,
		ClientNotes:     params.ClientNotes,
		BookingSource:   params.BookingSource,
		DeviceInfo:      params.DeviceInfo,
	}

	query := `
		INSERT INTO sessions (
			id, consultant_id, client_id, title, session_type, status,
			payment_status, scheduled_date, scheduled_time, duration_minutes,
			amount, currency, client_notes, booking_source, device_info
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`

	err := tx.QueryRowxContext(ctx, query,
		session.ID, session.ConsultantID, session.ClientID, session.Title,
		session.SessionType, session.Status, session.PaymentStatus,
		session.ScheduledDate, session.ScheduledTime, session.DurationMinutes,
		session.Amount, session.Currency, session.ClientNotes,
		session.BookingSource, session.DeviceInfo,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return session, nil
}

// claimSlot atomically marks the slot booked and binds it to the session.
// The WHERE clause is the concurrency gate: under concurrent bookings for
// the same slot exactly one UPDATE matches a row, so RowsAffected decides
// the winner and every loser rolls back with ErrSlotUnavailable.
func (r *BookingRepository) claimSlot(ctx context.Context, tx *sqlx.Tx, session *models.Session, params BookingParams) error {
	query := `
		UPDATE availability_slots
		SET is_booked = TRUE, session_id = $1, updated_at = NOW()
		WHERE consultant_id = $2 AND session_type = $3 AND slot_date = $4 AND start_time = $5
		  AND is_booked = FALSE AND is_blocked = FALSE`

	result, err := tx.ExecContext(ctx, query,
		session.ID, params.ConsultantID, params.SessionType, *params.ScheduledDate, *params.ScheduledTime)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("failed to claim slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check slot claim: %w", err)
	}
	if rows != 1 {
		return ErrSlotUnavailable
	}
	return nil
}
