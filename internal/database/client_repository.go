package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/consultly/consultly-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code for duplicate key violations
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres duplicate-key error
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// ClientRepository handles client records keyed by (consultant_id, email)
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `
	id, consultant_id, first_name, last_name, name, email, phone,
	total_sessions, total_amount_paid, created_at, updated_at`

// GetByEmail retrieves a client by its composite identity.
// Returns nil (no error) when absent.
func (r *ClientRepository) GetByEmail(ctx context.Context, consultantID uuid.UUID, email string) (*models.Client, error) {
	client := &models.Client{}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE consultant_id = $1 AND email = $2`

	err := r.db.GetContext(ctx, client, query, consultantID, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client by email: %w", err)
	}

	return client, nil
}

// GetByID retrieves a client by id. Returns nil (no error) when absent.
func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client := &models.Client{}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	err := r.db.GetContext(ctx, client, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client by id: %w", err)
	}

	return client, nil
}

// FindOrCreate returns the client for (consultantID, email), creating it
// with zeroed counters if absent. A concurrent duplicate insert is absorbed
// by re-fetching rather than surfacing the unique violation - retried
// requests must never produce duplicate clients.
func (r *ClientRepository) FindOrCreate(ctx context.Context, consultantID uuid.UUID, fullName, email, phone string) (*models.Client, error) {
	existing, err := r.GetByEmail(ctx, consultantID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	firstName, lastName := models.SplitFullName(fullName)
	client := &models.Client{}
	query := `
		INSERT INTO clients (
			id, consultant_id, first_name, last_name, name, email, phone,
			total_sessions, total_amount_paid
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0)
		RETURNING ` + clientColumns

	err = r.db.GetContext(ctx, client, query, uuid.New(), consultantID, firstName, lastName, fullName, email, phone)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a creation race; the winner's row is the client
			return r.GetByEmail(ctx, consultantID, email)
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// IncrementAmountPaid bumps total_amount_paid after a verified payment
func (r *ClientRepository) IncrementAmountPaid(ctx context.Context, clientID uuid.UUID, amount float64) error {
	query := `
		UPDATE clients
		SET total_amount_paid = total_amount_paid + $2, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, clientID, amount); err != nil {
		return fmt.Errorf("failed to increment client amount paid: %w", err)
	}
	return nil
}

// ListByConsultant returns clients for a consultant, newest first
func (r *ClientRepository) ListByConsultant(ctx context.Context, consultantID uuid.UUID, limit, offset int) ([]models.Client, error) {
	clients := []models.Client{}
	query := `SELECT ` + clientColumns + `
		FROM clients
		WHERE consultant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &clients, query, consultantID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}
