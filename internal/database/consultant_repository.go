package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/consultly/consultly-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ConsultantRepository handles consultant lookups. The booking pipeline is
// read-only against consultants; mutations belong to the admin flows.
type ConsultantRepository struct {
	db *sqlx.DB
}

// NewConsultantRepository creates a new ConsultantRepository
func NewConsultantRepository(db *sqlx.DB) *ConsultantRepository {
	return &ConsultantRepository{db: db}
}

const consultantColumns = `
	id, name, slug, email, phone,
	personal_session_price, webinar_session_price, currency,
	is_active, is_email_verified, is_approved_by_admin,
	created_at, updated_at`

// GetBySlug retrieves a consultant by slug regardless of visibility.
// Returns nil (no error) when absent.
func (r *ConsultantRepository) GetBySlug(ctx context.Context, slug string) (*models.Consultant, error) {
	consultant := &models.Consultant{}
	query := `SELECT ` + consultantColumns + ` FROM consultants WHERE slug = $1`

	err := r.db.GetContext(ctx, consultant, query, slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consultant by slug: %w", err)
	}

	return consultant, nil
}

// GetBookableBySlug retrieves a consultant that is publicly bookable.
// The visibility gate lives in the query so an unapproved consultant is
// indistinguishable from a missing one.
func (r *ConsultantRepository) GetBookableBySlug(ctx context.Context, slug string) (*models.Consultant, error) {
	consultant := &models.Consultant{}
	query := `SELECT ` + consultantColumns + `
		FROM consultants
		WHERE slug = $1
		  AND is_active = TRUE
		  AND is_email_verified = TRUE
		  AND is_approved_by_admin = TRUE`

	err := r.db.GetContext(ctx, consultant, query, slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookable consultant: %w", err)
	}

	return consultant, nil
}

// GetByID retrieves a consultant by id. Returns nil (no error) when absent.
func (r *ConsultantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Consultant, error) {
	consultant := &models.Consultant{}
	query := `SELECT ` + consultantColumns + ` FROM consultants WHERE id = $1`

	err := r.db.GetContext(ctx, consultant, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consultant by id: %w", err)
	}

	return consultant, nil
}
