package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/consultly/consultly-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AvailabilityRepository handles weekly patterns and concrete availability slots
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new AvailabilityRepository
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const patternColumns = `
	id, consultant_id, session_type, day_of_week, start_time, end_time,
	timezone, is_active, created_at, updated_at`

const slotColumns = `
	id, consultant_id, session_type, slot_date, start_time, end_time,
	is_booked, is_blocked, session_id, created_at, updated_at`

// CreatePattern inserts a weekly availability pattern
func (r *AvailabilityRepository) CreatePattern(ctx context.Context, p *models.WeeklyAvailabilityPattern) error {
	query := `
		INSERT INTO weekly_availability_patterns (
			id, consultant_id, session_type, day_of_week, start_time, end_time, timezone, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.ConsultantID, p.SessionType, p.DayOfWeek, p.StartTime, p.EndTime, p.Timezone, p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create availability pattern: %w", err)
	}
	return nil
}

// ListActivePatterns returns a consultant's active weekly patterns ordered
// by day then start time
func (r *AvailabilityRepository) ListActivePatterns(ctx context.Context, consultantID uuid.UUID) ([]models.WeeklyAvailabilityPattern, error) {
	patterns := []models.WeeklyAvailabilityPattern{}
	query := `SELECT ` + patternColumns + `
		FROM weekly_availability_patterns
		WHERE consultant_id = $1 AND is_active = TRUE
		ORDER BY day_of_week, start_time`

	if err := r.db.SelectContext(ctx, &patterns, query, consultantID); err != nil {
		return nil, fmt.Errorf("failed to list availability patterns: %w", err)
	}
	return patterns, nil
}

// DeactivatePattern soft-deletes a pattern. Existing generated slots are
// untouched; regeneration simply stops producing new ones.
func (r *AvailabilityRepository) DeactivatePattern(ctx context.Context, consultantID, patternID uuid.UUID) (bool, error) {
	query := `
		UPDATE weekly_availability_patterns
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND consultant_id = $2 AND is_active = TRUE`

	result, err := r.db.ExecContext(ctx, query, patternID, consultantID)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate availability pattern: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check pattern deactivation: %w", err)
	}
	return rows == 1, nil
}

// CreateSlotIfAbsent inserts a concrete slot, ignoring duplicates so that
// regenerating a date range is idempotent. Returns true when a row was inserted.
func (r *AvailabilityRepository) CreateSlotIfAbsent(ctx context.Context, s *models.AvailabilitySlot) (bool, error) {
	query := `
		INSERT INTO availability_slots (
			id, consultant_id, session_type, slot_date, start_time, end_time, is_booked, is_blocked
		) VALUES ($1, $2, $3, $4, $5, $6, FALSE, FALSE)
		ON CONFLICT (consultant_id, session_type, slot_date, start_time) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		s.ID, s.ConsultantID, s.SessionType, s.SlotDate, s.StartTime, s.EndTime)
	if err != nil {
		return false, fmt.Errorf("failed to create availability slot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check slot insert: %w", err)
	}
	return rows == 1, nil
}

// ListOpenSlots returns unbooked, unblocked slots in [from, to] ordered by
// date then start time
func (r *AvailabilityRepository) ListOpenSlots(ctx context.Context, consultantID uuid.UUID, from, to time.Time) ([]models.AvailabilitySlot, error) {
	slots := []models.AvailabilitySlot{}
	query := `SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE consultant_id = $1
		  AND slot_date >= $2 AND slot_date <= $3
		  AND is_booked = FALSE AND is_blocked = FALSE
		ORDER BY slot_date, start_time`

	if err := r.db.SelectContext(ctx, &slots, query, consultantID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list open slots: %w", err)
	}
	return slots, nil
}

// FindSlot returns the slot at (consultantID, sessionType, date, startTime)
// regardless of state. Returns nil (no error) when absent.
func (r *AvailabilityRepository) FindSlot(ctx context.Context, consultantID uuid.UUID, sessionType models.SessionType, date time.Time, startTime string) (*models.AvailabilitySlot, error) {
	slot := &models.AvailabilitySlot{}
	query := `SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE consultant_id = $1 AND session_type = $2 AND slot_date = $3 AND start_time = $4`

	err := r.db.GetContext(ctx, slot, query, consultantID, sessionType, date, startTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}
	return slot, nil
}

// BlockSlot marks an open slot unavailable for booking. Returns false when
// the slot is missing or already booked.
func (r *AvailabilityRepository) BlockSlot(ctx context.Context, consultantID, slotID uuid.UUID) (bool, error) {
	query := `
		UPDATE availability_slots
		SET is_blocked = TRUE, updated_at = NOW()
		WHERE id = $1 AND consultant_id = $2 AND is_booked = FALSE`

	result, err := r.db.ExecContext(ctx, query, slotID, consultantID)
	if err != nil {
		return false, fmt.Errorf("failed to block slot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check slot block: %w", err)
	}
	return rows == 1, nil
}

// UnblockSlot reopens a blocked slot
func (r *AvailabilityRepository) UnblockSlot(ctx context.Context, consultantID, slotID uuid.UUID) (bool, error) {
	query := `
		UPDATE availability_slots
		SET is_blocked = FALSE, updated_at = NOW()
		WHERE id = $1 AND consultant_id = $2 AND is_blocked = TRUE`

	result, err := r.db.ExecContext(ctx, query, slotID, consultantID)
	if err != nil {
		return false, fmt.Errorf("failed to unblock slot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check slot unblock: %w", err)
	}
	return rows == 1, nil
}

// ReleaseSlot frees a slot bound to a cancelled session
func (r *AvailabilityRepository) ReleaseSlot(ctx context.Context, sessionID uuid.UUID) error {
	query := `
		UPDATE availability_slots
		SET is_booked = FALSE, session_id = NULL, updated_at = NOW()
		WHERE session_id = $1`

	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	return nil
}
