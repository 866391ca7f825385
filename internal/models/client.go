package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client represents a booking client scoped to one consultant.
// Identity is the (consultant_id, email) pair - the same email may exist
// once per consultant, never twice for the same consultant.
type Client struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ConsultantID uuid.UUID `json:"consultant_id" db:"consultant_id"`

	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email"`
	Phone     string `json:"phone" db:"phone"`

	// Counters are incremented by booking/payment events, never recomputed
	TotalSessions   int     `json:"total_sessions" db:"total_sessions"`
	TotalAmountPaid float64 `json:"total_amount_paid" db:"total_amount_paid"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ClientSummary is the projection returned with a booking
type ClientSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// SplitFullName splits a display name into first and last name parts
func SplitFullName(fullName string) (firstName, lastName string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
