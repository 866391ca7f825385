package models

import (
	"time"

	"github.com/google/uuid"
)

// Consultant represents an independent consultant offering bookable sessions.
// Read-only within the booking pipeline; mutations belong to the admin flows.
type Consultant struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Slug  string    `json:"slug" db:"slug"`
	Email string    `json:"email" db:"email"`
	Phone *string   `json:"phone,omitempty" db:"phone"`

	// Pricing (server-side source of truth for the booking amount check)
	PersonalSessionPrice float64 `json:"personal_session_price" db:"personal_session_price"`
	WebinarSessionPrice  float64 `json:"webinar_session_price" db:"webinar_session_price"`
	Currency             string  `json:"currency" db:"currency"`

	// Gating flags that together determine public bookability
	IsActive          bool `json:"is_active" db:"is_active"`
	IsEmailVerified   bool `json:"is_email_verified" db:"is_email_verified"`
	IsApprovedByAdmin bool `json:"is_approved_by_admin" db:"is_approved_by_admin"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsPubliclyBookable reports whether the consultant may appear on the
// public booking surface at all
func (c *Consultant) IsPubliclyBookable() bool {
	return c.IsActive && c.IsEmailVerified && c.IsApprovedByAdmin
}

// PriceFor returns the configured price for a session type
func (c *Consultant) PriceFor(sessionType SessionType) (float64, bool) {
	switch sessionType {
	case SessionTypePersonal:
		return c.PersonalSessionPrice, true
	case SessionTypeWebinar:
		return c.WebinarSessionPrice, true
	default:
		return 0, false
	}
}

// ConsultantSummary is the public projection returned with a booking
type ConsultantSummary struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}
