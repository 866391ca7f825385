package models

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyAvailabilityPattern is a recurring template (day-of-week + time
// range) used to bulk-generate future slots. Times are wall-clock "HH:MM"
// strings; the timezone is carried as metadata and is not applied when
// comparing times.
type WeeklyAvailabilityPattern struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	ConsultantID uuid.UUID   `json:"consultant_id" db:"consultant_id"`
	SessionType  SessionType `json:"session_type" db:"session_type"`

	DayOfWeek int    `json:"day_of_week" db:"day_of_week"` // 0 = Sunday ... 6 = Saturday
	StartTime string `json:"start_time" db:"start_time"`   // "HH:MM"
	EndTime   string `json:"end_time" db:"end_time"`       // "HH:MM"
	Timezone  string `json:"timezone" db:"timezone"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AvailabilitySlot is one bookable (consultant, session type, date, start
// time) unit. A slot with IsBooked = true always carries the session that
// booked it; at most one session may ever reference a given slot.
type AvailabilitySlot struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	ConsultantID uuid.UUID   `json:"consultant_id" db:"consultant_id"`
	SessionType  SessionType `json:"session_type" db:"session_type"`

	SlotDate  time.Time `json:"slot_date" db:"slot_date"`
	StartTime string    `json:"start_time" db:"start_time"` // "HH:MM"
	EndTime   string    `json:"end_time" db:"end_time"`     // "HH:MM"

	IsBooked  bool       `json:"is_booked" db:"is_booked"`
	IsBlocked bool       `json:"is_blocked" db:"is_blocked"`
	SessionID *uuid.UUID `json:"session_id,omitempty" db:"session_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreatePatternRequest is the payload for creating a weekly pattern
type CreatePatternRequest struct {
	SessionType SessionType `json:"sessionType" binding:"required"`
	DayOfWeek   *int        `json:"dayOfWeek" binding:"required"`
	StartTime   string      `json:"startTime" binding:"required"`
	EndTime     string      `json:"endTime" binding:"required"`
	Timezone    string      `json:"timezone"`
}

// GenerateSlotsRequest is the payload for expanding patterns into slots
type GenerateSlotsRequest struct {
	StartDate string `json:"startDate" binding:"required"` // "YYYY-MM-DD"
	EndDate   string `json:"endDate" binding:"required"`   // "YYYY-MM-DD"
}
