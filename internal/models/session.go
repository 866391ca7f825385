package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// SESSION TYPES & STATUSES (match DB ENUMs)
// ============================================================================

// SessionType represents the kind of session being booked
type SessionType string

const (
	SessionTypePersonal SessionType = "PERSONAL"
	SessionTypeWebinar  SessionType = "WEBINAR"
)

// Valid reports whether the session type is one of the known variants
func (t SessionType) Valid() bool {
	return t == SessionTypePersonal || t == SessionTypeWebinar
}

// SessionStatus represents the scheduling state of a session
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "PENDING"
	SessionStatusConfirmed  SessionStatus = "CONFIRMED"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusOngoing    SessionStatus = "ONGOING"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusCancelled  SessionStatus = "CANCELLED"
	SessionStatusNoShow     SessionStatus = "NO_SHOW"
)

// ActiveSessionStatuses are the states that keep a datetime slot occupied.
// Used by the advisory conflict probe before the booking transaction.
var ActiveSessionStatuses = []SessionStatus{
	SessionStatusPending,
	SessionStatusConfirmed,
	SessionStatusInProgress,
	SessionStatusOngoing,
}

// sessionTransitions is the scheduling state machine. The booking pipeline
// only ever produces PENDING; the other transitions belong to the session
// management endpoints.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusPending:    {SessionStatusConfirmed, SessionStatusCancelled, SessionStatusNoShow},
	SessionStatusConfirmed:  {SessionStatusInProgress, SessionStatusOngoing, SessionStatusCancelled, SessionStatusNoShow},
	SessionStatusInProgress: {SessionStatusCompleted},
	SessionStatusOngoing:    {SessionStatusCompleted},
}

// CanTransitionTo reports whether the scheduling state machine allows the move
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus represents the payment state of a session, independent of
// its scheduling state
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// CanTransitionTo reports whether the payment state machine allows the move.
// PAID and FAILED are terminal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentStatusPending && (next == PaymentStatusPaid || next == PaymentStatusFailed)
}

// ============================================================================
// SESSION
// ============================================================================

// Session is the booking record tying a client to a consultant. A session
// may exist without a fixed date/time (scheduling deferred) - in that case
// no availability slot was consulted or mutated.
type Session struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ConsultantID uuid.UUID `json:"consultant_id" db:"consultant_id"`
	ClientID     uuid.UUID `json:"client_id" db:"client_id"`

	Title       string        `json:"title" db:"title"`
	SessionType SessionType   `json:"session_type" db:"session_type"`
	Status      SessionStatus `json:"status" db:"status"`

	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`

	ScheduledDate   *time.Time `json:"scheduled_date,omitempty" db:"scheduled_date"`
	ScheduledTime   *string    `json:"scheduled_time,omitempty" db:"scheduled_time"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`

	Amount   float64 `json:"amount" db:"amount"`
	Currency string  `json:"currency" db:"currency"`

	ClientNotes   *string `json:"client_notes,omitempty" db:"client_notes"`
	BookingSource string  `json:"booking_source" db:"booking_source"`
	DeviceInfo    JSONB   `json:"device_info,omitempty" db:"device_info"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsScheduled reports whether the session carries a fixed date and time
func (s *Session) IsScheduled() bool {
	return s.ScheduledDate != nil && s.ScheduledTime != nil
}

// SessionSummary is the projection returned by the booking endpoint
type SessionSummary struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	SessionType   SessionType   `json:"sessionType"`
	ScheduledDate string        `json:"scheduledDate"`
	ScheduledTime string        `json:"scheduledTime"`
	Duration      int           `json:"duration"`
	Amount        float64       `json:"amount"`
	Status        SessionStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// Summarize builds the public projection of a session
func (s *Session) Summarize() SessionSummary {
	summary := SessionSummary{
		ID:            s.ID,
		Title:         s.Title,
		SessionType:   s.SessionType,
		Duration:      s.DurationMinutes,
		Amount:        s.Amount,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
	}
	if s.ScheduledDate != nil {
		summary.ScheduledDate = s.ScheduledDate.Format("2006-01-02")
	}
	if s.ScheduledTime != nil {
		summary.ScheduledTime = *s.ScheduledTime
	}
	return summary
}
