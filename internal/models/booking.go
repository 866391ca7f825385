package models

// BookSessionRequest is the public booking payload. Amount is what the
// client's page believes the price is; it is never trusted and is checked
// against the consultant's configured pricing server-side.
type BookSessionRequest struct {
	FullName    string      `json:"fullName" binding:"required"`
	Email       string      `json:"email" binding:"required,email"`
	Phone       string      `json:"phone" binding:"required"`
	SessionType SessionType `json:"sessionType" binding:"required"`

	SelectedDate string `json:"selectedDate"` // "YYYY-MM-DD", optional
	SelectedTime string `json:"selectedTime"` // "HH:MM", optional

	Duration    int     `json:"duration" binding:"omitempty,min=30,max=480"`
	Amount      float64 `json:"amount" binding:"min=0"`
	ClientNotes string  `json:"clientNotes"`

	ConsultantSlug string `json:"consultantSlug" binding:"required"`
}

// HasSchedule reports whether the request pins a concrete date and time
func (r *BookSessionRequest) HasSchedule() bool {
	return r.SelectedDate != "" && r.SelectedTime != ""
}

// HasPartialSchedule reports whether only one of date/time was supplied.
// A half-specified schedule is a client bug, never an unscheduled booking.
func (r *BookSessionRequest) HasPartialSchedule() bool {
	return (r.SelectedDate != "") != (r.SelectedTime != "")
}

// BookingMeta carries request-scoped metadata recorded on the session
type BookingMeta struct {
	Source     string
	IPAddress  string
	DeviceInfo JSONB
}

// BookingResult is the composite outcome of a successful booking
type BookingResult struct {
	Session    *Session
	Client     *Client
	Consultant *Consultant
}

// BookSessionResponse is the 201 envelope
type BookSessionResponse struct {
	Message string          `json:"message"`
	Data    BookSessionData `json:"data"`
}

// BookSessionData is the booking payload inside the response envelope
type BookSessionData struct {
	Session    SessionSummary    `json:"session"`
	Client     ClientSummary     `json:"client"`
	Consultant ConsultantSummary `json:"consultant"`
	NextSteps  []string          `json:"nextSteps"`
}

// BookingNextSteps is the static guidance returned with every booking
// (payment instructions follow separately)
var BookingNextSteps = []string{
	"Your session request has been received and is pending confirmation.",
	"Complete the payment to confirm your booking.",
	"You will receive a confirmation email with the meeting details.",
}
