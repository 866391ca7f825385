package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/consultly/consultly-backend/internal/models"
)

func TestBookingConfirmationMessagePendingWording(t *testing.T) {
	client := &models.Client{FirstName: "Asha", Email: "asha@example.com"}
	consultant := &models.Consultant{Name: "Dr. Mehta"}

	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	startTime := "10:00"
	session := &models.Session{
		SessionType:   models.SessionTypePersonal,
		ScheduledDate: &date,
		ScheduledTime: &startTime,
		Amount:        1500,
	}

	subject, html := bookingConfirmationMessage(client, consultant, session)

	assert.Equal(t, "Booking received for your session with Dr. Mehta", subject)
	assert.Contains(t, html, "has been received and is pending payment")
	assert.Contains(t, html, "Complete the payment to confirm your spot")
	assert.Contains(t, html, "Requested for 2026-09-14 at 10:00")
	assert.NotContains(t, html, "is confirmed")
}

func TestBookingConfirmationMessageUnscheduled(t *testing.T) {
	client := &models.Client{FirstName: "Asha"}
	consultant := &models.Consultant{Name: "Dr. Mehta"}
	session := &models.Session{SessionType: models.SessionTypeWebinar, Amount: 500}

	_, html := bookingConfirmationMessage(client, consultant, session)

	assert.Contains(t, html, "Your consultant will contact you to schedule the session")
	assert.Contains(t, html, "webinar session")
}
