package services

import (
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/config"
	"github.com/consultly/consultly-backend/internal/models"
)

// EmailSender sends transactional emails
type EmailSender interface {
	SendBookingConfirmation(client *models.Client, consultant *models.Consultant, session *models.Session) error
	SendBookingNotice(consultant *models.Consultant, client *models.Client, session *models.Session) error
	SendPaymentReceipt(order *models.PaymentOrder, txn *models.PaymentTransaction) error
}

// EmailService sends transactional email through Resend. In dev mode it
// logs the message instead of sending.
type EmailService struct {
	config *config.ResendConfig
	client *resend.Client
	logger *logrus.Logger
}

// NewEmailService creates the email service
func NewEmailService(cfg *config.ResendConfig, logger *logrus.Logger) *EmailService {
	var client *resend.Client
	if cfg.Mode == "production" {
		client = resend.NewClient(cfg.APIKey)
	}

	return &EmailService{
		config: cfg,
		client: client,
		logger: logger,
	}
}

// SendBookingConfirmation emails the client after a successful booking
func (s *EmailService) SendBookingConfirmation(client *models.Client, consultant *models.Consultant, session *models.Session) error {
	subject, html := bookingConfirmationMessage(client, consultant, session)
	return s.send([]string{client.Email}, subject, html)
}

// bookingConfirmationMessage builds the client email. The session is still
// awaiting payment at this point, so the copy must not claim a confirmation.
func bookingConfirmationMessage(client *models.Client, consultant *models.Consultant, session *models.Session) (string, string) {
	subject := fmt.Sprintf("Booking received for your session with %s", consultant.Name)

	schedule := "Your consultant will contact you to schedule the session."
	if session.IsScheduled() {
		schedule = fmt.Sprintf("Requested for %s at %s.",
			session.ScheduledDate.Format("2006-01-02"), *session.ScheduledTime)
	}

	var body strings.Builder
	body.WriteString(fmt.Sprintf("<p>Hi %s,</p>", client.FirstName))
	body.WriteString(fmt.Sprintf("<p>Your %s session with %s has been received and is pending payment.</p>",
		strings.ToLower(string(session.SessionType)), consultant.Name))
	body.WriteString(fmt.Sprintf("<p>%s</p>", schedule))
	body.WriteString(fmt.Sprintf("<p>Amount: %.2f</p>", session.Amount))
	body.WriteString("<p>Complete the payment to confirm your spot.</p>")

	return subject, body.String()
}

// SendBookingNotice emails the consultant about a new booking
func (s *EmailService) SendBookingNotice(consultant *models.Consultant, client *models.Client, session *models.Session) error {
	subject := fmt.Sprintf("New booking from %s", client.Name)

	schedule := "No date selected; the client expects you to reach out."
	if session.IsScheduled() {
		schedule = fmt.Sprintf("Requested for %s at %s.",
			session.ScheduledDate.Format("2006-01-02"), *session.ScheduledTime)
	}

	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s booked a %s session.</p><p>%s</p><p>Contact: %s / %s</p>",
		consultant.Name, client.Name, strings.ToLower(string(session.SessionType)),
		schedule, client.Email, client.Phone)

	return s.send([]string{consultant.Email}, subject, html)
}

// SendPaymentReceipt emails the payer after a verified payment
func (s *EmailService) SendPaymentReceipt(order *models.PaymentOrder, txn *models.PaymentTransaction) error {
	subject := "Payment received"
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received your payment of %.2f %s.</p><p>Reference: %s</p>",
		order.ClientName, txn.Amount, txn.Currency, txn.RazorpayPaymentID)

	return s.send([]string{order.ClientEmail}, subject, html)
}

func (s *EmailService) send(to []string, subject, html string) error {
	if s.client == nil {
		s.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email suppressed (dev mode)")
		return nil
	}

	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      to,
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Email sent")
	return nil
}
