package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/config"
	"github.com/consultly/consultly-backend/internal/database"
	"github.com/consultly/consultly-backend/internal/models"
	"github.com/consultly/consultly-backend/pkg/timerange"
)

// BookingService runs the public booking pipeline: validate, resolve the
// consultant, cross-check the price, probe the slot, then commit the
// atomic booking transaction and fire detached side effects.
type BookingService struct {
	consultantRepo   *database.ConsultantRepository
	sessionRepo      *database.SessionRepository
	availabilityRepo *database.AvailabilityRepository
	bookingRepo      *database.BookingRepository
	email            EmailSender
	cache            *CacheService
	cfg              *config.BookingConfig
	logger           *logrus.Logger

	// now is swappable in tests
	now func() time.Time
}

// NewBookingService creates the booking service
func NewBookingService(
	consultantRepo *database.ConsultantRepository,
	sessionRepo *database.SessionRepository,
	availabilityRepo *database.AvailabilityRepository,
	bookingRepo *database.BookingRepository,
	email EmailSender,
	cache *CacheService,
	cfg *config.BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		consultantRepo:   consultantRepo,
		sessionRepo:      sessionRepo,
		availabilityRepo: availabilityRepo,
		bookingRepo:      bookingRepo,
		email:            email,
		cache:            cache,
		cfg:              cfg,
		logger:           logger,
		now:              time.Now,
	}
}

// BookSession executes the full booking pipeline. The returned error is
// always one of the typed model errors; unexpected failures are wrapped
// behind a stable public message.
func (s *BookingService) BookSession(ctx context.Context, req *models.BookSessionRequest, meta models.BookingMeta) (*models.BookingResult, error) {
	if !req.SessionType.Valid() {
		return nil, models.NewValidation("INVALID_SESSION_TYPE", "sessionType must be PERSONAL or WEBINAR")
	}
	if req.HasPartialSchedule() {
		return nil, models.NewValidation("INVALID_DATETIME", "selectedDate and selectedTime must be provided together")
	}

	consultant, err := s.consultantRepo.GetBookableBySlug(ctx, req.ConsultantSlug)
	if err != nil {
		return nil, models.NewBookingFailed(err)
	}
	if consultant == nil {
		return nil, models.NewNotFound("Consultant")
	}

	price, ok := consultant.PriceFor(req.SessionType)
	if !ok {
		return nil, models.NewValidation("INVALID_SESSION_TYPE", "sessionType must be PERSONAL or WEBINAR")
	}
	if !models.AmountsMatch(req.Amount, price) {
		return nil, models.NewValidation("PRICE_MISMATCH",
			fmt.Sprintf("amount does not match the current price of %.2f", price))
	}

	params := database.BookingParams{
		ConsultantID:  consultant.ID,
		ClientName:    strings.TrimSpace(req.FullName),
		ClientEmail:   strings.ToLower(strings.TrimSpace(req.Email)),
		ClientPhone:   strings.TrimSpace(req.Phone),
		Title:         sessionTitle(req.SessionType, consultant.Name),
		SessionType:   req.SessionType,
		Amount:        price,
		Currency:      consultant.Currency,
		Duration:      req.Duration,
		BookingSource: meta.Source,
		DeviceInfo:    mergeDeviceInfo(meta),
	}
	if params.Duration == 0 {
		params.Duration = s.cfg.DefaultDuration
	}
	if notes := strings.TrimSpace(req.ClientNotes); notes != "" {
		params.ClientNotes = &notes
	}

	if req.HasSchedule() {
		date, clock, err := s.validateSchedule(ctx, consultant, req)
		if err != nil {
			return nil, err
		}
		params.ScheduledDate = &date
		params.ScheduledTime = &clock
	}

	// The transaction runs on its own deadline, detached from the HTTP
	// request context. A slow commit settles on its own terms instead of
	// being torn down mid-flight by the outer timeout.
	txCtx, cancel := context.WithTimeout(context.Background(), s.cfg.TransactionTimeout)
	defer cancel()

	result, err := s.bookingRepo.CreateBooking(txCtx, params)
	if err != nil {
		if errors.Is(err, database.ErrSlotUnavailable) {
			return nil, models.NewValidation("SLOT_TAKEN", "This time slot has just been booked. Please choose another time.")
		}
		s.logger.WithError(err).WithFields(logrus.Fields{
			"consultant_slug": req.ConsultantSlug,
			"session_type":    req.SessionType,
		}).Error("Booking transaction failed")
		return nil, models.NewBookingFailed(err)
	}
	result.Consultant = consultant

	s.logger.WithFields(logrus.Fields{
		"session_id":    result.Session.ID,
		"consultant_id": consultant.ID,
		"client_id":     result.Client.ID,
		"session_type":  req.SessionType,
		"scheduled":     result.Session.IsScheduled(),
	}).Info("Session booked")

	s.dispatchSideEffects(result)
	return result, nil
}

// validateSchedule parses the requested date/time, rejects the past, and
// runs the advisory availability probes. These probes give fast, specific
// errors; the transactional claim remains the authoritative gate.
func (s *BookingService) validateSchedule(ctx context.Context, consultant *models.Consultant, req *models.BookSessionRequest) (time.Time, string, error) {
	startAt, err := timerange.Compose(req.SelectedDate, req.SelectedTime)
	if err != nil {
		return time.Time{}, "", models.NewValidation("INVALID_DATETIME", err.Error())
	}
	if !startAt.After(s.now()) {
		return time.Time{}, "", models.NewValidation("PAST_DATETIME", "selected date and time must be in the future")
	}

	date, err := time.ParseInLocation("2006-01-02", req.SelectedDate, time.Local)
	if err != nil {
		return time.Time{}, "", models.NewValidation("INVALID_DATETIME", "selectedDate must be YYYY-MM-DD")
	}

	slot, err := s.availabilityRepo.FindSlot(ctx, consultant.ID, req.SessionType, date, req.SelectedTime)
	if err != nil {
		return time.Time{}, "", models.NewBookingFailed(err)
	}
	if slot == nil {
		return time.Time{}, "", models.NewValidation("SLOT_UNAVAILABLE", "The selected time is not offered by this consultant.")
	}
	if slot.IsBooked || slot.IsBlocked {
		return time.Time{}, "", models.NewValidation("SLOT_TAKEN", "The selected time slot is no longer available.")
	}

	taken, err := s.sessionRepo.HasActiveSessionAt(ctx, consultant.ID, date, req.SelectedTime)
	if err != nil {
		return time.Time{}, "", models.NewBookingFailed(err)
	}
	if taken {
		return time.Time{}, "", models.NewValidation("SLOT_TAKEN", "The selected time slot is no longer available.")
	}

	return date, req.SelectedTime, nil
}

// dispatchSideEffects fires the post-commit side channel. Nothing here can
// fail the booking: the response is already decided.
func (s *BookingService) dispatchSideEffects(result *models.BookingResult) {
	client, consultant, session := result.Client, result.Consultant, result.Session

	dispatchDetached(s.logger, "booking_confirmation_email", func() error {
		return s.email.SendBookingConfirmation(client, consultant, session)
	})
	dispatchDetached(s.logger, "booking_notice_email", func() error {
		return s.email.SendBookingNotice(consultant, client, session)
	})
	dispatchDetached(s.logger, "cache_invalidation", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.cache.InvalidateConsultant(ctx, consultant.ID)
		return nil
	})
}

func sessionTitle(sessionType models.SessionType, consultantName string) string {
	kind := "Consultation"
	if sessionType == models.SessionTypeWebinar {
		kind = "Webinar"
	}
	return fmt.Sprintf("%s with %s", kind, consultantName)
}

func mergeDeviceInfo(meta models.BookingMeta) models.JSONB {
	info := models.JSONB{}
	for k, v := range meta.DeviceInfo {
		info[k] = v
	}
	if meta.IPAddress != "" {
		info["ip_address"] = meta.IPAddress
	}
	if len(info) == 0 {
		return nil
	}
	return info
}
