package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/database"
	"github.com/consultly/consultly-backend/internal/models"
	"github.com/consultly/consultly-backend/pkg/timerange"
)

// AvailabilityService manages weekly patterns and the public slot listing
type AvailabilityService struct {
	availabilityRepo *database.AvailabilityRepository
	consultantRepo   *database.ConsultantRepository
	generator        *SlotGeneratorService
	logger           *logrus.Logger
}

// NewAvailabilityService creates the availability service
func NewAvailabilityService(
	availabilityRepo *database.AvailabilityRepository,
	consultantRepo *database.ConsultantRepository,
	generator *SlotGeneratorService,
	logger *logrus.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		availabilityRepo: availabilityRepo,
		consultantRepo:   consultantRepo,
		generator:        generator,
		logger:           logger,
	}
}

// CreatePattern validates and stores a weekly availability pattern
func (s *AvailabilityService) CreatePattern(ctx context.Context, consultantID uuid.UUID, req *models.CreatePatternRequest) (*models.WeeklyAvailabilityPattern, error) {
	if !req.SessionType.Valid() {
		return nil, models.NewValidation("INVALID_SESSION_TYPE", "sessionType must be PERSONAL or WEBINAR")
	}
	if req.DayOfWeek == nil || *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		return nil, models.NewValidation("INVALID_DAY_OF_WEEK", "dayOfWeek must be between 0 (Sunday) and 6 (Saturday)")
	}
	if err := timerange.ValidateRange(req.StartTime, req.EndTime); err != nil {
		return nil, models.NewValidation("INVALID_TIME_RANGE", err.Error())
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	pattern := &models.WeeklyAvailabilityPattern{
		ID:           uuid.New(),
		ConsultantID: consultantID,
		SessionType:  req.SessionType,
		DayOfWeek:    *req.DayOfWeek,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Timezone:     timezone,
		IsActive:     true,
	}

	if err := s.availabilityRepo.CreatePattern(ctx, pattern); err != nil {
		return nil, models.NewAppError(500, models.CodeInternalError, "Failed to create availability pattern", err)
	}

	s.logger.WithFields(logrus.Fields{
		"pattern_id":    pattern.ID,
		"consultant_id": consultantID,
		"day_of_week":   pattern.DayOfWeek,
	}).Info("Availability pattern created")

	return pattern, nil
}

// ListPatterns returns the consultant's active patterns
func (s *AvailabilityService) ListPatterns(ctx context.Context, consultantID uuid.UUID) ([]models.WeeklyAvailabilityPattern, error) {
	patterns, err := s.availabilityRepo.ListActivePatterns(ctx, consultantID)
	if err != nil {
		return nil, models.NewAppError(500, models.CodeInternalError, "Failed to list availability patterns", err)
	}
	return patterns, nil
}

// DeactivatePattern soft-deletes a pattern
func (s *AvailabilityService) DeactivatePattern(ctx context.Context, consultantID, patternID uuid.UUID) error {
	done, err := s.availabilityRepo.DeactivatePattern(ctx, consultantID, patternID)
	if err != nil {
		return models.NewAppError(500, models.CodeInternalError, "Failed to remove availability pattern", err)
	}
	if !done {
		return models.NewNotFound("Availability pattern")
	}
	return nil
}

// GenerateSlots expands the consultant's patterns over the requested range
func (s *AvailabilityService) GenerateSlots(ctx context.Context, consultantID uuid.UUID, req *models.GenerateSlotsRequest, slotMinutes int) (*GenerateResult, error) {
	from, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local)
	if err != nil {
		return nil, models.NewValidation("INVALID_DATE_RANGE", "startDate must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation("2006-01-02", req.EndDate, time.Local)
	if err != nil {
		return nil, models.NewValidation("INVALID_DATE_RANGE", "endDate must be YYYY-MM-DD")
	}
	return s.generator.Generate(ctx, consultantID, from, to, slotMinutes)
}

// ListOpenSlots returns the public open slots for a bookable consultant
// over [from, to]
func (s *AvailabilityService) ListOpenSlots(ctx context.Context, slug string, from, to time.Time) ([]models.AvailabilitySlot, error) {
	consultant, err := s.consultantRepo.GetBookableBySlug(ctx, slug)
	if err != nil {
		return nil, models.NewAppError(500, models.CodeInternalError, "Failed to list slots", err)
	}
	if consultant == nil {
		return nil, models.NewNotFound("Consultant")
	}

	slots, err := s.availabilityRepo.ListOpenSlots(ctx, consultant.ID, from, to)
	if err != nil {
		return nil, models.NewAppError(500, models.CodeInternalError, "Failed to list slots", err)
	}
	return slots, nil
}
