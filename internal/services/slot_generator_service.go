package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/database"
	"github.com/consultly/consultly-backend/internal/models"
	"github.com/consultly/consultly-backend/pkg/timerange"
)

// SlotGeneratorService expands weekly availability patterns into concrete
// dated slots
type SlotGeneratorService struct {
	availabilityRepo *database.AvailabilityRepository
	logger           *logrus.Logger
}

// NewSlotGeneratorService creates the slot generator
func NewSlotGeneratorService(availabilityRepo *database.AvailabilityRepository, logger *logrus.Logger) *SlotGeneratorService {
	return &SlotGeneratorService{
		availabilityRepo: availabilityRepo,
		logger:           logger,
	}
}

// GenerateResult summarizes a generation run
type GenerateResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Generate materializes slots for every active pattern over [from, to]
// inclusive. Slot duration follows the request; the last slot of a window
// never spills past the pattern's end time. Regeneration is idempotent:
// existing slots (including booked ones) are left untouched and counted
// as skipped. Dates before today are skipped entirely.
func (s *SlotGeneratorService) Generate(ctx context.Context, consultantID uuid.UUID, from, to time.Time, slotMinutes int) (*GenerateResult, error) {
	if slotMinutes <= 0 {
		return nil, models.NewValidation("INVALID_SLOT_DURATION", "slot duration must be positive")
	}
	if to.Before(from) {
		return nil, models.NewValidation("INVALID_DATE_RANGE", "end date must not be before start date")
	}

	patterns, err := s.availabilityRepo.ListActivePatterns(ctx, consultantID)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return &GenerateResult{}, nil
	}

	byDay := make(map[int][]models.WeeklyAvailabilityPattern)
	for _, p := range patterns {
		byDay[p.DayOfWeek] = append(byDay[p.DayOfWeek], p)
	}

	// Local midnight, not Truncate: truncation rounds on UTC and would
	// misclassify today as past in zones ahead of UTC
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	result := &GenerateResult{}

	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		if date.Before(today) {
			continue
		}
		for _, pattern := range byDay[int(date.Weekday())] {
			created, skipped, err := s.expandPattern(ctx, consultantID, date, pattern, slotMinutes)
			if err != nil {
				return nil, err
			}
			result.Created += created
			result.Skipped += skipped
		}
	}

	s.logger.WithFields(logrus.Fields{
		"consultant_id": consultantID,
		"from":          from.Format("2006-01-02"),
		"to":            to.Format("2006-01-02"),
		"created":       result.Created,
		"skipped":       result.Skipped,
	}).Info("Availability slots generated")

	return result, nil
}

func (s *SlotGeneratorService) expandPattern(ctx context.Context, consultantID uuid.UUID, date time.Time, pattern models.WeeklyAvailabilityPattern, slotMinutes int) (created, skipped int, err error) {
	start, err := timerange.ParseClock(pattern.StartTime)
	if err != nil {
		return 0, 0, fmt.Errorf("pattern %s has invalid start time: %w", pattern.ID, err)
	}
	end, err := timerange.ParseClock(pattern.EndTime)
	if err != nil {
		return 0, 0, fmt.Errorf("pattern %s has invalid end time: %w", pattern.ID, err)
	}

	for cur := start; cur+slotMinutes <= end; cur += slotMinutes {
		slot := &models.AvailabilitySlot{
			ID:           uuid.New(),
			ConsultantID: consultantID,
			SessionType:  pattern.SessionType,
			SlotDate:     date,
			StartTime:    timerange.FormatClock(cur),
			EndTime:      timerange.FormatClock(cur + slotMinutes),
		}

		inserted, err := s.availabilityRepo.CreateSlotIfAbsent(ctx, slot)
		if err != nil {
			return created, skipped, err
		}
		if inserted {
			created++
		} else {
			skipped++
		}
	}
	return created, skipped, nil
}
