package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/database"
	"github.com/consultly/consultly-backend/internal/models"
)

// consultantProfileTTL bounds staleness of the public profile between
// invalidations
const consultantProfileTTL = 5 * time.Minute

// PublicConsultantProfile is the cacheable public projection of a consultant
type PublicConsultantProfile struct {
	Name                 string  `json:"name"`
	Slug                 string  `json:"slug"`
	PersonalSessionPrice float64 `json:"personalSessionPrice"`
	WebinarSessionPrice  float64 `json:"webinarSessionPrice"`
	Currency             string  `json:"currency"`
}

// ConsultantService serves the public consultant surface
type ConsultantService struct {
	consultantRepo *database.ConsultantRepository
	cache          *CacheService
	logger         *logrus.Logger
}

// NewConsultantService creates the consultant service
func NewConsultantService(consultantRepo *database.ConsultantRepository, cache *CacheService, logger *logrus.Logger) *ConsultantService {
	return &ConsultantService{
		consultantRepo: consultantRepo,
		cache:          cache,
		logger:         logger,
	}
}

// GetPublicProfile returns the bookable consultant's public profile,
// cache-aside. Unapproved or inactive consultants surface as not-found.
func (s *ConsultantService) GetPublicProfile(ctx context.Context, slug string) (*PublicConsultantProfile, error) {
	key := fmt.Sprintf("consultant:profile:%s", slug)

	profile := &PublicConsultantProfile{}
	hit, err := s.cache.Get(ctx, key, profile)
	if err != nil {
		s.logger.WithError(err).WithField("slug", slug).Warn("Profile cache read failed")
	}
	if hit {
		return profile, nil
	}

	consultant, err := s.consultantRepo.GetBookableBySlug(ctx, slug)
	if err != nil {
		return nil, models.NewAppError(500, models.CodeInternalError, "Failed to load consultant", err)
	}
	if consultant == nil {
		return nil, models.NewNotFound("Consultant")
	}

	profile = &PublicConsultantProfile{
		Name:                 consultant.Name,
		Slug:                 consultant.Slug,
		PersonalSessionPrice: consultant.PersonalSessionPrice,
		WebinarSessionPrice:  consultant.WebinarSessionPrice,
		Currency:             consultant.Currency,
	}

	if err := s.cache.Set(ctx, key, profile, consultantProfileTTL); err != nil {
		s.logger.WithError(err).WithField("slug", slug).Warn("Profile cache write failed")
	}
	return profile, nil
}
