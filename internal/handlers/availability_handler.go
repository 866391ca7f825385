package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/config"
	"github.com/consultly/consultly-backend/internal/middleware"
	"github.com/consultly/consultly-backend/internal/models"
	"github.com/consultly/consultly-backend/internal/services"
)

// AvailabilityHandler handles the availability pattern and slot endpoints
type AvailabilityHandler struct {
	availabilityService *services.AvailabilityService
	cfg                 *config.BookingConfig
	logger              *logrus.Logger
}

// NewAvailabilityHandler creates a new AvailabilityHandler
func NewAvailabilityHandler(availabilityService *services.AvailabilityService, cfg *config.BookingConfig, logger *logrus.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityService: availabilityService,
		cfg:                 cfg,
		logger:              logger,
	}
}

// CreatePattern creates a weekly availability pattern
// @Summary Create weekly availability pattern
// @Tags Availability
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.CreatePatternRequest true "Pattern"
// @Success 201 {object} models.WeeklyAvailabilityPattern
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /consultant/availability/patterns [post]
func (h *AvailabilityHandler) CreatePattern(c *gin.Context) {
	consultantCtx, exists := middleware.GetConsultantContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "consultant not authenticated"})
		return
	}

	var req models.CreatePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid request: " + err.Error(),
		}})
		return
	}

	pattern, err := h.availabilityService.CreatePattern(c.Request.Context(), consultantCtx.ConsultantID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, pattern)
}

// ListPatterns lists the consultant's active weekly patterns
// @Summary List weekly availability patterns
// @Tags Availability
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {array} models.WeeklyAvailabilityPattern
// @Router /consultant/availability/patterns [get]
func (h *AvailabilityHandler) ListPatterns(c *gin.Context) {
	consultantCtx, exists := middleware.GetConsultantContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "consultant not authenticated"})
		return
	}

	patterns, err := h.availabilityService.ListPatterns(c.Request.Context(), consultantCtx.ConsultantID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, patterns)
}

// DeletePattern deactivates a weekly pattern
// @Summary Remove weekly availability pattern
// @Tags Availability
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param pattern_id path string true "Pattern ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Pattern not found"
// @Router /consultant/availability/patterns/{pattern_id} [delete]
func (h *AvailabilityHandler) DeletePattern(c *gin.Context) {
	consultantCtx, exists := middleware.GetConsultantContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "consultant not authenticated"})
		return
	}

	patternID, err := uuid.Parse(c.Param("pattern_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid pattern_id",
		}})
		return
	}

	if err := h.availabilityService.DeactivatePattern(c.Request.Context(), consultantCtx.ConsultantID, patternID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GenerateSlots expands the consultant's patterns into concrete slots
// @Summary Generate availability slots
// @Description Expands active weekly patterns into dated slots; idempotent
// @Tags Availability
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.GenerateSlotsRequest true "Date range"
// @Success 200 {object} services.GenerateResult
// @Router /consultant/availability/generate [post]
func (h *AvailabilityHandler) GenerateSlots(c *gin.Context) {
	consultantCtx, exists := middleware.GetConsultantContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "consultant not authenticated"})
		return
	}

	var req models.GenerateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid request: " + err.Error(),
		}})
		return
	}

	result, err := h.availabilityService.GenerateSlots(c.Request.Context(), consultantCtx.ConsultantID, &req, h.cfg.DefaultDuration)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListOpenSlots lists a consultant's open slots for the public booking page
// @Summary List open slots
// @Tags Availability
// @Produce json
// @Param slug path string true "Consultant slug"
// @Param from query string false "Start date (YYYY-MM-DD), defaults to today"
// @Param to query string false "End date (YYYY-MM-DD), defaults to from+30d"
// @Success 200 {array} models.AvailabilitySlot
// @Failure 404 {object} map[string]interface{} "Consultant not found"
// @Router /consultants/{slug}/slots [get]
func (h *AvailabilityHandler) ListOpenSlots(c *gin.Context) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if s := c.Query("from"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "from must be YYYY-MM-DD",
			}})
			return
		}
		from = parsed
	}

	to := from.AddDate(0, 0, 30)
	if s := c.Query("to"); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "to must be YYYY-MM-DD",
			}})
			return
		}
		to = parsed
	}

	slots, err := h.availabilityService.ListOpenSlots(c.Request.Context(), c.Param("slug"), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}
