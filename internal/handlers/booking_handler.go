package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/config"
	"github.com/consultly/consultly-backend/internal/models"
	"github.com/consultly/consultly-backend/internal/services"
	"github.com/consultly/consultly-backend/internal/utils"
)

// BookingHandler handles the public session booking endpoint
type BookingHandler struct {
	bookingService *services.BookingService
	cfg            *config.BookingConfig
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, cfg *config.BookingConfig, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		cfg:            cfg,
		logger:         logger,
	}
}

type bookingOutcome struct {
	result *models.BookingResult
	err    error
}

// BookSession creates a session booking
// @Summary Book a session
// @Description Books a session with a consultant, claiming the slot atomically
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body models.BookSessionRequest true "Booking request"
// @Success 201 {object} models.BookSessionResponse
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]interface{} "Consultant not found"
// @Failure 408 {object} map[string]interface{} "Request timed out"
// @Router /book [post]
func (h *BookingHandler) BookSession(c *gin.Context) {
	var req models.BookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid request: " + err.Error(),
		}})
		return
	}

	meta := models.BookingMeta{
		Source:     "public_booking_page",
		IPAddress:  utils.GetRealIP(c),
		DeviceInfo: utils.ParseUserAgent(c.Request.UserAgent()),
	}

	// The pipeline runs on its own goroutine so the handler can enforce
	// the request deadline. The buffered channel plus the select mean
	// exactly one response is ever written: a late pipeline result after
	// the timeout fires is delivered to the channel and dropped.
	outcome := make(chan bookingOutcome, 1)
	go func() {
		result, err := h.bookingService.BookSession(c.Request.Context(), &req, meta)
		outcome <- bookingOutcome{result: result, err: err}
	}()

	select {
	case out := <-outcome:
		if out.err != nil {
			respondError(c, h.logger, out.err)
			return
		}
		c.JSON(http.StatusCreated, models.BookSessionResponse{
			Message: "Session booked successfully",
			Data: models.BookSessionData{
				Session: out.result.Session.Summarize(),
				Client: models.ClientSummary{
					ID:    out.result.Client.ID,
					Name:  out.result.Client.Name,
					Email: out.result.Client.Email,
				},
				Consultant: models.ConsultantSummary{
					Name: out.result.Consultant.Name,
					Slug: out.result.Consultant.Slug,
				},
				NextSteps: models.BookingNextSteps,
			},
		})
	case <-time.After(h.cfg.RequestTimeout):
		h.logger.WithFields(logrus.Fields{
			"consultant_slug": req.ConsultantSlug,
			"timeout":         h.cfg.RequestTimeout,
		}).Warn("Booking request timed out")
		c.JSON(http.StatusRequestTimeout, gin.H{"error": gin.H{
			"code":    "REQUEST_TIMEOUT",
			"message": "The booking request took too long. Please try again.",
		}})
	}
}
