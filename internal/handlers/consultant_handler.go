package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/services"
)

// ConsultantHandler serves the public consultant surface
type ConsultantHandler struct {
	consultantService *services.ConsultantService
	logger            *logrus.Logger
}

// NewConsultantHandler creates a new ConsultantHandler
func NewConsultantHandler(consultantService *services.ConsultantService, logger *logrus.Logger) *ConsultantHandler {
	return &ConsultantHandler{
		consultantService: consultantService,
		logger:            logger,
	}
}

// GetPublicProfile returns a bookable consultant's public profile
// @Summary Get consultant public profile
// @Tags Consultants
// @Produce json
// @Param slug path string true "Consultant slug"
// @Success 200 {object} services.PublicConsultantProfile
// @Failure 404 {object} map[string]interface{} "Consultant not found"
// @Router /consultants/{slug} [get]
func (h *ConsultantHandler) GetPublicProfile(c *gin.Context) {
	profile, err := h.consultantService.GetPublicProfile(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
