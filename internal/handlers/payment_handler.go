package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/models"
	"github.com/consultly/consultly-backend/internal/services"
)

// PaymentHandler handles payment order, verification and webhook endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
	logger         *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *services.PaymentService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// CreateOrder creates a gateway order on the public surface
// @Summary Create payment order (public)
// @Description Creates a Razorpay order for a pending session
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.CreateOrderRequest true "Order request"
// @Success 201 {object} models.CreateOrderResponse
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /payments/create-order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	h.createOrder(c, true)
}

// CreateOrderAuthenticated creates a gateway order for a session or quotation
// @Summary Create payment order (authenticated)
// @Tags Payments
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.CreateOrderRequest true "Order request"
// @Success 201 {object} models.CreateOrderResponse
// @Router /consultant/payments/create-order [post]
func (h *PaymentHandler) CreateOrderAuthenticated(c *gin.Context) {
	h.createOrder(c, false)
}

func (h *PaymentHandler) createOrder(c *gin.Context, requireSession bool) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid request: " + err.Error(),
		}})
		return
	}

	resp, err := h.paymentService.CreateOrder(c.Request.Context(), &req, requireSession)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// VerifyPayment verifies the checkout callback signature and settles the order
// @Summary Verify payment
// @Description Verifies the Razorpay checkout signature; replays are idempotent
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.VerifyPaymentRequest true "Verification triple"
// @Success 200 {object} models.VerifyPaymentResponse
// @Failure 400 {object} map[string]interface{} "Signature invalid"
// @Failure 404 {object} map[string]interface{} "Order not found"
// @Router /payments/verify [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid request: " + err.Error(),
		}})
		return
	}

	resp, err := h.paymentService.VerifyAndProcess(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PaymentFailed records a failed-payment callback from checkout
// @Summary Record payment failure
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.PaymentFailedRequest true "Failure details"
// @Success 200 {object} map[string]interface{}
// @Router /payments/failed [post]
func (h *PaymentHandler) PaymentFailed(c *gin.Context) {
	var req models.PaymentFailedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    "INVALID_REQUEST",
			"message": "invalid request: " + err.Error(),
		}})
		return
	}

	if err := h.paymentService.HandleFailure(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Webhook receives gateway webhook deliveries. The response is always
// HTTP 200 so the gateway never retries into a failure loop; processing
// outcomes are recorded in the audit trail instead.
// @Summary Razorpay webhook
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} models.WebhookResult
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.WithError(err).Warn("Webhook body read failed")
		c.JSON(http.StatusOK, models.WebhookResult{Processed: false, Message: "unreadable body"})
		return
	}

	signature := c.GetHeader("x-razorpay-signature")
	result := h.paymentService.ProcessWebhookEvent(c.Request.Context(), body, signature)
	c.JSON(http.StatusOK, result)
}
