package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/database"
	"github.com/consultly/consultly-backend/internal/models"
)

// PaymentService manages gateway orders and reconciles their outcomes from
// both the client callback and the gateway webhook. Every path is
// idempotent: replays settle to the same state the first delivery produced.
type PaymentService struct {
	paymentRepo *database.PaymentRepository
	auditRepo   *database.PaymentAuditRepository
	sessionRepo *database.SessionRepository
	clientRepo  *database.ClientRepository
	gateway     PaymentGateway
	email       EmailSender
	cache       *CacheService
	logger      *logrus.Logger
}

// NewPaymentService creates the payment service
func NewPaymentService(
	paymentRepo *database.PaymentRepository,
	auditRepo *database.PaymentAuditRepository,
	sessionRepo *database.SessionRepository,
	clientRepo *database.ClientRepository,
	gateway PaymentGateway,
	email EmailSender,
	cache *CacheService,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		sessionRepo: sessionRepo,
		clientRepo:  clientRepo,
		gateway:     gateway,
		email:       email,
		cache:       cache,
		logger:      logger,
	}
}

// CreateOrder validates the payment target and creates a gateway order.
// requireSession is set on the public route, which may only pay for
// sessions. Exactly one of sessionId/quotationId must be present, the
// target must still be payable, and the client-supplied amount must match
// the target's stored amount.
func (s *PaymentService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest, requireSession bool) (*models.CreateOrderResponse, error) {
	if !s.gateway.IsConfigured() {
		return nil, models.NewAppError(503, models.CodePaymentError, "Payment gateway is not configured", nil)
	}

	hasSession := req.SessionID != nil
	hasQuotation := req.QuotationID != nil
	if hasSession == hasQuotation {
		return nil, models.NewValidation("INVALID_ORDER_TARGET", "exactly one of sessionId or quotationId is required")
	}
	if requireSession && !hasSession {
		return nil, models.NewValidation("INVALID_ORDER_TARGET", "sessionId is required")
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	order := &models.PaymentOrder{
		ID:          uuid.New(),
		SessionID:   req.SessionID,
		QuotationID: req.QuotationID,
		Amount:      req.Amount,
		Currency:    currency,
		Status:      models.PaymentOrderCreated,
		ClientEmail: req.ClientEmail,
		ClientName:  req.ClientName,
		Notes:       req.Notes,
	}

	var expected float64
	if hasSession {
		session, err := s.sessionRepo.GetByID(ctx, *req.SessionID)
		if err != nil {
			return nil, models.NewAppError(500, models.CodePaymentError, "Failed to create payment order", err)
		}
		if session == nil {
			return nil, models.NewNotFound("Session")
		}
		if session.PaymentStatus != models.PaymentStatusPending {
			return nil, models.NewValidation("SESSION_NOT_PAYABLE",
				fmt.Sprintf("session payment status is %s", session.PaymentStatus))
		}
		order.ConsultantID = session.ConsultantID
		expected = session.Amount
	} else {
		quotation, err := s.paymentRepo.GetQuotationByID(ctx, *req.QuotationID)
		if err != nil {
			return nil, models.NewAppError(500, models.CodePaymentError, "Failed to create payment order", err)
		}
		if quotation == nil {
			return nil, models.NewNotFound("Quotation")
		}
		order.ConsultantID = quotation.ConsultantID
		expected = quotation.Amount
	}

	if !models.AmountsMatch(req.Amount, expected) {
		return nil, models.NewValidation("AMOUNT_MISMATCH",
			fmt.Sprintf("amount does not match the stored amount of %.2f", expected))
	}
	order.Amount = expected

	receipt := fmt.Sprintf("order_%s", order.ID)
	razorpayOrderID, err := s.gateway.CreateOrder(order.Amount, order.Currency, receipt, order.Notes)
	if err != nil {
		s.audit(&models.PaymentAudit{
			EventType:    models.PaymentEventError,
			EventSource:  models.PaymentSourceBackend,
			ErrorMessage: strPtr(err.Error()),
		})
		return nil, models.NewAppError(502, models.CodePaymentError, "Failed to create payment order", err)
	}
	order.RazorpayOrderID = razorpayOrderID

	if err := s.paymentRepo.CreateOrder(ctx, order); err != nil {
		return nil, models.NewAppError(500, models.CodePaymentError, "Failed to create payment order", err)
	}

	s.audit(&models.PaymentAudit{
		OrderID:         &order.ID,
		RazorpayOrderID: &order.RazorpayOrderID,
		EventType:       models.PaymentEventOrderCreated,
		EventSource:     models.PaymentSourceBackend,
		ExpectedAmount:  &expected,
		Currency:        &order.Currency,
	})

	s.logger.WithFields(logrus.Fields{
		"order_id":          order.ID,
		"razorpay_order_id": order.RazorpayOrderID,
		"amount":            order.Amount,
	}).Info("Payment order created")

	return &models.CreateOrderResponse{
		OrderID:         order.ID,
		RazorpayOrderID: order.RazorpayOrderID,
		Amount:          order.Amount,
		Currency:        order.Currency,
		KeyID:           s.gateway.KeyID(),
	}, nil
}

// VerifyAndProcess handles the checkout callback: check the signature,
// record the transaction, and settle the order and its session. A replayed
// callback returns the original transaction instead of an error.
func (s *PaymentService) VerifyAndProcess(ctx context.Context, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResponse, error) {
	order, err := s.paymentRepo.GetOrderByRazorpayID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, models.NewAppError(500, models.CodePaymentError, "Failed to verify payment", err)
	}
	if order == nil {
		return nil, models.NewNotFound("Payment order")
	}

	if !s.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.audit(&models.PaymentAudit{
			OrderID:           &order.ID,
			RazorpayOrderID:   &req.RazorpayOrderID,
			RazorpayPaymentID: &req.RazorpayPaymentID,
			EventType:         models.PaymentEventVerifyFailed,
			EventSource:       models.PaymentSourceClientCallback,
			ErrorMessage:      strPtr("signature verification failed"),
		})
		return nil, models.NewValidation("SIGNATURE_INVALID", "payment signature verification failed")
	}

	txn := &models.PaymentTransaction{
		ID:                uuid.New(),
		OrderID:           order.ID,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		Signature:         req.RazorpaySignature,
		Amount:            order.Amount,
		Currency:          order.Currency,
	}

	err = s.paymentRepo.CreateTransaction(ctx, txn)
	if errors.Is(err, database.ErrDuplicatePayment) {
		existing, lookupErr := s.paymentRepo.GetTransactionByPaymentID(ctx, req.RazorpayPaymentID)
		if lookupErr != nil || existing == nil {
			return nil, models.NewAppError(500, models.CodePaymentError, "Failed to verify payment", lookupErr)
		}
		s.audit(&models.PaymentAudit{
			OrderID:           &order.ID,
			RazorpayOrderID:   &req.RazorpayOrderID,
			RazorpayPaymentID: &req.RazorpayPaymentID,
			EventType:         models.PaymentEventDuplicate,
			EventSource:       models.PaymentSourceClientCallback,
			IsDuplicate:       true,
		})
		return &models.VerifyPaymentResponse{TransactionID: existing.ID, Amount: existing.Amount}, nil
	}
	if err != nil {
		return nil, models.NewAppError(500, models.CodePaymentError, "Failed to verify payment", err)
	}

	s.settleOrder(ctx, order, txn, models.PaymentSourceClientCallback)

	return &models.VerifyPaymentResponse{TransactionID: txn.ID, Amount: txn.Amount}, nil
}

// HandleFailure records a failed-payment callback against the order and
// its session. Paid orders are never downgraded.
func (s *PaymentService) HandleFailure(ctx context.Context, req *models.PaymentFailedRequest) error {
	order, err := s.paymentRepo.GetOrderByRazorpayID(ctx, req.OrderID)
	if err != nil {
		return models.NewAppError(500, models.CodePaymentError, "Failed to record payment failure", err)
	}
	if order == nil {
		return models.NewNotFound("Payment order")
	}

	updated, err := s.paymentRepo.MarkOrderFailed(ctx, order.ID, req.ErrorCode, req.ErrorDescription)
	if err != nil {
		return models.NewAppError(500, models.CodePaymentError, "Failed to record payment failure", err)
	}
	if updated && order.SessionID != nil {
		if _, err := s.sessionRepo.MarkPaymentFailed(ctx, *order.SessionID); err != nil {
			s.logger.WithError(err).WithField("session_id", *order.SessionID).Error("Failed to mark session payment failed")
		}
	}

	s.audit(&models.PaymentAudit{
		OrderID:         &order.ID,
		RazorpayOrderID: &order.RazorpayOrderID,
		EventType:       models.PaymentEventPaymentFailed,
		EventSource:     models.PaymentSourceClientCallback,
		ErrorCode:       strPtr(req.ErrorCode),
		ErrorMessage:    strPtr(req.ErrorDescription),
	})

	return nil
}

// ProcessWebhookEvent reconciles a gateway webhook delivery. The caller
// always returns HTTP 200 to the gateway; the outcome lives in the result
// and the audit trail, never in the response status.
func (s *PaymentService) ProcessWebhookEvent(ctx context.Context, body []byte, signature string) models.WebhookResult {
	rawBody := string(body)

	if !s.gateway.VerifyWebhookSignature(body, signature) {
		s.audit(&models.PaymentAudit{
			EventType:    models.PaymentEventWebhookRejected,
			EventSource:  models.PaymentSourceGatewayWebhook,
			RawBody:      &rawBody,
			ErrorMessage: strPtr("webhook signature verification failed"),
		})
		s.logger.Warn("Webhook rejected: invalid signature")
		return models.WebhookResult{Processed: false, Message: "invalid signature"}
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.audit(&models.PaymentAudit{
			EventType:    models.PaymentEventWebhookRejected,
			EventSource:  models.PaymentSourceGatewayWebhook,
			RawBody:      &rawBody,
			ErrorMessage: strPtr(err.Error()),
		})
		return models.WebhookResult{Processed: false, Message: "malformed payload"}
	}

	switch event.Event {
	case "payment.captured":
		return s.processWebhookCapture(ctx, &event.Payload.Payment.Entity, rawBody)
	case "payment.failed":
		return s.processWebhookFailure(ctx, &event.Payload.Payment.Entity, rawBody)
	default:
		s.logger.WithField("event", event.Event).Debug("Webhook event ignored")
		return models.WebhookResult{Processed: false, Message: "event ignored"}
	}
}

func (s *PaymentService) processWebhookCapture(ctx context.Context, entity *models.WebhookPaymentEntity, rawBody string) models.WebhookResult {
	order, err := s.paymentRepo.GetOrderByRazorpayID(ctx, entity.OrderID)
	if err != nil || order == nil {
		s.audit(&models.PaymentAudit{
			RazorpayOrderID:   &entity.OrderID,
			RazorpayPaymentID: &entity.ID,
			EventType:         models.PaymentEventWebhookRejected,
			EventSource:       models.PaymentSourceGatewayWebhook,
			RawBody:           &rawBody,
			ErrorMessage:      strPtr("order not found"),
		})
		return models.WebhookResult{Processed: false, Message: "order not found"}
	}

	received := float64(entity.Amount) / 100
	match := models.AmountsMatch(received, order.Amount)
	s.audit(&models.PaymentAudit{
		OrderID:           &order.ID,
		RazorpayOrderID:   &entity.OrderID,
		RazorpayPaymentID: &entity.ID,
		EventType:         models.PaymentEventWebhookReceived,
		EventSource:       models.PaymentSourceGatewayWebhook,
		ExpectedAmount:    &order.Amount,
		ReceivedAmount:    &received,
		Currency:          &entity.Currency,
		AmountsMatch:      &match,
		RawBody:           &rawBody,
	})
	if !match {
		s.logger.WithFields(logrus.Fields{
			"razorpay_order_id": entity.OrderID,
			"expected":          order.Amount,
			"received":          received,
		}).Error("Webhook amount mismatch")
		return models.WebhookResult{Processed: false, Message: "amount mismatch"}
	}

	txn := &models.PaymentTransaction{
		ID:                uuid.New(),
		OrderID:           order.ID,
		RazorpayOrderID:   entity.OrderID,
		RazorpayPaymentID: entity.ID,
		Amount:            order.Amount,
		Currency:          order.Currency,
	}
	err = s.paymentRepo.CreateTransaction(ctx, txn)
	if errors.Is(err, database.ErrDuplicatePayment) {
		// The client callback already settled this payment
		s.audit(&models.PaymentAudit{
			OrderID:           &order.ID,
			RazorpayPaymentID: &entity.ID,
			EventType:         models.PaymentEventDuplicate,
			EventSource:       models.PaymentSourceGatewayWebhook,
			IsDuplicate:       true,
		})
		return models.WebhookResult{Processed: true, Message: "already processed"}
	}
	if err != nil {
		s.logger.WithError(err).Error("Webhook transaction insert failed")
		return models.WebhookResult{Processed: false, Message: "processing error"}
	}

	s.settleOrder(ctx, order, txn, models.PaymentSourceGatewayWebhook)
	return models.WebhookResult{Processed: true, Message: "payment captured"}
}

func (s *PaymentService) processWebhookFailure(ctx context.Context, entity *models.WebhookPaymentEntity, rawBody string) models.WebhookResult {
	err := s.HandleFailure(ctx, &models.PaymentFailedRequest{
		OrderID:          entity.OrderID,
		ErrorCode:        entity.ErrorCode,
		ErrorDescription: entity.ErrorDescription,
	})
	if err != nil {
		s.logger.WithError(err).WithField("razorpay_order_id", entity.OrderID).Warn("Webhook failure processing error")
		return models.WebhookResult{Processed: false, Message: "processing error"}
	}
	return models.WebhookResult{Processed: true, Message: "payment failure recorded"}
}

// settleOrder applies the post-verification state changes: order created ->
// paid, session PENDING -> PAID, client lifetime counters, then the
// detached receipt email and cache invalidation.
func (s *PaymentService) settleOrder(ctx context.Context, order *models.PaymentOrder, txn *models.PaymentTransaction, source models.PaymentEventSource) {
	if _, err := s.paymentRepo.MarkOrderPaid(ctx, order.ID); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("Failed to mark order paid")
	}

	if order.SessionID != nil {
		session, err := s.sessionRepo.GetByID(ctx, *order.SessionID)
		if err != nil || session == nil {
			s.logger.WithError(err).WithField("session_id", *order.SessionID).Error("Failed to load session for settlement")
		} else {
			transitioned, err := s.sessionRepo.MarkPaid(ctx, session.ID)
			if err != nil {
				s.logger.WithError(err).WithField("session_id", session.ID).Error("Failed to mark session paid")
			}
			if transitioned {
				if err := s.clientRepo.IncrementAmountPaid(ctx, session.ClientID, txn.Amount); err != nil {
					s.logger.WithError(err).WithField("client_id", session.ClientID).Error("Failed to update client totals")
				}
			}
		}
	}

	s.audit(&models.PaymentAudit{
		OrderID:           &order.ID,
		RazorpayOrderID:   &txn.RazorpayOrderID,
		RazorpayPaymentID: &txn.RazorpayPaymentID,
		EventType:         models.PaymentEventVerifySuccess,
		EventSource:       source,
		ExpectedAmount:    &order.Amount,
		ReceivedAmount:    &txn.Amount,
		Currency:          &txn.Currency,
	})

	s.logger.WithFields(logrus.Fields{
		"order_id":            order.ID,
		"razorpay_payment_id": txn.RazorpayPaymentID,
		"amount":              txn.Amount,
		"source":              source,
	}).Info("Payment settled")

	consultantID := order.ConsultantID
	dispatchDetached(s.logger, "payment_receipt_email", func() error {
		return s.email.SendPaymentReceipt(order, txn)
	})
	dispatchDetached(s.logger, "cache_invalidation", func() error {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.cache.InvalidateConsultant(cacheCtx, consultantID)
		return nil
	})
}

// audit writes an audit row on a short background deadline. Audit failures
// are logged and never propagate into the payment flow.
func (s *PaymentService) audit(entry *models.PaymentAudit) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("event_type", entry.EventType).Error("Failed to write payment audit")
	}
}

func strPtr(s string) *string {
	return &s
}
