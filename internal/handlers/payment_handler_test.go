package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consultly/consultly-backend/internal/database"
	"github.com/consultly/consultly-backend/internal/models"
	"github.com/consultly/consultly-backend/internal/services"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type stubGateway struct {
	webhookSigOK bool
	signatureOK  bool
}

func (g stubGateway) CreateOrder(amount float64, currency, receipt string, notes map[string]interface{}) (string, error) {
	return "order_stub", nil
}
func (g stubGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return g.signatureOK
}
func (g stubGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return g.webhookSigOK
}
func (g stubGateway) KeyID() string      { return "rzp_test_key" }
func (g stubGateway) IsConfigured() bool { return true }

type stubEmail struct{}

func (stubEmail) SendBookingConfirmation(client *models.Client, consultant *models.Consultant, session *models.Session) error {
	return nil
}
func (stubEmail) SendBookingNotice(consultant *models.Consultant, client *models.Client, session *models.Session) error {
	return nil
}
func (stubEmail) SendPaymentReceipt(order *models.PaymentOrder, txn *models.PaymentTransaction) error {
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupPaymentTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func setupPaymentTestHandler(db *sqlx.DB, gateway stubGateway) *PaymentHandler {
	logger := quietLogger()
	paymentService := services.NewPaymentService(
		database.NewPaymentRepository(db),
		database.NewPaymentAuditRepository(db),
		database.NewSessionRepository(db),
		database.NewClientRepository(db),
		gateway,
		stubEmail{},
		services.NewCacheService(nil, logger),
		logger,
	)
	return NewPaymentHandler(paymentService, logger)
}

func postContext(w *httptest.ResponseRecorder, path string, body []byte) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestWebhook_InvalidSignatureStillReturns200(t *testing.T) {
	db, mock := setupPaymentTestDB(t)
	handler := setupPaymentTestHandler(db, stubGateway{webhookSigOK: false})

	// The rejection is recorded in the audit trail, not the status code
	mock.ExpectQuery(`INSERT INTO payment_audits`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c := postContext(w, "/api/v1/payments/webhook", []byte(`{"event":"payment.captured"}`))
	c.Request.Header.Set("x-razorpay-signature", "forged")

	handler.Webhook(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var result models.WebhookResult
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.False(t, result.Processed)
	assert.Equal(t, "invalid signature", result.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhook_UnknownEventReturns200(t *testing.T) {
	db, _ := setupPaymentTestDB(t)
	handler := setupPaymentTestHandler(db, stubGateway{webhookSigOK: true})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c := postContext(w, "/api/v1/payments/webhook", []byte(`{"event":"refund.created"}`))
	c.Request.Header.Set("x-razorpay-signature", "valid")

	handler.Webhook(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var result models.WebhookResult
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.False(t, result.Processed)
	assert.Equal(t, "event ignored", result.Message)
}

func TestVerifyPayment_MissingFields(t *testing.T) {
	db, _ := setupPaymentTestDB(t)
	handler := setupPaymentTestHandler(db, stubGateway{signatureOK: true})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c := postContext(w, "/api/v1/payments/verify", []byte(`{"razorpayOrderId":"order_abc"}`))

	handler.VerifyPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorBody
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "INVALID_REQUEST", response.Error.Code)
}

func TestVerifyPayment_UnknownOrder(t *testing.T) {
	db, mock := setupPaymentTestDB(t)
	handler := setupPaymentTestHandler(db, stubGateway{signatureOK: true})

	mock.ExpectQuery(`SELECT (.+) FROM payment_orders`).
		WithArgs("order_missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	body := []byte(`{"razorpayOrderId":"order_missing","razorpayPaymentId":"pay_abc","razorpaySignature":"sig"}`)
	c := postContext(w, "/api/v1/payments/verify", body)

	handler.VerifyPayment(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response errorBody
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "NOT_FOUND", response.Error.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_InvalidBody(t *testing.T) {
	db, _ := setupPaymentTestDB(t)
	handler := setupPaymentTestHandler(db, stubGateway{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c := postContext(w, "/api/v1/payments/create-order", []byte(`{"amount":"not-a-number"}`))

	handler.CreateOrder(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorBody
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "INVALID_REQUEST", response.Error.Code)
}

func TestCreateOrder_PublicRouteRejectsQuotation(t *testing.T) {
	db, _ := setupPaymentTestDB(t)
	handler := setupPaymentTestHandler(db, stubGateway{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	body := []byte(`{"quotationId":"6f1c1fbd-4bd6-4f92-a0cb-0a720ab3a753","amount":1500,"clientEmail":"jane@example.com","clientName":"Jane Doe"}`)
	c := postContext(w, "/api/v1/payments/create-order", body)

	handler.CreateOrder(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorBody
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "INVALID_ORDER_TARGET", response.Error.Code)
}
