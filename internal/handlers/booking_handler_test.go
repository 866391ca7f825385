package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consultly/consultly-backend/internal/config"
	"github.com/consultly/consultly-backend/internal/database"
	"github.com/consultly/consultly-backend/internal/models"
	"github.com/consultly/consultly-backend/internal/services"
)

var consultantCols = []string{
	"id", "name", "slug", "email", "phone",
	"personal_session_price", "webinar_session_price", "currency",
	"is_active", "is_email_verified", "is_approved_by_admin",
	"created_at", "updated_at",
}

var clientCols = []string{
	"id", "consultant_id", "first_name", "last_name", "name", "email", "phone",
	"total_sessions", "total_amount_paid", "created_at", "updated_at",
}

func setupBookingTestHandler(db *sqlx.DB, cfg *config.BookingConfig) *BookingHandler {
	logger := quietLogger()
	bookingService := services.NewBookingService(
		database.NewConsultantRepository(db),
		database.NewSessionRepository(db),
		database.NewAvailabilityRepository(db),
		database.NewBookingRepository(db),
		stubEmail{},
		services.NewCacheService(nil, logger),
		cfg,
		logger,
	)
	return NewBookingHandler(bookingService, cfg, logger)
}

func bookingTestConfig() *config.BookingConfig {
	return &config.BookingConfig{
		RequestTimeout:     5 * time.Second,
		TransactionTimeout: 2 * time.Second,
		DefaultDuration:    60,
	}
}

func TestBookSession_InvalidBody(t *testing.T) {
	db, _ := setupPaymentTestDB(t)
	handler := setupBookingTestHandler(db, bookingTestConfig())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c := postContext(w, "/api/v1/book", []byte(`{"fullName":"Jane Doe"}`))

	handler.BookSession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorBody
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "INVALID_REQUEST", response.Error.Code)
}

func TestBookSession_ConsultantNotFound(t *testing.T) {
	db, mock := setupPaymentTestDB(t)
	handler := setupBookingTestHandler(db, bookingTestConfig())

	mock.ExpectQuery(`SELECT (.+) FROM consultants`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(consultantCols))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	body := []byte(`{"fullName":"Jane Doe","email":"jane@example.com","phone":"+911234567890","sessionType":"PERSONAL","amount":1500,"consultantSlug":"ghost"}`)
	c := postContext(w, "/api/v1/book", body)

	handler.BookSession(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response errorBody
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "NOT_FOUND", response.Error.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSession_UnscheduledSuccess(t *testing.T) {
	db, mock := setupPaymentTestDB(t)
	handler := setupBookingTestHandler(db, bookingTestConfig())

	consultantID := uuid.New()
	clientID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM consultants`).
		WithArgs("dr-mehta").
		WillReturnRows(sqlmock.NewRows(consultantCols).AddRow(
			consultantID, "Dr. Mehta", "dr-mehta", "mehta@example.com", nil,
			1500.0, 500.0, "INR",
			true, true, true,
			now, now,
		))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO clients`).
		WillReturnRows(sqlmock.NewRows(clientCols).AddRow(
			clientID, consultantID, "Jane", "Doe", "Jane Doe", "jane@example.com", "+911234567890",
			0, 0.0, now, now,
		))
	mock.ExpectQuery(`INSERT INTO sessions`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`UPDATE clients`).
		WithArgs(clientID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	body := []byte(`{"fullName":"Jane Doe","email":"jane@example.com","phone":"+911234567890","sessionType":"PERSONAL","amount":1500,"consultantSlug":"dr-mehta"}`)
	c := postContext(w, "/api/v1/book", body)
	c.Request.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)")

	handler.BookSession(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response models.BookSessionResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Session booked successfully", response.Message)
	assert.Equal(t, models.SessionStatusPending, response.Data.Session.Status)
	assert.Equal(t, models.PaymentStatusPending, response.Data.Session.PaymentStatus)
	assert.Equal(t, 1500.0, response.Data.Session.Amount)
	assert.Equal(t, "Jane Doe", response.Data.Client.Name)
	assert.Equal(t, "dr-mehta", response.Data.Consultant.Slug)
	assert.Equal(t, models.BookingNextSteps, response.Data.NextSteps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSession_TimesOut(t *testing.T) {
	db, mock := setupPaymentTestDB(t)
	cfg := bookingTestConfig()
	cfg.RequestTimeout = 30 * time.Millisecond
	handler := setupBookingTestHandler(db, cfg)

	// The pipeline stalls past the request deadline; the late result is
	// dropped on the buffered channel and the client gets a 408
	mock.ExpectQuery(`SELECT (.+) FROM consultants`).
		WithArgs("dr-mehta").
		WillDelayFor(300 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows(consultantCols))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	body := []byte(`{"fullName":"Jane Doe","email":"jane@example.com","phone":"+911234567890","sessionType":"PERSONAL","amount":1500,"consultantSlug":"dr-mehta"}`)
	c := postContext(w, "/api/v1/book", body)

	handler.BookSession(c)

	assert.Equal(t, http.StatusRequestTimeout, w.Code)

	var response errorBody
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "REQUEST_TIMEOUT", response.Error.Code)

	// Let the stalled pipeline drain before the mock db closes
	time.Sleep(400 * time.Millisecond)
}
