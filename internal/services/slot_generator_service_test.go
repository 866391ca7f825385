package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consultly/consultly-backend/internal/database"
	"github.com/consultly/consultly-backend/internal/models"
)

var patternRows = []string{
	"id", "consultant_id", "session_type", "day_of_week", "start_time", "end_time",
	"timezone", "is_active", "created_at", "updated_at",
}

func newSlotGenerator(t *testing.T) (*SlotGeneratorService, sqlmock.Sqlmock) {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })

	db := sqlx.NewDb(rawDB, "sqlmock")
	return NewSlotGeneratorService(database.NewAvailabilityRepository(db), testLogger()), mock
}

func expectPatterns(mock sqlmock.Sqlmock, consultantID uuid.UUID, dayOfWeek int, start, end string) {
	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM weekly_availability_patterns`).
		WithArgs(consultantID).
		WillReturnRows(sqlmock.NewRows(patternRows).AddRow(
			uuid.New(), consultantID, "PERSONAL", dayOfWeek, start, end,
			"Asia/Kolkata", true, now, now,
		))
}

func TestGenerateExpandsPattern(t *testing.T) {
	svc, mock := newSlotGenerator(t)

	consultantID := uuid.New()
	day := time.Date(2099, 1, 5, 0, 0, 0, 0, time.Local)

	// A two hour window at 60 minute granularity yields two slots; the
	// second already exists and counts as skipped
	expectPatterns(mock, consultantID, int(day.Weekday()), "09:00", "11:00")
	mock.ExpectExec(`INSERT INTO availability_slots`).
		WithArgs(sqlmock.AnyArg(), consultantID, "PERSONAL", day, "09:00", "10:00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO availability_slots`).
		WithArgs(sqlmock.AnyArg(), consultantID, "PERSONAL", day, "10:00", "11:00").
		WillReturnResult(sqlmock.NewResult(0, 0))

	result, err := svc.Generate(context.Background(), consultantID, day, day, 60)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateNeverSpillsPastWindowEnd(t *testing.T) {
	svc, mock := newSlotGenerator(t)

	consultantID := uuid.New()
	day := time.Date(2099, 1, 5, 0, 0, 0, 0, time.Local)

	// 09:00-10:30 at 60 minutes fits exactly one slot
	expectPatterns(mock, consultantID, int(day.Weekday()), "09:00", "10:30")
	mock.ExpectExec(`INSERT INTO availability_slots`).
		WithArgs(sqlmock.AnyArg(), consultantID, "PERSONAL", day, "09:00", "10:00").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.Generate(context.Background(), consultantID, day, day, 60)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateIncludesLocalToday(t *testing.T) {
	svc, mock := newSlotGenerator(t)

	consultantID := uuid.New()
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	// Today is not a past date in any timezone offset
	expectPatterns(mock, consultantID, int(today.Weekday()), "09:00", "11:00")
	mock.ExpectExec(`INSERT INTO availability_slots`).
		WithArgs(sqlmock.AnyArg(), consultantID, "PERSONAL", today, "09:00", "10:00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO availability_slots`).
		WithArgs(sqlmock.AnyArg(), consultantID, "PERSONAL", today, "10:00", "11:00").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.Generate(context.Background(), consultantID, today, today, 60)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateSkipsPastDates(t *testing.T) {
	svc, mock := newSlotGenerator(t)

	consultantID := uuid.New()
	day := time.Date(2020, 1, 6, 0, 0, 0, 0, time.Local)

	expectPatterns(mock, consultantID, int(day.Weekday()), "09:00", "17:00")

	result, err := svc.Generate(context.Background(), consultantID, day, day, 60)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	svc, _ := newSlotGenerator(t)

	t.Run("Non Positive Duration", func(t *testing.T) {
		_, err := svc.Generate(context.Background(), uuid.New(), time.Now(), time.Now(), 0)

		var validation *models.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "INVALID_SLOT_DURATION", validation.Code)
	})

	t.Run("Inverted Range", func(t *testing.T) {
		from := time.Now().AddDate(0, 0, 7)
		to := time.Now()
		_, err := svc.Generate(context.Background(), uuid.New(), from, to, 60)

		var validation *models.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "INVALID_DATE_RANGE", validation.Code)
	})
}
