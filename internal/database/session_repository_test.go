package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consultly/consultly-backend/internal/models"
)

func TestSessionMarkPaid(t *testing.T) {
	sessionID := uuid.New()

	t.Run("Pending Transitions To Paid", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSessionRepository(db)

		mock.ExpectExec(`UPDATE sessions`).
			WithArgs(sessionID, models.PaymentStatusPaid, models.PaymentStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		transitioned, err := repo.MarkPaid(context.Background(), sessionID)
		require.NoError(t, err)
		assert.True(t, transitioned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Paid Is Not A Failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSessionRepository(db)

		mock.ExpectExec(`UPDATE sessions`).
			WithArgs(sessionID, models.PaymentStatusPaid, models.PaymentStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))

		transitioned, err := repo.MarkPaid(context.Background(), sessionID)
		require.NoError(t, err)
		assert.False(t, transitioned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHasActiveSessionAt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	consultantID := uuid.New()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.Local)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.HasActiveSessionAt(context.Background(), consultantID, date, "10:00")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewSessionRepository(db)

	_, err := repo.UpdateStatus(context.Background(), uuid.New(),
		models.SessionStatusCompleted, models.SessionStatusPending)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session transition")
}
