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

func TestCreateSlotIfAbsent(t *testing.T) {
	slot := &models.AvailabilitySlot{
		ID:           uuid.New(),
		ConsultantID: uuid.New(),
		SessionType:  models.SessionTypePersonal,
		SlotDate:     time.Date(2026, 9, 14, 0, 0, 0, 0, time.Local),
		StartTime:    "10:00",
		EndTime:      "11:00",
	}

	t.Run("Inserts New Slot", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAvailabilityRepository(db)

		mock.ExpectExec(`INSERT INTO availability_slots`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		inserted, err := repo.CreateSlotIfAbsent(context.Background(), slot)
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Existing Slot Is Skipped", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAvailabilityRepository(db)

		mock.ExpectExec(`INSERT INTO availability_slots`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		inserted, err := repo.CreateSlotIfAbsent(context.Background(), slot)
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFindSlotScopedBySessionType(t *testing.T) {
	consultantID := uuid.New()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.Local)
	slotCols := []string{
		"id", "consultant_id", "session_type", "slot_date", "start_time", "end_time",
		"is_booked", "is_blocked", "session_id", "created_at", "updated_at",
	}

	t.Run("Matching Type Is Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAvailabilityRepository(db)

		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM availability_slots`).
			WithArgs(consultantID, models.SessionTypePersonal, date, "10:00").
			WillReturnRows(sqlmock.NewRows(slotCols).AddRow(
				uuid.New(), consultantID, "PERSONAL", date, "10:00", "11:00",
				false, false, nil, now, now,
			))

		slot, err := repo.FindSlot(context.Background(), consultantID, models.SessionTypePersonal, date, "10:00")
		require.NoError(t, err)
		require.NotNil(t, slot)
		assert.Equal(t, models.SessionTypePersonal, slot.SessionType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other Type At Same Time Is Not Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAvailabilityRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM availability_slots`).
			WithArgs(consultantID, models.SessionTypeWebinar, date, "10:00").
			WillReturnRows(sqlmock.NewRows(slotCols))

		slot, err := repo.FindSlot(context.Background(), consultantID, models.SessionTypeWebinar, date, "10:00")
		require.NoError(t, err)
		assert.Nil(t, slot)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBlockSlot(t *testing.T) {
	consultantID := uuid.New()
	slotID := uuid.New()

	t.Run("Blocks Open Slot", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAvailabilityRepository(db)

		mock.ExpectExec(`UPDATE availability_slots`).
			WithArgs(slotID, consultantID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		blocked, err := repo.BlockSlot(context.Background(), consultantID, slotID)
		require.NoError(t, err)
		assert.True(t, blocked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Booked Slot Cannot Be Blocked", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAvailabilityRepository(db)

		mock.ExpectExec(`UPDATE availability_slots`).
			WithArgs(slotID, consultantID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		blocked, err := repo.BlockSlot(context.Background(), consultantID, slotID)
		require.NoError(t, err)
		assert.False(t, blocked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeactivatePattern(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAvailabilityRepository(db)

	consultantID := uuid.New()
	patternID := uuid.New()

	mock.ExpectExec(`UPDATE weekly_availability_patterns`).
		WithArgs(patternID, consultantID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	done, err := repo.DeactivatePattern(context.Background(), consultantID, patternID)
	require.NoError(t, err)
	assert.True(t, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}
