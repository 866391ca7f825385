package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var clientRows = []string{
	"id", "consultant_id", "first_name", "last_name", "name", "email", "phone",
	"total_sessions", "total_amount_paid", "created_at", "updated_at",
}

func TestClientFindOrCreate(t *testing.T) {
	consultantID := uuid.New()
	now := time.Now()

	t.Run("Creates When Absent", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)

		clientID := uuid.New()
		mock.ExpectQuery(`SELECT (.+) FROM clients WHERE consultant_id`).
			WithArgs(consultantID, "jane@example.com").
			WillReturnRows(sqlmock.NewRows(clientRows))
		mock.ExpectQuery(`INSERT INTO clients`).
			WithArgs(sqlmock.AnyArg(), consultantID, "Jane", "Doe", "Jane Doe", "jane@example.com", "+911234567890").
			WillReturnRows(sqlmock.NewRows(clientRows).AddRow(
				clientID, consultantID, "Jane", "Doe", "Jane Doe", "jane@example.com", "+911234567890",
				0, 0.0, now, now,
			))

		client, err := repo.FindOrCreate(context.Background(), consultantID, "Jane Doe", "jane@example.com", "+911234567890")
		require.NoError(t, err)
		assert.Equal(t, clientID, client.ID)
		assert.Equal(t, "Jane", client.FirstName)
		assert.Equal(t, 0, client.TotalSessions)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Returns Existing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)

		clientID := uuid.New()
		mock.ExpectQuery(`SELECT (.+) FROM clients WHERE consultant_id`).
			WithArgs(consultantID, "jane@example.com").
			WillReturnRows(sqlmock.NewRows(clientRows).AddRow(
				clientID, consultantID, "Jane", "Doe", "Jane Doe", "jane@example.com", "+911234567890",
				3, 450.0, now, now,
			))

		client, err := repo.FindOrCreate(context.Background(), consultantID, "Jane Doe", "jane@example.com", "+911234567890")
		require.NoError(t, err)
		assert.Equal(t, clientID, client.ID)
		assert.Equal(t, 3, client.TotalSessions)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Absorbs Creation Race", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)

		clientID := uuid.New()
		mock.ExpectQuery(`SELECT (.+) FROM clients WHERE consultant_id`).
			WithArgs(consultantID, "jane@example.com").
			WillReturnRows(sqlmock.NewRows(clientRows))
		mock.ExpectQuery(`INSERT INTO clients`).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectQuery(`SELECT (.+) FROM clients WHERE consultant_id`).
			WithArgs(consultantID, "jane@example.com").
			WillReturnRows(sqlmock.NewRows(clientRows).AddRow(
				clientID, consultantID, "Jane", "Doe", "Jane Doe", "jane@example.com", "+911234567890",
				1, 0.0, now, now,
			))

		client, err := repo.FindOrCreate(context.Background(), consultantID, "Jane Doe", "jane@example.com", "+911234567890")
		require.NoError(t, err)
		assert.Equal(t, clientID, client.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClientIncrementAmountPaid(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db)

	clientID := uuid.New()
	mock.ExpectExec(`UPDATE clients`).
		WithArgs(clientID, 150.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.IncrementAmountPaid(context.Background(), clientID, 150.0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
