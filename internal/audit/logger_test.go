package audit

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestLogger_Record(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO "booking_audits"`).
		WithArgs(
			"s1", "u1", ActionBookingCreated, "A", "cut-A", "ap-1",
			`{"date":"2026-03-11"}`, sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	err := New(db).Record(context.Background(), Event{
		Action:        ActionBookingCreated,
		SessionID:     "s1",
		UserID:        "u1",
		BarberID:      "A",
		ServiceID:     "cut-A",
		AppointmentID: "ap-1",
		Metadata:      map[string]string{"date": "2026-03-11"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogger_RecordError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO "booking_audits"`).
		WillReturnError(assert.AnError)

	err := New(db).Record(context.Background(), Event{Action: ActionBookingFailed})

	assert.ErrorIs(t, err, assert.AnError)
}
