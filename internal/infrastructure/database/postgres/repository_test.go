package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	domainActivity "it-asset-dashboard/internal/domain/activity"
	domainAlert "it-asset-dashboard/internal/domain/alert"
	domainDevice "it-asset-dashboard/internal/domain/device"
	domainMaintenance "it-asset-dashboard/internal/domain/maintenance"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormLogger.Discard,
	})
	require.NoError(t, err)

	return &DB{DB: gdb}, mock
}

func TestDeviceRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDeviceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "devices"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	d := &domainDevice.Device{DeviceName: "Laptop", SerialNumber: "SN-1", Model: "X1"}
	require.NoError(t, repo.Create(context.Background(), d))

	assert.Equal(t, uint(7), d.ID)
	assert.Equal(t, domainDevice.StatusActive, d.Status)
	assert.False(t, d.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryCreateDuplicateSerial(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDeviceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "devices"`)).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &domainDevice.Device{DeviceName: "Laptop", SerialNumber: "SN-1", Model: "X1"})
	assert.ErrorIs(t, err, domainDevice.ErrDeviceAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDeviceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "devices"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, domainDevice.ErrDeviceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryUpdateMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDeviceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "devices" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domainDevice.Device{ID: 9, DeviceName: "Laptop", SerialNumber: "SN-1", Model: "X1"})
	assert.ErrorIs(t, err, domainDevice.ErrDeviceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDeviceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "devices"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "devices"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), 3), domainDevice.ErrDeviceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryCountByStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDeviceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT LOWER(status) AS status, COUNT(*) AS count FROM "devices"`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("active", 3).
			AddRow("maintenance", 1))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[domainDevice.StatusActive])
	assert.Equal(t, int64(1), counts[domainDevice.StatusMaintenance])
	assert.Zero(t, counts[domainDevice.StatusInactive])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryInsertIfNoneOpen(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleRepository(db)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT DO NOTHING`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	s := domainMaintenance.NewAutoSchedule(3, now)
	inserted, err := repo.InsertIfNoneOpen(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, uint(11), s.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryInsertIfNoneOpenSkipsWhenOpenExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT DO NOTHING`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	s := domainMaintenance.NewAutoSchedule(3, time.Now())
	inserted, err := repo.InsertIfNoneOpen(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Zero(t, s.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "maintenance_schedules"`)).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := repo.Create(context.Background(), &domainMaintenance.Schedule{
		DeviceID:        3,
		MaintenanceType: "Repair",
		ScheduledDate:   time.Now(),
	})
	assert.ErrorIs(t, err, domainMaintenance.ErrOpenScheduleExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCompleteLatestOpen(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleRepository(db)
	scheduled := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "maintenance_schedules"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id", "maintenance_type", "scheduled_date", "status"}).
			AddRow(5, 3, "Auto", scheduled, "pending"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "maintenance_schedules" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s, err := repo.CompleteLatestOpen(context.Background(), 3, today)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, uint(5), s.ID)
	assert.Equal(t, domainMaintenance.StatusCompleted, s.Status)
	require.NotNil(t, s.CompletedDate)
	assert.True(t, s.CompletedDate.Equal(today))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCompleteLatestOpenWithoutOpenSchedule(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "maintenance_schedules"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	s, err := repo.CompleteLatestOpen(context.Background(), 3, time.Now())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteByDevice(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "maintenance_schedules"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteByDevice(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryWrite(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "activity_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

	userID := uint(1)
	entry := &domainActivity.Entry{
		UserID:    &userID,
		Action:    domainActivity.ActionDelete,
		TableName: domainActivity.TableDevices,
		RecordID:  3,
		Details:   "Deleted device: Laptop",
		Snapshot:  map[string]string{"serialNumber": "SN-1"},
	}
	require.NoError(t, repo.Write(context.Background(), entry))
	assert.Equal(t, uint(21), entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: pgUniqueViolation}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "devices_serial_number_key"`)))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}

func TestPageBounds(t *testing.T) {
	limit, offset := pageBounds(0, 0)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset = pageBounds(3, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, _ = pageBounds(1, 1000)
	assert.Equal(t, 100, limit)
}

func TestAlertRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "alerts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	a := &domainAlert.Alert{DeviceID: 3, AlertType: "overheat", Severity: "high", Message: "CPU temperature 91.0°C exceeds 85.0°C"}
	require.NoError(t, repo.Create(context.Background(), a))

	assert.Equal(t, uint(11), a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
