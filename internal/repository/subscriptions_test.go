package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/skycast-dev/skycast/internal/weather/types"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(db, "sqlite")
	cleanup := func() {
		sqlxDB.Close()
	}
	return sqlxDB, mock, cleanup
}

const insertQuery = `
        INSERT INTO subscriptions
            (email, location_name, latitude, longitude, frequency,
             confirm_token, unsubscribe_token, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?);
    `

const confirmQuery = `
        UPDATE subscriptions
        SET confirmed        = 1,
            confirm_token    = NULL,
            scheduled_hour   = ?,
            scheduled_minute = ?
        WHERE confirm_token = ? AND confirmed = 0;
    `

func berlin() (name string, lat, lon float64) {
	return "Berlin", 52.52, 13.405
}

func TestSubscriptionRepository_Create_Success(t *testing.T) {
	sqlxDB, mock, cleanup := setupMockDB(t)
	defer cleanup()

	logger := zap.NewNop()
	repo := NewSubscriptionRepository(sqlxDB, logger)

	name, lat, lon := berlin()
	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
		WithArgs("foo@bar.com", name, lat, lon, "daily",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	loc := types.NewLocation(name, lat, lon)
	gotConfirm, gotUnsub, err := repo.Create(context.Background(), "foo@bar.com", loc, "daily")
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if gotConfirm == uuid.Nil {
		t.Error("Create() confirmToken = uuid.Nil, want a fresh token")
	}
	if gotUnsub == uuid.Nil {
		t.Error("Create() unsubscribeToken = uuid.Nil, want a fresh token")
	}
	if gotConfirm == gotUnsub {
		t.Error("Create() issued identical confirm and unsubscribe tokens")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestSubscriptionRepository_Create_DBError(t *testing.T) {
	sqlxDB, mock, cleanup := setupMockDB(t)
	defer cleanup()

	logger := zap.NewNop()
	repo := NewSubscriptionRepository(sqlxDB, logger)

	name, lat, lon := berlin()
	mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
		WithArgs("foo@bar.com", name, lat, lon, "daily",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(sql.ErrConnDone)

	loc := types.NewLocation(name, lat, lon)
	gotConfirm, gotUnsub, err := repo.Create(context.Background(), "foo@bar.com", loc, "daily")
	if err == nil {
		t.Fatalf("Create() expected error, got nil")
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("Create() error = %v, want %v", err, sql.ErrConnDone)
	}
	// tokens should be zero when err != nil
	if gotConfirm != uuid.Nil {
		t.Errorf("Create() confirmToken = %v, want %v", gotConfirm, uuid.Nil)
	}
	if gotUnsub != uuid.Nil {
		t.Errorf("Create() unsubscribeToken = %v, want %v", gotUnsub, uuid.Nil)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestSubscriptionRepository_Confirm_Success(t *testing.T) {
	sqlxDB, mock, cleanup := setupMockDB(t)
	defer cleanup()
	logger := zap.NewNop()

	// Pin the clock so the scheduled slot is predictable.
	fixed := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	repo := &sqliteRepo{db: sqlxDB, logger: logger, now: func() time.Time { return fixed }}

	mock.ExpectExec(regexp.QuoteMeta(confirmQuery)).
		WithArgs(12, 31, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Confirm(context.Background(), uuid.New()); err != nil {
		t.Fatalf("Confirm() unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSubscriptionRepository_Confirm_NotFound(t *testing.T) {
	sqlxDB, mock, cleanup := setupMockDB(t)
	defer cleanup()
	logger := zap.NewNop()
	repo := NewSubscriptionRepository(sqlxDB, logger)

	// Expect Exec to affect 0 rows
	mock.ExpectExec(regexp.QuoteMeta(confirmQuery)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Confirm(context.Background(), uuid.New())
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("Confirm() error = %v, want sql.ErrNoRows", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSubscriptionRepository_Confirm_DBError(t *testing.T) {
	sqlxDB, mock, cleanup := setupMockDB(t)
	defer cleanup()
	logger := zap.NewNop()
	repo := NewSubscriptionRepository(sqlxDB, logger)

	mock.ExpectExec(regexp.QuoteMeta(confirmQuery)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(sql.ErrConnDone)

	err := repo.Confirm(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("Confirm() expected an error, got nil")
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("Confirm() error = %v, want %v", err, sql.ErrConnDone)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSubscriptionRepository_DeleteByUnsubToken_Success(t *testing.T) {
	sqlxDB, mock, cleanup := setupMockDB(t)
	defer cleanup()
	logger := zap.NewNop()
	repo := NewSubscriptionRepository(sqlxDB, logger)

	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM subscriptions WHERE unsubscribe_token = ?",
	)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteByUnsubToken(context.Background(), uuid.New()); err != nil {
		t.Fatalf("DeleteByUnsubToken() unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestSubscriptionRepository_DeleteByUnsubToken_NotFound(t *testing.T) {
	sqlxDB, mock, cleanup := setupMockDB(t)
	defer cleanup()
	logger := zap.NewNop()
	repo := NewSubscriptionRepository(sqlxDB, logger)

	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM subscriptions WHERE unsubscribe_token = ?",
	)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteByUnsubToken(context.Background(), uuid.New())
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("DeleteByUnsubToken() error = %v, want sql.ErrNoRows", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestSubscriptionRepository_HourlyBatch_ReturnsRows(t *testing.T) {
	sqlxDB, mock, cleanup := setupMockDB(t)
	defer cleanup()
	logger := zap.NewNop()
	repo := NewSubscriptionRepository(sqlxDB, logger)

	name, lat, lon := berlin()
	confirmToken := uuid.New()
	unsubToken := uuid.New()
	createdAt := time.Now().UTC().Truncate(time.Second)

	rows := sqlmock.NewRows([]string{
		"id", "email", "location_name", "latitude", "longitude", "frequency",
		"confirmed", "confirm_token", "unsubscribe_token",
		"scheduled_minute", "scheduled_hour", "created_at",
	}).AddRow(
		1, "test@example.com", name, lat, lon, "hourly",
		true, confirmToken.String(), unsubToken.String(),
		15, 0, createdAt.Format(time.RFC3339Nano),
	)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM subscriptions WHERE confirmed = 1 AND frequency = 'hourly' AND scheduled_minute = ?",
	)).
		WithArgs(15).
		WillReturnRows(rows)

	subs, err := repo.HourlyBatch(context.Background(), 15)
	if err != nil {
		t.Fatalf("HourlyBatch() unexpected error: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("HourlyBatch() returned %d rows, want 1", len(subs))
	}
	s := subs[0]
	if s.ID != 1 || s.Email != "test@example.com" || s.LocationName != name ||
		s.Frequency != "hourly" || !s.Confirmed ||
		s.ConfirmToken != confirmToken || s.UnsubscribeToken != unsubToken ||
		s.ScheduledMinute != 15 {
		t.Errorf("HourlyBatch() returned row %+v, want matching test data", s)
	}
	if got := s.Location(); got.Name != name || got.Latitude != lat || got.Longitude != lon {
		t.Errorf("Location() = %+v, want %s at (%v, %v)", got, name, lat, lon)
	}
	if !s.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt = %v, want %v", s.CreatedAt.Time, createdAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestSubscriptionRepository_HourlyBatch_Empty(t *testing.T) {
	sqlxDB, mock, cleanup := setupMockDB(t)
	defer cleanup()
	logger := zap.NewNop()
	repo := NewSubscriptionRepository(sqlxDB, logger)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM subscriptions WHERE confirmed = 1 AND frequency = 'hourly' AND scheduled_minute = ?",
	)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(nil))

	subs, err := repo.HourlyBatch(context.Background(), 42)
	if err != nil {
		t.Fatalf("HourlyBatch() unexpected error: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("HourlyBatch() returned %d rows, want 0", len(subs))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestSubscriptionRepository_DailyBatch_ReturnsRows(t *testing.T) {
	sqlxDB, mock, cleanup := setupMockDB(t)
	defer cleanup()
	logger := zap.NewNop()
	repo := NewSubscriptionRepository(sqlxDB, logger)

	name, lat, lon := berlin()
	confirmToken := uuid.New()
	unsubToken := uuid.New()
	createdAt := time.Now().UTC().Truncate(time.Second)

	rows := sqlmock.NewRows([]string{
		"id", "email", "location_name", "latitude", "longitude", "frequency",
		"confirmed", "confirm_token", "unsubscribe_token",
		"scheduled_minute", "scheduled_hour", "created_at",
	}).AddRow(
		1, "daily@example.com", name, lat, lon, "daily",
		true, confirmToken.String(), unsubToken.String(),
		30, 9, createdAt.Format(time.RFC3339Nano),
	)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM subscriptions WHERE confirmed = 1 AND frequency = 'daily' AND scheduled_hour = ? AND scheduled_minute = ?",
	)).
		WithArgs(9, 30).
		WillReturnRows(rows)

	subs, err := repo.DailyBatch(context.Background(), 9, 30)
	if err != nil {
		t.Fatalf("DailyBatch() unexpected error: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("DailyBatch() returned %d rows, want 1", len(subs))
	}
	s := subs[0]
	if s.Email != "daily@example.com" || s.Frequency != "daily" ||
		s.ScheduledHour != 9 || s.ScheduledMinute != 30 {
		t.Errorf("DailyBatch() returned row %+v, want matching test data", s)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestSubscriptionRepository_DailyBatch_DBError(t *testing.T) {
	sqlxDB, mock, cleanup := setupMockDB(t)
	defer cleanup()
	logger := zap.NewNop()
	repo := NewSubscriptionRepository(sqlxDB, logger)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM subscriptions WHERE confirmed = 1 AND frequency = 'daily' AND scheduled_hour = ? AND scheduled_minute = ?",
	)).
		WithArgs(12, 0).
		WillReturnError(sql.ErrConnDone)

	_, err := repo.DailyBatch(context.Background(), 12, 0)
	if err == nil {
		t.Fatal("DailyBatch() expected error, got nil")
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("DailyBatch() error = %v, want %v", err, sql.ErrConnDone)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}
