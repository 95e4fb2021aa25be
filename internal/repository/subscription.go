package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/skycast-dev/skycast/internal/weather/types"
)

// sqlTime round-trips a timestamp through the TEXT affinity the sqlite driver
// gives us: stored as RFC 3339, parsed back on scan.
type sqlTime struct {
	time.Time
}

func (t sqlTime) Value() (driver.Value, error) {
	return t.UTC().Format(time.RFC3339Nano), nil
}

func (t *sqlTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("failed to parse timestamp %q: %w", v, err)
		}
		t.Time = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	}
	return fmt.Errorf("unsupported timestamp type %T", src)
}

type Subscription struct {
	ID               int64     `db:"id"`
	Email            string    `db:"email"`
	LocationName     string    `db:"location_name"`
	Latitude         float64   `db:"latitude"`
	Longitude        float64   `db:"longitude"`
	Frequency        string    `db:"frequency"` // 'hourly' | 'daily'
	Confirmed        bool      `db:"confirmed"`
	ConfirmToken     uuid.UUID `db:"confirm_token"`
	UnsubscribeToken uuid.UUID `db:"unsubscribe_token"`
	ScheduledMinute  int       `db:"scheduled_minute"`
	ScheduledHour    int       `db:"scheduled_hour"`
	CreatedAt        sqlTime   `db:"created_at"`
}

// Location rebuilds the place the subscriber signed up for.
func (s Subscription) Location() types.Location {
	return types.NewLocation(s.LocationName, s.Latitude, s.Longitude)
}

// SubscriptionRepository manages the lifecycle of email subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, email string, loc types.Location, freq string) (confirmToken uuid.UUID, unsubscribeToken uuid.UUID, err error)
	Confirm(ctx context.Context, token uuid.UUID) error
	DeleteByUnsubToken(ctx context.Context, token uuid.UUID) error
	HourlyBatch(ctx context.Context, minute int) ([]Subscription, error)
	DailyBatch(ctx context.Context, hour, minute int) ([]Subscription, error)
}

type sqliteRepo struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewSubscriptionRepository(db *sqlx.DB, logger *zap.Logger) SubscriptionRepository {
	return &sqliteRepo{db: db, logger: logger, now: time.Now}
}

// ErrEmailAlreadyExists is returned when attempting to subscribe an email that already exists.
var ErrEmailAlreadyExists = errors.New("email already subscribed")

func (r *sqliteRepo) Create(ctx context.Context, email string, loc types.Location, freq string,
) (confirmToken uuid.UUID, unsubscribeToken uuid.UUID, err error) {
	const q = `
        INSERT INTO subscriptions
            (email, location_name, latitude, longitude, frequency,
             confirm_token, unsubscribe_token, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?);
    `

	confirmToken = uuid.New()
	unsubscribeToken = uuid.New()

	_, err = r.db.ExecContext(ctx, q,
		email, loc.Name, loc.Latitude, loc.Longitude, freq,
		confirmToken, unsubscribeToken, sqlTime{r.now()},
	)
	if err != nil {
		// Unique violation on the email column
		var serr *sqlite.Error
		if errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			r.logger.Warn("duplicate email subscription attempt",
				zap.String("email", email),
			)
			return uuid.Nil, uuid.Nil, ErrEmailAlreadyExists
		}

		r.logger.Error("failed to create subscription",
			zap.String("email", email),
			zap.String("location", loc.Name),
			zap.String("frequency", freq),
			zap.Error(err),
		)
		return uuid.Nil, uuid.Nil, err
	}

	r.logger.Debug("subscription created",
		zap.String("email", email),
		zap.String("location", loc.Name),
		zap.String("frequency", freq),
		zap.String("confirm_token", confirmToken.String()),
		zap.String("unsubscribe_token", unsubscribeToken.String()),
	)
	return confirmToken, unsubscribeToken, nil
}

func (r *sqliteRepo) Confirm(ctx context.Context, token uuid.UUID) error {
	// Schedule the first delivery one minute out so a fresh confirmation is
	// picked up on the next broadcast tick.
	next := r.now().Add(time.Minute)
	const q = `
        UPDATE subscriptions
        SET confirmed        = 1,
            confirm_token    = NULL,
            scheduled_hour   = ?,
            scheduled_minute = ?
        WHERE confirm_token = ? AND confirmed = 0;
    `
	res, err := r.db.ExecContext(ctx, q, next.Hour(), next.Minute(), token)
	if err != nil {
		r.logger.Error("failed to confirm subscription", zap.String("token", token.String()), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		r.logger.Error("failed to get rows affected on confirm", zap.Error(err))
		return err
	}
	if n == 0 {
		r.logger.Warn("confirm token not found or already confirmed", zap.String("token", token.String()))
		return sql.ErrNoRows
	}
	r.logger.Info("subscription confirmed", zap.String("token", token.String()))
	return nil
}

func (r *sqliteRepo) DeleteByUnsubToken(ctx context.Context, token uuid.UUID) error {
	const q = `DELETE FROM subscriptions WHERE unsubscribe_token = ?;`
	res, err := r.db.ExecContext(ctx, q, token)
	if err != nil {
		r.logger.Error("failed to delete subscription", zap.String("unsubscribe_token", token.String()), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		r.logger.Error("failed to get rows affected on delete", zap.Error(err))
		return err
	}
	if n == 0 {
		r.logger.Warn("unsubscribe token not found", zap.String("unsubscribe_token", token.String()))
		return sql.ErrNoRows
	}
	r.logger.Info("subscription deleted", zap.String("unsubscribe_token", token.String()))
	return nil
}

// subscriptionColumns keeps the SELECT lists in one place so struct scanning
// never sees a column it does not know.
const subscriptionColumns = `
        id, email, location_name, latitude, longitude, frequency,
        confirmed, confirm_token, unsubscribe_token,
        scheduled_minute, scheduled_hour, created_at`

func (r *sqliteRepo) HourlyBatch(ctx context.Context, minute int) ([]Subscription, error) {
	const q = `
        SELECT` + subscriptionColumns + `
        FROM subscriptions
        WHERE confirmed        = 1
          AND frequency        = 'hourly'
          AND scheduled_minute = ?;
    `
	var subs []Subscription
	if err := r.db.SelectContext(ctx, &subs, q, minute); err != nil {
		r.logger.Error("failed to fetch hourly batch", zap.Int("minute", minute), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("fetched hourly batch", zap.Int("minute", minute), zap.Int("count", len(subs)))
	return subs, nil
}

func (r *sqliteRepo) DailyBatch(ctx context.Context, hour, minute int) ([]Subscription, error) {
	const q = `
        SELECT` + subscriptionColumns + `
        FROM subscriptions
        WHERE confirmed        = 1
          AND frequency        = 'daily'
          AND scheduled_hour   = ?
          AND scheduled_minute = ?;
    `
	var subs []Subscription
	if err := r.db.SelectContext(ctx, &subs, q, hour, minute); err != nil {
		r.logger.Error("failed to fetch daily batch", zap.Int("hour", hour), zap.Int("minute", minute), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("fetched daily batch", zap.Int("hour", hour), zap.Int("minute", minute), zap.Int("count", len(subs)))
	return subs, nil
}
