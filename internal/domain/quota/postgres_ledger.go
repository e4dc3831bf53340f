package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresLedger is the alternate backend described in spec.md §9: a
// relational store preserving the same atomic check-and-increment contract
// as JSONLedger. Grounded on the teacher's sqlx-based
// internal/domain/subscription/repository.go query shape.
//
// Schema (created by migration, not by this package):
//
//	CREATE TABLE session_daily_usage (
//	    session_id   TEXT NOT NULL,
//	    usage_date   DATE NOT NULL,
//	    image_count  INT NOT NULL DEFAULT 0,
//	    video_count  INT NOT NULL DEFAULT 0,
//	    avatar_count INT NOT NULL DEFAULT 0,
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (session_id, usage_date)
//	);
type PostgresLedger struct {
	db     *sqlx.DB
	limits Limits
}

type usageRow struct {
	SessionID   string    `db:"session_id"`
	UsageDate   time.Time `db:"usage_date"`
	ImageCount  int       `db:"image_count"`
	VideoCount  int       `db:"video_count"`
	AvatarCount int       `db:"avatar_count"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r usageRow) toUsage() Usage {
	return Usage{
		SessionID:   r.SessionID,
		Date:        r.UsageDate.Format("2006-01-02"),
		ImageCount:  r.ImageCount,
		VideoCount:  r.VideoCount,
		AvatarCount: r.AvatarCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// NewPostgresLedger opens (or reuses) a connection pool against databaseURL.
func NewPostgresLedger(databaseURL string, limits Limits) (*PostgresLedger, error) {
	if limits == nil {
		limits = DefaultLimits()
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("quota: connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &PostgresLedger{db: db, limits: limits}, nil
}

func (l *PostgresLedger) Check(ctx context.Context, sessionID string, service Service) (CheckResult, error) {
	var row usageRow
	err := l.db.GetContext(ctx, &row, `
		SELECT session_id, usage_date, image_count, video_count, avatar_count, created_at, updated_at
		FROM session_daily_usage
		WHERE session_id = $1 AND usage_date = CURRENT_DATE
	`, sessionID)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return CheckResult{}, fmt.Errorf("%w: %v", ErrIO, err)
	}

	current := row.toUsage().count(service)
	limit := l.limits[service]

	return CheckResult{
		Allowed:   current < limit,
		Current:   current,
		Limit:     limit,
		Remaining: limit - current,
	}, nil
}

// Increment performs the check-and-increment inside a single transaction
// using SELECT ... FOR UPDATE to serialize concurrent callers for the same
// (session, date) row, then an UPSERT for the first-write-of-the-day case.
func (l *PostgresLedger) Increment(ctx context.Context, sessionID string, service Service) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer tx.Rollback()

	var row usageRow
	err = tx.GetContext(ctx, &row, `
		SELECT session_id, usage_date, image_count, video_count, avatar_count, created_at, updated_at
		FROM session_daily_usage
		WHERE session_id = $1 AND usage_date = CURRENT_DATE
		FOR UPDATE
	`, sessionID)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	current := row.toUsage().count(service)
	if current >= l.limits[service] {
		return ErrQuotaExceeded
	}

	column := serviceColumn(service)
	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO session_daily_usage (session_id, usage_date, %s, created_at, updated_at)
		VALUES ($1, CURRENT_DATE, 1, now(), now())
		ON CONFLICT (session_id, usage_date)
		DO UPDATE SET %s = session_daily_usage.%s + 1, updated_at = now()
	`, column, column, column), sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func serviceColumn(service Service) string {
	switch service {
	case ServiceImage:
		return "image_count"
	case ServiceVideo:
		return "video_count"
	case ServiceAvatar:
		return "avatar_count"
	default:
		return "image_count"
	}
}

func (l *PostgresLedger) Stats(ctx context.Context, date string) (DailyStats, error) {
	var agg struct {
		Sessions    int     `db:"sessions"`
		ImageTotal  int     `db:"image_total"`
		VideoTotal  int     `db:"video_total"`
		AvatarTotal int     `db:"avatar_total"`
	}
	err := l.db.GetContext(ctx, &agg, `
		SELECT
			COUNT(*) AS sessions,
			COALESCE(SUM(image_count), 0) AS image_total,
			COALESCE(SUM(video_count), 0) AS video_total,
			COALESCE(SUM(avatar_count), 0) AS avatar_total
		FROM session_daily_usage
		WHERE usage_date = $1
	`, date)
	if err != nil {
		return DailyStats{}, fmt.Errorf("%w: %v", ErrIO, err)
	}

	stats := DailyStats{
		Date:        date,
		Sessions:    agg.Sessions,
		ImageTotal:  agg.ImageTotal,
		VideoTotal:  agg.VideoTotal,
		AvatarTotal: agg.AvatarTotal,
	}
	if stats.Sessions > 0 {
		stats.ImageAverage = float64(stats.ImageTotal) / float64(stats.Sessions)
		stats.VideoAverage = float64(stats.VideoTotal) / float64(stats.Sessions)
	}
	return stats, nil
}

func (l *PostgresLedger) History(ctx context.Context, sessionID string, days int) ([]Usage, error) {
	if days <= 0 {
		days = 30
	}

	var rows []usageRow
	err := l.db.SelectContext(ctx, &rows, `
		SELECT session_id, usage_date, image_count, video_count, avatar_count, created_at, updated_at
		FROM session_daily_usage
		WHERE session_id = $1 AND usage_date >= CURRENT_DATE - ($2 || ' days')::interval
		ORDER BY usage_date DESC
	`, sessionID, days)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	out := make([]Usage, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toUsage())
	}
	return out, nil
}

func (l *PostgresLedger) Cleanup(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		retentionDays = 30
	}

	res, err := l.db.ExecContext(ctx, `
		DELETE FROM session_daily_usage
		WHERE usage_date < CURRENT_DATE - ($1 || ' days')::interval
	`, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIO, err)
	}

	n, _ := res.RowsAffected()
	return int(n), nil
}

func (l *PostgresLedger) Close() error {
	return l.db.Close()
}
