package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"hotel_merge/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Journal is the MySQL-backed domain.FetchJournal.
type Journal struct{ db *sql.DB }

func New(db *sql.DB) *Journal { return &Journal{db: db} }

func (j *Journal) LogFetch(ctx context.Context, rec domain.FetchRecord) error {
	at := rec.FetchedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx, insertFetchSQL,
		rec.Supplier,
		rec.OK,
		rec.Records,
		valStr(rec.Error),
		rec.Duration.Milliseconds(),
		at,
	)
	return err
}

func (j *Journal) LatestFetches(ctx context.Context) ([]domain.FetchRecord, error) {
	rows, err := j.db.QueryContext(ctx, latestFetchesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FetchRecord
	for rows.Next() {
		var (
			rec   domain.FetchRecord
			msg   sql.NullString
			durMs int64
		)
		if err := rows.Scan(&rec.Supplier, &rec.OK, &rec.Records, &msg, &durMs, &rec.FetchedAt); err != nil {
			return nil, err
		}
		if msg.Valid {
			rec.Error = msg.String
		}
		rec.Duration = time.Duration(durMs) * time.Millisecond
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Prune drops journal rows older than the cutoff and reports how many went.
func (j *Journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, pruneFetchesSQL, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// NormalizeDSN forces parseTime, which the DATETIME columns need to scan
// into time.Time.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// Open connects to MySQL and pings it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	dsn, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	return db, nil
}
