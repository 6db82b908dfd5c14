package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rpattn/influencer-api/internal/db"
	"github.com/rpattn/influencer-api/internal/domain"
)

// QueryObserver is notified after every statement a repository runs.
type QueryObserver func(operation string, duration time.Duration, err error)

// Option customises a repository.
type Option func(*queryRunner)

// WithQueryTimeout bounds every statement. Zero leaves the caller's context alone.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(q *queryRunner) {
		if timeout > 0 {
			q.timeout = timeout
		}
	}
}

// WithQueryObserver registers a callback for statement timings.
func WithQueryObserver(observer QueryObserver) Option {
	return func(q *queryRunner) {
		q.observe = observer
	}
}

type queryRunner struct {
	db      db.DBTX
	timeout time.Duration
	observe QueryObserver
	now     func() time.Time
}

func newQueryRunner(exec db.DBTX, opts []Option) queryRunner {
	q := queryRunner{db: exec, now: time.Now}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

func (q queryRunner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout > 0 {
		return context.WithTimeout(ctx, q.timeout)
	}
	return context.WithCancel(ctx)
}

func (q queryRunner) record(operation string, start time.Time, err error) {
	if q.observe != nil {
		q.observe(operation, q.now().Sub(start), err)
	}
}

// records runs a query and collects every row as a Record.
func (q queryRunner) records(ctx context.Context, operation, sql string, args ...any) (records []domain.Record, err error) {
	if q.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	start := q.now()
	defer func() { q.record(operation, start, err) }()

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}

	records = make([]domain.Record, len(maps))
	for i, m := range maps {
		records[i] = normalizeValues(m)
	}
	return records, nil
}

// scalar runs a single-row query and scans it into dest.
func (q queryRunner) scalar(ctx context.Context, operation, sql string, args []any, dest ...any) (err error) {
	if q.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	start := q.now()
	defer func() { q.record(operation, start, err) }()

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	return q.db.QueryRow(ctx, sql, args...).Scan(dest...)
}

// normalizeValues converts driver values that do not serialise cleanly.
func normalizeValues(row map[string]any) domain.Record {
	record := make(domain.Record, len(row))
	for key, value := range row {
		switch v := value.(type) {
		case [16]byte:
			record[key] = uuid.UUID(v).String()
		default:
			record[key] = value
		}
	}
	return record
}
