package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"FeedbackResponder/internal/domain"
	"FeedbackResponder/internal/ports"
)

const ledgerTable = "feedback_logs"

var ledgerColumns = []string{
	"id", "marketplace", "shop_id", "review_id", "review_text",
	"rating", "generated_response", "processed_at", "is_auto_replied",
}

var schemas = map[string][]string{
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS feedback_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			marketplace TEXT NOT NULL,
			shop_id TEXT NOT NULL DEFAULT '',
			review_id TEXT NOT NULL,
			review_text TEXT NOT NULL DEFAULT '',
			rating INTEGER NOT NULL DEFAULT 0,
			generated_response TEXT NOT NULL DEFAULT '',
			processed_at INTEGER NOT NULL,
			is_auto_replied INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_logs_review ON feedback_logs(marketplace, review_id, is_auto_replied)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_logs_processed_at ON feedback_logs(processed_at)`,
	},
	"postgres": {
		`CREATE TABLE IF NOT EXISTS feedback_logs (
			id BIGSERIAL PRIMARY KEY,
			marketplace TEXT NOT NULL,
			shop_id TEXT NOT NULL DEFAULT '',
			review_id TEXT NOT NULL,
			review_text TEXT NOT NULL DEFAULT '',
			rating INTEGER NOT NULL DEFAULT 0,
			generated_response TEXT NOT NULL DEFAULT '',
			processed_at BIGINT NOT NULL,
			is_auto_replied BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_logs_review ON feedback_logs(marketplace, review_id, is_auto_replied)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_logs_processed_at ON feedback_logs(processed_at)`,
	},
}

// LedgerRepository persists processing records in SQLite or Postgres.
type LedgerRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.LedgerRepository = (*LedgerRepository)(nil)

// Open connects to the ledger database and creates the schema if needed.
// driver is "sqlite" (dsn is a file path) or "postgres" (dsn is a URL).
func Open(ctx context.Context, driver, dsn string) (*LedgerRepository, error) {
	stmts, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported ledger driver %q", driver)
	}

	openDSN := dsn
	if driver == "sqlite" {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create ledger directory: %w", err)
			}
		}
		openDSN = sqliteDSN(dsn)
	}

	db, err := sql.Open(driver, openDSN)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create ledger schema: %w", err)
		}
	}

	return NewLedgerRepository(db, driver), nil
}

// NewLedgerRepository wraps an existing connection with an initialized schema.
func NewLedgerRepository(db *sql.DB, driver string) *LedgerRepository {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == "postgres" {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &LedgerRepository{db: db, builder: builder}
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// Close releases the connection pool.
func (r *LedgerRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database is reachable.
func (r *LedgerRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert appends a record. ProcessedAt defaults to now.
func (r *LedgerRepository) Insert(ctx context.Context, rec domain.ProcessingRecord) error {
	processedAt := rec.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}

	query, args, err := r.builder.
		Insert(ledgerTable).
		Columns(ledgerColumns[1:]...).
		Values(
			string(rec.Platform),
			rec.ShopID,
			rec.ReviewID,
			rec.ReviewText,
			rec.Rating,
			rec.Reply,
			processedAt.UTC().Unix(),
			rec.Success,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert ledger record: %w", err)
	}
	return nil
}

// ExistsSuccessful reports whether the review already has a successful reply.
func (r *LedgerRepository) ExistsSuccessful(ctx context.Context, platform domain.Platform, reviewID string) (bool, error) {
	query, args, err := r.builder.
		Select("1").
		From(ledgerTable).
		Where(sq.Eq{
			"marketplace":     string(platform),
			"review_id":       reviewID,
			"is_auto_replied": true,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query ledger: %w", err)
	}
	return true, nil
}

// Recent returns the newest records first. An empty platform means all.
func (r *LedgerRepository) Recent(ctx context.Context, limit int, platform domain.Platform) ([]domain.ProcessingRecord, error) {
	qb := r.builder.
		Select(ledgerColumns...).
		From(ledgerTable).
		OrderBy("processed_at DESC", "id DESC").
		Limit(uint64(limit))
	if platform != "" {
		qb = qb.Where(sq.Eq{"marketplace": string(platform)})
	}
	return r.queryRecords(ctx, qb)
}

// ProcessedSince returns records processed at or after since, oldest first.
func (r *LedgerRepository) ProcessedSince(ctx context.Context, since time.Time) ([]domain.ProcessingRecord, error) {
	qb := r.builder.
		Select(ledgerColumns...).
		From(ledgerTable).
		Where(sq.GtOrEq{"processed_at": since.UTC().Unix()}).
		OrderBy("processed_at ASC", "id ASC")
	return r.queryRecords(ctx, qb)
}

// CountSince groups records processed at or after since by platform.
func (r *LedgerRepository) CountSince(ctx context.Context, since time.Time) (map[domain.Platform]int, error) {
	query, args, err := r.builder.
		Select("marketplace", "COUNT(*)").
		From(ledgerTable).
		Where(sq.GtOrEq{"processed_at": since.UTC().Unix()}).
		GroupBy("marketplace").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := map[domain.Platform]int{}
	for rows.Next() {
		var (
			platform string
			count    int
		)
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[domain.Platform(platform)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return counts, nil
}

func (r *LedgerRepository) queryRecords(ctx context.Context, qb sq.SelectBuilder) ([]domain.ProcessingRecord, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []domain.ProcessingRecord
	for rows.Next() {
		var (
			rec         domain.ProcessingRecord
			platform    string
			processedAt int64
		)
		if err := rows.Scan(
			&rec.ID,
			&platform,
			&rec.ShopID,
			&rec.ReviewID,
			&rec.ReviewText,
			&rec.Rating,
			&rec.Reply,
			&processedAt,
			&rec.Success,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Platform = domain.Platform(platform)
		rec.ProcessedAt = time.Unix(processedAt, 0).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return records, nil
}
