package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/ports"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	verdictsTable = "verdicts"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS verdicts (
		id                TEXT PRIMARY KEY,
		text_hash         TEXT NOT NULL,
		excerpt           TEXT NOT NULL,
		label             TEXT NOT NULL,
		confidence        DOUBLE PRECISION NULL,
		word_count        INTEGER NOT NULL,
		sentence_count    INTEGER NOT NULL,
		reliability_score DOUBLE PRECISION NOT NULL,
		language          TEXT NOT NULL DEFAULT '',
		fingerprint       TEXT NOT NULL,
		created_at_ms     BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS verdicts_created_at_idx ON verdicts (created_at_ms)`,
}

var verdictColumns = []string{
	"id", "text_hash", "excerpt", "label", "confidence", "word_count",
	"sentence_count", "reliability_score", "language", "fingerprint", "created_at_ms",
}

// VerdictRepository persists verdicts into SQLite or Postgres.
type VerdictRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.VerdictRepository = (*VerdictRepository)(nil)

// OpenVerdictRepository opens the database for driver and bootstraps the schema.
func OpenVerdictRepository(ctx context.Context, driver, dsn string) (*VerdictRepository, error) {
	driver = strings.ToLower(driver)
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported history driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// An in-memory database lives in a single connection.
		db.SetMaxOpenConns(1)
	}

	repo, err := NewVerdictRepository(db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return repo, nil
}

// NewVerdictRepository wires an existing sql.DB.
func NewVerdictRepository(db *sql.DB, driver string) (*VerdictRepository, error) {
	var format sq.PlaceholderFormat
	switch strings.ToLower(driver) {
	case DriverSQLite:
		format = sq.Question
	case DriverPostgres:
		format = sq.Dollar
	default:
		return nil, fmt.Errorf("unsupported history driver %q", driver)
	}

	return &VerdictRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
	}, nil
}

// EnsureSchema creates the verdicts table when missing.
func (r *VerdictRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Save inserts a verdict.
func (r *VerdictRepository) Save(ctx context.Context, v domain.Verdict) error {
	var confidence sql.NullFloat64
	if v.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *v.Confidence, Valid: true}
	}

	query, args, err := r.builder.Insert(verdictsTable).
		Columns(verdictColumns...).
		Values(
			v.ID,
			v.TextHash,
			v.Excerpt,
			v.Label.String(),
			confidence,
			v.WordCount,
			v.SentenceCount,
			v.ReliabilityScore,
			v.Language,
			v.Fingerprint,
			v.CreatedAt.UnixMilli(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert verdict: %w", err)
	}
	return nil
}

// Recent returns up to limit verdicts, newest first.
func (r *VerdictRepository) Recent(ctx context.Context, limit int) ([]domain.Verdict, error) {
	if limit <= 0 {
		return []domain.Verdict{}, nil
	}

	query, args, err := r.builder.Select(verdictColumns...).
		From(verdictsTable).
		OrderBy("created_at_ms DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}

	result := make([]domain.Verdict, 0, limit)
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		result = append(result, v)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// PruneBefore deletes verdicts created before cutoff.
func (r *VerdictRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := r.builder.Delete(verdictsTable).
		Where(sq.Lt{"created_at_ms": cutoff.UnixMilli()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune verdicts: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (r *VerdictRepository) Close() error {
	return r.db.Close()
}

func scanVerdict(rows *sql.Rows) (domain.Verdict, error) {
	var (
		v          domain.Verdict
		label      string
		confidence sql.NullFloat64
		createdAt  int64
	)

	if err := rows.Scan(
		&v.ID,
		&v.TextHash,
		&v.Excerpt,
		&label,
		&confidence,
		&v.WordCount,
		&v.SentenceCount,
		&v.ReliabilityScore,
		&v.Language,
		&v.Fingerprint,
		&createdAt,
	); err != nil {
		return v, fmt.Errorf("scan verdict: %w", err)
	}

	if err := v.Label.UnmarshalText([]byte(label)); err != nil {
		return v, fmt.Errorf("verdict %s: %w", v.ID, err)
	}
	if confidence.Valid {
		c := confidence.Float64
		v.Confidence = &c
	}
	v.CreatedAt = time.UnixMilli(createdAt).UTC()

	return v, nil
}
