// Package store persists validated outbreak records in PostgreSQL.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/flockwatch/internal/config"
	"github.com/JonMunkholm/flockwatch/internal/logging"
	"github.com/JonMunkholm/flockwatch/internal/outbreak"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotInitialized is returned when the last_report_date row does not exist yet.
var ErrNotInitialized = errors.New("report date not initialized")

// stateCasesColumns is the COPY column order for flock_cases_by_state.
var stateCasesColumns = []string{
	"state_abbreviation",
	"state",
	"backyard_flocks",
	"commercial_flocks",
	"birds_affected",
	"total_flocks",
	"latitude",
	"longitude",
	"last_reported_detection",
}

// Store wraps a connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens and pings a pool configured from cfg.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SaveRun stores the outcome of one scrape in a single transaction: the
// per-state records replace the stored ones, each summary is upserted by
// period name and at becomes the last scraped date. Any failure rolls the
// whole run back, so readers see either the previous run or this one.
func (s *Store) SaveRun(ctx context.Context, states []outbreak.StateCases, summaries []outbreak.PeriodSummary, at time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	n, err := replaceStateCases(ctx, tx, states)
	if err != nil {
		return err
	}
	for _, p := range summaries {
		if err := upsertPeriodSummary(ctx, tx, p); err != nil {
			return err
		}
	}
	if err := touchLastScraped(ctx, tx, at); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	logging.FromContext(ctx).Info("run stored", "state_rows", n, "period_summaries", len(summaries))
	return nil
}

func replaceStateCases(ctx context.Context, tx pgx.Tx, records []outbreak.StateCases) (int64, error) {
	if _, err := tx.Exec(ctx, "DELETE FROM flock_cases_by_state"); err != nil {
		return 0, fmt.Errorf("clear state cases: %w", err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"flock_cases_by_state"},
		stateCasesColumns,
		pgx.CopyFromRows(stateCasesRows(records)),
	)
	if err != nil {
		return 0, fmt.Errorf("copy state cases: %w", err)
	}
	return n, nil
}

func upsertPeriodSummary(ctx context.Context, tx pgx.Tx, p outbreak.PeriodSummary) error {
	const query = `
		INSERT INTO period_summaries (
			period_name,
			total_birds_affected,
			total_flocks_affected,
			total_backyard_flocks_affected,
			total_commercial_flocks_affected,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (period_name) DO UPDATE SET
			total_birds_affected = EXCLUDED.total_birds_affected,
			total_flocks_affected = EXCLUDED.total_flocks_affected,
			total_backyard_flocks_affected = EXCLUDED.total_backyard_flocks_affected,
			total_commercial_flocks_affected = EXCLUDED.total_commercial_flocks_affected,
			updated_at = now()`

	_, err := tx.Exec(ctx, query,
		p.PeriodName,
		p.TotalBirdsAffected,
		p.TotalFlocksAffected,
		p.TotalBackyardFlocksAffected,
		p.TotalCommercialFlocksAffected,
	)
	if err != nil {
		return fmt.Errorf("upsert period summary %q: %w", p.PeriodName, err)
	}
	return nil
}

func touchLastScraped(ctx context.Context, tx pgx.Tx, at time.Time) error {
	tag, err := tx.Exec(ctx,
		"UPDATE last_report_date SET last_scraped_date = $1 WHERE id = 1",
		pgtype.Timestamptz{Time: at, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("update last scraped date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotInitialized
	}
	return nil
}

// InitializeReportDate creates the report date row with a fresh auth id on
// first start. It returns the stored auth id either way.
func (s *Store) InitializeReportDate(ctx context.Context) (string, error) {
	candidate := pgtype.UUID{Bytes: uuid.New(), Valid: true}

	tag, err := s.pool.Exec(ctx,
		"INSERT INTO last_report_date (id, auth_id) VALUES (1, $1) ON CONFLICT (id) DO NOTHING",
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("initialize report date: %w", err)
	}
	if tag.RowsAffected() == 1 {
		logging.FromContext(ctx).Info("generated new auth id")
	}

	return s.AuthID(ctx)
}

// AuthID returns the shared secret required by the scrape endpoint.
func (s *Store) AuthID(ctx context.Context) (string, error) {
	var id pgtype.UUID
	err := s.pool.QueryRow(ctx, "SELECT auth_id FROM last_report_date WHERE id = 1").Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotInitialized
	}
	if err != nil {
		return "", fmt.Errorf("query auth id: %w", err)
	}
	return uuidString(id), nil
}

// LastScrapedDate returns the time of the last successful scrape. The bool is
// false when no scrape has completed yet.
func (s *Store) LastScrapedDate(ctx context.Context) (time.Time, bool, error) {
	var ts pgtype.Timestamptz
	err := s.pool.QueryRow(ctx, "SELECT last_scraped_date FROM last_report_date WHERE id = 1").Scan(&ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, ErrNotInitialized
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last scraped date: %w", err)
	}
	return ts.Time, ts.Valid, nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logging.FromContext(ctx).Error("rollback failed", "error", err)
	}
}
