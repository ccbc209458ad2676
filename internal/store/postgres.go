package store

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/tabledef/internal/core"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions tunes a PostgreSQL connection pool.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Postgres is a core.Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a pool for url and verifies connectivity.
func OpenPostgres(ctx context.Context, url string, opts PoolOptions) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Pool returns the underlying pool.
func (p *Postgres) Pool() *pgxpool.Pool { return p.pool }

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

// Query runs query verbatim and renders every value as text.
func (p *Postgres) Query(ctx context.Context, query string) (*core.ResultSet, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	rs := &core.ResultSet{Columns: make([]string, len(fields))}
	for i, f := range fields {
		rs.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Apply writes all changes to table in one transaction.
func (p *Postgres) Apply(ctx context.Context, table string, changes []core.RowChange) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	var total int64
	for i, ch := range changes {
		query, fields, err := buildStatement(table, ch, dollarPlaceholder)
		if err != nil {
			return 0, fmt.Errorf("change %d: %w", i, err)
		}

		args := make([]any, len(fields))
		for j, fv := range fields {
			args[j] = pgArg(fv)
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("change %d: %w", i, err)
		}
		if tag.RowsAffected() == 0 && ch.Action != core.ActionInsert {
			return 0, fmt.Errorf("change %d: %w", i, ErrRowNotFound)
		}
		total += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return total, nil
}

// pgArg converts a field value into its pgtype bind value. Empty and
// unparseable text binds as NULL.
func pgArg(fv core.FieldValue) any {
	switch fv.Type {
	case core.DataNumber, core.DataCurrency:
		return core.ToPgNumeric(fv.Value)
	case core.DataDate:
		return core.ToPgDate(fv.Value)
	case core.DataBoolean:
		return core.ToPgBool(fv.Value)
	default:
		return core.ToPgText(fv.Value)
	}
}
