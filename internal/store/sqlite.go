package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tabledef/internal/core"
	_ "modernc.org/sqlite"
)

// SQLite is a core.Store backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database file at path with foreign keys enforced.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps PRAGMAs and in-memory databases consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLite{db: db}, nil
}

// DB returns the underlying handle.
func (s *SQLite) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Ping checks the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Query runs query verbatim and renders every value as text.
func (s *SQLite) Query(ctx context.Context, query string) (*core.ResultSet, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	rs := &core.ResultSet{Columns: cols}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]string, len(cols))
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
func (s *SQLite) Apply(ctx context.Context, table string, changes []core.RowChange) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if already committed

	var total int64
	for i, ch := range changes {
		query, fields, err := buildStatement(table, ch, questionPlaceholder)
		if err != nil {
			return 0, fmt.Errorf("change %d: %w", i, err)
		}

		args := make([]any, len(fields))
		for j, fv := range fields {
			args[j] = sqliteArg(fv)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("change %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("change %d: %w", i, err)
		}
		if n == 0 && ch.Action != core.ActionInsert {
			return 0, fmt.Errorf("change %d: %w", i, ErrRowNotFound)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return total, nil
}

// sqliteArg converts a field value into a native bind value. Integers stay
// integers so INTEGER keys compare correctly; empty values bind as NULL.
func sqliteArg(fv core.FieldValue) any {
	if strings.TrimSpace(fv.Value) == "" {
		return nil
	}

	switch fv.Type {
	case core.DataNumber, core.DataCurrency:
		clean, ok := core.CleanNumber(fv.Value)
		if !ok {
			return nil
		}
		if i, err := strconv.ParseInt(clean, 10, 64); err == nil {
			return i
		}
		f, _ := core.ParseNumber(clean)
		return f
	case core.DataDate:
		t, ok := core.ParseDate(fv.Value)
		if !ok {
			return nil
		}
		return t.Format("2006-01-02")
	case core.DataBoolean:
		b, ok := core.ParseBool(fv.Value)
		if !ok {
			return nil
		}
		if b {
			return int64(1)
		}
		return int64(0)
	default:
		return strings.TrimSpace(fv.Value)
	}
}
