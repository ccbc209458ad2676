package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoQuery is returned when a table definition has no data query.
var ErrNoQuery = errors.New("table has no query")

// UpdateTimeout is the maximum duration for applying one update batch.
var UpdateTimeout = 30 * time.Second

// Service serves registered table definitions, their data and updates.
type Service struct {
	store   Store
	limiter *UpdateLimiter
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithUpdateLimiter bounds concurrent update batches.
func WithUpdateLimiter(l *UpdateLimiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// NewService creates a Service reading from and writing to store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Drain waits for in-flight update batches to finish.
func (s *Service) Drain(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Drain(ctx)
}

// Ping checks the backing store when it supports health checks.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// TableInfo returns the definition registered under name.
func (s *Service) TableInfo(name string) (*TableDefinition, error) {
	return Lookup(name)
}

// Data runs the table's query and returns rows in the definition's
// column order. Result columns are matched to definition columns by
// name, case-insensitively; columns the query does not return are empty.
func (s *Service) Data(ctx context.Context, name string) ([][]string, error) {
	def, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if def.Query == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoQuery, name)
	}

	rs, err := s.store.Query(ctx, def.Query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}

	return project(def, rs), nil
}

// project reorders result set columns into definition column order.
func project(def *TableDefinition, rs *ResultSet) [][]string {
	resultIdx := make(map[string]int, len(rs.Columns))
	for i, c := range rs.Columns {
		resultIdx[strings.ToLower(c)] = i
	}

	names := def.ColumnNames()
	positions := make([]int, len(names))
	for i, n := range names {
		pos, ok := resultIdx[strings.ToLower(n)]
		if !ok {
			pos = -1
		}
		positions[i] = pos
	}

	rows := make([][]string, len(rs.Rows))
	for r, src := range rs.Rows {
		row := make([]string, len(names))
		for i, pos := range positions {
			if pos >= 0 && pos < len(src) {
				row[i] = src[pos]
			}
		}
		rows[r] = row
	}
	return rows
}

// Update validates a batch of row changes and applies it to the table's
// update target in one transaction. Returns true when every change was
// applied.
func (s *Service) Update(ctx context.Context, name string, changes []Change) (bool, error) {
	def, err := Lookup(name)
	if err != nil {
		return false, err
	}

	client := ClientFromContext(ctx)
	logger := slog.Default().With(
		"batch_id", uuid.New().String(),
		"table", name,
		"update_table", def.UpdateTable,
		"ip", client.IP,
		"user_agent", client.UserAgent,
	)

	rowChanges, err := PrepareChanges(def, changes)
	if err != nil {
		logger.Warn("update rejected", "changes", len(changes), "error", err)
		return false, err
	}
	if len(rowChanges) == 0 {
		return true, nil
	}

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			logger.Warn("update not started",
				"changes", len(rowChanges),
				"active", s.limiter.Active(),
				"error", err,
			)
			return false, err
		}
		defer s.limiter.Release()
	}

	updateCtx, cancel := context.WithTimeout(ctx, UpdateTimeout)
	defer cancel()

	start := time.Now()
	affected, err := s.store.Apply(updateCtx, def.UpdateTable, rowChanges)
	if err != nil {
		logger.Error("update failed", "changes", len(rowChanges), "error", err)
		return false, fmt.Errorf("update %s: %w", name, err)
	}

	logger.Info("update applied",
		"changes", len(rowChanges),
		"rows_affected", affected,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return true, nil
}
