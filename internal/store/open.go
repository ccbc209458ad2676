package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/tabledef/internal/core"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Backend is a core.Store owned for the life of a process.
type Backend interface {
	core.Store
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*Postgres)(nil)
	_ Backend = (*SQLite)(nil)
)

// Open connects to the store selected by driver. For postgres url is a
// connection string; for sqlite it is a file path.
func Open(ctx context.Context, driver, url string, opts PoolOptions) (Backend, error) {
	switch driver {
	case DriverPostgres:
		return OpenPostgres(ctx, url, opts)
	case DriverSQLite:
		return OpenSQLite(ctx, url)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
