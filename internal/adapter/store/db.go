package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB is a connection pool to the database holding the report table.
type DB struct {
	*sqlx.DB
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driverName, dsn string) (*DB, error) {
	switch driverName {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, &port.ConfigurationError{Field: "DATABASE_DRIVER", Reason: fmt.Sprintf("unknown driver %q", driverName)}
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, &port.StorageUnavailableError{Op: "open", Err: err}
	}

	if driverName == DriverSQLite {
		// sqlite allows a single writer.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	slog.Debug("database connected", "driver", driverName)
	return &DB{DB: db}, nil
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.DB.PingContext(ctx); err != nil {
		return &port.StorageUnavailableError{Op: "ping", Err: err}
	}
	return nil
}
