package store

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateTableName rejects empty names and anything that is not a plain
// SQL identifier, since the name is interpolated into statements.
func ValidateTableName(table string) error {
	if table == "" {
		return &port.ConfigurationError{Field: "DATABASE_TABLE", Reason: "table name cannot be empty"}
	}
	if !tableNamePattern.MatchString(table) {
		return &port.ConfigurationError{Field: "DATABASE_TABLE", Reason: fmt.Sprintf("%q is not a valid table identifier", table)}
	}
	return nil
}

func schema(driverName, table string) string {
	switch driverName {
	case DriverPostgres:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			stored_at TIMESTAMPTZ NOT NULL
		)`, table)
	default:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			stored_at DATETIME NOT NULL
		)`, table)
	}
}

// Migrate creates the report table if it does not exist.
func Migrate(ctx context.Context, db *DB, table string) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, schema(db.DriverName(), table)); err != nil {
		return &port.StorageUnavailableError{Op: "migrate", Err: err}
	}

	slog.Info("report table ready", "table", table, "driver", db.DriverName())
	return nil
}

func hasTable(ctx context.Context, db *DB, table string) (bool, error) {
	var query string
	switch db.DriverName() {
	case DriverSQLite:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?"
	default:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = lower(?)"
	}

	var names []string
	if err := db.SelectContext(ctx, &names, db.Rebind(query), table); err != nil {
		return false, err
	}
	return len(names) > 0, nil
}
