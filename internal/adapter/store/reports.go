package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
	"github.com/ministryofjustice/operations-engineering-reports/internal/metrics"
	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

// Defaults applied when Options leaves a field unset.
const (
	DefaultTimeout  = 5 * time.Second
	DefaultPageSize = 100
)

// Options configures a ReportStore.
type Options struct {
	// Table is the name of the report table. Required.
	Table string
	// Timeout bounds every individual database call.
	Timeout time.Duration
	// PageSize is the number of rows fetched per scan page.
	PageSize int
}

// ReportStore implements port.ReportStore on a single SQL table with one row
// per repository: name (key), data (the report as JSON) and stored_at.
type ReportStore struct {
	db       *DB
	table    string
	timeout  time.Duration
	pageSize int

	getQuery  string
	pageQuery string
	putQuery  string
}

var _ port.ReportStore = (*ReportStore)(nil)

type reportRow struct {
	Name     string    `db:"name"`
	Data     string    `db:"data"`
	StoredAt time.Time `db:"stored_at"`
}

// NewReportStore validates the options and checks that the table exists
// before returning. The table name is checked before any database call.
func NewReportStore(ctx context.Context, db *DB, opts Options) (*ReportStore, error) {
	if err := ValidateTableName(opts.Table); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, &port.ConfigurationError{Field: "DATABASE_URL", Reason: "no database connection"}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	s := &ReportStore{
		db:       db,
		table:    opts.Table,
		timeout:  opts.Timeout,
		pageSize: opts.PageSize,
		getQuery: db.Rebind(fmt.Sprintf(
			"SELECT name, data, stored_at FROM %s WHERE name = ?", opts.Table)),
		pageQuery: db.Rebind(fmt.Sprintf(
			"SELECT name, data, stored_at FROM %s WHERE name > ? ORDER BY name LIMIT ?", opts.Table)),
		putQuery: db.Rebind(fmt.Sprintf(`INSERT INTO %[1]s (name, data, stored_at) VALUES (?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET
				data = excluded.data,
				stored_at = CASE WHEN %[1]s.stored_at > excluded.stored_at THEN %[1]s.stored_at ELSE excluded.stored_at END
			RETURNING stored_at`,
			opts.Table)),
	}

	checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	exists, err := hasTable(checkCtx, db, opts.Table)
	if err != nil {
		return nil, wrapError("describe table", err)
	}
	if !exists {
		return nil, &port.ConfigurationError{Field: "DATABASE_TABLE", Reason: fmt.Sprintf("table %q does not exist", opts.Table)}
	}

	slog.Info("report store initialised", "table", opts.Table, "driver", db.DriverName())
	return s, nil
}

// Get returns the report stored under name.
func (s *ReportStore) Get(ctx context.Context, name string) (*domain.RepositoryReport, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row reportRow
	if err := s.db.GetContext(ctx, &row, s.getQuery, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.ObserveStorage("get", start, nil)
			return nil, &port.NotFoundError{Name: name}
		}
		metrics.ObserveStorage("get", start, err)
		slog.Error("get report failed", "name", name, "table", s.table, "error", err)
		return nil, wrapError("get", err)
	}
	metrics.ObserveStorage("get", start, nil)

	report, err := row.decode()
	if err != nil {
		return nil, err
	}
	return report, nil
}

// GetAll reads the whole table page by page. Any page failure discards
// what was read so far.
func (s *ReportStore) GetAll(ctx context.Context) ([]domain.RepositoryReport, error) {
	start := time.Now()
	reports := make([]domain.RepositoryReport, 0, s.pageSize)

	after := ""
	for {
		rows, err := s.page(ctx, after)
		if err != nil {
			metrics.ObserveStorage("scan", start, err)
			slog.Error("scan report table failed", "table", s.table, "after", after, "error", err)
			return nil, wrapError("scan", err)
		}

		for _, row := range rows {
			report, err := row.decode()
			if err != nil {
				metrics.ObserveStorage("scan", start, err)
				return nil, err
			}
			reports = append(reports, *report)
		}

		if len(rows) < s.pageSize {
			break
		}
		after = rows[len(rows)-1].Name
	}

	metrics.ObserveStorage("scan", start, nil)
	slog.Debug("scanned report table", "table", s.table, "count", len(reports))
	return reports, nil
}

func (s *ReportStore) page(ctx context.Context, after string) ([]reportRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []reportRow
	if err := s.db.SelectContext(ctx, &rows, s.pageQuery, after, s.pageSize); err != nil {
		return nil, err
	}
	return rows, nil
}

// Put upserts report under name. Any StoredAt on the input is replaced;
// the stored value never moves backwards for a given name.
func (s *ReportStore) Put(ctx context.Context, name string, report domain.RepositoryReport) (*domain.RepositoryReport, error) {
	if name == "" {
		return nil, &port.DecodeError{Index: -1, Err: errors.New("report has no name")}
	}

	start := time.Now()
	report.Name = name
	report.StoredAt = time.Time{}

	data, err := json.Marshal(report)
	if err != nil {
		return nil, wrapError("encode item", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// The upsert keeps the later of the clock and the previous stored_at;
	// RETURNING reports whichever one was persisted.
	var storedAt storedTime
	if err := s.db.GetContext(ctx, &storedAt, s.putQuery, name, string(data), time.Now().UTC()); err != nil {
		metrics.ObserveStorage("put", start, err)
		slog.Error("put report failed", "name", name, "table", s.table, "error", err)
		return nil, wrapError("put", err)
	}
	metrics.ObserveStorage("put", start, nil)

	report.StoredAt = storedAt.UTC()
	slog.Info("report stored", "name", name)
	slog.Debug("report value", "name", name, "data", string(data))
	return &report, nil
}

func (r reportRow) decode() (*domain.RepositoryReport, error) {
	var report domain.RepositoryReport
	if err := json.Unmarshal([]byte(r.Data), &report); err != nil {
		return nil, wrapError("decode item "+r.Name, err)
	}
	report.Name = r.Name
	report.StoredAt = r.StoredAt.UTC()
	return &report, nil
}

// storedTime scans a timestamp column. Drivers that cannot see the column
// type of a RETURNING clause hand back text instead of a time.Time.
type storedTime struct {
	time.Time
}

var storedTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
}

// Scan implements sql.Scanner.
func (t *storedTime) Scan(src any) error {
	var text string
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return fmt.Errorf("stored_at: unsupported type %T", src)
	}
	for _, layout := range storedTimeLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("stored_at: cannot parse %q", text)
}
