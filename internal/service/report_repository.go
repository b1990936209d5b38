package service

import (
	"context"
	"log/slog"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
	"github.com/ministryofjustice/operations-engineering-reports/internal/metrics"
	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

// ReportRepository reads snapshots of the report table. Classification is
// done by the pure functions in compliance.go on the returned snapshot.
type ReportRepository struct {
	store port.ReportStore
}

// NewReportRepository creates a repository over the given store.
func NewReportRepository(store port.ReportStore) *ReportRepository {
	return &ReportRepository{store: store}
}

// Snapshot returns every stored report with exact duplicates removed.
// Storage errors are returned unchanged.
func (r *ReportRepository) Snapshot(ctx context.Context) ([]domain.RepositoryReport, error) {
	all, err := r.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	unique, removed := Deduplicate(all)
	if removed > 0 {
		slog.Warn("duplicate repository reports found in snapshot", "removed", removed, "total", len(all))
		metrics.DuplicatesRemoved(removed)
	}
	return unique, nil
}

// Get returns a single report by name.
func (r *ReportRepository) Get(ctx context.Context, name string) (*domain.RepositoryReport, error) {
	return r.store.Get(ctx, name)
}
