package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
)

// Visibility selects public or private repositories.
type Visibility string

// Visibility values.
const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility parses a visibility query value. Empty means public.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case "", VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	}
	return "", fmt.Errorf("unknown visibility %q", s)
}

// ListFilter narrows a listing by compliance status. With neither flag set
// every report is returned; with both set nothing can match.
type ListFilter struct {
	CompliantOnly    bool
	NonCompliantOnly bool
}

// ParseStatusFilter parses a status query value: compliant, non_compliant or empty.
func ParseStatusFilter(s string) (ListFilter, error) {
	switch s {
	case "":
		return ListFilter{}, nil
	case "compliant":
		return ListFilter{CompliantOnly: true}, nil
	case "non_compliant", "non-compliant":
		return ListFilter{NonCompliantOnly: true}, nil
	}
	return ListFilter{}, fmt.Errorf("unknown status filter %q", s)
}

// ReportView is a report as served to the presentation layer.
type ReportView struct {
	domain.RepositoryReport
	Compliance    string   `json:"compliance"`
	FailReasons   []string `json:"fail_reasons"`
	StoredAtHuman string   `json:"stored_at_human,omitempty"`
}

// NewReportView decorates a report with its failure reasons.
func NewReportView(r domain.RepositoryReport) ReportView {
	v := ReportView{
		RepositoryReport: r,
		Compliance:       r.StatusLabel(),
		FailReasons:      r.FailureReasons(),
	}
	if !r.StoredAt.IsZero() {
		v.StoredAtHuman = humanize.Time(r.StoredAt)
	}
	return v
}

// Summary aggregates one visibility partition of a snapshot.
type Summary struct {
	Visibility   Visibility `json:"visibility"`
	Total        int        `json:"total"`
	Compliant    int        `json:"compliant"`
	NonCompliant int        `json:"non_compliant"`
	LastStoredAt *time.Time `json:"last_stored_at,omitempty"`
	LastUpdated  string     `json:"last_updated,omitempty"`
}

// QueryService is the read-only facade used by the HTTP layer.
type QueryService struct {
	repo       *ReportRepository
	badgeLabel string
}

// NewQueryService creates a query facade. An empty badgeLabel uses the default.
func NewQueryService(repo *ReportRepository, badgeLabel string) *QueryService {
	if badgeLabel == "" {
		badgeLabel = domain.BadgeDefaultLabel
	}
	return &QueryService{repo: repo, badgeLabel: badgeLabel}
}

// Badge returns the compliance badge for a public repository.
func (s *QueryService) Badge(ctx context.Context, name string) (domain.Badge, error) {
	r, err := s.repo.Get(ctx, name)
	if err != nil {
		return domain.Badge{}, err
	}
	return BadgeFor(*r, s.badgeLabel)
}

// Get returns a single report.
func (s *QueryService) Get(ctx context.Context, name string) (*domain.RepositoryReport, error) {
	return s.repo.Get(ctx, name)
}

// ListPublic returns public reports matching f.
func (s *QueryService) ListPublic(ctx context.Context, f ListFilter) ([]domain.RepositoryReport, error) {
	return s.list(ctx, VisibilityPublic, f)
}

// ListPrivate returns private reports matching f.
func (s *QueryService) ListPrivate(ctx context.Context, f ListFilter) ([]domain.RepositoryReport, error) {
	return s.list(ctx, VisibilityPrivate, f)
}

// List dispatches to ListPublic or ListPrivate.
func (s *QueryService) List(ctx context.Context, v Visibility, f ListFilter) ([]domain.RepositoryReport, error) {
	return s.list(ctx, v, f)
}

func (s *QueryService) list(ctx context.Context, v Visibility, f ListFilter) ([]domain.RepositoryReport, error) {
	reports, err := s.visible(ctx, v)
	if err != nil {
		return nil, err
	}

	compliant, nonCompliant := PartitionByCompliance(reports)
	switch {
	case f.CompliantOnly && f.NonCompliantOnly:
		return []domain.RepositoryReport{}, nil
	case f.CompliantOnly:
		return compliant, nil
	case f.NonCompliantOnly:
		return nonCompliant, nil
	}
	return reports, nil
}

// Search returns reports of the given visibility whose name contains q,
// ignoring case, in snapshot order.
func (s *QueryService) Search(ctx context.Context, q string, v Visibility) ([]domain.RepositoryReport, error) {
	reports, err := s.visible(ctx, v)
	if err != nil {
		return nil, err
	}
	return FilterByName(reports, q), nil
}

// Summary counts compliant and non-compliant reports of one visibility.
func (s *QueryService) Summary(ctx context.Context, v Visibility) (*Summary, error) {
	reports, err := s.visible(ctx, v)
	if err != nil {
		return nil, err
	}

	compliant, nonCompliant := PartitionByCompliance(reports)
	sum := &Summary{
		Visibility:   v,
		Total:        len(reports),
		Compliant:    len(compliant),
		NonCompliant: len(nonCompliant),
	}

	var last time.Time
	for _, r := range reports {
		if r.StoredAt.After(last) {
			last = r.StoredAt
		}
	}
	if !last.IsZero() {
		sum.LastStoredAt = &last
		sum.LastUpdated = humanize.Time(last)
	}
	return sum, nil
}

func (s *QueryService) visible(ctx context.Context, v Visibility) ([]domain.RepositoryReport, error) {
	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	public, private := PartitionByVisibility(snapshot)
	if v == VisibilityPrivate {
		return private, nil
	}
	return public, nil
}
