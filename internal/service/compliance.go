package service

import (
	"encoding/json"
	"strings"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

// PartitionByCompliance splits reports on Status. Every report lands in
// exactly one of the two slices, in input order.
func PartitionByCompliance(reports []domain.RepositoryReport) (compliant, nonCompliant []domain.RepositoryReport) {
	compliant = make([]domain.RepositoryReport, 0, len(reports))
	nonCompliant = make([]domain.RepositoryReport, 0, len(reports))
	for _, r := range reports {
		if r.Status {
			compliant = append(compliant, r)
		} else {
			nonCompliant = append(nonCompliant, r)
		}
	}
	return compliant, nonCompliant
}

// PartitionByVisibility splits reports on IsPrivate.
func PartitionByVisibility(reports []domain.RepositoryReport) (public, private []domain.RepositoryReport) {
	public = make([]domain.RepositoryReport, 0, len(reports))
	private = make([]domain.RepositoryReport, 0, len(reports))
	for _, r := range reports {
		if r.IsPrivate {
			private = append(private, r)
		} else {
			public = append(public, r)
		}
	}
	return public, private
}

// Deduplicate drops reports that are structurally identical to an earlier
// one, keeping first occurrences in order. It returns how many were dropped.
func Deduplicate(reports []domain.RepositoryReport) ([]domain.RepositoryReport, int) {
	seen := make(map[string]struct{}, len(reports))
	unique := make([]domain.RepositoryReport, 0, len(reports))
	for _, r := range reports {
		key := identity(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}
	return unique, len(reports) - len(unique)
}

// identity is a canonical encoding of a report; encoding/json sorts map keys.
func identity(r domain.RepositoryReport) string {
	b, err := json.Marshal(r)
	if err != nil {
		return r.Name + "\x00" + r.StoredAt.String()
	}
	return string(b)
}

// LookupByName returns the first report named name.
func LookupByName(reports []domain.RepositoryReport, name string) (*domain.RepositoryReport, error) {
	for i := range reports {
		if reports[i].Name == name {
			r := reports[i]
			return &r, nil
		}
	}
	return nil, &port.NotFoundError{Name: name}
}

// FilterByName keeps reports whose name contains substr, ignoring case.
func FilterByName(reports []domain.RepositoryReport, substr string) []domain.RepositoryReport {
	needle := strings.ToLower(substr)
	matches := make([]domain.RepositoryReport, 0)
	for _, r := range reports {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			matches = append(matches, r)
		}
	}
	return matches
}

// BadgeFor derives the public compliance badge for a report. Private
// repositories are refused.
func BadgeFor(r domain.RepositoryReport, label string) (domain.Badge, error) {
	if r.IsPrivate {
		return domain.Badge{}, &port.PrivateRepositoryNotSupportedError{Name: r.Name}
	}
	if label == "" {
		label = domain.BadgeDefaultLabel
	}

	badge := domain.Badge{
		SchemaVersion: domain.BadgeSchemaVersion,
		Label:         label,
		Style:         domain.BadgeStyle,
	}
	if r.Status {
		badge.Message = domain.StatusPass
		badge.Color = domain.BadgeColorPass
		badge.IsError = "false"
	} else {
		badge.Message = domain.StatusFail
		badge.Color = domain.BadgeColorFail
		badge.IsError = "true"
	}
	return badge, nil
}
