package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

// memStore is an in-memory port.ReportStore.
type memStore struct {
	mu      sync.Mutex
	reports map[string]domain.RepositoryReport
	extra   []domain.RepositoryReport // appended to GetAll to simulate duplicates
	err     error                     // returned by every call when set
	failPut map[string]error
	puts    int
}

func newMemStore(reports ...domain.RepositoryReport) *memStore {
	s := &memStore{reports: map[string]domain.RepositoryReport{}, failPut: map[string]error{}}
	for _, r := range reports {
		s.reports[r.Name] = r
	}
	return s
}

func (s *memStore) Get(_ context.Context, name string) (*domain.RepositoryReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.reports[name]
	if !ok {
		return nil, &port.NotFoundError{Name: name}
	}
	return &r, nil
}

func (s *memStore) GetAll(context.Context) ([]domain.RepositoryReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	names := make([]string, 0, len(s.reports))
	for n := range s.reports {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]domain.RepositoryReport, 0, len(names)+len(s.extra))
	for _, n := range names {
		out = append(out, s.reports[n])
	}
	return append(out, s.extra...), nil
}

func (s *memStore) Put(_ context.Context, name string, r domain.RepositoryReport) (*domain.RepositoryReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.puts++
	if s.err != nil {
		return nil, s.err
	}
	if err := s.failPut[name]; err != nil {
		return nil, err
	}
	r.Name = name
	r.StoredAt = time.Now().UTC()
	s.reports[name] = r
	return &r, nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func report(name string, status, private bool) domain.RepositoryReport {
	return domain.RepositoryReport{
		Name:          name,
		IsPrivate:     private,
		Status:        status,
		DefaultBranch: "main",
		URL:           "https://github.com/ministryofjustice/" + name,
		Checks:        map[string]bool{"default_branch_main": true, "has_license": status},
	}
}
