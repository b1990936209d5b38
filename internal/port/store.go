package port

import (
	"context"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
)

// ReportStore abstracts the single key-value table holding one
// RepositoryReport per repository name.
type ReportStore interface {
	// Get returns the report stored under name, or a *NotFoundError.
	Get(ctx context.Context, name string) (*domain.RepositoryReport, error)

	// GetAll scans the whole table. It returns every record or an error,
	// never a partial result.
	GetAll(ctx context.Context) ([]domain.RepositoryReport, error)

	// Put upserts report under name. The store assigns StoredAt and returns
	// the record as written.
	Put(ctx context.Context, name string, report domain.RepositoryReport) (*domain.RepositoryReport, error)
}

// PayloadDecrypter turns an encrypted ingestion body into plain JSON.
type PayloadDecrypter interface {
	Decrypt(token []byte) ([]byte, error)
}
