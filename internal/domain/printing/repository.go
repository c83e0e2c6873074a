package printing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobFilter narrows ledger listings
type JobFilter struct {
	DocumentType DocType
	ReferenceID  string
	Status       JobStatus
	OrderBy      string
	OrderDir     string
	Page         int
	PageSize     int
}

// PrintJobRepository persists the document ledger
type PrintJobRepository interface {
	Save(ctx context.Context, job *PrintJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*PrintJob, error)
	List(ctx context.Context, filter JobFilter) ([]PrintJob, int64, error)
	FindLatestCompleted(ctx context.Context, docType DocType, referenceID string) (*PrintJob, error)
	DeleteOlderThan(ctx context.Context, before time.Time) ([]PrintJob, error)
}
