package interfaces

import (
	"context"

	"github.com/ternarybob/relist/internal/models"
)

// JobListOptions filters job listings.
type JobListOptions struct {
	ProductID string
	Status    models.JobStatus
	Limit     int
}

// JobStorage persists pipeline jobs. Jobs are retained for audit and never
// deleted by the core.
type JobStorage interface {
	SaveJob(ctx context.Context, job *models.PipelineJob) error
	GetJob(ctx context.Context, jobID string) (*models.PipelineJob, error)
	ListJobs(ctx context.Context, opts *JobListOptions) ([]*models.PipelineJob, error)
}

// DraftStorage persists review drafts.
type DraftStorage interface {
	SaveDraft(ctx context.Context, draft *models.Draft) error
	GetDraft(ctx context.Context, draftID string) (*models.Draft, error)
	GetPendingDraftByProduct(ctx context.Context, productID string) (*models.Draft, error)
	ListDrafts(ctx context.Context, status models.DraftStatus) ([]*models.Draft, error)
}

// MappingStorage persists product-to-listing mappings keyed by product id.
// SaveMapping upserts: insert if absent, update in place otherwise.
type MappingStorage interface {
	SaveMapping(ctx context.Context, mapping *models.ProductMapping) error
	GetMappingByProduct(ctx context.Context, productID string) (*models.ProductMapping, error)
	ListMappings(ctx context.Context) ([]*models.ProductMapping, error)
}

// SyncLogStorage appends publish audit records. Entries are write-once.
type SyncLogStorage interface {
	AppendEntry(ctx context.Context, entry *models.SyncLogEntry) error
	ListEntries(ctx context.Context, limit int) ([]*models.SyncLogEntry, error)
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	JobStorage() JobStorage
	DraftStorage() DraftStorage
	MappingStorage() MappingStorage
	SyncLogStorage() SyncLogStorage
	Close() error
}
