// Package memory provides an in-memory StorageManager used by tests and
// local experiments. Behavior mirrors the badger implementation, including
// sort order and not-found errors.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/models"
)

// Manager is an in-memory implementation of interfaces.StorageManager.
type Manager struct {
	jobs     *JobStorage
	drafts   *DraftStorage
	mappings *MappingStorage
	synclog  *SyncLogStorage
}

// NewManager creates an empty in-memory storage manager.
func NewManager() *Manager {
	return &Manager{
		jobs:     &JobStorage{jobs: make(map[string]*models.PipelineJob)},
		drafts:   &DraftStorage{drafts: make(map[string]*models.Draft)},
		mappings: &MappingStorage{mappings: make(map[string]*models.ProductMapping)},
		synclog:  &SyncLogStorage{},
	}
}

func (m *Manager) JobStorage() interfaces.JobStorage         { return m.jobs }
func (m *Manager) DraftStorage() interfaces.DraftStorage     { return m.drafts }
func (m *Manager) MappingStorage() interfaces.MappingStorage { return m.mappings }
func (m *Manager) SyncLogStorage() interfaces.SyncLogStorage { return m.synclog }
func (m *Manager) Close() error                              { return nil }

// JobStorage stores jobs in a map.
type JobStorage struct {
	mu   sync.RWMutex
	jobs map[string]*models.PipelineJob
}

func (s *JobStorage) SaveJob(ctx context.Context, job *models.PipelineJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *JobStorage) GetJob(ctx context.Context, jobID string) (*models.PipelineJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, models.ErrJobNotFound
	}
	return job.Clone(), nil
}

func (s *JobStorage) ListJobs(ctx context.Context, opts *interfaces.JobListOptions) ([]*models.PipelineJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if opts == nil {
		opts = &interfaces.JobListOptions{}
	}

	var jobs []*models.PipelineJob
	for _, job := range s.jobs {
		if opts.ProductID != "" && job.ProductID != opts.ProductID {
			continue
		}
		if opts.Status != "" && job.Status != opts.Status {
			continue
		}
		jobs = append(jobs, job.Clone())
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	if opts.Limit > 0 && len(jobs) > opts.Limit {
		jobs = jobs[:opts.Limit]
	}
	return jobs, nil
}

// DraftStorage stores drafts in a map.
type DraftStorage struct {
	mu     sync.RWMutex
	drafts map[string]*models.Draft
}

func (s *DraftStorage) SaveDraft(ctx context.Context, draft *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *draft
	s.drafts[draft.ID] = &copied
	return nil
}

func (s *DraftStorage) GetDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[draftID]
	if !ok {
		return nil, models.ErrDraftNotFound
	}
	copied := *draft
	return &copied, nil
}

func (s *DraftStorage) GetPendingDraftByProduct(ctx context.Context, productID string) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, draft := range s.drafts {
		if draft.ProductID == productID && draft.Status == models.DraftStatusPending {
			copied := *draft
			return &copied, nil
		}
	}
	return nil, models.ErrDraftNotFound
}

func (s *DraftStorage) ListDrafts(ctx context.Context, status models.DraftStatus) ([]*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var drafts []*models.Draft
	for _, draft := range s.drafts {
		if status != "" && draft.Status != status {
			continue
		}
		copied := *draft
		drafts = append(drafts, &copied)
	}

	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].CreatedAt.After(drafts[j].CreatedAt)
	})
	return drafts, nil
}

// MappingStorage stores mappings keyed by product id.
type MappingStorage struct {
	mu       sync.RWMutex
	mappings map[string]*models.ProductMapping
}

func (s *MappingStorage) SaveMapping(ctx context.Context, mapping *models.ProductMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *mapping
	if existing, ok := s.mappings[mapping.ProductID]; ok {
		copied.CreatedAt = existing.CreatedAt
	}
	s.mappings[mapping.ProductID] = &copied
	return nil
}

func (s *MappingStorage) GetMappingByProduct(ctx context.Context, productID string) (*models.ProductMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mapping, ok := s.mappings[productID]
	if !ok {
		return nil, models.ErrMappingNotFound
	}
	copied := *mapping
	return &copied, nil
}

func (s *MappingStorage) ListMappings(ctx context.Context) ([]*models.ProductMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mappings := make([]*models.ProductMapping, 0, len(s.mappings))
	for _, mapping := range s.mappings {
		copied := *mapping
		mappings = append(mappings, &copied)
	}
	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].ProductID < mappings[j].ProductID
	})
	return mappings, nil
}

// SyncLogStorage stores audit entries append-only.
type SyncLogStorage struct {
	mu      sync.RWMutex
	entries []*models.SyncLogEntry
}

func (s *SyncLogStorage) AppendEntry(ctx context.Context, entry *models.SyncLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *entry
	s.entries = append(s.entries, &copied)
	return nil
}

func (s *SyncLogStorage) ListEntries(ctx context.Context, limit int) ([]*models.SyncLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*models.SyncLogEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		copied := *s.entries[i]
		entries = append(entries, &copied)
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries, nil
}
