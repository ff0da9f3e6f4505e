// -----------------------------------------------------------------------
// Job Store - authoritative record of every pipeline run and its steps
// -----------------------------------------------------------------------

package pipeline

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/models"
)

// StepPatch describes a partial update to one pipeline step. Nil fields are
// left unchanged.
type StepPatch struct {
	Status   *models.StepStatus
	Progress *models.StepProgress
	Result   *string
	Error    *string
}

// Store owns all pipeline job state. Every mutation is serialized per job id
// so concurrent readers never observe a step mid-update, and every read
// returns a deep copy.
type Store struct {
	storage interfaces.JobStorage
	logger  arbor.ILogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a job store backed by the given storage.
func NewStore(storage interfaces.JobStorage, logger arbor.ILogger) *Store {
	return &Store{
		storage: storage,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lock returns the per-job mutex, creating it on first use. Job entries are
// never removed; terminal jobs are retained for audit and their mutexes are
// cheap.
func (s *Store) lock(jobID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[jobID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[jobID] = l
	}
	return l
}

// Create persists a new pending job for a product and returns a copy.
func (s *Store) Create(ctx context.Context, productID string) (*models.PipelineJob, error) {
	job := models.NewPipelineJob(productID)

	l := s.lock(job.ID)
	l.Lock()
	defer l.Unlock()

	if err := s.storage.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("product_id", productID).
		Msg("Pipeline job created")

	return job.Clone(), nil
}

// Get returns a deep copy of a job, or models.ErrJobNotFound.
func (s *Store) Get(ctx context.Context, jobID string) (*models.PipelineJob, error) {
	l := s.lock(jobID)
	l.Lock()
	defer l.Unlock()

	job, err := s.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return job.Clone(), nil
}

// List returns copies of jobs matching the filter.
func (s *Store) List(ctx context.Context, opts *interfaces.JobListOptions) ([]*models.PipelineJob, error) {
	jobs, err := s.storage.ListJobs(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := make([]*models.PipelineJob, len(jobs))
	for i, job := range jobs {
		result[i] = job.Clone()
	}
	return result, nil
}

// UpdateStep applies a patch to one step under the job lock and returns the
// updated job. Unknown job or step yields NotFound.
func (s *Store) UpdateStep(ctx context.Context, jobID string, stepName models.StepName, patch StepPatch) (*models.PipelineJob, error) {
	l := s.lock(jobID)
	l.Lock()
	defer l.Unlock()

	job, err := s.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	step := job.Step(stepName)
	if step == nil {
		return nil, models.ErrStepNotFound
	}

	if patch.Status != nil {
		step.Status = *patch.Status
	}
	if patch.Progress != nil {
		progress := *patch.Progress
		step.Progress = &progress
	}
	if patch.Result != nil {
		step.Result = *patch.Result
	}
	if patch.Error != nil {
		step.Error = *patch.Error
	}

	if err := s.storage.SaveJob(ctx, job); err != nil {
		return nil, err
	}
	return job.Clone(), nil
}

// SetStatus transitions the overall job status under the job lock and
// returns the updated job. An errMsg is recorded only for failed.
func (s *Store) SetStatus(ctx context.Context, jobID string, status models.JobStatus, errMsg string) (*models.PipelineJob, error) {
	l := s.lock(jobID)
	l.Lock()
	defer l.Unlock()

	job, err := s.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.JobStatusRunning:
		job.MarkStarted()
	case models.JobStatusCompleted:
		job.MarkCompleted()
	case models.JobStatusFailed:
		job.MarkFailed(errMsg)
	case models.JobStatusCancelled:
		job.MarkCancelled()
	default:
		job.Status = status
	}

	if err := s.storage.SaveJob(ctx, job); err != nil {
		return nil, err
	}
	return job.Clone(), nil
}

// SetProductTitle records the catalog title on the job after import so
// stream frames can carry it.
func (s *Store) SetProductTitle(ctx context.Context, jobID, title string) (*models.PipelineJob, error) {
	l := s.lock(jobID)
	l.Lock()
	defer l.Unlock()

	job, err := s.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	job.ProductTitle = title

	if err := s.storage.SaveJob(ctx, job); err != nil {
		return nil, err
	}
	return job.Clone(), nil
}

// HasActiveJob reports whether a non-terminal job exists for the product.
func (s *Store) HasActiveJob(ctx context.Context, productID string) (bool, error) {
	jobs, err := s.storage.ListJobs(ctx, &interfaces.JobListOptions{ProductID: productID})
	if err != nil {
		return false, err
	}
	for _, job := range jobs {
		if !job.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}
