// -----------------------------------------------------------------------
// Orchestrator - runs the four-step listing pipeline for one product
// -----------------------------------------------------------------------

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/listing"
	"github.com/ternarybob/relist/internal/metrics"
	"github.com/ternarybob/relist/internal/models"
	"github.com/ternarybob/relist/internal/publisher"
)

// errRunCancelled is the internal signal a step closure returns when it
// observes the job's cancel flag between units of work.
var errRunCancelled = errors.New("pipeline run cancelled")

// Orchestrator executes pipeline jobs: import the product from the catalog,
// generate a description, process photos, then build and publish the
// listing. One run per product at a time; requests racing for the same
// product lose with ErrAlreadyInProgress.
type Orchestrator struct {
	store        *Store
	broadcaster  *Broadcaster
	storage      interfaces.StorageManager
	catalog      interfaces.CatalogService
	descriptions interfaces.DescriptionService
	images       interfaces.ImageService
	publisher    *publisher.Publisher
	events       interfaces.EventService
	metrics      *metrics.Collector
	logger       arbor.ILogger

	// flightMu serializes the check-then-create in Run so two requests for
	// the same product cannot both pass the active-job check.
	flightMu sync.Mutex

	cancelMu sync.RWMutex
	cancels  map[string]*atomic.Bool
}

func NewOrchestrator(
	store *Store,
	broadcaster *Broadcaster,
	storage interfaces.StorageManager,
	catalog interfaces.CatalogService,
	descriptions interfaces.DescriptionService,
	images interfaces.ImageService,
	pub *publisher.Publisher,
	events interfaces.EventService,
	collector *metrics.Collector,
	logger arbor.ILogger,
) *Orchestrator {
	return &Orchestrator{
		store:        store,
		broadcaster:  broadcaster,
		storage:      storage,
		catalog:      catalog,
		descriptions: descriptions,
		images:       images,
		publisher:    pub,
		events:       events,
		metrics:      collector,
		logger:       logger,
		cancels:      make(map[string]*atomic.Bool),
	}
}

// Run starts a pipeline job for a product and returns its id immediately;
// the steps execute in the background. Returns models.ErrAlreadyListed when
// the product already has a live listing and models.ErrAlreadyInProgress
// when a non-terminal job exists for it.
func (o *Orchestrator) Run(ctx context.Context, productID string) (string, error) {
	o.flightMu.Lock()
	defer o.flightMu.Unlock()

	mapping, err := o.storage.MappingStorage().GetMappingByProduct(ctx, productID)
	if err != nil && !errors.Is(err, models.ErrMappingNotFound) {
		return "", fmt.Errorf("failed to check product mapping: %w", err)
	}
	if mapping.IsListed() {
		return "", models.ErrAlreadyListed
	}

	active, err := o.store.HasActiveJob(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("failed to check active jobs: %w", err)
	}
	if active {
		return "", models.ErrAlreadyInProgress
	}

	job, err := o.store.Create(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("failed to create pipeline job: %w", err)
	}

	o.cancelMu.Lock()
	o.cancels[job.ID] = &atomic.Bool{}
	o.cancelMu.Unlock()

	o.metrics.JobStarted()
	o.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventJobCreated,
		Payload: job,
	})

	go o.execute(job.ID, productID)

	return job.ID, nil
}

// Cancel requests cooperative cancellation of a running job. The flag is
// checked between steps and between photo units; an in-flight call is
// allowed to finish. Cancelling a terminal job is a no-op.
func (o *Orchestrator) Cancel(ctx context.Context, jobID string) error {
	job, err := o.store.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.IsTerminal() {
		return nil
	}

	o.cancelMu.RLock()
	flag, ok := o.cancels[jobID]
	o.cancelMu.RUnlock()
	if !ok {
		// Non-terminal job with no registered flag: a run interrupted by a
		// process restart. The stale-job sweeper will reap it.
		return nil
	}

	flag.Store(true)
	o.logger.Info().Str("job_id", jobID).Msg("Cancellation requested")
	return nil
}

func (o *Orchestrator) isCancelled(jobID string) bool {
	o.cancelMu.RLock()
	flag, ok := o.cancels[jobID]
	o.cancelMu.RUnlock()
	return ok && flag.Load()
}

func (o *Orchestrator) releaseCancel(jobID string) {
	o.cancelMu.Lock()
	delete(o.cancels, jobID)
	o.cancelMu.Unlock()
}

// execute runs the four pipeline steps in order. Any step error fails the
// job and stops the run; remaining steps stay pending.
func (o *Orchestrator) execute(jobID, productID string) {
	defer o.releaseCancel(jobID)
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().
				Str("job_id", jobID).
				Str("stack", string(debug.Stack())).
				Msg(fmt.Sprintf("Pipeline run panicked: %v", r))
			o.finish(context.Background(), jobID, models.JobStatusFailed, fmt.Sprintf("internal error: %v", r))
		}
	}()

	ctx := context.Background()

	if _, err := o.store.SetStatus(ctx, jobID, models.JobStatusRunning, ""); err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to mark job running")
		return
	}

	var product *models.Product
	var draft *models.Draft

	if !o.runStep(ctx, jobID, models.StepImport, func() (string, error) {
		p, err := o.catalog.FetchProduct(ctx, productID)
		if err != nil {
			return "", err
		}
		product = p
		if _, err := o.store.SetProductTitle(ctx, jobID, p.Title); err != nil {
			return "", err
		}
		return fmt.Sprintf("Imported %q", p.Title), nil
	}) {
		return
	}
	if o.checkCancelled(ctx, jobID) {
		return
	}

	if !o.runStep(ctx, jobID, models.StepGenerateDescription, func() (string, error) {
		description, err := o.descriptions.GenerateDescription(ctx, product)
		if err != nil {
			return "", err
		}

		d, err := o.ensureDraft(ctx, productID)
		if err != nil {
			return "", err
		}
		d.ProposedTitle = product.Title
		d.ProposedDescription = description
		if err := o.storage.DraftStorage().SaveDraft(ctx, d); err != nil {
			return "", fmt.Errorf("failed to save draft: %w", err)
		}
		draft = d

		o.events.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventDraftUpdated,
			Payload: d,
		})

		return fmt.Sprintf("Generated %d character description via %s", len(description), o.descriptions.Provider()), nil
	}) {
		return
	}
	if o.checkCancelled(ctx, jobID) {
		return
	}

	if !o.runStep(ctx, jobID, models.StepProcessImages, func() (string, error) {
		total := len(product.Images)
		if total == 0 {
			return "No photos to process", nil
		}

		processed := make([]string, 0, total)
		for i, source := range product.Images {
			if o.isCancelled(jobID) {
				return "", errRunCancelled
			}

			url, err := o.images.ProcessImage(ctx, source)
			if err != nil {
				return "", fmt.Errorf("photo %d of %d: %w", i+1, total, err)
			}
			processed = append(processed, url)
			o.reportProgress(ctx, jobID, models.StepProcessImages, i+1, total)
		}

		draft.ProposedPhotos = processed
		if err := o.storage.DraftStorage().SaveDraft(ctx, draft); err != nil {
			return "", fmt.Errorf("failed to save draft photos: %w", err)
		}

		return fmt.Sprintf("Processed %d photos", total), nil
	}) {
		return
	}
	if o.checkCancelled(ctx, jobID) {
		return
	}

	if !o.runStep(ctx, jobID, models.StepCreateListing, func() (string, error) {
		payload, err := listing.Build(draft, product, nil, o.logger)
		if err != nil {
			return "", err
		}

		result, err := o.publisher.Publish(ctx, draft, payload)
		if err != nil {
			return "", err
		}

		o.events.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventPublishResult,
			Payload: result,
		})

		return fmt.Sprintf("Listed as %s", result.ListingID), nil
	}) {
		return
	}

	o.finish(ctx, jobID, models.JobStatusCompleted, "")
}

// runStep transitions a step to running, invokes fn, then records the
// outcome. Returns false when the run must stop (failure or cancellation).
func (o *Orchestrator) runStep(ctx context.Context, jobID string, name models.StepName, fn func() (string, error)) bool {
	running := models.StepStatusRunning
	job, err := o.store.UpdateStep(ctx, jobID, name, StepPatch{Status: &running})
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to start step")
		o.finish(ctx, jobID, models.JobStatusFailed, err.Error())
		return false
	}
	o.publishStep(ctx, job, name)

	result, err := fn()
	if err != nil {
		if errors.Is(err, errRunCancelled) {
			errStatus := models.StepStatusError
			detail := "cancelled"
			if job, uerr := o.store.UpdateStep(ctx, jobID, name, StepPatch{Status: &errStatus, Error: &detail}); uerr == nil {
				o.publishStep(ctx, job, name)
			}
			o.metrics.StepFinished(string(name), "cancelled")
			o.finish(ctx, jobID, models.JobStatusCancelled, "")
			return false
		}

		errText := err.Error()
		errStatus := models.StepStatusError
		if job, uerr := o.store.UpdateStep(ctx, jobID, name, StepPatch{Status: &errStatus, Error: &errText}); uerr == nil {
			o.publishStep(ctx, job, name)
		}
		o.metrics.StepFinished(string(name), "error")
		o.logger.Warn().Err(err).
			Str("job_id", jobID).
			Str("step", string(name)).
			Msg("Pipeline step failed")
		o.finish(ctx, jobID, models.JobStatusFailed, errText)
		return false
	}

	done := models.StepStatusDone
	job, err = o.store.UpdateStep(ctx, jobID, name, StepPatch{Status: &done, Result: &result})
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to record step result")
		o.finish(ctx, jobID, models.JobStatusFailed, err.Error())
		return false
	}
	o.metrics.StepFinished(string(name), "done")
	o.publishStep(ctx, job, name)
	return true
}

// checkCancelled observes the cancel flag between steps. When set, marks
// the job cancelled and emits the terminal frame.
func (o *Orchestrator) checkCancelled(ctx context.Context, jobID string) bool {
	if !o.isCancelled(jobID) {
		return false
	}
	o.finish(ctx, jobID, models.JobStatusCancelled, "")
	return true
}

// finish records the terminal status and emits the complete frame exactly
// once per run.
func (o *Orchestrator) finish(ctx context.Context, jobID string, status models.JobStatus, errMsg string) {
	job, err := o.store.SetStatus(ctx, jobID, status, errMsg)
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to record terminal job status")
		return
	}

	o.metrics.JobFinished(string(status))
	o.broadcaster.Publish(models.CompleteFrame(job))
	o.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventJobCompleted,
		Payload: job,
	})

	o.logger.Info().
		Str("job_id", jobID).
		Str("product_id", job.ProductID).
		Str("status", string(status)).
		Msg("Pipeline job finished")
}

func (o *Orchestrator) publishStep(ctx context.Context, job *models.PipelineJob, name models.StepName) {
	step := job.Step(name)
	if step == nil {
		return
	}
	frame := models.StepFrame(job, step)
	o.broadcaster.Publish(frame)
	o.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventJobStep,
		Payload: frame,
	})
}

// reportProgress patches the running step's photo counter and emits an
// incremental frame without touching the step status.
func (o *Orchestrator) reportProgress(ctx context.Context, jobID string, name models.StepName, current, total int) {
	progress := models.StepProgress{Current: current, Total: total}
	job, err := o.store.UpdateStep(ctx, jobID, name, StepPatch{Progress: &progress})
	if err != nil {
		o.logger.Warn().Err(err).Str("job_id", jobID).Msg("Failed to record step progress")
		return
	}

	step := job.Step(name)
	frame := models.StepFrame(job, step)
	o.broadcaster.Publish(frame)
	o.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventJobProgress,
		Payload: frame,
	})
}

// ensureDraft returns the product's pending draft, creating one when none
// exists. Keeps the one-pending-draft-per-product invariant.
func (o *Orchestrator) ensureDraft(ctx context.Context, productID string) (*models.Draft, error) {
	draft, err := o.storage.DraftStorage().GetPendingDraftByProduct(ctx, productID)
	if err == nil {
		return draft, nil
	}
	if !errors.Is(err, models.ErrDraftNotFound) {
		return nil, fmt.Errorf("failed to look up pending draft: %w", err)
	}
	return models.NewDraft(productID), nil
}
