// -----------------------------------------------------------------------
// Draft review - human approval workflow for AI-proposed listing changes
// -----------------------------------------------------------------------

package drafts

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/listing"
	"github.com/ternarybob/relist/internal/metrics"
	"github.com/ternarybob/relist/internal/models"
	"github.com/ternarybob/relist/internal/publisher"
)

// maxBulkErrors bounds the error sample returned by ApproveAll.
const maxBulkErrors = 5

// ApproveOptions selects which proposed fields the reviewer accepts and
// whether to publish immediately. When neither field is selected the whole
// draft is accepted. Overrides let the reviewer pin listing fields for this
// publish; they are applied once and never persisted.
type ApproveOptions struct {
	Photos      bool                     `json:"photos"`
	Description bool                     `json:"description"`
	Publish     bool                     `json:"publish"`
	Overrides   *models.ListingOverrides `json:"overrides,omitempty"`
}

// BulkError is one failed item in a bulk approval.
type BulkError struct {
	DraftID   string `json:"draft_id"`
	ProductID string `json:"product_id"`
	Error     string `json:"error"`
}

// BulkResult summarizes a bulk approval, including partial failures.
type BulkResult struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Errors    []BulkError `json:"errors,omitempty"`
}

// Service applies review decisions to drafts and drives publishes of
// approved content.
type Service struct {
	storage   interfaces.StorageManager
	catalog   interfaces.CatalogService
	publisher *publisher.Publisher
	events    interfaces.EventService
	metrics   *metrics.Collector
	logger    arbor.ILogger
}

func NewService(storage interfaces.StorageManager, catalog interfaces.CatalogService, pub *publisher.Publisher, events interfaces.EventService, collector *metrics.Collector, logger arbor.ILogger) *Service {
	return &Service{
		storage:   storage,
		catalog:   catalog,
		publisher: pub,
		events:    events,
		metrics:   collector,
		logger:    logger,
	}
}

// Approve applies a review decision to a pending draft. Accepting every
// proposed field yields approved; accepting a subset yields partial, with
// the rejected proposals cleared from the draft. With Publish set the draft
// is pushed to the marketplace immediately; a publish failure leaves the
// review decision in place so it can be retried.
func (s *Service) Approve(ctx context.Context, draftID string, opts ApproveOptions) (*models.Draft, error) {
	draft, err := s.storage.DraftStorage().GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if draft.IsPending() {
		if !opts.Photos && !opts.Description {
			opts.Photos = true
			opts.Description = true
		}

		if opts.Photos && opts.Description {
			draft.Status = models.DraftStatusApproved
		} else {
			draft.Status = models.DraftStatusPartial
			if !opts.Photos {
				draft.ProposedPhotos = nil
			}
			if !opts.Description {
				draft.ProposedDescription = ""
			}
		}

		if err := s.saveAndNotify(ctx, draft); err != nil {
			return nil, err
		}
	} else if !draft.Publishable() {
		return nil, models.ErrDraftNotPending
	}

	if opts.Publish {
		if _, err := s.publishDraft(ctx, draft, opts.Overrides); err != nil {
			return draft, err
		}
	}

	return draft, nil
}

// Reject marks a pending draft rejected. Rejected drafts are never
// published and never return to pending.
func (s *Service) Reject(ctx context.Context, draftID string) (*models.Draft, error) {
	draft, err := s.storage.DraftStorage().GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if !draft.IsPending() {
		return nil, models.ErrDraftNotPending
	}

	draft.Status = models.DraftStatusRejected
	if err := s.saveAndNotify(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// ApproveAll approves and publishes every pending draft. It requires an
// explicit confirmation and never aborts mid-batch: each failure is counted
// and the remaining drafts still get their attempt. Failed drafts stay
// pending.
func (s *Service) ApproveAll(ctx context.Context, confirm bool) (*BulkResult, error) {
	if !confirm {
		return nil, models.ErrConfirmationRequired
	}

	pending, err := s.storage.DraftStorage().ListDrafts(ctx, models.DraftStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending drafts: %w", err)
	}

	result := &BulkResult{Total: len(pending)}
	for _, draft := range pending {
		if _, err := s.publishDraft(ctx, draft, nil); err != nil {
			result.Failed++
			if len(result.Errors) < maxBulkErrors {
				result.Errors = append(result.Errors, BulkError{
					DraftID:   draft.ID,
					ProductID: draft.ProductID,
					Error:     err.Error(),
				})
			}
			continue
		}
		result.Succeeded++
	}

	s.logger.Info().
		Int("total", result.Total).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Bulk draft approval finished")

	return result, nil
}

// publishDraft builds the listing payload from the draft, its catalog
// record, and any reviewer overrides, then publishes it. On success the
// publisher commits the draft to listed.
func (s *Service) publishDraft(ctx context.Context, draft *models.Draft, overrides *models.ListingOverrides) (*publisher.Result, error) {
	product, err := s.catalog.FetchProduct(ctx, draft.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", draft.ProductID, err)
	}

	payload, err := listing.Build(draft, product, overrides, s.logger)
	if err != nil {
		return nil, err
	}

	result, err := s.publisher.Publish(ctx, draft, payload)
	if err != nil {
		return nil, err
	}

	s.metrics.DraftUpdated(string(models.DraftStatusListed))
	s.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventPublishResult,
		Payload: result,
	})

	return result, nil
}

func (s *Service) saveAndNotify(ctx context.Context, draft *models.Draft) error {
	if err := s.storage.DraftStorage().SaveDraft(ctx, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	s.metrics.DraftUpdated(string(draft.Status))
	s.events.Publish(ctx, interfaces.Event{
		Type:    interfaces.EventDraftUpdated,
		Payload: draft,
	})
	return nil
}
