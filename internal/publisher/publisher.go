// -----------------------------------------------------------------------
// Publisher - idempotent path from a listing payload to a live listing
// -----------------------------------------------------------------------

package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/metrics"
	"github.com/ternarybob/relist/internal/models"
)

// Result describes a successful publish.
type Result struct {
	ListingID   string `json:"listing_id"`
	OfferID     string `json:"offer_id"`
	SKU         string `json:"sku"`
	ReusedOffer bool   `json:"reused_offer"`
}

// Publisher pushes a built listing payload to the marketplace and records
// the outcome. Every remote step is idempotent so a failed publish can be
// retried without manual cleanup: inventory items are replaced in place and
// existing unpublished offers are reused rather than duplicated.
type Publisher struct {
	marketplace interfaces.MarketplaceService
	mappings    interfaces.MappingStorage
	drafts      interfaces.DraftStorage
	synclog     interfaces.SyncLogStorage
	metrics     *metrics.Collector
	logger      arbor.ILogger
}

func New(marketplace interfaces.MarketplaceService, storage interfaces.StorageManager, collector *metrics.Collector, logger arbor.ILogger) *Publisher {
	return &Publisher{
		marketplace: marketplace,
		mappings:    storage.MappingStorage(),
		drafts:      storage.DraftStorage(),
		synclog:     storage.SyncLogStorage(),
		metrics:     collector,
		logger:      logger,
	}
}

// Publish lists the payload on the marketplace. On success the product
// mapping, draft status, and sync log are all committed together; on any
// failure only a sync log failure entry is written, leaving the draft
// publishable so the operation can be retried.
func (p *Publisher) Publish(ctx context.Context, draft *models.Draft, payload *models.ListingPayload) (*Result, error) {
	if draft == nil {
		return nil, models.NewValidationError("no draft")
	}
	if draft.ListingID != "" {
		return nil, models.ErrAlreadyListed
	}

	if err := p.checkMapping(ctx, draft.ProductID); err != nil {
		return nil, err
	}

	result, err := p.publishToMarketplace(ctx, payload)
	if err != nil {
		p.recordFailure(ctx, draft, payload.SKU, err)
		return nil, err
	}

	if err := p.commit(ctx, draft, payload, result); err != nil {
		p.recordFailure(ctx, draft, payload.SKU, err)
		return nil, err
	}

	p.metrics.PublishAttempt("success")
	p.logger.Info().
		Str("product_id", draft.ProductID).
		Str("listing_id", result.ListingID).
		Str("offer_id", result.OfferID).
		Msg("Published listing")

	return result, nil
}

// checkMapping rejects products that already carry a marketplace listing.
// A mapping row without a listing id does not block; publish updates it in place.
func (p *Publisher) checkMapping(ctx context.Context, productID string) error {
	mapping, err := p.mappings.GetMappingByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, models.ErrMappingNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check product mapping: %w", err)
	}
	if mapping.IsListed() {
		return models.ErrAlreadyMapped
	}
	return nil
}

func (p *Publisher) publishToMarketplace(ctx context.Context, payload *models.ListingPayload) (*Result, error) {
	locationKey, err := p.marketplace.EnsureLocation(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure merchant location: %w", err)
	}

	policies, err := p.marketplace.GetBusinessPolicies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve business policies: %w", err)
	}

	if err := p.marketplace.CreateOrReplaceInventoryItem(ctx, payload.SKU, payload); err != nil {
		return nil, fmt.Errorf("failed to upsert inventory item: %w", err)
	}

	offerID, reused, err := p.resolveOffer(ctx, payload, policies, locationKey)
	if err != nil {
		return nil, err
	}

	listingID, err := p.marketplace.PublishOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to publish offer: %w", err)
	}

	return &Result{
		ListingID:   listingID,
		OfferID:     offerID,
		SKU:         payload.SKU,
		ReusedOffer: reused,
	}, nil
}

// resolveOffer reuses an existing unpublished offer for the SKU when one
// exists, otherwise creates a new offer.
func (p *Publisher) resolveOffer(ctx context.Context, payload *models.ListingPayload, policies *models.BusinessPolicies, locationKey string) (string, bool, error) {
	offers, err := p.marketplace.GetOffersBySKU(ctx, payload.SKU)
	if err != nil {
		return "", false, fmt.Errorf("failed to look up offers for sku %s: %w", payload.SKU, err)
	}

	for _, offer := range offers {
		if offer.ListingID == "" {
			p.logger.Debug().
				Str("sku", payload.SKU).
				Str("offer_id", offer.ID).
				Msg("Reusing existing unpublished offer")
			return offer.ID, true, nil
		}
	}

	offerID, err := p.marketplace.CreateOffer(ctx, payload, policies, locationKey)
	if err != nil {
		return "", false, fmt.Errorf("failed to create offer: %w", err)
	}
	return offerID, false, nil
}

// commit persists the listing identity after a successful publish: mapping
// upsert, draft marked listed, and a success sync log entry.
func (p *Publisher) commit(ctx context.Context, draft *models.Draft, payload *models.ListingPayload, result *Result) error {
	now := time.Now()

	mapping := &models.ProductMapping{
		ProductID: draft.ProductID,
		SKU:       result.SKU,
		OfferID:   result.OfferID,
		ListingID: result.ListingID,
		Status:    models.MappingStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := p.mappings.GetMappingByProduct(ctx, draft.ProductID); err == nil {
		mapping.CreatedAt = existing.CreatedAt
	}
	if err := p.mappings.SaveMapping(ctx, mapping); err != nil {
		return fmt.Errorf("failed to save product mapping: %w", err)
	}

	draft.Status = models.DraftStatusListed
	draft.ListingID = result.ListingID
	draft.OfferID = result.OfferID
	draft.UpdatedAt = now
	if err := p.drafts.SaveDraft(ctx, draft); err != nil {
		return fmt.Errorf("failed to mark draft listed: %w", err)
	}

	entry := models.NewSyncLogEntry(draft.ProductID, result.SKU)
	entry.DraftID = draft.ID
	entry.ListingID = result.ListingID
	entry.OfferID = result.OfferID
	entry.Success = true
	entry.Detail = fmt.Sprintf("listed %q", payload.Title)
	if err := p.synclog.AppendEntry(ctx, entry); err != nil {
		// The listing is live; a missing log line is not worth failing over.
		p.logger.Warn().Err(err).
			Str("product_id", draft.ProductID).
			Msg("Failed to append sync log entry")
	}

	return nil
}

// recordFailure writes a failure entry to the sync log without touching the
// draft, keeping it publishable for a retry.
func (p *Publisher) recordFailure(ctx context.Context, draft *models.Draft, sku string, cause error) {
	p.metrics.PublishAttempt("failure")

	entry := models.NewSyncLogEntry(draft.ProductID, sku)
	entry.DraftID = draft.ID
	entry.Error = cause.Error()
	if err := p.synclog.AppendEntry(ctx, entry); err != nil {
		p.logger.Warn().Err(err).
			Str("product_id", draft.ProductID).
			Msg("Failed to append sync log failure entry")
	}
}
