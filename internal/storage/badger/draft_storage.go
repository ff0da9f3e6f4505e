package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DraftStorage implements the DraftStorage interface for Badger
type DraftStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDraftStorage creates a new DraftStorage instance
func NewDraftStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DraftStorage {
	return &DraftStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DraftStorage) SaveDraft(ctx context.Context, draft *models.Draft) error {
	if draft.ID == "" {
		return fmt.Errorf("draft ID is required")
	}
	draft.UpdatedAt = time.Now()

	if err := s.db.Store().Upsert(draft.ID, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *DraftStorage) GetDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	var draft models.Draft
	if err := s.db.Store().Get(draftID, &draft); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return &draft, nil
}

// GetPendingDraftByProduct returns the single pending draft for a product,
// or models.ErrDraftNotFound. At most one pending draft exists per product.
func (s *DraftStorage) GetPendingDraftByProduct(ctx context.Context, productID string) (*models.Draft, error) {
	var drafts []models.Draft
	query := badgerhold.Where("ProductID").Eq(productID).
		And("Status").Eq(models.DraftStatusPending)
	if err := s.db.Store().Find(&drafts, query); err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	if len(drafts) == 0 {
		return nil, models.ErrDraftNotFound
	}
	return &drafts[0], nil
}

func (s *DraftStorage) ListDrafts(ctx context.Context, status models.DraftStatus) ([]*models.Draft, error) {
	query := badgerhold.Where("ID").Ne("")
	if status != "" {
		query = query.And("Status").Eq(status)
	}
	query = query.SortBy("CreatedAt").Reverse()

	var drafts []models.Draft
	if err := s.db.Store().Find(&drafts, query); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	result := make([]*models.Draft, len(drafts))
	for i := range drafts {
		result[i] = &drafts[i]
	}
	return result, nil
}
