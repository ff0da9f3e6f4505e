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

// MappingStorage implements the MappingStorage interface for Badger.
// Mappings are keyed by product id so a save is always an in-place upsert,
// never a second row for the same product.
type MappingStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMappingStorage creates a new MappingStorage instance
func NewMappingStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MappingStorage {
	return &MappingStorage{
		db:     db,
		logger: logger,
	}
}

func (s *MappingStorage) SaveMapping(ctx context.Context, mapping *models.ProductMapping) error {
	if mapping.ProductID == "" {
		return fmt.Errorf("mapping product ID is required")
	}

	now := time.Now()
	mapping.UpdatedAt = now

	var existing models.ProductMapping
	err := s.db.Store().Get(mapping.ProductID, &existing)
	switch err {
	case nil:
		// Preserve the original creation time on update
		mapping.CreatedAt = existing.CreatedAt
	case badgerhold.ErrNotFound:
		mapping.CreatedAt = now
	default:
		return fmt.Errorf("failed to check existing mapping: %w", err)
	}

	if err := s.db.Store().Upsert(mapping.ProductID, mapping); err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}
	return nil
}

func (s *MappingStorage) GetMappingByProduct(ctx context.Context, productID string) (*models.ProductMapping, error) {
	var mapping models.ProductMapping
	if err := s.db.Store().Get(productID, &mapping); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to get mapping: %w", err)
	}
	return &mapping, nil
}

func (s *MappingStorage) ListMappings(ctx context.Context) ([]*models.ProductMapping, error) {
	var mappings []models.ProductMapping
	query := badgerhold.Where("ProductID").Ne("").SortBy("UpdatedAt").Reverse()
	if err := s.db.Store().Find(&mappings, query); err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}

	result := make([]*models.ProductMapping, len(mappings))
	for i := range mappings {
		result[i] = &mappings[i]
	}
	return result, nil
}
