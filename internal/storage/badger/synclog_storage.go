package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SyncLogStorage implements the SyncLogStorage interface for Badger.
// Entries are append-only; Insert (not Upsert) guarantees write-once.
type SyncLogStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSyncLogStorage creates a new SyncLogStorage instance
func NewSyncLogStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SyncLogStorage {
	return &SyncLogStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SyncLogStorage) AppendEntry(ctx context.Context, entry *models.SyncLogEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("sync log entry ID is required")
	}

	if err := s.db.Store().Insert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to append sync log entry: %w", err)
	}
	return nil
}

func (s *SyncLogStorage) ListEntries(ctx context.Context, limit int) ([]*models.SyncLogEntry, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.SyncLogEntry
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to list sync log entries: %w", err)
	}

	result := make([]*models.SyncLogEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result, nil
}
