package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db      *BadgerDB
	job     interfaces.JobStorage
	draft   interfaces.DraftStorage
	mapping interfaces.MappingStorage
	synclog interfaces.SyncLogStorage
	logger  arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:      db,
		job:     NewJobStorage(db, logger),
		draft:   NewDraftStorage(db, logger),
		mapping: NewMappingStorage(db, logger),
		synclog: NewSyncLogStorage(db, logger),
		logger:  logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// JobStorage returns the pipeline job storage interface
func (m *Manager) JobStorage() interfaces.JobStorage {
	return m.job
}

// DraftStorage returns the draft storage interface
func (m *Manager) DraftStorage() interfaces.DraftStorage {
	return m.draft
}

// MappingStorage returns the product mapping storage interface
func (m *Manager) MappingStorage() interfaces.MappingStorage {
	return m.mapping
}

// SyncLogStorage returns the sync log storage interface
func (m *Manager) SyncLogStorage() interfaces.SyncLogStorage {
	return m.synclog
}

// RunValueLogGC reclaims value log space; run periodically by the scheduler.
func (m *Manager) RunValueLogGC() error {
	return m.db.RunValueLogGC()
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
