package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/common"
	"github.com/ternarybob/finsync/internal/interfaces"
	"github.com/ternarybob/finsync/internal/storage/file"
)

// Manager implements the StorageManager interface for Badger.
// The freshness state stays in its TOML file so it can be inspected by hand.
type Manager struct {
	db        *BadgerDB
	records   interfaces.RecordStore
	freshness interfaces.FreshnessStore
	logger    arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig, stateFile string) (interfaces.StorageManager, error) {
	freshness, err := file.NewFreshnessStore(logger, stateFile)
	if err != nil {
		return nil, err
	}

	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		records:   NewRecordStore(db, logger),
		freshness: freshness,
		logger:    logger,
	}

	logger.Info().Str("path", config.Path).Msg("Badger storage manager initialized")

	return manager, nil
}

// RecordStore returns the record storage interface
func (m *Manager) RecordStore() interfaces.RecordStore {
	return m.records
}

// FreshnessStore returns the freshness state storage interface
func (m *Manager) FreshnessStore() interfaces.FreshnessStore {
	return m.freshness
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}
