package file

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/interfaces"
)

// Manager implements the StorageManager interface for the file backend
type Manager struct {
	records   *RecordStore
	freshness *FreshnessStore
}

// NewManager creates a file storage manager rooted at dir
func NewManager(logger arbor.ILogger, dir string, stateFile string) (interfaces.StorageManager, error) {
	records, err := NewRecordStore(logger, dir)
	if err != nil {
		return nil, err
	}
	freshness, err := NewFreshnessStore(logger, stateFile)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("dir", dir).Str("state_file", stateFile).Msg("File storage manager initialized")

	return &Manager{
		records:   records,
		freshness: freshness,
	}, nil
}

// RecordStore returns the record storage interface
func (m *Manager) RecordStore() interfaces.RecordStore {
	return m.records
}

// FreshnessStore returns the freshness state storage interface
func (m *Manager) FreshnessStore() interfaces.FreshnessStore {
	return m.freshness
}

// Close is a no-op; every write is already durable
func (m *Manager) Close() error {
	return nil
}
