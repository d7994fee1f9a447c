package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/common"
	"github.com/ternarybob/finsync/internal/interfaces"
	"github.com/ternarybob/finsync/internal/storage/badger"
	"github.com/ternarybob/finsync/internal/storage/file"
)

// NewStorageManager creates a new storage manager based on config
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Type {
	case "", "file":
		return file.NewManager(logger, config.Storage.File.Dir, config.StateFilePath())
	case "badger":
		return badger.NewManager(logger, &config.Storage.Badger, config.StateFilePath())
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (supported: 'file', 'badger')", config.Storage.Type)
	}
}
