package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/interfaces"
	"github.com/ternarybob/finsync/internal/models"
)

// FreshnessStore implements interfaces.FreshnessStore as a versioned TOML file
type FreshnessStore struct {
	path   string
	logger arbor.ILogger
}

// NewFreshnessStore returns a store writing to path, creating its directory if needed
func NewFreshnessStore(logger arbor.ILogger, path string) (*FreshnessStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FreshnessStore{
		path:   path,
		logger: logger,
	}, nil
}

var _ interfaces.FreshnessStore = (*FreshnessStore)(nil)

// Path returns the state file location
func (s *FreshnessStore) Path() string {
	return s.path
}

// Load returns the persisted state or nil when there is none.
// An undecodable file is logged and treated as no history.
func (s *FreshnessStore) Load(ctx context.Context) (*models.FreshnessState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read freshness state: %w", err)
	}

	var state models.FreshnessState
	if err := toml.Unmarshal(data, &state); err != nil {
		s.logger.Warn().
			Err(fmt.Errorf("%w: %v", models.ErrCorruptRecord, err)).
			Str("path", s.path).
			Msg("Ignoring corrupt freshness state")
		return nil, nil
	}

	if state.Version > models.FreshnessStateVersion {
		return nil, fmt.Errorf("%w: %d (supported: %d)", models.ErrUnsupportedStateVersion, state.Version, models.FreshnessStateVersion)
	}
	if state.ProcessedDate == "" {
		s.logger.Warn().Str("path", s.path).Msg("Freshness state has no processed date, treating as no history")
		return nil, nil
	}

	return &state, nil
}

// Save writes the state atomically, refusing to move the processed date backwards
func (s *FreshnessStore) Save(ctx context.Context, state *models.FreshnessState) error {
	if state == nil {
		return fmt.Errorf("freshness state is nil")
	}

	previous, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if previous != nil && state.ProcessedDate < previous.ProcessedDate {
		return fmt.Errorf("%w: %s is before %s", models.ErrStateRegression, state.ProcessedDate, previous.ProcessedDate)
	}

	toWrite := *state
	toWrite.Version = models.FreshnessStateVersion

	data, err := toml.Marshal(toWrite)
	if err != nil {
		return fmt.Errorf("failed to encode freshness state: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write freshness state: %w", err)
	}

	s.logger.Debug().
		Str("processed_date", toWrite.ProcessedDate).
		Str("mode", string(toWrite.LastRunMode)).
		Int("today_count", toWrite.TodayDisclosureCount).
		Msg("Saved freshness state")

	return nil
}
