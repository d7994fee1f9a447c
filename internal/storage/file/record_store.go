// Package file implements the file-backed storage: one JSON document per
// symbol plus a TOML freshness state file.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/common"
	"github.com/ternarybob/finsync/internal/interfaces"
	"github.com/ternarybob/finsync/internal/models"
)

const recordExt = ".json"

// RecordStore implements interfaces.RecordStore on a directory of <SYMBOL>.json files
type RecordStore struct {
	dir    string
	logger arbor.ILogger
	now    func() time.Time
}

// NewRecordStore creates the directory if needed and returns a store rooted at it
func NewRecordStore(logger arbor.ILogger, dir string) (*RecordStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create record directory: %w", err)
	}

	logger.Debug().Str("dir", dir).Msg("File record store initialized")

	return &RecordStore{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}, nil
}

var _ interfaces.RecordStore = (*RecordStore)(nil)

func (s *RecordStore) path(symbol string) string {
	return filepath.Join(s.dir, symbol+recordExt)
}

// Exists reports whether a record file is present for the symbol
func (s *RecordStore) Exists(ctx context.Context, symbol string) (bool, error) {
	normalized, err := common.NormalizeSymbol(symbol)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(s.path(normalized))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat record for %s: %w", normalized, err)
	}
	return true, nil
}

// Save writes the record set to a temporary file and renames it over the previous one
func (s *RecordStore) Save(ctx context.Context, originalCode string, records []models.StatementRecord) (*models.SymbolRecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbol, err := common.NormalizeSymbol(originalCode)
	if err != nil {
		return nil, err
	}

	set := models.NewSymbolRecordSet(symbol, originalCode, records, s.now())

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode records for %s: %w", symbol, err)
	}

	if err := atomic.WriteFile(s.path(symbol), bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to write records for %s: %w", symbol, err)
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Int("records", len(records)).
		Msg("Saved symbol records")

	return set, nil
}

// Load reads the symbol's record set. Missing or undecodable files return nil.
func (s *RecordStore) Load(ctx context.Context, symbol string) (*models.SymbolRecordSet, error) {
	normalized, err := common.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(normalized))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records for %s: %w", normalized, err)
	}

	var set models.SymbolRecordSet
	if err := json.Unmarshal(data, &set); err != nil {
		s.logger.Warn().
			Err(fmt.Errorf("%w: %v", models.ErrCorruptRecord, err)).
			Str("symbol", normalized).
			Str("path", s.path(normalized)).
			Msg("Ignoring corrupt record file")
		return nil, nil
	}

	models.SortNewestFirst(set.Records)
	return &set, nil
}

// List returns the symbols that have a record file, in ascending order
func (s *RecordStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list record directory: %w", err)
	}

	symbols := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		stem := strings.TrimSuffix(name, recordExt)
		if normalized, err := common.NormalizeSymbol(stem); err != nil || normalized != stem {
			continue
		}
		symbols = append(symbols, stem)
	}

	sort.Strings(symbols)
	return symbols, nil
}
