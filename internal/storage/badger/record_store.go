package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/finsync/internal/common"
	"github.com/ternarybob/finsync/internal/interfaces"
	"github.com/ternarybob/finsync/internal/models"
)

// symbolEntry is the stored form of a record set. The set is kept as JSON so
// the stored document matches the file backend byte for byte.
type symbolEntry struct {
	Symbol    string `badgerhold:"key"`
	Data      []byte
	UpdatedAt time.Time
}

// RecordStore implements interfaces.RecordStore for Badger
type RecordStore struct {
	db     *BadgerDB
	logger arbor.ILogger
	now    func() time.Time
}

// NewRecordStore creates a new Badger-backed RecordStore
func NewRecordStore(db *BadgerDB, logger arbor.ILogger) *RecordStore {
	return &RecordStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

var _ interfaces.RecordStore = (*RecordStore)(nil)

// Exists reports whether an entry is stored for the symbol
func (s *RecordStore) Exists(ctx context.Context, symbol string) (bool, error) {
	normalized, err := common.NormalizeSymbol(symbol)
	if err != nil {
		return false, err
	}

	var entry symbolEntry
	err = s.db.Store().Get(normalized, &entry)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get record for %s: %w", normalized, err)
	}
	return true, nil
}

// Save upserts the symbol's record set in a single transaction
func (s *RecordStore) Save(ctx context.Context, originalCode string, records []models.StatementRecord) (*models.SymbolRecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbol, err := common.NormalizeSymbol(originalCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	set := models.NewSymbolRecordSet(symbol, originalCode, records, now)
	data, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("failed to encode records for %s: %w", symbol, err)
	}

	entry := symbolEntry{
		Symbol:    symbol,
		Data:      data,
		UpdatedAt: now,
	}
	if err := s.db.Store().Upsert(symbol, &entry); err != nil {
		return nil, fmt.Errorf("failed to save records for %s: %w", symbol, err)
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Int("records", len(records)).
		Msg("Saved symbol records")

	return set, nil
}

// Load returns the symbol's record set, or nil when absent or when the stored
// document cannot be decoded. Storage failures are returned.
func (s *RecordStore) Load(ctx context.Context, symbol string) (*models.SymbolRecordSet, error) {
	normalized, err := common.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	var entry symbolEntry
	err = s.db.Store().Get(normalized, &entry)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record for %s: %w", normalized, err)
	}

	var set models.SymbolRecordSet
	if err := json.Unmarshal(entry.Data, &set); err != nil {
		s.logger.Warn().
			Err(fmt.Errorf("%w: %v", models.ErrCorruptRecord, err)).
			Str("symbol", normalized).
			Msg("Ignoring corrupt record entry")
		return nil, nil
	}

	models.SortNewestFirst(set.Records)
	return &set, nil
}

// List returns all stored symbols in ascending order
func (s *RecordStore) List(ctx context.Context) ([]string, error) {
	var entries []symbolEntry
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	symbols := make([]string, 0, len(entries))
	for _, entry := range entries {
		symbols = append(symbols, entry.Symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}
