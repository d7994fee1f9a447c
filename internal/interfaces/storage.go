// -----------------------------------------------------------------------
// Last Modified: Monday, 12th October 2026 10:20:00 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/finsync/internal/models"
)

// RecordStore - interface for per-symbol statement history persistence.
// Symbols passed in are normalized by the store; invalid codes return models.ErrInvalidSymbol.
type RecordStore interface {
	// Exists reports whether a record set is stored for the symbol
	Exists(ctx context.Context, symbol string) (bool, error)

	// Save replaces the symbol's record set atomically.
	// originalCode is the code as supplied by the caller, kept in metadata.
	Save(ctx context.Context, originalCode string, records []models.StatementRecord) (*models.SymbolRecordSet, error)

	// Load returns the stored record set, or nil when absent.
	// Undecodable content is logged and treated as absent.
	Load(ctx context.Context, symbol string) (*models.SymbolRecordSet, error)

	// List returns all stored symbols in ascending order
	List(ctx context.Context) ([]string, error)
}

// RecordLoader - returns a symbol's record set, fetching it from the remote
// source when the cache has no readable copy. Returns nil when the remote has none either.
type RecordLoader interface {
	LoadOrFetch(ctx context.Context, code string) (*models.SymbolRecordSet, error)
}

// FreshnessStore - interface for the persisted freshness state
type FreshnessStore interface {
	// Load returns the persisted state, or nil when none has been written
	Load(ctx context.Context) (*models.FreshnessState, error)

	// Save writes the state atomically. Moving ProcessedDate backwards
	// returns models.ErrStateRegression.
	Save(ctx context.Context, state *models.FreshnessState) error
}

// StorageManager - groups the storage backends used by the application
type StorageManager interface {
	RecordStore() RecordStore
	FreshnessStore() FreshnessStore
	Close() error
}
