// -----------------------------------------------------------------------
// Last Modified: Monday, 12th October 2026 10:20:00 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/finsync/internal/models"
)

// StatementSource - remote provider of financial statements.
// Transport failures are reported as errors wrapping models.ErrRemoteUnavailable.
type StatementSource interface {
	// Statements returns the full statement history for one security
	Statements(ctx context.Context, symbol string) ([]models.StatementRecord, error)

	// StatementsByDate returns every statement disclosed on date (YYYY-MM-DD)
	StatementsByDate(ctx context.Context, date string) ([]models.StatementRecord, error)

	// ListedSymbols returns the codes of securities listed on the given market segments.
	// Segment names are matched as substrings of the market name.
	ListedSymbols(ctx context.Context, markets []string) ([]string, error)
}
