package models

import "time"

// SourceJQuants identifies records retrieved from the J-Quants API.
const SourceJQuants = "J-Quants API"

// RecordMetadata describes a persisted symbol record set.
type RecordMetadata struct {
	Symbol       string    `json:"code"`
	OriginalCode string    `json:"original_code"`
	RetrievedAt  time.Time `json:"retrieved_datetime"`
	RecordCount  int       `json:"data_count"`
	Source       string    `json:"api_source"`
}

// SymbolRecordSet is the full cached statement history of one security.
// Records are ordered newest first.
type SymbolRecordSet struct {
	Metadata RecordMetadata    `json:"metadata"`
	Records  []StatementRecord `json:"raw_data"`
}

// NewSymbolRecordSet builds a sorted record set stamped with retrievedAt.
func NewSymbolRecordSet(symbol, originalCode string, records []StatementRecord, retrievedAt time.Time) *SymbolRecordSet {
	sorted := make([]StatementRecord, len(records))
	copy(sorted, records)
	SortNewestFirst(sorted)

	return &SymbolRecordSet{
		Metadata: RecordMetadata{
			Symbol:       symbol,
			OriginalCode: originalCode,
			RetrievedAt:  retrievedAt,
			RecordCount:  len(sorted),
			Source:       SourceJQuants,
		},
		Records: sorted,
	}
}
