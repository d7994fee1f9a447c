package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/models"
)

func newTestRecordStore(t *testing.T) (*RecordStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewRecordStore(arbor.NewLogger(), dir)
	require.NoError(t, err)
	store.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return store, dir
}

func sampleRecords() []models.StatementRecord {
	return []models.StatementRecord{
		{LocalCode: "72030", DisclosedDate: "2023-05-10", TypeOfDocument: "FYFinancialStatements_Consolidated_JP", TypeOfCurrentPeriod: "FY", OrdinaryProfit: "1000"},
		{LocalCode: "72030", DisclosedDate: "2024-05-08", TypeOfDocument: "FYFinancialStatements_Consolidated_JP", TypeOfCurrentPeriod: "FY", OrdinaryProfit: "1100", OperatingProfit: "N/A"},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, dir := newTestRecordStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "7203", sampleRecords())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "72030.json"))
	require.NoError(t, err, "record file is named by the normalized symbol")

	exists, err := store.Exists(ctx, "7203")
	require.NoError(t, err)
	assert.True(t, exists)

	set, err := store.Load(ctx, "72030")
	require.NoError(t, err)
	require.NotNil(t, set)

	assert.Equal(t, "72030", set.Metadata.Symbol)
	assert.Equal(t, "7203", set.Metadata.OriginalCode)
	assert.Equal(t, 2, set.Metadata.RecordCount)
	assert.Equal(t, models.SourceJQuants, set.Metadata.Source)
	require.Len(t, set.Records, 2)
	assert.Equal(t, "2024-05-08", set.Records[0].DisclosedDate, "records are stored newest first")
	assert.Equal(t, "N/A", set.Records[0].OperatingProfit)
	assert.Equal(t, sampleRecords()[0], set.Records[1])
}

func TestSaveReplacesPreviousContent(t *testing.T) {
	store, _ := newTestRecordStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "7203", sampleRecords())
	require.NoError(t, err)
	_, err = store.Save(ctx, "72030", sampleRecords()[:1])
	require.NoError(t, err)

	set, err := store.Load(ctx, "7203")
	require.NoError(t, err)
	assert.Len(t, set.Records, 1)
	assert.Equal(t, "72030", set.Metadata.OriginalCode)
}

func TestLoadMissingReturnsNil(t *testing.T) {
	store, _ := newTestRecordStore(t)

	set, err := store.Load(context.Background(), "6758")
	require.NoError(t, err)
	assert.Nil(t, set)

	exists, err := store.Exists(context.Background(), "6758")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLoadCorruptFileIsAbsent(t *testing.T) {
	store, dir := newTestRecordStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "67580.json"), []byte("{not json"), 0644))

	set, err := store.Load(context.Background(), "6758")

	require.NoError(t, err)
	assert.Nil(t, set)
}

func TestInvalidSymbol(t *testing.T) {
	store, _ := newTestRecordStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "12", sampleRecords())
	assert.True(t, errors.Is(err, models.ErrInvalidSymbol))

	_, err = store.Load(ctx, "abcdef")
	assert.True(t, errors.Is(err, models.ErrInvalidSymbol))

	_, err = store.Exists(ctx, "")
	assert.True(t, errors.Is(err, models.ErrInvalidSymbol))
}

func TestList(t *testing.T) {
	store, dir := newTestRecordStore(t)
	ctx := context.Background()

	for _, code := range []string{"9984", "7203", "13015"} {
		_, err := store.Save(ctx, code, sampleRecords())
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "update_info.toml"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.json"), []byte("{}"), 0644))

	symbols, err := store.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"13015", "72030", "99840"}, symbols)
}
