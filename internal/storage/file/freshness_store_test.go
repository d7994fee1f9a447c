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

func newTestFreshnessStore(t *testing.T) *FreshnessStore {
	t.Helper()
	store, err := NewFreshnessStore(arbor.NewLogger(), filepath.Join(t.TempDir(), "state", "update_info.toml"))
	require.NoError(t, err)
	return store
}

func TestFreshnessStoreNoHistory(t *testing.T) {
	store := newTestFreshnessStore(t)

	state, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestFreshnessStoreRoundTrip(t *testing.T) {
	store := newTestFreshnessStore(t)
	ctx := context.Background()
	updated := time.Date(2024, 5, 8, 18, 30, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, &models.FreshnessState{
		ProcessedDate:                "2024-05-08",
		LastRunMode:                  models.RunModeSameDay,
		TodayDisclosureCount:         42,
		PreviousTodayDisclosureCount: 30,
		UpdatedAt:                    updated,
		RunID:                        "run_1",
	}))

	state, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, state)

	assert.Equal(t, models.FreshnessStateVersion, state.Version)
	assert.Equal(t, "2024-05-08", state.ProcessedDate)
	assert.Equal(t, models.RunModeSameDay, state.LastRunMode)
	assert.Equal(t, 42, state.TodayDisclosureCount)
	assert.Equal(t, 30, state.PreviousTodayDisclosureCount)
	assert.True(t, updated.Equal(state.UpdatedAt))
	assert.Equal(t, "run_1", state.RunID)
}

func TestFreshnessStoreRejectsRegression(t *testing.T) {
	store := newTestFreshnessStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.FreshnessState{ProcessedDate: "2024-05-08", LastRunMode: models.RunModeDateRange}))
	require.NoError(t, store.Save(ctx, &models.FreshnessState{ProcessedDate: "2024-05-08", LastRunMode: models.RunModeSameDay}))

	err := store.Save(ctx, &models.FreshnessState{ProcessedDate: "2024-05-07", LastRunMode: models.RunModeDateRange})
	assert.True(t, errors.Is(err, models.ErrStateRegression))

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-08", state.ProcessedDate)
	assert.Equal(t, models.RunModeSameDay, state.LastRunMode)
}

func TestFreshnessStoreCorruptFileIsNoHistory(t *testing.T) {
	store := newTestFreshnessStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("processed_date = [[["), 0644))

	state, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestFreshnessStoreNewerVersionIsRejected(t *testing.T) {
	store := newTestFreshnessStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("version = 99\nprocessed_date = \"2024-05-08\"\n"), 0644))

	_, err := store.Load(context.Background())

	assert.True(t, errors.Is(err, models.ErrUnsupportedStateVersion))
}
