package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/townbeat/eventseries/series"
	"github.com/townbeat/eventseries/storage"
)

func TestStore_SeriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New()

	sr := &series.Series{Title: "Pub Quiz", Venue: "The Anchor"}
	require.NoError(t, store.CreateSeries(ctx, sr))
	require.NotEmpty(t, sr.ID, "store assigns missing IDs")

	got, err := store.GetSeries(ctx, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pub Quiz", got.Title)

	got.Title = "Quiz Night"
	require.NoError(t, store.UpdateSeries(ctx, got))

	updated, err := store.GetSeries(ctx, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quiz Night", updated.Title)
}

func TestStore_GetSeriesNotFound(t *testing.T) {
	store := New()

	_, err := store.GetSeries(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
}

func TestStore_CreateSeriesDuplicate(t *testing.T) {
	ctx := context.Background()
	store := New()

	sr := &series.Series{ID: "dup", Title: "A"}
	require.NoError(t, store.CreateSeries(ctx, sr))

	err := store.CreateSeries(ctx, &series.Series{ID: "dup", Title: "B"})
	require.Error(t, err)

	var se *storage.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, storage.ErrAlreadyExists, se.Type)
}

func TestStore_InstanceLifecycle(t *testing.T) {
	ctx := context.Background()
	store := New()

	inst := &series.EventInstance{
		SeriesID:     "s1",
		InstanceDate: "2025-03-04",
		Status:       series.StatusDraft,
	}
	require.NoError(t, store.CreateInstance(ctx, inst))
	require.NotEmpty(t, inst.ID)

	other := &series.EventInstance{
		SeriesID:     "s2",
		InstanceDate: "2025-03-04",
		Status:       series.StatusDraft,
	}
	require.NoError(t, store.CreateInstance(ctx, other))

	listed, err := store.ListInstances(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, listed, 1, "listing is scoped to the series")

	require.NoError(t, store.RetireInstance(ctx, inst.ID))
	listed, err = store.ListInstances(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, listed, 1, "retirement cancels, it never deletes")
	assert.Equal(t, series.StatusCancelled, listed[0].Status)
	assert.Zero(t, listed[0].SeriesSequence)
}

func TestStore_RetireInstanceNotFound(t *testing.T) {
	store := New()
	err := store.RetireInstance(context.Background(), "nope")
	assert.True(t, storage.IsNotFound(err))
}

func TestStore_UpdateSequences(t *testing.T) {
	ctx := context.Background()
	store := New()

	a := &series.EventInstance{SeriesID: "s1", InstanceDate: "2025-03-04"}
	b := &series.EventInstance{SeriesID: "s1", InstanceDate: "2025-03-11"}
	require.NoError(t, store.CreateInstance(ctx, a))
	require.NoError(t, store.CreateInstance(ctx, b))

	a.SeriesSequence = 1
	b.SeriesSequence = 2
	require.NoError(t, store.UpdateSequences(ctx, []series.EventInstance{*a, *b}))

	listed, err := store.ListInstances(ctx, "s1")
	require.NoError(t, err)
	seen := map[string]int{}
	for _, in := range listed {
		seen[in.InstanceDate] = in.SeriesSequence
	}
	assert.Equal(t, 1, seen["2025-03-04"])
	assert.Equal(t, 2, seen["2025-03-11"])
}

func TestStore_ListInstancesReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := New()

	inst := &series.EventInstance{SeriesID: "s1", InstanceDate: "2025-03-04"}
	require.NoError(t, store.CreateInstance(ctx, inst))

	listed, _ := store.ListInstances(ctx, "s1")
	listed[0].Status = series.StatusPublished

	again, _ := store.ListInstances(ctx, "s1")
	assert.NotEqual(t, series.StatusPublished, again[0].Status)
}
