package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
)

var neo = &User{ID: "user-neo", Email: "neo@example.com"}

func newWatchlist(t *testing.T) (*WatchlistUseCase, *fakeWatchlistRepo, *fakeMetadata, *recordingNotifier) {
	t.Helper()
	repo := newFakeWatchlistRepo()
	meta := newFakeMetadata()
	n := &recordingNotifier{}
	return NewWatchlistUseCase(repo, meta, n, &conf.Tracker{HydrateConcurrency: 2}, testLogger), repo, meta, n
}

func TestWatchlistAddWithoutUserMakesNoStoreCall(t *testing.T) {
	uc, repo, _, n := newWatchlist(t)

	err := uc.Add(context.Background(), nil, "tt0133093", StatusPlanToWatch)

	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, uc.Entries())
	assert.Zero(t, repo.count("create"))
	assert.Equal(t, "Login required", n.last().Title)
	assert.Equal(t, VariantDestructive, n.last().Variant)
}

func TestWatchlistAddDefaultsToPlanToWatch(t *testing.T) {
	uc, _, _, n := newWatchlist(t)

	require.NoError(t, uc.Add(context.Background(), neo, "tt0133093", ""))

	e, ok := uc.Entry("tt0133093")
	require.True(t, ok)
	assert.Equal(t, StatusPlanToWatch, e.Status)
	assert.Equal(t, neo.ID, e.UserID)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.AddedAt.IsZero())
	assert.Equal(t, "Added to watchlist", n.last().Title)
	assert.Equal(t, `Movie added as "Plan to Watch"`, n.last().Description)
}

func TestWatchlistAddKeepsKeysUnique(t *testing.T) {
	uc, _, _, n := newWatchlist(t)
	ctx := context.Background()

	require.NoError(t, uc.Add(ctx, neo, "tt0133093", StatusWatching))
	err := uc.Add(ctx, neo, "tt0133093", StatusCompleted)

	require.ErrorIs(t, err, ErrAlreadyTracked)
	require.Len(t, uc.Entries(), 1)
	e, _ := uc.Entry("tt0133093")
	assert.Equal(t, StatusWatching, e.Status)
	assert.Equal(t, "Failed to add to watchlist", n.last().Description)
}

func TestWatchlistAddStoreErrorLeavesMemory(t *testing.T) {
	uc, repo, _, n := newWatchlist(t)
	repo.err = errStoreDown

	err := uc.Add(context.Background(), neo, "tt0133093", StatusPlanToWatch)

	require.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, uc.Entries())
	assert.Equal(t, VariantDestructive, n.last().Variant)
}

func TestWatchlistAddRejectsUnknownStatus(t *testing.T) {
	uc, repo, _, _ := newWatchlist(t)

	err := uc.Add(context.Background(), neo, "tt0133093", "Dropped")

	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.Zero(t, repo.count("create"))
}

func TestWatchlistUpdateStatusAppliesExactStatus(t *testing.T) {
	ctx := context.Background()
	for _, s := range Statuses {
		t.Run(string(s), func(t *testing.T) {
			uc, _, _, _ := newWatchlist(t)
			require.NoError(t, uc.Add(ctx, neo, "tt0133093", StatusPlanToWatch))
			before, _ := uc.Entry("tt0133093")

			require.NoError(t, uc.UpdateStatus(ctx, neo, "tt0133093", s))

			after, _ := uc.Entry("tt0133093")
			assert.Equal(t, s, after.Status)
			assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
			assert.Equal(t, before.AddedAt, after.AddedAt)
		})
	}
}

func TestWatchlistUpdateStatusFailureKeepsPriorStatus(t *testing.T) {
	uc, repo, _, n := newWatchlist(t)
	ctx := context.Background()
	require.NoError(t, uc.Add(ctx, neo, "tt0133093", StatusPlanToWatch))
	repo.err = errStoreDown

	err := uc.UpdateStatus(ctx, neo, "tt0133093", StatusWatching)

	require.Error(t, err)
	e, _ := uc.Entry("tt0133093")
	assert.Equal(t, StatusPlanToWatch, e.Status)
	assert.Equal(t, "Failed to update status", n.last().Description)
}

func TestWatchlistUpdateStatusMissingRow(t *testing.T) {
	uc, _, _, _ := newWatchlist(t)

	err := uc.UpdateStatus(context.Background(), neo, "tt404", StatusWatching)

	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestWatchlistRemoveIsIdempotent(t *testing.T) {
	uc, repo, _, _ := newWatchlist(t)
	ctx := context.Background()
	require.NoError(t, uc.Add(ctx, neo, "tt0133093", StatusPlanToWatch))
	require.NoError(t, uc.Add(ctx, neo, "tt0234215", StatusWatching))

	require.NoError(t, uc.Remove(ctx, neo, "tt0133093"))
	require.NoError(t, uc.Remove(ctx, neo, "tt0133093"))
	require.NoError(t, uc.Remove(ctx, neo, "tt-never-added"))

	assert.Equal(t, 3, repo.count("delete"))
	entries := uc.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "tt0234215", entries[0].IMDbID)
}

func TestWatchlistRemoveFailureKeepsEntry(t *testing.T) {
	uc, repo, _, _ := newWatchlist(t)
	ctx := context.Background()
	require.NoError(t, uc.Add(ctx, neo, "tt0133093", StatusPlanToWatch))
	repo.err = errStoreDown

	require.Error(t, uc.Remove(ctx, neo, "tt0133093"))
	_, ok := uc.Entry("tt0133093")
	assert.True(t, ok)
}

func TestWatchlistFetchAllReplacesAndSurvivesFailure(t *testing.T) {
	uc, repo, _, _ := newWatchlist(t)
	ctx := context.Background()
	_, _ = repo.Create(ctx, neo.ID, "tt1", StatusCompleted)
	_, _ = repo.Create(ctx, neo.ID, "tt2", StatusWatching)
	_, _ = repo.Create(ctx, "someone-else", "tt3", StatusWatching)

	require.NoError(t, uc.FetchAll(ctx, neo))
	require.Len(t, uc.Entries(), 2)

	repo.err = errStoreDown
	require.Error(t, uc.FetchAll(ctx, neo))
	assert.Len(t, uc.Entries(), 2)
}

func TestWatchlistSwitchingUserDropsPreviousList(t *testing.T) {
	uc, _, _, _ := newWatchlist(t)
	ctx := context.Background()
	require.NoError(t, uc.Add(ctx, neo, "tt1", StatusPlanToWatch))

	trinity := &User{ID: "user-trinity"}
	require.NoError(t, uc.FetchAll(ctx, trinity))

	assert.Empty(t, uc.Entries())
}

func TestWatchlistDetachDiscardsLateResults(t *testing.T) {
	uc, _, _, n := newWatchlist(t)
	uc.Detach()

	err := uc.Add(context.Background(), neo, "tt1", StatusPlanToWatch)

	require.ErrorIs(t, err, ErrDetached)
	assert.Empty(t, uc.Entries())
	assert.Zero(t, n.len())
}

func TestWatchlistViews(t *testing.T) {
	uc, _, meta, _ := newWatchlist(t)
	ctx := context.Background()
	meta.titles["tt1"] = &TitleDetail{TitleSummary: TitleSummary{ID: "tt1", Title: "The Matrix"}}
	require.NoError(t, uc.Add(ctx, neo, "tt1", StatusCompleted))
	require.NoError(t, uc.Add(ctx, neo, "tt2", StatusWatching))
	require.NoError(t, uc.Add(ctx, neo, "tt3", StatusCompleted))

	st := uc.Stats()
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.ByStatus[StatusCompleted])
	assert.Equal(t, 0, st.ByStatus[StatusPlanToWatch])
	assert.Len(t, uc.ByStatus(StatusWatching), 1)

	hydrated := uc.Hydrate(ctx, uc.Entries())
	require.Len(t, hydrated, 3)
	require.NotNil(t, hydrated[0].Title)
	assert.Equal(t, "The Matrix", hydrated[0].Title.Title)
	assert.Nil(t, hydrated[1].Title)
	assert.Equal(t, "tt3", hydrated[2].IMDbID)
}
