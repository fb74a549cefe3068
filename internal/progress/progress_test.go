package progress_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anistream/internal/progress"
	"anistream/internal/store"
	"anistream/pkg/database"
)

func newTracker(t *testing.T) *progress.Tracker {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return progress.NewTracker(store.New(db))
}

func TestSecondsUnseenIsZero(t *testing.T) {
	tr := newTracker(t)
	sec, err := tr.Seconds(context.Background(), "t1", 1)
	require.NoError(t, err)
	assert.Zero(t, sec)
}

func TestSetAndReadBack(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t)

	require.NoError(t, tr.Set(ctx, "t1", 3, 512.5))
	sec, err := tr.Seconds(ctx, "t1", 3)
	require.NoError(t, err)
	assert.Equal(t, 512.5, sec)

	// overwrite
	require.NoError(t, tr.Set(ctx, "t1", 3, 600))
	sec, err = tr.Seconds(ctx, "t1", 3)
	require.NoError(t, err)
	assert.Equal(t, 600.0, sec)
}

func TestForTitleScopesByTitle(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t)

	require.NoError(t, tr.Set(ctx, "t1", 1, 10))
	require.NoError(t, tr.Set(ctx, "t1", 2, 20))
	require.NoError(t, tr.Set(ctx, "t2", 1, 99))

	m, err := tr.ForTitle(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.Equal(t, 10.0, m[1])
	assert.Equal(t, 20.0, m[2])
}

func TestUnreadableStateDegradesToEmpty(t *testing.T) {
	ctx := context.Background()

	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	st := store.New(db)
	require.NoError(t, st.Set(ctx, store.KeyWatchProgress, "not-json"))

	tr := progress.NewTracker(st)
	sec, err := tr.Seconds(ctx, "t1", 1)
	require.NoError(t, err)
	assert.Zero(t, sec)

	// a fresh write recovers the key
	require.NoError(t, tr.Set(ctx, "t1", 1, 5))
	sec, err = tr.Seconds(ctx, "t1", 1)
	require.NoError(t, err)
	assert.Equal(t, 5.0, sec)
}
