package localstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "verdin", "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDB_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	type prefs struct {
		Theme string `json:"theme"`
	}

	require.NoError(t, db.Set(ScopeDurable, KeyTheme, prefs{Theme: "dark"}))

	var got prefs
	found, err := db.Get(ScopeDurable, KeyTheme, &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "dark", got.Theme)

	// Overwrite wins.
	require.NoError(t, db.Set(ScopeDurable, KeyTheme, prefs{Theme: "light"}))
	found, err = db.Get(ScopeDurable, KeyTheme, &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "light", got.Theme)
}

func TestDB_GetMissingKey(t *testing.T) {
	db := openTestDB(t)

	var v []string
	found, err := db.Get(ScopeSession, KeyViewedThreads, &v)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDB_DeleteIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Set(ScopeDurable, "k", "v"))
	require.NoError(t, db.Delete(ScopeDurable, "k"))
	require.NoError(t, db.Delete(ScopeDurable, "k"))

	var v string
	found, err := db.Get(ScopeDurable, "k", &v)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDB_BindSessionPurgesOtherSessions(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.BindSession("sess-1"))
	require.NoError(t, db.Set(ScopeSession, KeyViewedThreads, []string{"t1", "t2"}))
	require.NoError(t, db.Set(ScopeDurable, KeySearchHistory, []string{"golang"}))

	// Same session rebinding (page reload) keeps session rows.
	require.NoError(t, db.BindSession("sess-1"))
	var ids []string
	found, err := db.Get(ScopeSession, KeyViewedThreads, &ids)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"t1", "t2"}, ids)

	// A new session drops them but keeps durable rows.
	require.NoError(t, db.BindSession("sess-2"))
	found, err = db.Get(ScopeSession, KeyViewedThreads, &ids)
	require.NoError(t, err)
	require.False(t, found)

	var history []string
	found, err = db.Get(ScopeDurable, KeySearchHistory, &history)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"golang"}, history)
}

func TestDB_ClosedReturnsErrClosed(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close()) // second close is a no-op

	var v string
	_, err := db.Get(ScopeDurable, "k", &v)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, db.Set(ScopeDurable, "k", "v"), ErrClosed)
	require.ErrorIs(t, db.Delete(ScopeDurable, "k"), ErrClosed)
	require.ErrorIs(t, db.BindSession("s"), ErrClosed)
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()

	require.NoError(t, m.Set(ScopeSession, "k", []int{1, 2}))

	var v []int
	found, err := m.Get(ScopeSession, "k", &v)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []int{1, 2}, v)

	require.NoError(t, m.Delete(ScopeSession, "k"))
	found, err = m.Get(ScopeSession, "k", &v)
	require.NoError(t, err)
	require.False(t, found)
}
