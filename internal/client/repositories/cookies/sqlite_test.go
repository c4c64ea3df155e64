package cookies

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE cookies (
  name       TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  path       TEXT NOT NULL DEFAULT '/',
  same_site  TEXT NOT NULL DEFAULT 'lax',
  secure     INTEGER NOT NULL DEFAULT 0,
  http_only  INTEGER NOT NULL DEFAULT 0,
  expires_at INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func newRepo(t *testing.T, now time.Time) *SQLiteRepository {
	t.Helper()
	r := NewSQLiteRepository(setupDB(t))
	r.now = func() time.Time { return now }
	return r
}

func TestSetAndGet_PreservesAttributes(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := newRepo(t, now)
	ctx := context.Background()

	in := &http.Cookie{
		Name:     common.TokenCookieName,
		Value:    "abc",
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Secure:   true,
		Expires:  now.Add(common.TokenCookieTTL),
	}
	require.NoError(t, r.Set(ctx, in))

	got, err := r.Get(ctx, common.TokenCookieName)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Value)
	assert.Equal(t, "/", got.Path)
	assert.Equal(t, http.SameSiteLaxMode, got.SameSite)
	assert.True(t, got.Secure)
	assert.False(t, got.HttpOnly)
	assert.True(t, got.Expires.Equal(now.Add(7*24*time.Hour)))
}

func TestSet_DefaultsPathAndOverwrites(t *testing.T) {
	now := time.Now()
	r := newRepo(t, now)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &http.Cookie{Name: "c", Value: "one", Expires: now.Add(time.Hour), SameSite: http.SameSiteStrictMode}))
	require.NoError(t, r.Set(ctx, &http.Cookie{Name: "c", Value: "two", Expires: now.Add(time.Hour)}))

	got, err := r.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "two", got.Value)
	assert.Equal(t, "/", got.Path)
	assert.Equal(t, http.SameSiteLaxMode, got.SameSite)
}

func TestSet_RequiresExpiry(t *testing.T) {
	r := newRepo(t, time.Now())
	err := r.Set(context.Background(), &http.Cookie{Name: "c", Value: "v"})
	require.ErrorIs(t, err, errNoExpiry)
}

func TestGet_ExpiredIsAbsent(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newRepo(t, now)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &http.Cookie{Name: "c", Value: "v", Expires: now.Add(-time.Second)}))

	_, err := r.Get(ctx, "c")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete_IsIdempotent(t *testing.T) {
	now := time.Now()
	r := newRepo(t, now)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &http.Cookie{Name: "c", Value: "v", Expires: now.Add(time.Hour)}))
	require.NoError(t, r.Delete(ctx, "c"))
	require.NoError(t, r.Delete(ctx, "c"))

	_, err := r.Get(ctx, "c")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestErrorsWrapped_WhenDBClosed(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "c")
	require.ErrorContains(t, err, "failed to get cookie[c]")
	require.ErrorContains(t, r.Set(ctx, &http.Cookie{Name: "c", Expires: time.Now()}), "failed to set cookie[c]")
	require.ErrorContains(t, r.Delete(ctx, "c"), "failed to delete cookie[c]")
}
