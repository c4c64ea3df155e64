package tasks

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
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
CREATE TABLE tasks (
  id         TEXT PRIMARY KEY,
  payload    BLOB NOT NULL,
  pending    INTEGER NOT NULL DEFAULT 0,
  updated_at INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func row(id string, pending bool, at time.Time) *models.CachedTask {
	return &models.CachedTask{ID: id, Payload: []byte(`{"_id":"` + id + `","title":"t-` + id + `"}`), Pending: pending, UpdatedAt: at}
}

func TestUpsert_InsertThenUpdate(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Upsert(ctx, row("t1", true, at)))

	updated := row("t1", false, at.Add(time.Minute))
	updated.Payload = []byte(`{"_id":"t1","title":"renamed"}`)
	require.NoError(t, r.Upsert(ctx, updated))

	got, err := r.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, got.Pending)
	assert.JSONEq(t, `{"_id":"t1","title":"renamed"}`, string(got.Payload))
	assert.True(t, got.UpdatedAt.Equal(at.Add(time.Minute)))
}

func TestGetAll_NewestFirst(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Upsert(ctx, row("old", false, at)))
	require.NoError(t, r.Upsert(ctx, row("new", false, at.Add(time.Hour))))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "old", all[1].ID)
}

func TestGetByID_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	_, err := r.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteByID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, row("t1", false, time.Now())))
	require.NoError(t, r.DeleteByID(ctx, "t1"))
	require.ErrorIs(t, r.DeleteByID(ctx, "t1"), common.ErrorNotFound)
}

func TestDeleteConfirmed_KeepsPending(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, row("confirmed", false, time.Now())))
	require.NoError(t, r.Upsert(ctx, row("local-1", true, time.Now())))

	require.NoError(t, r.DeleteConfirmed(ctx))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "local-1", all[0].ID)
}

func TestDeleteAll_DropsPendingToo(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Upsert(ctx, row("t1", false, at)))
	require.NoError(t, r.Upsert(ctx, row("local-1", true, at)))

	require.NoError(t, r.DeleteAll(ctx))
	require.NoError(t, r.DeleteAll(ctx))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
