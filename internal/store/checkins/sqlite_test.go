package checkins

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/hearthbot/hearth/internal/common"
	"github.com/hearthbot/hearth/internal/model"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE checkin_states (
  community_id TEXT PRIMARY KEY,
  last_date TEXT NOT NULL DEFAULT '',
  message_id TEXT NOT NULL DEFAULT ''
);`)
	require.NoError(t, err)

	return db
}

func TestPutGet_RoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	want := &model.CheckinState{CommunityID: "g1", LastDate: "2024-01-01", MessageID: "m1"}
	require.NoError(t, r.Put(ctx, want))

	got, err := r.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPut_AdvancesDate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, &model.CheckinState{CommunityID: "g1", LastDate: "2024-01-01", MessageID: "m1"}))
	require.NoError(t, r.Put(ctx, &model.CheckinState{CommunityID: "g1", LastDate: "2024-01-02", MessageID: "m2"}))

	got, err := r.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", got.LastDate)
	assert.Equal(t, "m2", got.MessageID)
}

func TestGet_NeverPosted(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Get(context.Background(), "g1")
	require.True(t, errors.Is(err, common.ErrNotFound))
}
