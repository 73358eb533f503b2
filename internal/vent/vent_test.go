package vent

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/hearthbot/hearth/internal/codec"
	"github.com/hearthbot/hearth/internal/common"
	"github.com/hearthbot/hearth/internal/logging"
	"github.com/hearthbot/hearth/internal/model"
	"github.com/hearthbot/hearth/internal/platform/platformtest"
	"github.com/hearthbot/hearth/internal/store/configs"
	"github.com/hearthbot/hearth/internal/store/ventlog"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE community_configs (
  community_id TEXT PRIMARY KEY,
  post_channel_id TEXT NOT NULL,
  support_channel_id TEXT NOT NULL,
  vent_channel_id TEXT NOT NULL,
  ping TEXT NOT NULL,
  checkin_time TEXT NOT NULL,
  timezone TEXT NOT NULL
);
CREATE TABLE vent_log (
  id TEXT PRIMARY KEY,
  ts TEXT NOT NULL,
  community_id TEXT NOT NULL,
  channel_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  username TEXT NOT NULL,
  display_name TEXT NOT NULL,
  fingerprint TEXT NOT NULL,
  content TEXT NOT NULL
);`)
	require.NoError(t, err)

	return db
}

type fixture struct {
	svc   *Service
	fake  *platformtest.Fake
	vents ventlog.Repository
	cfgs  configs.Repository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := setupDB(t)
	fake := platformtest.NewFake()
	cfgs := configs.NewSQLiteRepository(db)
	vents := ventlog.NewSQLiteRepository(db)
	return &fixture{
		svc:   NewService(cfgs, vents, fake, logging.NewDiscardLogger()),
		fake:  fake,
		vents: vents,
		cfgs:  cfgs,
	}
}

func configure(t *testing.T, f *fixture) {
	t.Helper()
	require.NoError(t, f.cfgs.Put(context.Background(), &model.CommunityConfig{
		CommunityID:      "g1",
		PostChannelID:    "post-1",
		SupportChannelID: "support-1",
		VentChannelID:    "vent-1",
		Ping:             model.PingNone,
		CheckinTime:      "09:00",
		Timezone:         "UTC",
	}))
}

func TestSubmit_PublishesAndLogs(t *testing.T) {
	f := setup(t)
	configure(t, f)
	ctx := context.Background()

	ch, err := f.svc.Submit(ctx, "g1", "u1", "sad_user", "Sad User", "I had a rough day")
	require.NoError(t, err)
	assert.Equal(t, "vent-1", ch)

	// Published embed carries the text and the anonymous chrome, nothing
	// that identifies the submitter.
	sent := f.fake.Sent["vent-1"]
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Embed)
	assert.Equal(t, "I had a rough day", sent[0].Embed.Description)
	assert.Equal(t, "🫣 ANON", sent[0].Embed.Author)
	assert.Equal(t, "Stay strong 💙 You're not alone", sent[0].Embed.Footer)
	assert.NotContains(t, sent[0].Embed.Description, "sad_user")

	// One obfuscated audit record.
	recs, err := f.vents.ReadRecent(ctx, "g1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "u1", recs[0].UserID)
	assert.Equal(t, codec.Encode("I had a rough day"), recs[0].Content)
	assert.Equal(t, codec.Encode("sad_user"), recs[0].Username)
	assert.NotEqual(t, "I had a rough day", recs[0].Content)

	// The fingerprint identifies the message text, not the submitter.
	assert.Equal(t, codec.Fingerprint("I had a rough day"), recs[0].Fingerprint)
	assert.NotEqual(t, codec.Fingerprint("u1"), recs[0].Fingerprint)
}

func TestSubmit_TrimsWhitespace(t *testing.T) {
	f := setup(t)
	configure(t, f)

	_, err := f.svc.Submit(context.Background(), "g1", "u1", "n", "N", "  hello \n")
	require.NoError(t, err)

	sent := f.fake.Sent["vent-1"]
	require.Len(t, sent, 1)
	assert.Equal(t, "hello", sent[0].Embed.Description)
}

func TestSubmit_RejectsEmpty(t *testing.T) {
	f := setup(t)
	configure(t, f)

	_, err := f.svc.Submit(context.Background(), "g1", "u1", "n", "N", "   \n\t ")
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Empty(t, f.fake.Sent["vent-1"])
}

func TestSubmit_RejectsTooLong(t *testing.T) {
	f := setup(t)
	configure(t, f)

	_, err := f.svc.Submit(context.Background(), "g1", "u1", "n", "N", strings.Repeat("я", 2001))
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestSubmit_NotConfigured(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Submit(context.Background(), "g1", "u1", "n", "N", "hello")
	assert.ErrorIs(t, err, common.ErrNotConfigured)
}

func TestSubmit_DeadChannel(t *testing.T) {
	f := setup(t)
	configure(t, f)
	f.fake.DeadChannels["vent-1"] = true

	_, err := f.svc.Submit(context.Background(), "g1", "u1", "n", "N", "hello")
	assert.ErrorIs(t, err, common.ErrChannelNotFound)

	// Nothing logged when the channel check fails.
	recs, err := f.vents.ReadRecent(context.Background(), "g1", 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSubmit_RateLimited(t *testing.T) {
	f := setup(t)
	configure(t, f)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "g1", "u1", "n", "N", "first")
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, "g1", "u1", "n", "N", "second")
	assert.ErrorIs(t, err, common.ErrRateLimited)

	// Different user is not affected.
	_, err = f.svc.Submit(ctx, "g1", "u2", "n", "N", "second")
	require.NoError(t, err)
}

func TestSubmit_DeadChannelKeepsRateSlot(t *testing.T) {
	f := setup(t)
	configure(t, f)
	ctx := context.Background()

	f.fake.DeadChannels["vent-1"] = true
	_, err := f.svc.Submit(ctx, "g1", "u1", "n", "N", "hello")
	require.ErrorIs(t, err, common.ErrChannelNotFound)

	// A failed channel check does not count against the user's cooldown.
	delete(f.fake.DeadChannels, "vent-1")
	_, err = f.svc.Submit(ctx, "g1", "u1", "n", "N", "hello")
	require.NoError(t, err)
}

func TestSubmit_LogsBeforePublish(t *testing.T) {
	f := setup(t)
	configure(t, f)
	f.fake.SendErr = assert.AnError

	_, err := f.svc.Submit(context.Background(), "g1", "u1", "n", "N", "hello")
	require.Error(t, err)

	// The audit record exists even though the publish failed.
	recs, err := f.vents.ReadRecent(context.Background(), "g1", 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
