package checkin

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/hearthbot/hearth/internal/common"
	"github.com/hearthbot/hearth/internal/logging"
	"github.com/hearthbot/hearth/internal/model"
	"github.com/hearthbot/hearth/internal/platform"
	"github.com/hearthbot/hearth/internal/platform/platformtest"
	"github.com/hearthbot/hearth/internal/store/checkins"
	"github.com/hearthbot/hearth/internal/store/configs"
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
CREATE TABLE checkin_states (
  community_id TEXT PRIMARY KEY,
  last_date TEXT NOT NULL,
  message_id TEXT NOT NULL
);`)
	require.NoError(t, err)

	return db
}

type fixture struct {
	sched *Scheduler
	fake  *platformtest.Fake
	cfgs  configs.Repository
	state checkins.Repository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := setupDB(t)
	fake := platformtest.NewFake()
	cfgs := configs.NewSQLiteRepository(db)
	st := checkins.NewSQLiteRepository(db)
	return &fixture{
		sched: NewScheduler(cfgs, st, fake, logging.NewDiscardLogger()),
		fake:  fake,
		cfgs:  cfgs,
		state: st,
	}
}

func configure(t *testing.T, f *fixture, ping string) {
	t.Helper()
	require.NoError(t, f.cfgs.Put(context.Background(), &model.CommunityConfig{
		CommunityID:      "g1",
		PostChannelID:    "post-1",
		SupportChannelID: "support-1",
		VentChannelID:    "vent-1",
		Ping:             ping,
		CheckinTime:      "09:00",
		Timezone:         "UTC",
	}))
}

func TestTick_PostsAtConfiguredMinuteOncePerDay(t *testing.T) {
	f := setup(t)
	configure(t, f, model.PingEveryone)
	ctx := context.Background()

	at := time.Date(2024, 1, 1, 9, 0, 30, 0, time.UTC)
	f.sched.Tick(ctx, at)

	require.Len(t, f.fake.Sent["post-1"], 1)
	state, err := f.state.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", state.LastDate)
	assert.NotEmpty(t, state.MessageID)

	// A second tick the next minute posts nothing.
	f.sched.Tick(ctx, time.Date(2024, 1, 1, 9, 1, 0, 0, time.UTC))
	assert.Len(t, f.fake.Sent["post-1"], 1)

	// A re-entrant tick within the same minute posts nothing either.
	f.sched.Tick(ctx, at.Add(10*time.Second))
	assert.Len(t, f.fake.Sent["post-1"], 1)

	// The next day's slot posts again.
	f.sched.Tick(ctx, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	assert.Len(t, f.fake.Sent["post-1"], 2)
}

func TestTick_WrongMinutePostsNothing(t *testing.T) {
	f := setup(t)
	configure(t, f, model.PingEveryone)

	f.sched.Tick(context.Background(), time.Date(2024, 1, 1, 8, 59, 0, 0, time.UTC))
	assert.Empty(t, f.fake.Sent["post-1"])
}

func TestTick_MessageBodyAndControls(t *testing.T) {
	f := setup(t)
	configure(t, f, model.PingEveryone)
	ctx := context.Background()

	f.sched.Tick(ctx, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	sent := f.fake.Sent["post-1"]
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0].Content, "Hey @everyone! "))
	assert.Contains(t, sent[0].Content, platform.ChannelMention("support-1"))
	assert.Contains(t, sent[0].Content, "vent anonymously")
	assert.Equal(t, platform.ButtonCheckinVent, sent[0].Button)

	// Full mood palette reacted onto the message.
	state, err := f.state.Get(ctx, "g1")
	require.NoError(t, err)
	ref := platform.Ref{ChannelID: "post-1", MessageID: state.MessageID}
	assert.Equal(t, []string{"❤️", "🧡", "💛", "💚", "💙", "💜", "🖤", "🤍"}, f.fake.Reactions[ref])
}

func TestTick_PingNoneGreetsWithoutPinging(t *testing.T) {
	f := setup(t)
	configure(t, f, model.PingNone)

	f.sched.Tick(context.Background(), time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	sent := f.fake.Sent["post-1"]
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0].Content, "Hey there! "))
	assert.NotContains(t, sent[0].Content, "@everyone")
	assert.NotContains(t, sent[0].Content, "@here")
}

func TestTick_RespectsTimezone(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.cfgs.Put(context.Background(), &model.CommunityConfig{
		CommunityID:      "g1",
		PostChannelID:    "post-1",
		SupportChannelID: "support-1",
		VentChannelID:    "vent-1",
		Ping:             model.PingNone,
		CheckinTime:      "09:00",
		Timezone:         "Europe/London",
	}))

	// 09:00 UTC in January is 09:00 in London (GMT): due.
	f.sched.Tick(context.Background(), time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	assert.Len(t, f.fake.Sent["post-1"], 1)

	// 09:00 UTC in July is 10:00 in London (BST): not due.
	f.sched.Tick(context.Background(), time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))
	assert.Len(t, f.fake.Sent["post-1"], 1)

	// 08:00 UTC in July is 09:00 in London: due.
	f.sched.Tick(context.Background(), time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC))
	assert.Len(t, f.fake.Sent["post-1"], 2)
}

func TestTick_DeletesPreviousCheckin(t *testing.T) {
	f := setup(t)
	configure(t, f, model.PingNone)
	ctx := context.Background()

	f.sched.Tick(ctx, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	first, err := f.state.Get(ctx, "g1")
	require.NoError(t, err)

	f.sched.Tick(ctx, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))

	assert.Contains(t, f.fake.Deleted, platform.Ref{ChannelID: "post-1", MessageID: first.MessageID})
}

func TestTick_DeadChannelRecordsNothing(t *testing.T) {
	f := setup(t)
	configure(t, f, model.PingNone)
	f.fake.DeadChannels["post-1"] = true

	f.sched.Tick(context.Background(), time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	_, err := f.state.Get(context.Background(), "g1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestForce_PostsButKeepsLastDate(t *testing.T) {
	f := setup(t)
	configure(t, f, model.PingNone)
	ctx := context.Background()

	require.NoError(t, f.state.Put(ctx, &model.CheckinState{
		CommunityID: "g1",
		LastDate:    "2023-12-31",
		MessageID:   "",
	}))

	require.NoError(t, f.sched.Force(ctx, "g1"))
	require.Len(t, f.fake.Sent["post-1"], 1)

	state, err := f.state.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", state.LastDate)
	assert.NotEmpty(t, state.MessageID)

	// The scheduled slot still fires after a force.
	f.sched.Tick(ctx, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	assert.Len(t, f.fake.Sent["post-1"], 2)
}

func TestForce_NotConfigured(t *testing.T) {
	f := setup(t)

	err := f.sched.Force(context.Background(), "g1")
	assert.ErrorIs(t, err, common.ErrNotConfigured)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{in: "09:00", hour: 9, minute: 0},
		{in: "23:59", hour: 23, minute: 59},
		{in: "0:5", hour: 0, minute: 5},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			h, m, err := ParseClock(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.hour, h)
			assert.Equal(t, tc.minute, m)
		})
	}
}
