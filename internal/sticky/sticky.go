// Package sticky keeps the vent channel's call-to-action message pinned to
// the bottom: whenever a user message lands on top of it, the old artifact
// is deleted and a fresh one posted.
package sticky

import (
	"context"
	"errors"

	"github.com/hearthbot/hearth/internal/common"
	"github.com/hearthbot/hearth/internal/logging"
	"github.com/hearthbot/hearth/internal/metrics"
	"github.com/hearthbot/hearth/internal/model"
	"github.com/hearthbot/hearth/internal/platform"
	"github.com/hearthbot/hearth/internal/store/configs"
	"github.com/hearthbot/hearth/internal/store/stickies"
)

// recentWindow is how much history the freshness check fetches. The sticky
// only needs comparing against the channel's newest message; the window just
// absorbs platform-side eventual consistency.
const recentWindow = 10

// Manager owns the one-live-sticky-per-community invariant.
type Manager struct {
	configs  configs.Repository
	stickies stickies.Repository
	msgr     platform.Messenger
	logger   logging.Logger
}

func NewManager(cfg configs.Repository, st stickies.Repository, msgr platform.Messenger, logger logging.Logger) *Manager {
	return &Manager{configs: cfg, stickies: st, msgr: msgr, logger: logger}
}

// Install posts a fresh call-to-action message in channelID and records it
// as the community's sticky, replacing whatever ref was stored before.
func (m *Manager) Install(ctx context.Context, communityID, channelID string) error {
	ref, err := m.msgr.Send(ctx, channelID, platform.Outgoing{
		Button: platform.ButtonSimpleVent,
	})
	if err != nil {
		return err
	}

	return m.stickies.Put(ctx, communityID, model.StickyRef{
		MessageID: ref.MessageID,
		ChannelID: ref.ChannelID,
	})
}

// HandleMessage runs the freshness check for one inbound user message. When
// the message landed in the monitored channel and the sticky is no longer
// the channel's last message, the old sticky is deleted (a message that is
// already gone is fine) and a new one posted.
//
// Every network call is a suspension point, so the stored ref is re-read
// from nothing: the method works only off its arguments and the store.
func (m *Manager) HandleMessage(ctx context.Context, msg platform.Message) error {
	ref, err := m.stickies.Get(ctx, msg.CommunityID)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	channelID := ref.ChannelID
	if ref.IsLegacy() {
		cfg, err := m.configs.Get(ctx, msg.CommunityID)
		if err != nil || cfg.VentChannelID == "" {
			return nil
		}
		channelID = cfg.VentChannelID

		// Write the ref back in the full representation.
		if err := m.stickies.Put(ctx, msg.CommunityID, model.StickyRef{
			MessageID: ref.MessageID,
			ChannelID: channelID,
		}); err != nil {
			return err
		}
	}

	if msg.ChannelID != channelID || msg.ID == ref.MessageID {
		return nil
	}

	recent, err := m.msgr.Recent(ctx, channelID, recentWindow)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	if len(recent) == 0 || recent[0].ID == ref.MessageID {
		return nil
	}

	err = m.msgr.Delete(ctx, platform.Ref{ChannelID: channelID, MessageID: ref.MessageID})
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	if err := m.Install(ctx, msg.CommunityID, channelID); err != nil {
		return err
	}

	metrics.StickyReposts.Inc()
	m.logger.Debug(ctx, "sticky reposted", "community", msg.CommunityID, "channel", channelID)
	return nil
}
