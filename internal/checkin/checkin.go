// Package checkin posts the daily mood check-in: a templated message with a
// vent button and a fixed reaction palette, at most once per community and
// local calendar date.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hearthbot/hearth/internal/common"
	"github.com/hearthbot/hearth/internal/logging"
	"github.com/hearthbot/hearth/internal/metrics"
	"github.com/hearthbot/hearth/internal/model"
	"github.com/hearthbot/hearth/internal/platform"
	"github.com/hearthbot/hearth/internal/store/checkins"
	"github.com/hearthbot/hearth/internal/store/configs"
)

const messageTemplate = "Hey %s! Please let us know how you're feeling today 💖\n\n" +
	"❤️ - I'm doing amazing today!\n" +
	"🧡 - I'm feeling positive and good about life\n" +
	"💛 - I'm good\n" +
	"💚 - I could be better, could be worse but I'm okay!\n" +
	"💙 - I'm having a down day\n" +
	"💜 - I feel lost and broken\n" +
	"🖤 - I'm in a really dark place today\n" +
	"🤍 - I'd like someone to DM me if they could...\n\n" +
	"Remember, you're not alone. You can always talk in %s 🫂\n\n" +
	"Need to vent anonymously? Use the button below! 👇"

// palette is reacted onto every check-in, one emoji per mood line.
var palette = []string{"❤️", "🧡", "💛", "💚", "💙", "💜", "🖤", "🤍"}

const dateLayout = "2006-01-02"

// Scheduler drives the daily check-in off a one-minute tick. A missed
// minute is a missed slot; there is no catch-up.
type Scheduler struct {
	configs  configs.Repository
	checkins checkins.Repository
	msgr     platform.Messenger
	logger   logging.Logger
}

func NewScheduler(cfg configs.Repository, st checkins.Repository, msgr platform.Messenger, logger logging.Logger) *Scheduler {
	return &Scheduler{configs: cfg, checkins: st, msgr: msgr, logger: logger}
}

// Tick checks every configured community against now. A community is due
// when now, in its timezone, matches its configured (hour, minute) and no
// check-in was recorded for that local date yet. Per-community failures are
// logged and do not stop the sweep.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	cfgs, err := s.configs.All(ctx)
	if err != nil {
		s.logger.Error(ctx, "check-in sweep failed to load configs", "error", err)
		return
	}

	for _, cfg := range cfgs {
		if err := s.tickOne(ctx, &cfg, now); err != nil {
			s.logger.Error(ctx, "check-in failed", "community", cfg.CommunityID, "error", err)
		}
	}
}

func (s *Scheduler) tickOne(ctx context.Context, cfg *model.CommunityConfig, now time.Time) error {
	if cfg.CheckinTime == "" || cfg.Timezone == "" {
		return nil
	}

	hour, minute, err := ParseClock(cfg.CheckinTime)
	if err != nil {
		return nil
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	if local.Hour() != hour || local.Minute() != minute {
		return nil
	}

	today := local.Format(dateLayout)
	state, err := s.checkins.Get(ctx, cfg.CommunityID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	if state != nil && state.LastDate == today {
		return nil
	}

	msgID, err := s.Post(ctx, cfg)
	if err != nil {
		return err
	}

	// Recording the date only after a successful post means a crash in
	// between costs at most one duplicate, never a silent skip.
	return s.checkins.Put(ctx, &model.CheckinState{
		CommunityID: cfg.CommunityID,
		LastDate:    today,
		MessageID:   msgID,
	})
}

// Force posts a check-in immediately and records the new message id without
// touching the last-posted date, so the scheduled post for the day still
// happens.
func (s *Scheduler) Force(ctx context.Context, communityID string) error {
	cfg, err := s.configs.Get(ctx, communityID)
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrNotConfigured
	}
	if err != nil {
		return err
	}

	msgID, err := s.Post(ctx, cfg)
	if err != nil {
		return err
	}

	lastDate := ""
	if state, err := s.checkins.Get(ctx, communityID); err == nil {
		lastDate = state.LastDate
	}

	return s.checkins.Put(ctx, &model.CheckinState{
		CommunityID: communityID,
		LastDate:    lastDate,
		MessageID:   msgID,
	})
}

// Post deletes the previous check-in if one is still around, sends the
// templated message with the vent button, and reacts with the mood palette.
// It returns the new message id; the caller decides what state to record.
func (s *Scheduler) Post(ctx context.Context, cfg *model.CommunityConfig) (string, error) {
	if err := s.msgr.ChannelLive(ctx, cfg.PostChannelID); err != nil {
		return "", common.ErrChannelNotFound
	}
	if err := s.msgr.ChannelLive(ctx, cfg.SupportChannelID); err != nil {
		return "", common.ErrChannelNotFound
	}

	if state, err := s.checkins.Get(ctx, cfg.CommunityID); err == nil && state.MessageID != "" {
		old := platform.Ref{ChannelID: cfg.PostChannelID, MessageID: state.MessageID}
		if err := s.msgr.Delete(ctx, old); err != nil && !errors.Is(err, common.ErrNotFound) {
			s.logger.Warn(ctx, "could not delete previous check-in",
				"community", cfg.CommunityID, "error", err)
		}
	}

	body := fmt.Sprintf(messageTemplate, greeting(cfg.Ping), platform.ChannelMention(cfg.SupportChannelID))
	ref, err := s.msgr.Send(ctx, cfg.PostChannelID, platform.Outgoing{
		Content: body,
		Button:  platform.ButtonCheckinVent,
	})
	if err != nil {
		return "", err
	}

	for _, emoji := range palette {
		if err := s.msgr.React(ctx, ref, emoji); err != nil {
			s.logger.Warn(ctx, "could not add reaction",
				"community", cfg.CommunityID, "emoji", emoji, "error", err)
		}
	}

	metrics.CheckinsPosted.Inc()
	s.logger.Info(ctx, "posted check-in", "community", cfg.CommunityID, "channel", cfg.PostChannelID)
	return ref.MessageID, nil
}

// greeting renders the configured ping mode. The "none" mode greets without
// pinging anyone.
func greeting(ping string) string {
	if ping == model.PingNone {
		return "there"
	}
	return ping
}

// ParseClock parses a strict 24-hour "HH:MM" string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return hour, minute, nil
}
