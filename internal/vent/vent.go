// Package vent handles anonymous vent submissions: validation, the
// obfuscated audit record, and publication to the community's vent channel.
package vent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hearthbot/hearth/internal/codec"
	"github.com/hearthbot/hearth/internal/common"
	"github.com/hearthbot/hearth/internal/logging"
	"github.com/hearthbot/hearth/internal/metrics"
	"github.com/hearthbot/hearth/internal/model"
	"github.com/hearthbot/hearth/internal/platform"
	"github.com/hearthbot/hearth/internal/store/configs"
	"github.com/hearthbot/hearth/internal/store/ventlog"
)

// Published embed chrome. The author line replaces the venter's identity.
const (
	embedAuthor = "🫣 ANON"
	embedFooter = "Stay strong 💙 You're not alone"
)

// Cooldown between vents from one user. Burst 1: no banked submissions.
const submitEvery = 30 * time.Second

var (
	// ErrEmpty rejects submissions that are empty after trimming.
	ErrEmpty = errors.New("vent text is empty")
	// ErrTooLong rejects submissions over the platform message limit.
	ErrTooLong = errors.New("vent text is too long")
)

// Service validates, records and publishes vent submissions.
type Service struct {
	configs configs.Repository
	vents   ventlog.Repository
	msgr    platform.Messenger
	logger  logging.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewService(cfg configs.Repository, vents ventlog.Repository, msgr platform.Messenger, logger logging.Logger) *Service {
	return &Service{
		configs:  cfg,
		vents:    vents,
		msgr:     msgr,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (s *Service) limiter(communityID, userID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := communityID + "/" + userID
	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(submitEvery), 1)
		s.limiters[key] = l
	}
	return l
}

// Configured reports whether the community has a vent channel set up, so a
// button press can be refused before opening the input modal.
func (s *Service) Configured(ctx context.Context, communityID string) bool {
	cfg, err := s.configs.Get(ctx, communityID)
	return err == nil && cfg.VentChannelID != ""
}

// FailureNotice maps a Submit error to the private notice shown to the
// submitter.
func FailureNotice(err error) string {
	switch {
	case errors.Is(err, ErrEmpty):
		return "❌ Your message is empty, please write something before sending."
	case errors.Is(err, ErrTooLong):
		return "❌ Your message is too long, please keep it under 2000 characters."
	case errors.Is(err, common.ErrNotConfigured):
		return "❌ Anonymous venting is not set up for this community. Please ask an admin to run the setup wizard."
	case errors.Is(err, common.ErrChannelNotFound):
		return "❌ The vent channel no longer exists. Please ask an admin to re-run the setup wizard."
	case errors.Is(err, common.ErrRateLimited):
		return "⏳ You're venting a little fast, please wait a moment and try again."
	default:
		return "❌ Something went wrong sending your message, please try again."
	}
}

// Submit records the vent in the obfuscated log and publishes it to the
// community's vent channel. The log append always happens before the
// publish, so every published vent has an audit record even if the publish
// fails. On success it returns the vent channel id for the caller's
// acknowledgement.
//
// The submitter's identity is never published: the embed carries only the
// text, and the log stores the username and display name obfuscated plus a
// short fingerprint.
func (s *Service) Submit(ctx context.Context, communityID, userID, username, displayName, content string) (string, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return "", ErrEmpty
	}
	if len([]rune(text)) > platform.MaxMessageLen {
		return "", ErrTooLong
	}

	cfg, err := s.configs.Get(ctx, communityID)
	if errors.Is(err, common.ErrNotFound) {
		return "", common.ErrNotConfigured
	}
	if err != nil {
		return "", err
	}
	if cfg.VentChannelID == "" {
		return "", common.ErrNotConfigured
	}

	if err := s.msgr.ChannelLive(ctx, cfg.VentChannelID); err != nil {
		return "", common.ErrChannelNotFound
	}

	if !s.limiter(communityID, userID).Allow() {
		return "", common.ErrRateLimited
	}

	rec := &model.VentRecord{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		CommunityID: communityID,
		ChannelID:   cfg.VentChannelID,
		UserID:      userID,
		Username:    codec.Encode(username),
		DisplayName: codec.Encode(displayName),
		Fingerprint: codec.Fingerprint(text),
		Content:     codec.Encode(text),
	}
	if err := s.vents.Append(ctx, rec); err != nil {
		return "", err
	}

	_, err = s.msgr.Send(ctx, cfg.VentChannelID, platform.Outgoing{
		Embed: &platform.Embed{
			Description: text,
			Author:      embedAuthor,
			Footer:      embedFooter,
		},
	})
	if err != nil {
		s.logger.Error(ctx, "vent logged but publish failed",
			"community", communityID, "channel", cfg.VentChannelID, "error", err)
		return "", err
	}

	metrics.VentsSubmitted.Inc()
	s.logger.Info(ctx, "vent published", "community", communityID, "channel", cfg.VentChannelID)
	return cfg.VentChannelID, nil
}
