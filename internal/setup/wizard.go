// Package setup implements the interactive configuration wizard: a
// per-administrator linear sequence of replies, each editing one shared
// anchor message in place until the community config is complete.
package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hearthbot/hearth/internal/checkin"
	"github.com/hearthbot/hearth/internal/common"
	"github.com/hearthbot/hearth/internal/logging"
	"github.com/hearthbot/hearth/internal/model"
	"github.com/hearthbot/hearth/internal/platform"
	"github.com/hearthbot/hearth/internal/sticky"
	"github.com/hearthbot/hearth/internal/store/configs"
)

// Wizard steps. The count starts at 2: step 1 was the welcome screen of an
// early version and the numbering stuck in the stored sessions.
const (
	stepPostChannel    = 2
	stepSupportChannel = 3
	stepVentChannel    = 4
	stepPing           = 5
	stepTimezone       = 6
	stepTime           = 7
)

// Notice lifetimes for transient in-channel feedback.
const (
	noticeTTL = 5 * time.Second
	abortTTL  = 10 * time.Second
)

const wizardColor = 0x7289da
const errorColor = 0xff0000
const successColor = 0x00ff7f

type session struct {
	step      int
	channelID string
	anchor    platform.Ref
	data      model.CommunityConfig
}

// Wizard holds the active setup sessions. Sessions live in memory only; a
// restart drops them and the administrator starts over.
type Wizard struct {
	configs  configs.Repository
	stickies *sticky.Manager
	msgr     platform.Messenger
	logger   logging.Logger

	// keyed by communityID + "/" + userID; the event loop is single
	// threaded, no locking needed.
	sessions map[string]*session
}

func NewWizard(cfg configs.Repository, st *sticky.Manager, msgr platform.Messenger, logger logging.Logger) *Wizard {
	return &Wizard{
		configs:  cfg,
		stickies: st,
		msgr:     msgr,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

func key(communityID, userID string) string {
	return communityID + "/" + userID
}

// Active reports whether the user has a setup session running in the
// community.
func (w *Wizard) Active(communityID, userID string) bool {
	_, ok := w.sessions[key(communityID, userID)]
	return ok
}

// Start opens a new session and posts the anchor message the wizard will
// keep editing. A user can run only one session per community at a time.
func (w *Wizard) Start(ctx context.Context, communityID, channelID, userID string) error {
	k := key(communityID, userID)
	if _, ok := w.sessions[k]; ok {
		return common.ErrSessionExists
	}

	anchor, err := w.msgr.Send(ctx, channelID, platform.Outgoing{
		Embed: &platform.Embed{
			Title: "🧙 Hearth Setup Wizard",
			Description: "**Welcome to the most wholesome setup you'll ever do!** 💖\n\n" +
				"I'm here to help you create a supportive space for your community. " +
				"We'll set up daily check-ins, anonymous venting, and support channels.\n\n" +
				"*This will take about 2 minutes.*\n\n" +
				"**Ready? Please mention the channel where I should post daily check-ins:**",
			Footer: "Example: #general or general",
			Color:  wizardColor,
		},
	})
	if err != nil {
		return err
	}

	w.sessions[k] = &session{
		step:      stepPostChannel,
		channelID: channelID,
		anchor:    anchor,
		data:      model.CommunityConfig{CommunityID: communityID},
	}
	return nil
}

// HandleMessage consumes one reply from a user with an active session. It
// returns false when the user has no session, in which case the message
// belongs to someone else. Any reply during an active session is deleted
// from the channel regardless of validity.
func (w *Wizard) HandleMessage(ctx context.Context, msg platform.Message) (bool, error) {
	k := key(msg.CommunityID, msg.AuthorID)
	sess, ok := w.sessions[k]
	if !ok {
		return false, nil
	}

	ref := platform.Ref{ChannelID: msg.ChannelID, MessageID: msg.ID}
	if err := w.msgr.Delete(ctx, ref); err != nil && !errors.Is(err, common.ErrNotFound) {
		w.logger.Warn(ctx, "could not delete wizard reply", "community", msg.CommunityID, "error", err)
	}

	if err := w.step(ctx, sess, msg); err != nil {
		w.abort(ctx, k, sess, err)
	}
	return true, nil
}

// HandleTimezone consumes the timezone selection control.
func (w *Wizard) HandleTimezone(ctx context.Context, ev platform.SelectEvent) error {
	k := key(ev.CommunityID, ev.UserID)
	sess, ok := w.sessions[k]
	if !ok || sess.step != stepTimezone {
		return w.msgr.Whisper(ctx, ev.ReplyToken, "❌ Setup session not found. Please start over with `!setup`")
	}
	if !validTimezone(ev.Value) {
		return w.msgr.Whisper(ctx, ev.ReplyToken, "❌ Unknown timezone, please pick one from the list.")
	}

	sess.data.Timezone = ev.Value
	sess.step = stepTime

	err := w.msgr.Edit(ctx, sess.anchor, platform.Outgoing{
		Embed: &platform.Embed{
			Title: "Setup Wizard - Step 7/7 ⏰",
			Description: fmt.Sprintf("**Perfect! Timezone set to %s** 🌍\n\n"+
				"**Final step! When should I send the daily check-ins?** 🕐\n\n"+
				"Pick a time that works for your community.\n\n"+
				"**Please enter a time in 24-hour format:**\n"+
				"• Examples: `09:00`, `14:30`, `20:15`\n"+
				"• Must be in HH:MM format", timezoneLabel(ev.Value)),
			Footer: "Example: 09:00 for 9 AM",
			Color:  wizardColor,
		},
	})
	if err != nil {
		w.abort(ctx, k, sess, err)
	}
	return nil
}

func (w *Wizard) step(ctx context.Context, sess *session, msg platform.Message) error {
	switch sess.step {
	case stepPostChannel:
		return w.stepChannel(ctx, sess, msg, &sess.data.PostChannelID, stepSupportChannel, platform.Embed{
			Title: "Setup Wizard - Step 3/7 📞",
			Description: "**Noice! Now pick your support channel** 💬\n\n" +
				"This is where people can go when they need some extra love and support.\n\n" +
				"*Pro tip: Don't use your meme channel for this one 😅*\n\n" +
				"**Please mention the support channel or type its name:**",
			Footer: "Example: #support or support",
			Color:  wizardColor,
		})

	case stepSupportChannel:
		return w.stepChannel(ctx, sess, msg, &sess.data.SupportChannelID, stepVentChannel, platform.Embed{
			Title: "Setup Wizard - Step 4/7 🫣",
			Description: "**Sweet! Now let's set up the secret diary channel** 📝\n\n" +
				"This is where people can anonymously spill their thoughts without anyone " +
				"knowing who's doing the spilling.\n\n*Warning: May contain feelings*\n\n" +
				"**Please mention the vent channel or type its name:**",
			Footer: "Example: #vent or anonymous-vent",
			Color:  wizardColor,
		})

	case stepVentChannel:
		return w.stepChannel(ctx, sess, msg, &sess.data.VentChannelID, stepPing, platform.Embed{
			Title: "Setup Wizard - Step 5/7 📣",
			Description: "**Awesome sauce! Who should I annoy... I mean, *notify* for check-ins?** 🔔\n\n" +
				"**Type one of the following:**\n" +
				"• `@everyone` - Ping everyone (maximum chaos)\n" +
				"• `@here` - Ping only online members (medium chaos)\n" +
				"• `none` - No pings (peaceful mode)",
			Footer: "Choose wisely...",
			Color:  wizardColor,
		})

	case stepPing:
		return w.stepPing(ctx, sess, msg)

	case stepTime:
		return w.stepTime(ctx, sess, msg)
	}
	return fmt.Errorf("wizard session in unknown step %d", sess.step)
}

// stepChannel handles the three channel-selection steps, which differ only
// in the field they fill and the prompt that follows.
func (w *Wizard) stepChannel(ctx context.Context, sess *session, msg platform.Message, field *string, next int, prompt platform.Embed) error {
	channelID, err := w.msgr.ResolveChannel(ctx, msg.CommunityID, msg.Content)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return w.notice(ctx, sess, "❌ Invalid Channel",
				"Please mention a valid text channel or type the channel name (e.g., #general or general)")
		}
		return err
	}

	*field = channelID
	sess.step = next
	return w.msgr.Edit(ctx, sess.anchor, platform.Outgoing{Embed: &prompt})
}

// pingAliases maps accepted spellings (lowercased) to the stored value.
var pingAliases = map[string]string{
	"@everyone": model.PingEveryone,
	"everyone":  model.PingEveryone,
	"@here":     model.PingHere,
	"here":      model.PingHere,
	"none":      model.PingNone,
	"no":        model.PingNone,
}

func (w *Wizard) stepPing(ctx context.Context, sess *session, msg platform.Message) error {
	ping, ok := pingAliases[strings.ToLower(strings.TrimSpace(msg.Content))]
	if !ok {
		return w.notice(ctx, sess, "❌ Invalid Option",
			"Please type one of: `@everyone`, `@here`, or `none`")
	}

	sess.data.Ping = ping
	sess.step = stepTimezone

	return w.msgr.Edit(ctx, sess.anchor, platform.Outgoing{
		Embed: &platform.Embed{
			Title: "Setup Wizard - Step 6/7 🌍",
			Description: "**Awesome sauce! What's your timezone?** ⏰\n\n" +
				"Pick your timezone so I know when to post your daily check-ins!\n\n" +
				"**Please select your timezone from the dropdown below:**",
			Footer: "Choose the timezone closest to your community's location",
			Color:  wizardColor,
		},
		SelectID: platform.SelectTimezone,
		Options:  timezones,
	})
}

func (w *Wizard) stepTime(ctx context.Context, sess *session, msg platform.Message) error {
	hour, minute, err := checkin.ParseClock(strings.TrimSpace(msg.Content))
	if err != nil {
		return w.notice(ctx, sess, "❌ Invalid Time",
			"Please enter a valid time in HH:MM format (e.g., 09:00, 14:30, 20:15)")
	}

	sess.data.CheckinTime = fmt.Sprintf("%02d:%02d", hour, minute)
	if err := w.configs.Put(ctx, &sess.data); err != nil {
		return err
	}

	err = w.msgr.Edit(ctx, sess.anchor, platform.Outgoing{
		Embed: &platform.Embed{
			Title: "🎉 Setup Complete! Welcome to Wholesome-ville!",
			Description: "**Congrats! Your community is now 1000% more supportive!** 💖\n\n" +
				"I'm all configured and ready to help your community check in on each " +
				"other and share their feelings safely.",
			Color: successColor,
			Fields: []platform.EmbedField{
				{
					Name: "📅 Daily Check-ins",
					Value: fmt.Sprintf("Every day at **%s** (%s) in %s\nPeople can react with emojis to show how they're feeling!",
						sess.data.CheckinTime, timezoneLabel(sess.data.Timezone), platform.ChannelMention(sess.data.PostChannelID)),
				},
				{
					Name:  "💬 Support Hub",
					Value: platform.ChannelMention(sess.data.SupportChannelID) + "\nFor deeper conversations and peer support",
				},
				{
					Name:  "🫣 Anonymous Venting",
					Value: platform.ChannelMention(sess.data.VentChannelID) + "\nSafe space for anonymous feelings (with mod oversight)",
				},
				{
					Name:  "🔔 Daily Ping Style",
					Value: "**" + sess.data.Ping + "**",
				},
			},
			Footer: "Thanks for setting up mental health support for your community! 💙",
		},
	})
	if err != nil {
		return err
	}

	if err := w.stickies.Install(ctx, sess.data.CommunityID, sess.data.VentChannelID); err != nil {
		w.logger.Error(ctx, "could not install sticky after setup",
			"community", sess.data.CommunityID, "error", err)
	}

	delete(w.sessions, key(sess.data.CommunityID, msg.AuthorID))
	return nil
}

// notice posts a transient validation notice next to the wizard; the session
// stays at the current step.
func (w *Wizard) notice(ctx context.Context, sess *session, title, body string) error {
	_, err := w.msgr.Send(ctx, sess.channelID, platform.Outgoing{
		Embed: &platform.Embed{Title: title, Description: body, Color: errorColor},
		TTL:   noticeTTL,
	})
	return err
}

// abort tears a session down after an unexpected failure: log, drop the
// session, tell the user to start over. The wizard never lets a step error
// escape to the event loop.
func (w *Wizard) abort(ctx context.Context, k string, sess *session, cause error) {
	w.logger.Error(ctx, "setup wizard failed", "session", k, "step", sess.step, "error", cause)
	delete(w.sessions, k)

	_, err := w.msgr.Send(ctx, sess.channelID, platform.Outgoing{
		Embed: &platform.Embed{
			Title:       "❌ Setup Error",
			Description: "Something went wrong. Please try the `!setup` command again.",
			Color:       errorColor,
		},
		TTL: abortTTL,
	})
	if err != nil {
		w.logger.Warn(ctx, "could not post setup failure notice", "session", k, "error", err)
	}
}
