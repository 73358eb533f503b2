// Package commands implements the text command surface: prefix parsing,
// permission checks, and one handler per command.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hearthbot/hearth/internal/access"
	"github.com/hearthbot/hearth/internal/checkin"
	"github.com/hearthbot/hearth/internal/codec"
	"github.com/hearthbot/hearth/internal/common"
	"github.com/hearthbot/hearth/internal/logging"
	"github.com/hearthbot/hearth/internal/model"
	"github.com/hearthbot/hearth/internal/platform"
	"github.com/hearthbot/hearth/internal/setup"
	"github.com/hearthbot/hearth/internal/store/checkins"
	"github.com/hearthbot/hearth/internal/store/configs"
	"github.com/hearthbot/hearth/internal/store/grants"
	"github.com/hearthbot/hearth/internal/store/tokens"
	"github.com/hearthbot/hearth/internal/store/ventlog"
)

// Prefix starts every command.
const Prefix = "!"

// logWindow is how many audit entries view_logs shows.
const logWindow = 10

const (
	helpColor     = 0x7289da
	commandsColor = 0x00ff7f
	logsColor     = 0xff9900
)

// Handler routes prefixed text commands.
type Handler struct {
	msgr     platform.Messenger
	configs  configs.Repository
	vents    ventlog.Repository
	tokens   tokens.Repository
	grants   grants.Repository
	checkins checkins.Repository
	access   *access.Service
	sched    *checkin.Scheduler
	wizard   *setup.Wizard
	logger   logging.Logger
}

func NewHandler(
	msgr platform.Messenger,
	cfgs configs.Repository,
	vents ventlog.Repository,
	toks tokens.Repository,
	grs grants.Repository,
	chk checkins.Repository,
	acc *access.Service,
	sched *checkin.Scheduler,
	wiz *setup.Wizard,
	logger logging.Logger,
) *Handler {
	return &Handler{
		msgr:     msgr,
		configs:  cfgs,
		vents:    vents,
		tokens:   toks,
		grants:   grs,
		checkins: chk,
		access:   acc,
		sched:    sched,
		wizard:   wiz,
		logger:   logger,
	}
}

// Handle dispatches msg if it is a command. It returns false for ordinary
// messages and for unknown command names, which are ignored silently.
func (h *Handler) Handle(ctx context.Context, msg platform.Message) bool {
	if !strings.HasPrefix(msg.Content, Prefix) {
		return false
	}
	name, arg, _ := strings.Cut(strings.TrimPrefix(msg.Content, Prefix), " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(name) {
	case "help":
		err = h.help(ctx, msg)
	case "commands":
		err = h.commandList(ctx, msg)
	case "setup":
		err = h.setup(ctx, msg)
	case "force":
		err = h.force(ctx, msg)
	case "settings":
		err = h.settings(ctx, msg)
	case "generate_code":
		err = h.generateCode(ctx, msg)
	case "view_logs":
		err = h.viewLogs(ctx, msg, arg)
	case "stats":
		err = h.stats(ctx, msg)
	case "ping":
		err = h.ping(ctx, msg)
	default:
		return false
	}

	if err != nil {
		h.logger.Error(ctx, "command failed", "command", name, "community", msg.CommunityID, "error", err)
		h.say(ctx, msg, "❌ An error occurred while processing your command.")
	}
	return true
}

func (h *Handler) say(ctx context.Context, msg platform.Message, content string) {
	if _, err := h.msgr.Send(ctx, msg.ChannelID, platform.Outgoing{Content: content}); err != nil {
		h.logger.Warn(ctx, "could not send command reply", "channel", msg.ChannelID, "error", err)
	}
}

// requireManager gates the moderation commands. It replies with the refusal
// itself and reports whether the caller may proceed.
func (h *Handler) requireManager(ctx context.Context, msg platform.Message) bool {
	if msg.AuthorManager {
		return true
	}
	h.say(ctx, msg, "❌ You need **Manage Community** permissions to use this command.")
	return false
}

func (h *Handler) help(ctx context.Context, msg platform.Message) error {
	_, err := h.msgr.Send(ctx, msg.ChannelID, platform.Outgoing{
		Embed: &platform.Embed{
			Title:       "🚀 Getting Started - Hearth",
			Description: "Hi! I'm here to help you set up a safe mental health support system for your community.",
			Color:       helpColor,
			Fields: []platform.EmbedField{
				{
					Name: "📝 How to Get Started",
					Value: "**Step 1:** Use `!setup` command to begin configuration\n" +
						"**Step 2:** I'll ask you to choose 3 channels:\n" +
						"   • Daily check-in channel (where I post mood tracking)\n" +
						"   • Support channel (for discussions)\n" +
						"   • Vent channel (for anonymous messages)\n" +
						"**Step 3:** Pick ping settings, timezone, and daily check-in time\n" +
						"**Step 4:** Done! I'll automatically start posting daily check-ins",
				},
				{
					Name: "💖 What This Bot Does",
					Value: "• Posts daily mental health check-ins with mood emojis\n" +
						"• Provides anonymous venting system for users to share struggles\n" +
						"• Creates supportive community spaces\n" +
						"• Keeps anonymous messages secure with moderator oversight",
				},
				{
					Name:  "⚡ Quick Setup",
					Value: "Just type `!setup` and follow the prompts - it takes about 2 minutes!",
				},
			},
			Footer: "Need commands? Use !commands",
		},
	})
	return err
}

func (h *Handler) commandList(ctx context.Context, msg platform.Message) error {
	_, err := h.msgr.Send(ctx, msg.ChannelID, platform.Outgoing{
		Embed: &platform.Embed{
			Title:       "📋 Bot Commands List",
			Description: "All available commands and their functions:",
			Color:       commandsColor,
			Fields: []platform.EmbedField{
				{
					Name: "⚙️ Setup Commands",
					Value: "`!setup` - Configure the bot for your community (channels, times, etc.)\n" +
						"`!settings` - View your current community settings\n" +
						"`!force` - Test daily check-in immediately",
				},
				{
					Name: "📊 Moderation Commands",
					Value: "`!generate_code` - Create access code to view anonymous logs\n" +
						"`!view_logs <code>` - View anonymous message logs with access code\n" +
						"`!stats` - See usage statistics for your community",
				},
				{
					Name: "ℹ️ Help Commands",
					Value: "`!help` - Get setup instructions for new admins\n" +
						"`!commands` - Show this list of commands\n" +
						"`!ping` - Test if bot is responding",
				},
				{
					Name: "🫣 For Users",
					Value: "Users can click **🫣 Vent Anonymously** buttons to send anonymous messages.\n" +
						"These buttons appear in daily check-ins and vent channels.",
				},
			},
			Footer: "Moderation commands require the Manage Community permission",
		},
	})
	return err
}

func (h *Handler) setup(ctx context.Context, msg platform.Message) error {
	if !msg.AuthorAdmin {
		h.say(ctx, msg, "❌ You need administrator permissions to run the setup wizard.")
		return nil
	}

	err := h.wizard.Start(ctx, msg.CommunityID, msg.ChannelID, msg.AuthorID)
	if errors.Is(err, common.ErrSessionExists) {
		h.say(ctx, msg, "❌ You already have a setup session running. Please complete it first.")
		return nil
	}
	return err
}

func (h *Handler) force(ctx context.Context, msg platform.Message) error {
	if !h.requireManager(ctx, msg) {
		return nil
	}

	err := h.sched.Force(ctx, msg.CommunityID)
	switch {
	case errors.Is(err, common.ErrNotConfigured):
		h.say(ctx, msg, "❌ **Community not configured!**\n\nPlease run `!setup` first to configure the bot.")
		return nil
	case err != nil:
		h.say(ctx, msg, fmt.Sprintf("❌ **Error posting daily check-in:** %v", err))
		return nil
	}

	h.say(ctx, msg, "✅ **Daily check-in posted successfully!**")
	return nil
}

func (h *Handler) settings(ctx context.Context, msg platform.Message) error {
	if !h.requireManager(ctx, msg) {
		return nil
	}

	cfg, err := h.configs.Get(ctx, msg.CommunityID)
	if errors.Is(err, common.ErrNotFound) {
		h.say(ctx, msg, "❌ **Community not configured!**\n\nPlease run `!setup` first to configure the bot.")
		return nil
	}
	if err != nil {
		return err
	}

	_, err = h.msgr.Send(ctx, msg.ChannelID, platform.Outgoing{
		Embed: &platform.Embed{
			Title: "⚙️ Current Community Settings",
			Color: helpColor,
			Fields: []platform.EmbedField{
				{Name: "📅 Daily Check-in Channel", Value: h.channelField(ctx, cfg.PostChannelID), Inline: true},
				{Name: "💬 Support Channel", Value: h.channelField(ctx, cfg.SupportChannelID), Inline: true},
				{Name: "🫣 Vent Channel", Value: h.channelField(ctx, cfg.VentChannelID), Inline: true},
				{Name: "🔔 Ping Setting", Value: cfg.Ping, Inline: true},
				{Name: "⏰ Check-in Time", Value: cfg.CheckinTime + " " + cfg.Timezone, Inline: true},
				{Name: "🔄 Reconfigure", Value: "Use `!setup` to change these settings", Inline: true},
			},
		},
	})
	return err
}

func (h *Handler) channelField(ctx context.Context, channelID string) string {
	if err := h.msgr.ChannelLive(ctx, channelID); err != nil {
		return "❌ Channel not found"
	}
	return platform.ChannelMention(channelID)
}

func (h *Handler) generateCode(ctx context.Context, msg platform.Message) error {
	if !h.requireManager(ctx, msg) {
		return nil
	}

	token, err := h.access.Issue(ctx, msg.CommunityID)
	if err != nil {
		return err
	}

	err = h.msgr.Direct(ctx, msg.AuthorID, platform.Outgoing{
		Content: "🔐 **Access Code Generated**\n\n" +
			"Your one-time access code: `" + token + "`\n\n" +
			"Use `!view_logs " + token + "` to view anonymous message logs.\n" +
			"⚠️ This code can only be used once and will expire after use.",
	})
	if err != nil {
		return err
	}

	h.say(ctx, msg, "✅ Access code sent to your DMs!")
	return nil
}

func (h *Handler) viewLogs(ctx context.Context, msg platform.Message, token string) error {
	if !h.requireManager(ctx, msg) {
		return nil
	}
	if token == "" {
		h.say(ctx, msg, "❌ Please provide an access code: `!view_logs <code>`")
		return nil
	}

	err := h.access.Redeem(ctx, msg.CommunityID, token, msg.AuthorID)
	if errors.Is(err, common.ErrInvalidToken) {
		h.say(ctx, msg, "❌ Invalid or already used access code.")
		return nil
	}
	if err != nil {
		return err
	}

	records, err := h.vents.ReadRecent(ctx, msg.CommunityID, logWindow)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		h.say(ctx, msg, "📝 No anonymous messages logged for this community.")
		return nil
	}

	total, err := h.vents.Count(ctx, msg.CommunityID)
	if err != nil {
		return err
	}

	embed := &platform.Embed{
		Title:       "📋 Anonymous Message Logs",
		Description: fmt.Sprintf("Showing %d anonymous messages", total),
		Color:       logsColor,
	}
	for i, rec := range records {
		embed.Fields = append(embed.Fields, platform.EmbedField{
			Name:  fmt.Sprintf("Message %d - %s", i+1, rec.Timestamp.Format("2006-01-02 15:04")),
			Value: formatLogEntry(rec),
		})
	}
	if total > len(records) {
		embed.Footer = fmt.Sprintf("Showing last %d of %d total messages", len(records), total)
	}

	if err := h.msgr.Direct(ctx, msg.AuthorID, platform.Outgoing{Embed: embed}); err != nil {
		return err
	}

	h.say(ctx, msg, "📨 Log details sent to your DMs!")
	return nil
}

// formatLogEntry de-obfuscates one audit record for moderator display,
// truncating long content.
func formatLogEntry(rec model.VentRecord) string {
	username, err := codec.Decode(rec.Username)
	if err != nil {
		return "❌ Error decoding message"
	}
	content, err := codec.Decode(rec.Content)
	if err != nil {
		return "❌ Error decoding message"
	}

	if runes := []rune(content); len(runes) > 100 {
		content = string(runes[:100]) + "..."
	}
	return fmt.Sprintf("**User:** %s (ID: %s)\n**Content:** %s", username, rec.UserID, content)
}

func (h *Handler) stats(ctx context.Context, msg platform.Message) error {
	if !h.requireManager(ctx, msg) {
		return nil
	}

	ventCount, err := h.vents.Count(ctx, msg.CommunityID)
	if err != nil {
		return err
	}
	tokenCount, err := h.tokens.Count(ctx, msg.CommunityID)
	if err != nil {
		return err
	}
	grantCount, err := h.grants.Count(ctx, msg.CommunityID)
	if err != nil {
		return err
	}

	configured := "✅ Yes"
	if _, err := h.configs.Get(ctx, msg.CommunityID); errors.Is(err, common.ErrNotFound) {
		configured = "❌ No"
	} else if err != nil {
		return err
	}

	lastCheckin := "Never"
	if state, err := h.checkins.Get(ctx, msg.CommunityID); err == nil && state.LastDate != "" {
		lastCheckin = state.LastDate
	}

	_, err = h.msgr.Send(ctx, msg.ChannelID, platform.Outgoing{
		Embed: &platform.Embed{
			Title: "📊 Bot Statistics",
			Color: commandsColor,
			Fields: []platform.EmbedField{
				{Name: "🫣 Anonymous Messages", Value: fmt.Sprint(ventCount), Inline: true},
				{Name: "🔐 Access Codes Generated", Value: fmt.Sprint(tokenCount), Inline: true},
				{Name: "👮 Log Accesses", Value: fmt.Sprint(grantCount), Inline: true},
				{Name: "⚙️ Bot Configured", Value: configured, Inline: true},
				{Name: "📅 Last Check-in", Value: lastCheckin, Inline: true},
			},
		},
	})
	return err
}

func (h *Handler) ping(ctx context.Context, msg platform.Message) error {
	h.say(ctx, msg, fmt.Sprintf("🏓 Pong! Latency: %dms", h.msgr.Latency().Milliseconds()))
	return nil
}
