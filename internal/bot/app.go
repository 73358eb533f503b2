// Package bot initializes and runs the Hearth bot: it opens the database,
// connects the gateway, and drives every inbound event plus the scheduler
// tick through one event loop.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hearthbot/hearth/internal/access"
	"github.com/hearthbot/hearth/internal/bot/config"
	"github.com/hearthbot/hearth/internal/checkin"
	"github.com/hearthbot/hearth/internal/commands"
	"github.com/hearthbot/hearth/internal/logging"
	"github.com/hearthbot/hearth/internal/ops"
	"github.com/hearthbot/hearth/internal/platform"
	"github.com/hearthbot/hearth/internal/platform/gateway"
	"github.com/hearthbot/hearth/internal/setup"
	"github.com/hearthbot/hearth/internal/sticky"
	"github.com/hearthbot/hearth/internal/store"
	"github.com/hearthbot/hearth/internal/vent"
)

type App struct {
	config *config.Config
	logger logging.Logger

	repos   *store.Repositories
	gateway *gateway.Client

	vents    *vent.Service
	stickies *sticky.Manager
	sched    *checkin.Scheduler
	wizard   *setup.Wizard
	commands *commands.Handler
	ops      *ops.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	repos, err := store.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	gw := gateway.New(c.APIBaseURL, c.GatewayURL, c.Token, logger)

	acc := access.NewService(repos.DB, repos.Tokens, logger)
	vents := vent.NewService(repos.Configs, repos.VentLog, gw, logger)
	stickies := sticky.NewManager(repos.Configs, repos.Stickies, gw, logger)
	sched := checkin.NewScheduler(repos.Configs, repos.Checkins, gw, logger)
	wizard := setup.NewWizard(repos.Configs, stickies, gw, logger)
	cmds := commands.NewHandler(gw, repos.Configs, repos.VentLog, repos.Tokens,
		repos.Grants, repos.Checkins, acc, sched, wizard, logger)

	return &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		gateway:  gw,
		vents:    vents,
		stickies: stickies,
		sched:    sched,
		wizard:   wizard,
		commands: cmds,
		ops:      ops.NewServer(c.OpsAddr, gw, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run connects the gateway and blocks on the event loop until ctx is
// cancelled or the gateway closes.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting hearth bot")

	app.initSignalHandler(cancelFunc)

	if err := app.gateway.Connect(ctx); err != nil {
		return fmt.Errorf("gateway connect error: %w", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.ops.Run(ctx); err != nil {
			app.logger.Error(ctx, "ops server failed", "error", err)
			cancelFunc()
		}
	}()

	app.eventLoop(ctx)
	cancelFunc()

	wg.Wait()
	return app.repos.DB.Close()
}

// eventLoop is the single consumer of gateway events and scheduler ticks.
// Nothing here runs concurrently with anything else on shared state; every
// handler finishes before the next event is taken.
func (app *App) eventLoop(ctx context.Context) {
	ticker := time.NewTicker(app.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case now := <-ticker.C:
			app.sched.Tick(ctx, now)

		case ev, ok := <-app.gateway.Events():
			if !ok {
				app.logger.Info(ctx, "gateway closed, stopping")
				return
			}
			app.handleEvent(ctx, ev)
		}
	}
}

func (app *App) handleEvent(ctx context.Context, ev platform.Event) {
	switch e := ev.(type) {
	case platform.MessageEvent:
		app.handleMessage(ctx, e.Message)
	case platform.ButtonEvent:
		app.handleButton(ctx, e)
	case platform.ModalEvent:
		app.handleModal(ctx, e)
	case platform.SelectEvent:
		app.handleSelect(ctx, e)
	}
}

func (app *App) handleMessage(ctx context.Context, msg platform.Message) {
	if msg.AuthorBot {
		return
	}

	if err := app.stickies.HandleMessage(ctx, msg); err != nil {
		app.logger.Error(ctx, "sticky handling failed", "community", msg.CommunityID, "error", err)
	}

	// A reply belonging to an active setup session never reaches the
	// command surface.
	handled, err := app.wizard.HandleMessage(ctx, msg)
	if err != nil {
		app.logger.Error(ctx, "wizard handling failed", "community", msg.CommunityID, "error", err)
	}
	if handled {
		return
	}

	app.commands.Handle(ctx, msg)
}

// handleButton opens the vent modal for any of the three vent button
// variants. A community without a vent channel gets a private notice
// instead.
func (app *App) handleButton(ctx context.Context, ev platform.ButtonEvent) {
	switch ev.CustomID {
	case platform.ButtonCheckinVent, platform.ButtonAnonymousVent, platform.ButtonSimpleVent:
	default:
		return
	}

	if !app.vents.Configured(ctx, ev.CommunityID) {
		err := app.gateway.Whisper(ctx, ev.ReplyToken,
			"❌ Anonymous venting is not set up for this community. Please ask an admin to run the setup wizard.")
		if err != nil {
			app.logger.Warn(ctx, "could not send whisper", "error", err)
		}
		return
	}

	err := app.gateway.OpenModal(ctx, ev.ReplyToken, platform.Modal{
		CustomID:    platform.ModalVent,
		Title:       "Anonymous Vent",
		Label:       "What's on your mind?",
		Placeholder: "Share what you're going through...",
		MaxLength:   platform.MaxMessageLen,
		Required:    true,
	})
	if err != nil {
		app.logger.Error(ctx, "could not open vent modal", "community", ev.CommunityID, "error", err)
	}
}

func (app *App) handleModal(ctx context.Context, ev platform.ModalEvent) {
	if ev.CustomID != platform.ModalVent {
		return
	}

	channelID, err := app.vents.Submit(ctx, ev.CommunityID, ev.UserID, ev.Username, ev.DisplayName, ev.Value)
	if err != nil {
		if werr := app.gateway.Whisper(ctx, ev.ReplyToken, vent.FailureNotice(err)); werr != nil {
			app.logger.Warn(ctx, "could not send whisper", "error", werr)
		}
		return
	}

	ack := "✅ Your anonymous message has been sent! You can check " +
		platform.ChannelMention(channelID) + " to see your message and await responses."
	if err := app.gateway.Whisper(ctx, ev.ReplyToken, ack); err != nil {
		app.logger.Warn(ctx, "could not send whisper", "error", err)
	}
}

func (app *App) handleSelect(ctx context.Context, ev platform.SelectEvent) {
	if ev.CustomID != platform.SelectTimezone {
		return
	}
	if err := app.wizard.HandleTimezone(ctx, ev); err != nil {
		app.logger.Error(ctx, "timezone selection failed", "community", ev.CommunityID, "error", err)
	}
}
