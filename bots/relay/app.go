package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/twinbots/core/logger"
	tg "github.com/m3rciful/twinbots/core/telegram"
	tghelpers "github.com/m3rciful/twinbots/core/telegram/helpers"
	"github.com/m3rciful/twinbots/core/telegram/router"
	"github.com/m3rciful/twinbots/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// App wires the relay service into the Telegram runtime.
type App struct {
	cfg   *Config
	dir   *Directory
	store *state.MemoryStore[Draft]
	svc   *Service
}

// NewApp prepares the long-lived relay state.
func NewApp(cfg *Config) (*App, error) {
	store, err := state.NewMemoryStore[Draft](state.MemoryOptions{
		Capacity: cfg.Session.Capacity,
		TTL:      cfg.Session.TTL,
	})
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, dir: NewDirectory(), store: store}, nil
}

// TelegramRunOptions implements the runner contract.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    tg.NewRegistry(),
		Middlewares: tg.DefaultMiddlewares(tg.Middleware{Name: "touch", Use: a.touch}),
		Routes:      a.routes,
		OnStop: func(context.Context, tg.Runtime) error {
			a.store.Close()
			return nil
		},
	}, nil
}

func (a *App) routes(rt tg.Runtime) ([]tg.Route, error) {
	svc, err := NewService(Deps{
		Directory: a.dir,
		Store:     a.store,
		Sender:    NewBotSender(rt.Bot),
		Admins:    a.cfg.Telegram.AdminIDs,
		BotHandle: rt.Bot.Me.Username,
	})
	if err != nil {
		return nil, err
	}
	a.svc = svc
	m := svc.Machine()

	reg := rt.Registry
	if err := registerCommands(reg, m); err != nil {
		return nil, err
	}
	if err := reg.RegisterCommand("/stats", tg.Command{
		Handler:     a.stats,
		Description: "Users and active sessions",
		AdminOnly:   true,
	}); err != nil {
		return nil, err
	}
	reg.SetTextFallback(m.ManagerHandler)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin:       a.cfg.IsAdmin,
		OnAdminReject: m.ManagerHandler,
	})
	routes = append(routes, router.TextRoutes(m, reg, router.TextOptions{
		UnsupportedMedia: func(c tele.Context) error {
			return tghelpers.SendText(c, "Only text messages can be relayed")
		},
	})...)
	return routes, nil
}

// menuCommands mirror the main menu; each label is an alias of its command.
var menuCommands = []struct {
	name, desc, label string
	hidden            bool
}{
	{"/send", "Send an anonymous message", BtnSendMessage, false},
	{"/rules", "Rules", BtnRules, false},
	{"/premium", "Premium features", BtnPremium, true},
	{"/moderator", "About moderator work", BtnModerator, true},
}

func registerCommands(reg *tg.Registry, m *state.Machine[Draft]) error {
	if err := reg.RegisterCommand("/start", tg.Command{
		Handler:     m.Handler(state.KindCommand),
		Description: "Start the bot and register",
	}); err != nil {
		return err
	}
	for _, mc := range menuCommands {
		if err := reg.RegisterCommand(mc.name, tg.Command{
			Handler:     m.TextHandler(mc.label),
			Description: mc.desc,
			Hidden:      mc.hidden,
			Aliases:     []string{mc.label},
		}); err != nil {
			return err
		}
	}
	return nil
}

// touch refreshes LastSeen of registered senders on every update.
func (a *App) touch(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if u := c.Sender(); u != nil {
			a.dir.Touch(u.ID, time.Now())
		}
		return next(c)
	}
}

func (a *App) stats(c tele.Context) error {
	users, sessions := a.svc.Stats()
	logger.Info(tghelpers.BuildContext(c), "relay", "stats",
		slog.Int("count", users),
		slog.Int("sessions", sessions),
	)
	return tghelpers.SendText(c, fmt.Sprintf(msgStats, users, sessions))
}
