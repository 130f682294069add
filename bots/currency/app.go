package currency

import (
	"context"
	"time"

	"github.com/m3rciful/twinbots/bots/currency/rates"
	"github.com/m3rciful/twinbots/core/bootstrap"
	tg "github.com/m3rciful/twinbots/core/telegram"
	tghelpers "github.com/m3rciful/twinbots/core/telegram/helpers"
	"github.com/m3rciful/twinbots/core/telegram/netutil"
	"github.com/m3rciful/twinbots/core/telegram/router"
	"github.com/m3rciful/twinbots/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// App wires the currency service into the Telegram runtime.
type App struct {
	cfg       *Config
	cache     *rates.Cache
	scheduler *rates.Scheduler
	store     *state.MemoryStore[Draft]
	svc       *Service
}

// NewApp builds the rate cache, the background refresh and the conversation.
func NewApp(cfg *Config) (*App, error) {
	feed := rates.NewCBRFeed(cfg.Rates.FeedURL, netutil.NewHTTPClient(netutil.ClientOptions{
		Timeout: cfg.Rates.FetchTimeout,
	}))
	cache := rates.NewCache(feed, rates.Options{
		Base:         cfg.Rates.Base,
		Supported:    cfg.Rates.Supported,
		TTL:          cfg.Rates.TTL,
		FetchTimeout: cfg.Rates.FetchTimeout,
	})

	var sched *rates.Scheduler
	if cfg.Rates.RefreshSchedule != ScheduleOff {
		s, err := rates.NewScheduler(cache, cfg.Rates.RefreshSchedule)
		if err != nil {
			return nil, err
		}
		sched = s
	}

	store, err := state.NewMemoryStore[Draft](state.MemoryOptions{
		Capacity: cfg.Session.Capacity,
		TTL:      cfg.Session.TTL,
	})
	if err != nil {
		return nil, err
	}
	svc, err := NewService(Deps{Store: store, Rates: cache, Currencies: cfg.Rates.Supported})
	if err != nil {
		store.Close()
		return nil, err
	}
	return &App{cfg: cfg, cache: cache, scheduler: sched, store: store, svc: svc}, nil
}

// Warmups fills the rate cache before the bot starts serving.
func (a *App) Warmups() []bootstrap.Warmup {
	return []bootstrap.Warmup{{Name: "rates", Warmer: bootstrap.WarmerFunc(a.cache.Refresh)}}
}

// TelegramRunOptions implements the runner contract.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    tg.NewRegistry(),
		Middlewares: tg.DefaultMiddlewares(),
		Routes:      a.routes,
		OnStart: func(context.Context, tg.Runtime) error {
			if a.scheduler != nil {
				a.scheduler.Start()
			}
			return nil
		},
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			if a.scheduler != nil {
				sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				defer cancel()
				a.scheduler.Stop(sctx)
			}
			a.store.Close()
			return nil
		},
	}, nil
}

func (a *App) routes(rt tg.Runtime) ([]tg.Route, error) {
	m := a.svc.Machine()
	reg := rt.Registry

	commands := []struct {
		name, desc string
	}{
		{"/start", "Start a new conversion"},
		{"/help", "How to use the bot"},
	}
	for _, cmd := range commands {
		if err := reg.RegisterCommand(cmd.name, tg.Command{
			Handler:     m.Handler(state.KindCommand),
			Description: cmd.desc,
		}); err != nil {
			return nil, err
		}
	}
	if err := reg.RegisterCallback(ChoiceCurrency, m.Handler(state.KindChoice)); err != nil {
		return nil, err
	}
	reg.SetTextFallback(m.ManagerHandler)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{})
	routes = append(routes, router.CallbackRoute(reg))
	routes = append(routes, router.TextRoutes(m, reg, router.TextOptions{
		UnsupportedMedia: func(c tele.Context) error {
			return tghelpers.SendText(c, msgHint)
		},
	})...)
	return routes, nil
}
