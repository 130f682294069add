package router

import (
	"log/slog"

	tg "github.com/m3rciful/twinbots/core/telegram"
	"github.com/m3rciful/twinbots/core/telegram/callbacks"
	"github.com/m3rciful/twinbots/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute routes every inline-button press through the registry by unique key.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key := callbacks.CallbackKey(c)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		cbHandler, ok := reg.GetCallback(key)
		if !ok {
			return handleWithSummary(c, name, func() error {
				return reg.CallbackNotFound()(c)
			}, append(extras, slog.String("reason", "not_found"))...)
		}

		// Stop the client-side spinner before doing any work.
		_ = c.Respond()
		return handleWithSummary(c, name, func() error { return cbHandler(c) }, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
