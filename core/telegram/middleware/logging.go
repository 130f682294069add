package middleware

import (
	"log/slog"
	"time"

	"github.com/m3rciful/twinbots/core/logger"
	"github.com/m3rciful/twinbots/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/twinbots/core/telegram/helpers"

	"github.com/maypok86/otter"
	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers update ids for a short while so a receipt is logged
// once even when the middleware wraps several branches.
var seenUpdates = func() otter.Cache[int, struct{}] {
	c, err := otter.MustBuilder[int, struct{}](4096).WithTTL(10 * time.Second).Build()
	if err != nil {
		panic(err)
	}
	return c
}()

func alreadyLogged(updateID int) bool {
	if _, ok := seenUpdates.Get(updateID); ok {
		return true
	}
	seenUpdates.Set(updateID, struct{}{})
	return false
}

// LoggerMiddleware builds the request context of the update and logs a
// sampled receipt line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if tghelpers.HasContext(c) {
			return next(c)
		}
		ctx := tghelpers.BuildContext(c)
		upd, user, chat := c.Update(), c.Sender(), c.Chat()

		if logger.ShouldSampleDebug() && !alreadyLogged(upd.ID) {
			attrs := []slog.Attr{slog.String("status", "ok")}
			if chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.Clean(user.Username, 64)))
			}
			if user != nil && user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
			switch {
			case upd.Callback != nil:
				key, payload := callbacks.ParseCallbackData(upd.Callback)
				if upd.Callback.Unique != "" {
					key = upd.Callback.Unique
				}
				attrs = append(attrs, slog.String("cb_key", logger.Clean(key, 128)))
				if payload != "" {
					attrs = append(attrs, slog.String("payload", logger.Clean(payload, 256)))
				}
			case upd.Message != nil:
				if t := c.Text(); t != "" {
					attrs = append(attrs, slog.String("payload", logger.Clean(t, 256)))
				}
			}
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}
