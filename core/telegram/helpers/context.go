package helpers

import (
	"context"

	"github.com/m3rciful/twinbots/core/logger"

	tele "gopkg.in/telebot.v4"
)

// ctxStoreKey is where the request context lives in tele.Context storage.
const ctxStoreKey = "twinbots.ctx"

// HasContext reports whether a request context was already built for c.
func HasContext(c tele.Context) bool {
	_, ok := stored(c)
	return ok
}

func stored(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxStoreKey).(context.Context)
	return ctx, ok
}

// BuildContext returns the request context of the update in c. The first call
// binds the update identifiers and the "tg" logger; later calls reuse it.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := stored(c); ok {
		return ctx
	}
	u := logger.Update{ID: c.Update().ID}
	if s := c.Sender(); s != nil {
		u.UserID = s.ID
	}
	if ch := c.Chat(); ch != nil {
		u.ChatID = ch.ID
	}
	ctx := logger.WithLogger(logger.WithUpdate(context.Background(), u), logger.Component("tg"))
	c.Set(ctxStoreKey, ctx)
	return ctx
}

// WithHandler records the serving handler in the request context of c.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := logger.WithHandler(BuildContext(c), handler)
	c.Set(ctxStoreKey, ctx)
	return ctx
}
