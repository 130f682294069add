package router

import (
	"time"

	tg "github.com/m3rciful/twinbots/core/telegram"
	"github.com/m3rciful/twinbots/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM is the slice of a conversation machine the text router needs.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for non-text updates.
type TextOptions struct {
	// UnsupportedMedia answers photos, documents, stickers and the like.
	UnsupportedMedia tele.HandlerFunc
}

// TextRoutes routes text to the active conversation first, then to
// command aliases, then to the registry text fallback.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		if c.Sender() == nil {
			return nil
		}
		if fsm != nil && fsm.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm", func() error { return fsm.ManagerHandler(c) })
		}
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok {
				return handleWithSummary(c, normalizeHandlerName(key), func() error { return cmd.Handler(c) })
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", func() error { return fb(c) })
			}
		}
		logHandlerSummary(c, "unknown_text", time.Now(), "skip", nil)
		return nil
	}

	routes := []tg.Route{{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}}
	if opts.UnsupportedMedia != nil {
		media := func(c tele.Context) error {
			return handleWithSummary(c, "unsupported_media", func() error { return opts.UnsupportedMedia(c) })
		}
		wrapped := middleware.RecoverMiddleware(middleware.LoggerMiddleware(media))
		for _, ep := range []string{tele.OnMedia, tele.OnSticker, tele.OnContact, tele.OnLocation} {
			routes = append(routes, tg.Route{Endpoint: ep, Handler: wrapped})
		}
	}
	return routes
}
