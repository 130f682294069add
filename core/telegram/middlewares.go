package telegram

import "github.com/m3rciful/twinbots/core/telegram/middleware"

// DefaultMiddlewares builds the shared middleware chain for bots.
// extra runs after the logger so it sees the request context.
func DefaultMiddlewares(extra ...Middleware) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	}
	return append(mws, extra...)
}
