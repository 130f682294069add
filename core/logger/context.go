package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

type ctxKey int

const (
	keyUpdate ctxKey = iota
	keyLogger
)

// Update identifies the Telegram update a log line belongs to.
type Update struct {
	ID      int
	UserID  int64
	ChatID  int64
	Handler string
}

// RID is the correlation id of the update, "update:chat:user".
func (u Update) RID() string {
	return fmt.Sprintf("%d:%d:%d", u.ID, u.ChatID, u.UserID)
}

// WithUpdate binds u to ctx; log lines written with ctx carry its identifiers.
func WithUpdate(ctx context.Context, u Update) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, keyUpdate, u)
}

// UpdateFrom returns the update bound to ctx.
func UpdateFrom(ctx context.Context) (Update, bool) {
	if ctx == nil {
		return Update{}, false
	}
	u, ok := ctx.Value(keyUpdate).(Update)
	return u, ok
}

// WithHandler names the handler serving the update bound to ctx.
func WithHandler(ctx context.Context, handler string) context.Context {
	u, ok := UpdateFrom(ctx)
	if !ok || handler == "" {
		return ctx
	}
	u.Handler = handler
	return WithUpdate(ctx, u)
}

// WithLogger stores log in ctx for Debug/Info/Warn/Error calls without an explicit logger.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, keyLogger, log)
}

// FromContext returns the logger stored in ctx or L.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(keyLogger).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// Clean strips control and format runes (keeping tab and newline) and cuts
// the result to max runes. User-supplied text goes through it before logging.
func Clean(s string, max int) string {
	if max <= 0 || s == "" {
		return ""
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == max {
			break
		}
		if r != '\n' && r != '\t' && (unicode.IsControl(r) || unicode.Is(unicode.Cf, r)) {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// CompactRID renders "update:chat:user" as dot-separated base36 segments.
// Other inputs are returned unchanged.
func CompactRID(rid string) string {
	parts := strings.Split(strings.TrimSpace(rid), ":")
	if len(parts) != 3 {
		return rid
	}
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return rid
		}
		parts[i] = strconv.FormatInt(n, 36)
	}
	return strings.Join(parts, ".")
}
