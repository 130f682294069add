package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// render runs fn against a structured handler and returns the written output.
func render(t *testing.T, format logFormat, fn func(log *slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	fn(slog.New(newStructuredHandler(handlerConfig{level: slog.LevelDebug, writer: aw, format: format})))
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

// assertOrdered fails unless every part occurs in line, in order.
func assertOrdered(t *testing.T, line string, parts ...string) {
	t.Helper()
	pos := -1
	for _, p := range parts {
		idx := strings.Index(line, p)
		if idx <= pos {
			t.Fatalf("%q missing or out of order in %s", p, line)
		}
		pos = idx
	}
}

var testUpdate = Update{ID: 42, UserID: 7, ChatID: 9, Handler: "relay.start"}

func TestStructuredHandlerKeyOrder(t *testing.T) {
	ctx := WithUpdate(context.Background(), testUpdate)
	emit := func(log *slog.Logger) {
		LogEvent(ctx, log.With("component", "relay"), slog.LevelInfo, "relay.deliver",
			slog.String("cause", "unit"),
			slog.String("status", "OK"),
		)
	}
	rid := CompactRID(testUpdate.RID())

	kv := render(t, formatKV, emit)
	if !strings.HasPrefix(kv, "ts=") {
		t.Fatalf("kv line must start with ts: %s", kv)
	}
	assertOrdered(t, kv, "level=INFO", "component=relay", "event=relay.deliver", "status=ok",
		"rid="+rid, "update_id=42", "user_id=7", "chat_id=9", "handler=relay.start", "cause=unit")
	if strings.Contains(kv, "rid_full=") {
		t.Fatalf("kv output must not carry rid_full: %s", kv)
	}

	js := render(t, formatJSON, emit)
	assertOrdered(t, js, `{"ts":`, `"level":"INFO"`, `"component":"relay"`, `"status":"ok"`,
		`"rid":"`+rid+`"`, `"rid_full":"42:9:7"`, `"ts_unix_nano"`, `"update_id":42`)
}

func TestStructuredHandlerDefaults(t *testing.T) {
	line := render(t, formatKV, func(log *slog.Logger) { log.Info("bare") })
	for _, want := range []string{"component=app", "event=bare"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %s", want, line)
		}
	}
	if strings.Contains(line, "rid=") {
		t.Fatalf("no update bound, no rid expected: %s", line)
	}
}

func TestStructuredHandlerDurationAndGroups(t *testing.T) {
	line := render(t, formatKV, func(log *slog.Logger) {
		log.With("component", "rates").WithGroup("feed").
			Info("rates.refresh", slog.Duration("duration", 1500*time.Microsecond), slog.Int("rates", 4))
	})
	for _, want := range []string{"component=rates", "event=rates.refresh", "feed.duration_ms=2", "feed.rates=4"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %s", want, line)
		}
	}
}

func TestStructuredHandlerEnumerations(t *testing.T) {
	line := render(t, formatJSON, func(log *slog.Logger) {
		log.Debug("rates.lookup", slog.String("cache", "bogus"), slog.String("outcome", "ok"))
	})
	if strings.Contains(line, `"cache"`) {
		t.Fatalf("unknown cache value should be dropped: %s", line)
	}
	if !strings.Contains(line, `"outcome":"ok"`) {
		t.Fatalf("outcome missing: %s", line)
	}
}

func TestKVQuoting(t *testing.T) {
	line := render(t, formatKV, func(log *slog.Logger) {
		log.Info("relay.preview", slog.String("title", `hi "there"`))
	})
	if !strings.Contains(line, `title="hi \"there\""`) {
		t.Fatalf("values with spaces or quotes must be quoted: %s", line)
	}
}

func TestCompactRID(t *testing.T) {
	cases := map[string]string{
		"36:72:1":  "10.20.1",
		"12:34:56": "c.y.1k",
		"rid-123":  "rid-123",
		"1:x:3":    "1:x:3",
	}
	for in, want := range cases {
		if got := CompactRID(in); got != want {
			t.Errorf("CompactRID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWithHandlerNeedsUpdate(t *testing.T) {
	if _, ok := UpdateFrom(WithHandler(context.Background(), "x")); ok {
		t.Fatal("WithHandler must not invent an update")
	}
	ctx := WithHandler(WithUpdate(context.Background(), Update{ID: 1}), "currency.start")
	if u, _ := UpdateFrom(ctx); u.Handler != "currency.start" {
		t.Fatalf("handler = %q", u.Handler)
	}
}

func TestClean(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"plain", 10, "plain"},
		{"a\x00b\u200bc", 10, "abc"},
		{"tab\tnew\nline", 20, "tab\tnew\nline"},
		{"привет мир", 6, "привет"},
		{"anything", 0, ""},
	}
	for _, tc := range cases {
		if got := Clean(tc.in, tc.max); got != tc.want {
			t.Errorf("Clean(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	got := []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()}
	want := []bool{true, false, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("allow #%d = %v, want %v", i, got[i], want[i])
		}
	}
	s.Set(0, 0)
	if !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := map[string][2]int{
		"1/10": {1, 10},
		"25":   {1, 25},
		"0":    {0, 0},
		"x/y":  {0, 0},
	}
	for spec, want := range cases {
		n, d := parseRatioSpec(spec)
		if n != want[0] || d != want[1] {
			t.Fatalf("parseRatioSpec(%q) = %d/%d, want %d/%d", spec, n, d, want[0], want[1])
		}
	}
}
