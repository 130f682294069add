package router

import (
	"errors"
	"fmt"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "rates unavailable" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestDeriveErrorCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"coder", fmt.Errorf("wrap: %w", codedErr{}), "RATES_UNAVAILABLE"},
		{"pointer type", &plainErr{}, "PLAINERR"},
		{"wrapped api error", fmt.Errorf("deliver: %w", tele.ErrBlockedByUser), "ERROR"},
		{"errors.New", errors.New("x"), "ERRORSTRING"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := deriveErrorCode(tc.err); got != tc.want {
				t.Fatalf("deriveErrorCode = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	cases := map[string]string{
		"/start":       "start",
		" Send Now ":   "send_now",
		"":             "unknown",
		"currency_USD": "currency_usd",
	}
	for in, want := range cases {
		if got := normalizeHandlerName(in); got != want {
			t.Errorf("normalizeHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
