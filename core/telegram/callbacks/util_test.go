package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		data            string
		unique, payload string
	}{
		{"\fcurrency|USD", "currency", "USD"},
		{"\frelay_send", "relay_send", ""},
		{"\fkey|a|b", "key", "a|b"},
		{"plain", "plain", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		u, p := ParseCallbackData(&tele.Callback{Data: tc.data})
		if u != tc.unique || p != tc.payload {
			t.Errorf("ParseCallbackData(%q) = %q, %q; want %q, %q", tc.data, u, p, tc.unique, tc.payload)
		}
	}
	if u, p := ParseCallbackData(nil); u != "" || p != "" {
		t.Errorf("nil callback = %q, %q", u, p)
	}
}
