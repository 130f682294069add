package state

import (
	"context"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func offlineContext(t *testing.T, upd tele.Update) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	return bot.NewContext(upd)
}

func TestEventFrom(t *testing.T) {
	user := &tele.User{ID: 7, Username: "alice", FirstName: "Alice"}
	chat := &tele.Chat{ID: 70}

	cases := []struct {
		name      string
		kind      Kind
		upd       tele.Update
		wantToken string
		wantData  string
	}{
		{
			name:      "command with bot suffix and args",
			kind:      KindCommand,
			upd:       tele.Update{ID: 1, Message: &tele.Message{Sender: user, Chat: chat, Text: "/start@anon_relay_bot ref"}},
			wantToken: "/start",
		},
		{
			name:      "text is trimmed",
			kind:      KindText,
			upd:       tele.Update{ID: 2, Message: &tele.Message{Sender: user, Chat: chat, Text: "  @bob \n"}},
			wantToken: "@bob",
		},
		{
			name: "inline choice",
			kind: KindChoice,
			upd: tele.Update{ID: 3, Callback: &tele.Callback{
				Sender:  user,
				Message: &tele.Message{Chat: chat},
				Data:    "\fcurrency|EUR",
			}},
			wantToken: "currency",
			wantData:  "EUR",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := EventFrom(offlineContext(t, tc.upd), tc.kind)
			if ev.UserID != 7 || ev.ChatID != 70 || ev.Username != "alice" || ev.UpdateID != tc.upd.ID {
				t.Fatalf("identity = %+v", ev)
			}
			if ev.Token != tc.wantToken || ev.Data != tc.wantData {
				t.Fatalf("token/data = %q/%q, want %q/%q", ev.Token, ev.Data, tc.wantToken, tc.wantData)
			}
		})
	}
}

func TestTextHandlerUsesToken(t *testing.T) {
	var got Event
	m := newTestMachine(t, Transition[draft]{
		From: StateIdle, On: KindText, Token: "📧 Go",
		Do: func(_ context.Context, sess *Session[draft], ev Event) Step {
			got = ev
			return Stay(sess)
		},
	})
	upd := tele.Update{ID: 9, Message: &tele.Message{
		Sender: &tele.User{ID: 7},
		Chat:   &tele.Chat{ID: 70},
		Text:   "/go",
	}}
	if err := m.TextHandler("📧 Go")(offlineContext(t, upd)); err != nil {
		t.Fatal(err)
	}
	if got.Token != "📧 Go" || got.Text != "/go" || got.UserID != 7 {
		t.Fatalf("event = %+v", got)
	}
}
