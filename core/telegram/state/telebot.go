package state

import (
	"strings"
	"time"

	"github.com/m3rciful/twinbots/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/twinbots/core/telegram/helpers"
	"github.com/m3rciful/twinbots/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// EventFrom converts a telebot update into an Event of the given kind.
func EventFrom(c tele.Context, kind Kind) Event {
	ev := Event{Kind: kind, UpdateID: c.Update().ID, At: time.Now()}
	if u := c.Sender(); u != nil {
		ev.UserID = u.ID
		ev.Username = u.Username
		ev.FirstName = u.FirstName
		ev.LastName = u.LastName
	}
	if ch := c.Chat(); ch != nil {
		ev.ChatID = ch.ID
	}
	switch kind {
	case KindChoice:
		ev.Token = callbacks.CallbackKey(c)
		ev.Data = callbacks.CallbackPayload(c)
	case KindCommand:
		ev.Text = c.Text()
		ev.Token = commandToken(ev.Text)
	default:
		ev.Text = c.Text()
		ev.Token = strings.TrimSpace(ev.Text)
	}
	return ev
}

// commandToken extracts "/start" from "/start@bot payload".
func commandToken(text string) string {
	cmd, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}

// Markup converts a Keyboard into telebot reply markup.
func (k *Keyboard) Markup() *tele.ReplyMarkup {
	if k == nil {
		return nil
	}
	if k.Inline {
		return keyboard.Inline(k.Rows...)
	}
	return keyboard.Reply(k.Rows...)
}

// Render sends replies in order as one outbound job.
func Render(c tele.Context, replies []Reply) error {
	if len(replies) == 0 {
		return nil
	}
	return tghelpers.Run(c, "send.replies", "sendMessage", func() error {
		for _, r := range replies {
			opts := &tele.SendOptions{ReplyMarkup: r.Keyboard.Markup()}
			var err error
			if r.Edit && c.Callback() != nil {
				err = c.Edit(r.Text, opts)
			} else {
				err = c.Send(r.Text, opts)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Handler adapts the machine to a telebot handler for events of the given kind.
func (m *Machine[D]) Handler(kind Kind) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return nil
		}
		return m.render(c, EventFrom(c, kind))
	}
}

// TextHandler feeds the update to the machine as text matching token, so a
// slash command and its reply keyboard label take the same transition.
func (m *Machine[D]) TextHandler(token string) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return nil
		}
		ev := EventFrom(c, KindText)
		ev.Token = token
		return m.render(c, ev)
	}
}

func (m *Machine[D]) render(c tele.Context, ev Event) error {
	return Render(c, m.Dispatch(tghelpers.BuildContext(c), ev))
}

// ManagerHandler routes text to the machine; it satisfies router.FSM.
func (m *Machine[D]) ManagerHandler(c tele.Context) error {
	return m.Handler(KindText)(c)
}
