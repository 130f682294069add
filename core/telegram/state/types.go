package state

import (
	"time"

	"github.com/m3rciful/twinbots/core/telegram/keyboard"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
	// StateAny matches every state in a transition table.
	StateAny State = "*"
)

// Session stores conversation state and the typed draft for a user.
type Session[D any] struct {
	State     State
	Draft     D
	UpdatedAt time.Time
}

// Kind is the shape of an inbound event.
type Kind string

const (
	KindCommand Kind = "command"
	KindText    Kind = "text"
	KindChoice  Kind = "choice"
)

// Event is a transport-neutral inbound update.
type Event struct {
	Kind      Kind
	UpdateID  int
	UserID    int64
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	// Text is the raw message text (empty for choices).
	Text string
	// Token selects transitions: the command for commands, the trimmed text
	// for text, the button unique key for choices.
	Token string
	// Data carries the choice payload.
	Data string
	At   time.Time
}

// Keyboard describes an outbound choice set.
type Keyboard struct {
	// Inline keyboards attach to the message and produce choice events;
	// reply keyboards replace the input field and produce text events.
	Inline bool
	Rows   [][]keyboard.Button
}

// Reply is one outbound message.
type Reply struct {
	Text     string
	Keyboard *Keyboard
	// Edit replaces the message carrying the pressed inline button instead of sending a new one.
	Edit bool
}

// Text builds a plain reply.
func Text(text string) Reply {
	return Reply{Text: text}
}

// ReplyKeyboard builds a reply keyboard from rows of labels.
func ReplyKeyboard(rows ...[]string) *Keyboard {
	kb := &Keyboard{Rows: make([][]keyboard.Button, 0, len(rows))}
	for _, row := range rows {
		btns := make([]keyboard.Button, 0, len(row))
		for _, label := range row {
			btns = append(btns, keyboard.Button{Text: label})
		}
		kb.Rows = append(kb.Rows, btns)
	}
	return kb
}

// InlineKeyboard lays buttons out with at most perRow buttons per row.
func InlineKeyboard(buttons []keyboard.Button, perRow int) *Keyboard {
	return &Keyboard{Inline: true, Rows: keyboard.Chunk(buttons, perRow)}
}
