package relay

import "github.com/m3rciful/twinbots/core/telegram/state"

// Conversation states.
const (
	StateWaitingRecipient    state.State = "waiting_for_recipient"
	StateWaitingTitle        state.State = "waiting_for_title"
	StateWaitingBody         state.State = "waiting_for_body"
	StateWaitingConfirmation state.State = "waiting_for_confirmation"
)

// Draft is the message being composed.
type Draft struct {
	// Recipient is the handle as the sender typed it.
	Recipient   string
	Destination int64
	Title       string
	Body        string
}

// Complete reports whether the draft can be sent.
func (d Draft) Complete() bool {
	return d.Recipient != "" && d.Destination != 0 && d.Title != "" && d.Body != ""
}
