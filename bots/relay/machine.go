package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/twinbots/core/logger"
	"github.com/m3rciful/twinbots/core/telegram/state"

	"github.com/google/uuid"
)

// Deps are the collaborators of the relay conversation.
type Deps struct {
	Directory *Directory
	Store     state.Store[Draft]
	Sender    Sender
	// Admins receive a notice for every delivered message.
	Admins []int64
	// BotHandle is the bot username without "@".
	BotHandle string
	Now       func() time.Time
	NewID     func() string
}

// Service runs the relay conversation.
type Service struct {
	deps    Deps
	machine *state.Machine[Draft]
}

// NewService builds the relay state machine.
func NewService(deps Deps) (*Service, error) {
	if deps.Directory == nil || deps.Store == nil || deps.Sender == nil {
		return nil, fmt.Errorf("relay: directory, store and sender are required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}

	s := &Service{deps: deps}
	type tr = state.Transition[Draft]
	m, err := state.NewMachine(state.MachineOptions[Draft]{
		Name:  "relay",
		Store: deps.Store,
		Now:   deps.Now,
	},
		tr{From: state.StateAny, On: state.KindCommand, Token: "/start", Do: s.start},

		tr{From: state.StateIdle, On: state.KindText, Token: BtnSendMessage, Do: s.askRecipient},
		tr{From: state.StateIdle, On: state.KindText, Token: BtnPremium, Do: info(msgPremium)},
		tr{From: state.StateIdle, On: state.KindText, Token: BtnModerator, Do: info(msgModerator)},
		tr{From: state.StateIdle, On: state.KindText, Token: BtnRules, Do: info(msgRules)},
		tr{From: state.StateIdle, On: state.KindText, Do: info(msgIdleHint)},

		tr{From: StateWaitingRecipient, On: state.KindText, Token: BtnCancelInput, Do: s.cancelInput},
		tr{From: StateWaitingTitle, On: state.KindText, Token: BtnCancelInput, Do: s.cancelInput},
		tr{From: StateWaitingBody, On: state.KindText, Token: BtnCancelInput, Do: s.cancelInput},

		tr{From: StateWaitingRecipient, On: state.KindText, Do: s.recipient},
		tr{From: StateWaitingTitle, On: state.KindText, Do: s.title},
		tr{From: StateWaitingBody, On: state.KindText, Do: s.body},

		tr{From: StateWaitingConfirmation, On: state.KindText, Token: BtnSend, Do: s.send},
		tr{From: StateWaitingConfirmation, On: state.KindText, Token: BtnCancel, Do: s.cancelSend},
		tr{From: StateWaitingConfirmation, On: state.KindText, Do: ignore},
	)
	if err != nil {
		return nil, err
	}
	s.machine = m
	return s, nil
}

// Machine exposes the underlying state machine for routing.
func (s *Service) Machine() *state.Machine[Draft] {
	return s.machine
}

// Stats reports registered users and active conversations.
func (s *Service) Stats() (users, sessions int) {
	return s.deps.Directory.Len(), s.machine.Sessions()
}

func mainMenu() *state.Keyboard {
	return state.ReplyKeyboard(
		[]string{BtnSendMessage},
		[]string{BtnPremium},
		[]string{BtnModerator},
		[]string{BtnRules},
	)
}

func cancelInputKeyboard() *state.Keyboard {
	return state.ReplyKeyboard([]string{BtnCancelInput})
}

func withKeyboard(text string, kb *state.Keyboard) state.Reply {
	return state.Reply{Text: text, Keyboard: kb}
}

func info(text string) state.Action[Draft] {
	return func(_ context.Context, sess *state.Session[Draft], _ state.Event) state.Step {
		return state.Stay(sess, state.Text(text))
	}
}

func ignore(_ context.Context, sess *state.Session[Draft], _ state.Event) state.Step {
	return state.Stay(sess)
}

func (s *Service) start(ctx context.Context, _ *state.Session[Draft], ev state.Event) state.Step {
	s.deps.Directory.Register(User{
		ChatID:    ev.ChatID,
		UserID:    ev.UserID,
		Handle:    ev.Username,
		FirstName: ev.FirstName,
		LastName:  ev.LastName,
		LastSeen:  s.deps.Now(),
	})
	logger.Info(ctx, "relay", "user.registered",
		slog.Bool("has_handle", ev.Username != ""),
		slog.Int("users", s.deps.Directory.Len()),
	)
	return state.Step{Next: state.StateIdle, Replies: []state.Reply{withKeyboard(msgWelcome, mainMenu())}}
}

func (s *Service) askRecipient(_ context.Context, sess *state.Session[Draft], _ state.Event) state.Step {
	sess.Draft = Draft{}
	return state.Step{Next: StateWaitingRecipient, Replies: []state.Reply{withKeyboard(msgAskRecipient, cancelInputKeyboard())}}
}

func (s *Service) cancelInput(_ context.Context, _ *state.Session[Draft], _ state.Event) state.Step {
	return state.Step{Next: state.StateIdle, Replies: []state.Reply{withKeyboard(msgCancelled, mainMenu())}}
}

func (s *Service) recipient(ctx context.Context, sess *state.Session[Draft], ev state.Event) state.Step {
	handle := strings.TrimSpace(ev.Text)
	if !strings.HasPrefix(handle, "@") {
		return state.Stay(sess, withKeyboard(msgBadRecipient, cancelInputKeyboard()))
	}

	u, ok := s.deps.Directory.Lookup(handle)
	if !ok {
		logger.Info(ctx, "relay", "recipient.lookup", slog.String("outcome", "ignored"), slog.String("reason", "not_found"))
		return state.Stay(sess,
			withKeyboard(fmt.Sprintf(msgNotFound, handle, s.deps.BotHandle), cancelInputKeyboard()),
			state.Text(fmt.Sprintf(msgInvite, s.deps.BotHandle)),
		)
	}

	sess.Draft.Recipient = handle
	sess.Draft.Destination = u.ChatID
	return state.Step{Next: StateWaitingTitle, Replies: []state.Reply{withKeyboard(msgAskTitle, cancelInputKeyboard())}}
}

func (s *Service) title(_ context.Context, sess *state.Session[Draft], ev state.Event) state.Step {
	if strings.TrimSpace(ev.Text) == "" {
		return state.Stay(sess, withKeyboard(msgEmptyInput, cancelInputKeyboard()))
	}
	sess.Draft.Title = ev.Text
	return state.Step{Next: StateWaitingBody, Replies: []state.Reply{withKeyboard(msgAskBody, cancelInputKeyboard())}}
}

func (s *Service) body(ctx context.Context, sess *state.Session[Draft], ev state.Event) state.Step {
	if strings.TrimSpace(ev.Text) == "" {
		return state.Stay(sess, withKeyboard(msgEmptyInput, cancelInputKeyboard()))
	}
	sess.Draft.Body = ev.Text
	if !sess.Draft.Complete() {
		logger.Warn(ctx, "relay", "draft.incomplete", slog.String("status", "fail"))
		return state.Step{Next: state.StateIdle, Replies: []state.Reply{withKeyboard(msgDraftBroken, mainMenu())}}
	}

	d := sess.Draft
	preview := fmt.Sprintf(msgPreview, d.Recipient, d.Title, d.Body)
	confirm := state.ReplyKeyboard([]string{BtnSend, BtnCancel})
	return state.Step{Next: StateWaitingConfirmation, Replies: []state.Reply{withKeyboard(preview, confirm)}}
}

func (s *Service) cancelSend(_ context.Context, _ *state.Session[Draft], _ state.Event) state.Step {
	return state.Step{Next: state.StateIdle, Replies: []state.Reply{withKeyboard(msgSendCancelled, mainMenu())}}
}

func (s *Service) send(ctx context.Context, sess *state.Session[Draft], ev state.Event) state.Step {
	d := sess.Draft
	if !d.Complete() {
		return state.Step{Next: state.StateIdle, Replies: []state.Reply{withKeyboard(msgDraftBroken, mainMenu())}}
	}

	text := fmt.Sprintf(msgIncoming, d.Title, d.Body, s.deps.Now().Format(dateLayout), s.deps.BotHandle)
	start := time.Now()
	if err := s.deps.Sender.SendText(ctx, d.Destination, text); err != nil {
		attrs := []slog.Attr{
			slog.String("status", "fail"),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
			slog.String("err", logger.Clean(err.Error(), 256)),
		}
		if IsBlocked(err) {
			logger.Warn(ctx, "relay", "delivery", append(attrs, slog.String("reason", "blocked"))...)
			return state.Step{Next: state.StateIdle, Replies: []state.Reply{withKeyboard(msgBlocked, mainMenu())}}
		}
		logger.Error(ctx, "relay", "delivery", attrs...)
		return state.Step{Next: state.StateIdle, Replies: []state.Reply{withKeyboard(fmt.Sprintf(msgDeliveryFailed, err.Error()), mainMenu())}}
	}

	ref := s.deps.NewID()
	logger.Info(ctx, "relay", "delivery",
		slog.String("status", "ok"),
		slog.String("delivery_id", ref),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	s.notifyAdmins(ctx, fmt.Sprintf(msgAdminNotice, ev.UserID, d.Recipient, d.Title, ref))
	return state.Step{Next: state.StateIdle, Replies: []state.Reply{withKeyboard(msgDelivered, mainMenu())}}
}

// notifyAdmins is best effort: one failed admin does not stop the others.
func (s *Service) notifyAdmins(ctx context.Context, text string) {
	for _, id := range s.deps.Admins {
		if err := s.deps.Sender.SendText(ctx, id, text); err != nil {
			logger.Warn(ctx, "relay", "admin.notify",
				slog.String("status", "fail"),
				slog.Int64("admin_id", id),
				slog.String("err", logger.Clean(err.Error(), 256)),
			)
		}
	}
}
