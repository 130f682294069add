// Package currency implements the currency conversion bot.
package currency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/m3rciful/twinbots/bots/currency/rates"
	"github.com/m3rciful/twinbots/core/logger"
	"github.com/m3rciful/twinbots/core/telegram/keyboard"
	"github.com/m3rciful/twinbots/core/telegram/state"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Conversation states.
const (
	StateWaitingAmount state.State = "waiting_for_amount"
	StateWaitingTarget state.State = "waiting_for_target"
)

// ChoiceCurrency is the unique key of currency picker buttons.
const ChoiceCurrency = "currency"

// Draft is a conversion in progress.
type Draft struct {
	Base   string
	Amount float64
	Target string
}

// RateSource converts between currency codes.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (float64, error)
	Supports(code string) bool
}

// Deps are the collaborators of the currency conversation.
type Deps struct {
	Store      state.Store[Draft]
	Rates      RateSource
	Currencies []string
}

// Service runs the currency conversation.
type Service struct {
	deps    Deps
	known   map[string]bool
	printer *message.Printer
	machine *state.Machine[Draft]
}

// NewService builds the currency state machine.
func NewService(deps Deps) (*Service, error) {
	if deps.Store == nil || deps.Rates == nil {
		return nil, fmt.Errorf("currency: store and rates are required")
	}
	if len(deps.Currencies) == 0 {
		deps.Currencies = rates.DefaultCurrencies
	}
	s := &Service{
		deps:    deps,
		known:   make(map[string]bool, len(deps.Currencies)),
		printer: message.NewPrinter(language.English),
	}
	for _, c := range deps.Currencies {
		if !deps.Rates.Supports(c) {
			return nil, fmt.Errorf("currency: %s is not supported by the rate source", c)
		}
		s.known[c] = true
	}

	type tr = state.Transition[Draft]
	m, err := state.NewMachine(state.MachineOptions[Draft]{
		Name:     "currency",
		Store:    deps.Store,
		Fallback: hint,
	},
		tr{From: state.StateAny, On: state.KindCommand, Token: "/start", Do: s.start},
		tr{From: state.StateAny, On: state.KindCommand, Token: "/help", Do: s.help},
		tr{From: state.StateIdle, On: state.KindChoice, Token: ChoiceCurrency, Do: s.chooseBase},
		tr{From: StateWaitingAmount, On: state.KindChoice, Token: ChoiceCurrency, Do: s.chooseBase},
		tr{From: StateWaitingAmount, On: state.KindText, Do: s.amount},
		tr{From: StateWaitingTarget, On: state.KindChoice, Token: ChoiceCurrency, Do: s.chooseTarget},
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

// picker lays out currency buttons two per row, skipping exclude.
func (s *Service) picker(exclude string) *state.Keyboard {
	buttons := make([]keyboard.Button, 0, len(s.deps.Currencies))
	for _, c := range s.deps.Currencies {
		if c != exclude {
			buttons = append(buttons, keyboard.Button{Text: c, Unique: ChoiceCurrency, Data: c})
		}
	}
	return state.InlineKeyboard(buttons, 2)
}

func hint(_ context.Context, sess *state.Session[Draft], _ state.Event) state.Step {
	return state.Stay(sess, state.Text(msgHint))
}

func (s *Service) start(_ context.Context, _ *state.Session[Draft], _ state.Event) state.Step {
	return state.Step{Next: state.StateIdle, Replies: []state.Reply{{Text: msgStart, Keyboard: s.picker("")}}}
}

func (s *Service) help(_ context.Context, sess *state.Session[Draft], _ state.Event) state.Step {
	return state.Stay(sess, state.Text(fmt.Sprintf(msgHelp, strings.Join(s.deps.Currencies, ", "))))
}

func (s *Service) chooseBase(_ context.Context, sess *state.Session[Draft], ev state.Event) state.Step {
	code := strings.ToUpper(ev.Data)
	if !s.known[code] {
		return state.Stay(sess, state.Text(msgHint))
	}
	sess.Draft = Draft{Base: code}
	return state.Step{Next: StateWaitingAmount, Replies: []state.Reply{{Text: fmt.Sprintf(msgAskAmount, code), Edit: true}}}
}

func (s *Service) amount(_ context.Context, sess *state.Session[Draft], ev state.Event) state.Step {
	v, ok := ParseAmount(ev.Text)
	if !ok {
		return state.Stay(sess, state.Text(msgBadAmount))
	}
	sess.Draft.Amount = v
	text := fmt.Sprintf(msgAskTarget, s.format(v, 2), sess.Draft.Base)
	return state.Step{Next: StateWaitingTarget, Replies: []state.Reply{{Text: text, Keyboard: s.picker(sess.Draft.Base)}}}
}

func (s *Service) chooseTarget(ctx context.Context, sess *state.Session[Draft], ev state.Event) state.Step {
	d := sess.Draft
	d.Target = strings.ToUpper(ev.Data)
	if !s.known[d.Target] {
		return state.Stay(sess, state.Text(msgHint))
	}

	rate, err := s.deps.Rates.Rate(ctx, d.Base, d.Target)
	if err != nil {
		attrs := []slog.Attr{
			slog.String("status", "fail"),
			slog.String("base", d.Base),
			slog.String("target", d.Target),
			slog.String("err", err.Error()),
		}
		if errors.Is(err, rates.ErrUnsupportedCurrency) {
			attrs = append(attrs, slog.String("reason", "unsupported"))
		}
		logger.Error(ctx, "currency", "convert", attrs...)
		return state.Step{Next: state.StateIdle, Replies: []state.Reply{{Text: msgFailed, Edit: true}}}
	}

	result := d.Amount * rate
	logger.Info(ctx, "currency", "convert",
		slog.String("status", "ok"),
		slog.String("base", d.Base),
		slog.String("target", d.Target),
	)
	text := fmt.Sprintf(msgResult,
		s.format(d.Amount, 2), d.Base, s.format(result, 2), d.Target,
		d.Base, s.format(rate, 4), d.Target,
	)
	return state.Step{Next: state.StateIdle, Replies: []state.Reply{{Text: text, Edit: true}}}
}

// format renders v with thousands separators, e.g. 1,234.50.
func (s *Service) format(v float64, decimals int) string {
	if decimals == 4 {
		return s.printer.Sprintf("%.4f", v)
	}
	return s.printer.Sprintf("%.2f", v)
}

// ParseAmount accepts "10.5" or "10,5" and rejects non-finite and non-positive values.
func ParseAmount(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}
