package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ErrRecipientBlocked means the recipient blocked the bot.
var ErrRecipientBlocked = errors.New("relay: recipient blocked the bot")

// Sender delivers plain text to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// IsBlocked reports whether err means the recipient blocked the bot.
func IsBlocked(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRecipientBlocked) || errors.Is(err, tele.ErrBlockedByUser) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "blocked by user")
}

// BotSender sends through a telebot bot.
type BotSender struct {
	bot *tele.Bot
}

// NewBotSender wraps bot.
func NewBotSender(bot *tele.Bot) *BotSender {
	return &BotSender{bot: bot}
}

// SendText implements Sender. A blocked recipient yields ErrRecipientBlocked.
func (s *BotSender) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.bot.Send(tele.ChatID(chatID), text); err != nil {
		if IsBlocked(err) {
			return fmt.Errorf("%w: %v", ErrRecipientBlocked, err)
		}
		return err
	}
	return nil
}
