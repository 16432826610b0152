package telegram

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// messenger is the subset of *tele.Bot used by Notifier.
type messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier pushes plain-text messages to arbitrary chats, retrying transient
// network failures through a sender.Sender.
type Notifier struct {
	bot    messenger
	sender *sender.Sender
}

// NewNotifier wraps bot. A nil sender gets default retry options.
func NewNotifier(bot *tele.Bot, s *sender.Sender) *Notifier {
	if s == nil {
		s = sender.New(sender.Options{MaxRetries: 2})
	}
	return &Notifier{bot: bot, sender: s}
}

// Notify sends text to the chat identified by recipient.
func (n *Notifier) Notify(ctx context.Context, recipient int64, text string) error {
	err := n.sender.Do(ctx, "notify", "sendMessage", func() error {
		_, err := n.bot.Send(tele.ChatID(recipient), text, &tele.SendOptions{DisableWebPagePreview: true})
		return err
	})
	if err == nil {
		logger.Debug(ctx, "tg.sender", "notify.sent", slog.String("recipient", strconv.FormatInt(recipient, 10)))
	}
	return err
}
