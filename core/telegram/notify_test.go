package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/telegram/sender"
)

type fakeMessenger struct {
	to   []string
	text []string
	err  error
}

func (f *fakeMessenger) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.to = append(f.to, to.Recipient())
	f.text = append(f.text, what.(string))
	return &tele.Message{}, f.err
}

func TestNotifierSendsToChat(t *testing.T) {
	m := &fakeMessenger{}
	n := &Notifier{bot: m, sender: sender.New(sender.Options{RetryBackoff: time.Millisecond})}

	require.NoError(t, n.Notify(context.Background(), -100123, "New order"))
	assert.Equal(t, []string{"-100123"}, m.to)
	assert.Equal(t, []string{"New order"}, m.text)
}

func TestNotifierReturnsSendError(t *testing.T) {
	boom := errors.New("chat not found")
	m := &fakeMessenger{err: boom}
	n := &Notifier{bot: m, sender: sender.New(sender.Options{RetryBackoff: time.Millisecond})}
	assert.ErrorIs(t, n.Notify(context.Background(), 1, "x"), boom)
}
