package helpers

import (
	tele "gopkg.in/telebot.v4"
)

func options(mode tele.ParseMode, markup []*tele.ReplyMarkup) *tele.SendOptions {
	opts := &tele.SendOptions{ParseMode: mode}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return opts
}

// SendText sends raw text (no parse mode) to the current recipient with optional markup.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.Send(text, options(tele.ModeDefault, markup))
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.Send(text, options(tele.ModeMarkdown, markup))
}

// EditText edits the message the callback came from, or sends a new message
// when there is nothing to edit.
func EditText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.EditOrSend(text, options(tele.ModeDefault, markup))
}

// EditMD is EditText with Markdown parse mode.
func EditMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.EditOrSend(text, options(tele.ModeMarkdown, markup))
}
