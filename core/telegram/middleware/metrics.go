package middleware

import tele "gopkg.in/telebot.v4"

const tallyKey = "tg.tally"

// tally counts what a handler sent back for the handler summary log.
type tally struct {
	messages int
	keyboard bool
}

// countingContext counts successful sends and edits made through it.
type countingContext struct {
	tele.Context
	t *tally
}

func (c countingContext) count(err error, opts []any) error {
	if err != nil {
		return err
	}
	c.t.messages++
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			c.t.keyboard = c.t.keyboard || v != nil
		case *tele.SendOptions:
			c.t.keyboard = c.t.keyboard || (v != nil && v.ReplyMarkup != nil)
		}
	}
	return nil
}

func (c countingContext) Send(what any, opts ...any) error {
	return c.count(c.Context.Send(what, opts...), opts)
}

func (c countingContext) Reply(what any, opts ...any) error {
	return c.count(c.Context.Reply(what, opts...), opts)
}

func (c countingContext) Edit(what any, opts ...any) error {
	return c.count(c.Context.Edit(what, opts...), opts)
}

func (c countingContext) EditOrSend(what any, opts ...any) error {
	return c.count(c.Context.EditOrSend(what, opts...), opts)
}

func (c countingContext) EditOrReply(what any, opts ...any) error {
	return c.count(c.Context.EditOrReply(what, opts...), opts)
}

// MessageMetricsMiddleware counts the messages each handler sends and
// whether any of them carried a keyboard. Read the result with GetCounters.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		t := &tally{}
		c.Set(tallyKey, t)
		return next(countingContext{Context: c, t: t})
	}
}

// GetCounters returns the message count and keyboard flag for the update.
func GetCounters(c tele.Context) (messages int, keyboard bool) {
	if t, ok := c.Get(tallyKey).(*tally); ok && t != nil {
		return t.messages, t.keyboard
	}
	return 0, false
}
