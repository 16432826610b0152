package router

import (
	"strings"

	tg "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Conversation receives free text while a multi-step dialogue is active.
// Consume reports whether the text belonged to the dialogue.
type Conversation interface {
	Consume(c tele.Context) (bool, error)
}

// TextOptions controls fallback behaviour for text/document updates.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
	// Aliases maps exact message texts (reply keyboard labels) to handlers.
	// They apply only when no dialogue takes the text.
	Aliases map[string]tele.HandlerFunc
	// Admin gates AdminOnly commands reached through plain text, the same
	// way CommandRoutes gates their endpoints.
	Admin CommandRouteOptions
}

// commandName extracts "/cmd" from "/cmd@bot args".
func commandName(text string) string {
	name, _, _ := strings.Cut(text, " ")
	name, _, _ = strings.Cut(name, "@")
	return name
}

// TextRoutes builds handlers for text and document routing. Commands win
// over the conversation so a user can always escape a dialogue; aliases come
// after it so a dialogue step accepts any text.
func TextRoutes(conv Conversation, reg *tg.Registry, opts TextOptions) []tg.Route {
	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.Admin.AdminID,
		OnReject: opts.Admin.OnAdminReject,
	})

	onText := func(c tele.Context) error {
		text := strings.TrimSpace(c.Text())

		if reg != nil && strings.HasPrefix(text, "/") {
			if name, cmd, ok := reg.LookupCommand(commandName(text)); ok {
				h := cmd.Handler
				if cmd.AdminOnly {
					h = adminOnly(h)
				}
				return begin(c, name).run(h)
			}
		}
		if conv != nil {
			s := begin(c, "conversation")
			consumed, err := conv.Consume(c)
			if err != nil || consumed {
				s.log(err, "")
				return err
			}
		}
		if h := opts.Aliases[text]; h != nil {
			return begin(c, "alias."+text).run(h)
		}
		s := begin(c, "unknown_text")
		if opts.UnknownText == nil {
			s.skip()
			return nil
		}
		return s.run(opts.UnknownText)
	}

	onDocument := func(c tele.Context) error {
		s := begin(c, "unexpected_document")
		if opts.UnknownDocument == nil {
			s.skip()
			return nil
		}
		return s.run(opts.UnknownDocument)
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: onText},
		{Endpoint: tele.OnDocument, Handler: onDocument},
	}
}
