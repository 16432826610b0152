package bot

import (
	"context"
	"errors"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	coretelegram "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/keyboard"
	"github.com/m3rciful/shopbot/core/telegram/router"
	"github.com/m3rciful/shopbot/shop/storefront"
)

const (
	msgFailure   = "Something went wrong, please try again later."
	msgSlowDown  = "Too many requests, please slow down."
	msgAdminOnly = "This command is only available to the shop operator."
)

var _ router.Conversation = (*App)(nil)

type action func(ctx context.Context, userID int64) (storefront.Response, error)

// handle adapts a storefront operation to a telebot handler.
func (a *App) handle(fn action) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		resp, err := fn(ctx, c.Sender().ID)
		return a.render(c, resp, err)
	}
}

// render delivers a storefront response. On failure the user gets a neutral
// message and the error is returned for logging.
func (a *App) render(c tele.Context, resp storefront.Response, err error) error {
	if err != nil {
		if c.Callback() != nil {
			_ = c.Respond(&tele.CallbackResponse{Text: msgFailure})
		} else {
			_ = tghelpers.SendText(c, msgFailure)
		}
		return err
	}

	if c.Callback() != nil {
		if rerr := c.Respond(&tele.CallbackResponse{Text: resp.Notice}); rerr != nil {
			logger.Debug(tghelpers.BuildContext(c), "tg", "callback.respond.fail",
				slog.String("err", logger.SanitizeLimit(rerr.Error(), 256)),
			)
		}
	}

	for _, r := range resp.Replies {
		var markup []*tele.ReplyMarkup
		if m := toMarkup(r.Keyboard); m != nil {
			markup = append(markup, m)
		}
		var sendErr error
		switch {
		case r.Edit && r.Markdown:
			sendErr = tghelpers.EditMD(c, r.Text, markup...)
		case r.Edit:
			sendErr = tghelpers.EditText(c, r.Text, markup...)
		case r.Markdown:
			sendErr = tghelpers.SendMD(c, r.Text, markup...)
		default:
			sendErr = tghelpers.SendText(c, r.Text, markup...)
		}
		if sendErr != nil {
			return sendErr
		}
	}
	return nil
}

func toMarkup(kb *storefront.Keyboard) *tele.ReplyMarkup {
	switch {
	case kb == nil:
		return nil
	case len(kb.Inline) > 0:
		rows := make([][]keyboard.InlineBtn, len(kb.Inline))
		for i, row := range kb.Inline {
			for _, b := range row {
				rows[i] = append(rows[i], keyboard.InlineBtn{Text: b.Text, Data: b.Data})
			}
		}
		return keyboard.InlineButtonsRows(rows...)
	case len(kb.Menu) > 0:
		return keyboard.ReplyButtons(kb.Menu...)
	}
	return nil
}

// Consume feeds free text into an active checkout.
func (a *App) Consume(c tele.Context) (bool, error) {
	ctx := tghelpers.BuildContext(c)
	resp, consumed, err := a.shop.SubmitText(ctx, c.Sender().ID, c.Text())
	if !consumed && err == nil {
		return false, nil
	}
	return true, a.render(c, resp, err)
}

func (a *App) onCallback(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	resp, err := a.shop.HandleCallback(ctx, c.Sender().ID, callbacks.Data(c.Callback()))
	return a.render(c, resp, err)
}

// UnknownText answers text that is neither a command nor part of a checkout.
func (a *App) UnknownText() tele.HandlerFunc { return a.handle(a.shop.Unknown) }

// UnknownDocument answers files, which the shop does not accept.
func (a *App) UnknownDocument() tele.HandlerFunc { return a.handle(a.shop.Unknown) }

// UnknownCallback answers buttons the bot no longer knows.
func (a *App) UnknownCallback() tele.HandlerFunc { return a.onCallback }

func (a *App) registry() (*coretelegram.Registry, error) {
	catalog := a.handle(func(ctx context.Context, uid int64) (storefront.Response, error) {
		return a.shop.ShowCatalog(ctx, uid, false)
	})
	reg := coretelegram.NewRegistry()
	errs := []error{
		reg.RegisterCommand("/start", coretelegram.Command{
			Handler:     a.handle(a.shop.Start),
			Description: "Start the bot",
		}),
		reg.RegisterCommand("/help", coretelegram.Command{
			Handler:     a.handle(a.shop.Help),
			Description: "Show available commands",
		}),
		reg.RegisterCommand("/catalog", coretelegram.Command{
			Handler:     catalog,
			Description: "Browse the catalog",
		}),
		reg.RegisterCommand("/cart", coretelegram.Command{
			Handler:     a.handle(a.shop.ShowCart),
			Description: "View your cart",
			Aliases:     []string{"/order"},
		}),
		reg.RegisterCommand("/cancel", coretelegram.Command{
			Handler:     a.handle(a.shop.Abort),
			Description: "Cancel the current checkout",
		}),
		reg.RegisterCommand("/stats", coretelegram.Command{
			Handler:     a.handle(a.shop.Stats),
			Description: "Shop statistics",
			AdminOnly:   true,
		}),
	}
	for _, key := range []string{
		storefront.ActionView, storefront.ActionAdd, storefront.ActionRemove,
		storefront.TokenCatalog, storefront.TokenClearCart, storefront.TokenBackToMain,
		storefront.TokenCheckout, storefront.TokenConfirm, storefront.TokenCancel,
	} {
		errs = append(errs, reg.RegisterCallback(key, a.onCallback))
	}
	reg.SetCallbackNotFound(a.UnknownCallback())
	return reg, errors.Join(errs...)
}

func onLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msgSlowDown})
	}
	return nil
}

// TelegramRunOptions assembles middleware and routes for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()
	reg, err := a.registry()
	if err != nil {
		return coretelegram.RunOptions{}, err
	}

	admin := router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, msgAdminOnly)
		},
	}
	routes := router.CommandRoutes(reg, admin)
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{
		UnknownText:     a.UnknownText(),
		UnknownDocument: a.UnknownDocument(),
		Admin:           admin,
		Aliases: map[string]tele.HandlerFunc{
			storefront.MenuCatalog: a.handle(func(ctx context.Context, uid int64) (storefront.Response, error) {
				return a.shop.ShowCatalog(ctx, uid, false)
			}),
			storefront.MenuCart: a.handle(a.shop.ShowCart),
		},
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Bot:         a.bot,
		Middlewares: coretelegram.DefaultMiddlewares(core, onLimited, a.lanes, coretelegram.LogHandlerError),
		Routes:      routes,
		OnStop: func(context.Context, coretelegram.Runtime) error {
			a.lanes.Close()
			return nil
		},
	}, nil
}
