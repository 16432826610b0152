// Package bot binds the storefront to Telegram and wires the application
// together from configuration.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/bootstrap"
	corecmd "github.com/m3rciful/shopbot/core/cmd"
	"github.com/m3rciful/shopbot/core/httpserver"
	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/serial"
	coretelegram "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/shop/api"
	"github.com/m3rciful/shopbot/shop/cart"
	"github.com/m3rciful/shopbot/shop/catalog"
	"github.com/m3rciful/shopbot/shop/checkout"
	"github.com/m3rciful/shopbot/shop/config"
	"github.com/m3rciful/shopbot/shop/order"
	"github.com/m3rciful/shopbot/shop/storefront"
)

// Stores groups the persistence dependencies of the shop.
type Stores struct {
	Catalog  catalog.Store
	Carts    cart.Store
	Sessions checkout.Store
	// Seed receives sample products when seeding is enabled; nil skips seeding.
	Seed catalog.Writer
}

// App is a fully wired shop bot.
type App struct {
	cfg *config.Config

	bot      *tele.Bot
	lanes    *serial.Lanes
	products catalog.Store
	orders   *order.Dispatcher
	shop     *storefront.Storefront
	http     *httpserver.Server

	closers []func() error
}

var (
	_ corecmd.TelegramApp    = (*App)(nil)
	_ corecmd.ServiceCarrier = (*App)(nil)
	_ corecmd.Closer         = (*App)(nil)
)

// New opens storage, sessions and sinks described by cfg and builds the bot.
func New(cfg *config.Config) (app *App, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}

	var closers []func() error
	defer func() {
		if err != nil {
			runClosers(closers)
		}
	}()

	infra, err := bootstrap.Run(bootstrap.Options{
		Config:       cfg.CoreConfig(),
		Backend:      cfg.Storage.Backend,
		Database:     cfg.Database,
		SQLitePath:   cfg.Storage.SQLitePath,
		SQLiteModels: []any{&catalog.Product{}, &cart.Line{}},
	})
	if err != nil {
		return nil, err
	}
	closers = append(closers, infra.Close)

	stores := storesFor(infra)

	if cfg.Redis.Addr != "" {
		rdb := rd.NewClient(&rd.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB, Password: cfg.Redis.Password})
		closers = append(closers, rdb.Close)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("bot: redis ping: %w", err)
		}
		stores.Sessions = checkout.NewRedis(rdb, cfg.Redis.SessionTTL)
		logger.SVCCheckout.Info("sessions in redis",
			slog.String("event", "sessions.ready"),
			slog.String("addr", cfg.Redis.Addr),
		)
	}

	if cfg.Storage.Seed {
		seed := stores.Seed
		err := bootstrap.RunSeeders(context.Background(), bootstrap.SeederFunc(func(ctx context.Context) error {
			_, err := catalog.Seed(ctx, seed, catalog.SampleProducts())
			return err
		}))
		if err != nil {
			return nil, err
		}
	}

	b, err := coretelegram.NewBot(cfg.CoreConfig())
	if err != nil {
		return nil, err
	}

	sinks := order.MultiSink{order.ChatSink{
		Notifier:   coretelegram.NewNotifier(b, nil),
		OperatorID: cfg.Telegram.AdminID,
		Currency:   cfg.Shop.Currency,
	}}
	if len(cfg.Kafka.Brokers) > 0 {
		ks := order.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		closers = append(closers, ks.Close)
		sinks = append(sinks, ks)
	}
	if cfg.Postmark.ServerToken != "" {
		sinks = append(sinks, order.NewEmailSink(cfg.Postmark.ServerToken, cfg.Postmark.From, cfg.Postmark.To, cfg.Shop.Currency))
	}

	app = Assemble(cfg, b, stores, sinks)
	app.closers = closers
	return app, nil
}

// Assemble builds an App from ready dependencies. b may be nil in tests.
func Assemble(cfg *config.Config, b *tele.Bot, stores Stores, sink order.Sink) *App {
	if stores.Sessions == nil {
		stores.Sessions = checkout.NewMemory()
	}
	carts := cart.NewService(stores.Carts, stores.Catalog)
	orders := order.NewDispatcher(stores.Sessions, carts, sink)

	app := &App{
		cfg:      cfg,
		bot:      b,
		lanes:    serial.NewLanes(context.Background()),
		products: stores.Catalog,
		orders:   orders,
		shop: storefront.New(stores.Catalog, carts, stores.Sessions, orders, storefront.Options{
			Currency: cfg.Shop.Currency,
		}),
	}
	if cfg.HTTP.Addr != "" {
		app.http = httpserver.New(cfg.HTTP.Addr, func(r *gin.Engine) {
			api.Register(r, app.products, app.orders)
		})
	}
	return app
}

func storesFor(infra *bootstrap.Result) Stores {
	switch {
	case infra.DB != nil:
		products := catalog.NewPostgres(infra.DB)
		return Stores{Catalog: products, Carts: cart.NewPostgres(infra.DB), Seed: products}
	case infra.Gorm != nil:
		products := catalog.NewSQLite(infra.Gorm)
		return Stores{Catalog: products, Carts: cart.NewSQLite(infra.Gorm), Seed: products}
	}
	products := catalog.NewMemory()
	return Stores{Catalog: products, Carts: cart.NewMemory(), Seed: products}
}

// BackgroundServices returns the ops HTTP server when configured.
func (a *App) BackgroundServices() []corecmd.BackgroundService {
	if a.http == nil {
		return nil
	}
	return []corecmd.BackgroundService{a.http.Run}
}

// Close drains queued updates and releases storage, sessions and sinks.
func (a *App) Close() error {
	a.lanes.Close()
	return runClosers(a.closers)
}

func runClosers(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	return errors.Join(errs...)
}
