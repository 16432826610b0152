package bot

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	"github.com/m3rciful/shopbot/shop/cart"
	"github.com/m3rciful/shopbot/shop/catalog"
	"github.com/m3rciful/shopbot/shop/checkout"
	"github.com/m3rciful/shopbot/shop/config"
	"github.com/m3rciful/shopbot/shop/order"
	"github.com/m3rciful/shopbot/shop/storefront"
)

type sent struct {
	text   string
	edit   bool
	markup *tele.ReplyMarkup
	mode   tele.ParseMode
}

type fakeContext struct {
	tele.Context
	userID   int64
	text     string
	callback *tele.Callback
	store    map[string]any

	sent    []sent
	notices []string
	sendErr error
}

func newFake(uid int64) *fakeContext {
	return &fakeContext{userID: uid, store: map[string]any{}}
}

func (f *fakeContext) Text() string             { return f.text }
func (f *fakeContext) Callback() *tele.Callback { return f.callback }
func (f *fakeContext) Sender() *tele.User       { return &tele.User{ID: f.userID} }
func (f *fakeContext) Chat() *tele.Chat         { return &tele.Chat{ID: f.userID, Type: tele.ChatPrivate} }
func (f *fakeContext) Update() tele.Update      { return tele.Update{ID: 1} }
func (f *fakeContext) Get(key string) any       { return f.store[key] }
func (f *fakeContext) Set(key string, v any)    { f.store[key] = v }

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) > 0 {
		f.notices = append(f.notices, resp[0].Text)
	}
	return nil
}

func (f *fakeContext) record(what interface{}, edit bool, opts []interface{}) error {
	s := sent{text: what.(string), edit: edit}
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			s.markup = so.ReplyMarkup
			s.mode = so.ParseMode
		}
	}
	f.sent = append(f.sent, s)
	return f.sendErr
}

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	return f.record(what, false, opts)
}

func (f *fakeContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return f.record(what, f.callback != nil, opts)
}

func (f *fakeContext) last(t *testing.T) sent {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type recordingSink struct {
	mu     sync.Mutex
	orders []order.Order
}

func (s *recordingSink) Deliver(_ context.Context, o order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o)
	return nil
}

type testBot struct {
	app    *App
	sink   *recordingSink
	routes map[any]tele.HandlerFunc
}

func newTestBot(t *testing.T, sessions checkout.Store) testBot {
	t.Helper()
	cfg := &config.Config{
		Config: coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t", AdminID: 99}},
		Shop:   config.ShopConfig{Currency: "UAH"},
	}
	sink := &recordingSink{}
	app := Assemble(cfg, nil, Stores{
		Catalog: catalog.NewMemory(
			catalog.Product{Name: "Shirt", Description: "Cotton", Price: decimal.NewFromInt(450)},
			catalog.Product{Name: "Jeans", Description: "Denim", Price: decimal.NewFromInt(1200)},
		),
		Carts:    cart.NewMemory(),
		Sessions: sessions,
	}, sink)
	t.Cleanup(func() { _ = app.Close() })

	opts, err := app.TelegramRunOptions()
	require.NoError(t, err)
	routes := make(map[any]tele.HandlerFunc, len(opts.Routes))
	for _, r := range opts.Routes {
		routes[r.Endpoint] = r.Handler
	}
	return testBot{app: app, sink: sink, routes: routes}
}

func (b testBot) press(t *testing.T, uid int64, data string) *fakeContext {
	t.Helper()
	c := newFake(uid)
	c.callback = &tele.Callback{Data: data}
	require.NoError(t, b.routes[tele.OnCallback](c))
	return c
}

func (b testBot) say(t *testing.T, uid int64, text string) *fakeContext {
	t.Helper()
	c := newFake(uid)
	c.text = text
	h, ok := b.routes[text]
	if !ok {
		h = b.routes[tele.OnText]
	}
	require.NoError(t, h(c))
	return c
}

func TestCheckoutThroughTelegramHandlers(t *testing.T) {
	b := newTestBot(t, nil)

	start := b.say(t, 1, "/start")
	require.NotNil(t, start.last(t).markup)
	assert.Len(t, start.last(t).markup.ReplyKeyboard, 2)

	assert.Equal(t, []string{"Added to cart!"}, b.press(t, 1, "add_1").notices)
	b.press(t, 1, "add_2")

	cartView := b.say(t, 1, storefront.MenuCart)
	kb := cartView.last(t).markup
	require.NotNil(t, kb)
	assert.Equal(t, "remove_1", kb.InlineKeyboard[0][0].Data)

	ask := b.press(t, 1, "checkout")
	assert.Equal(t, "Please enter your name:", ask.last(t).text)
	assert.Equal(t, []string{""}, ask.notices)

	b.say(t, 1, "Ann")
	b.say(t, 1, "+380")
	review := b.say(t, 1, "Main St 1")
	assert.Contains(t, review.last(t).text, "Total: 1650.00 UAH")
	assert.Equal(t, "confirm_order", review.last(t).markup.InlineKeyboard[0][0].Data)

	done := b.press(t, 1, "confirm_order")
	assert.True(t, done.last(t).edit)
	assert.Contains(t, done.last(t).text, "Thank you for your order")

	require.Len(t, b.sink.orders, 1)
	assert.Equal(t, "Ann", b.sink.orders[0].Name)
	assert.Equal(t, "1650", b.sink.orders[0].Total.String())

	stale := b.press(t, 1, "confirm_order")
	assert.Equal(t, []string{"Nothing to do"}, stale.notices)
	assert.Len(t, b.sink.orders, 1)
}

func TestOrderCommandShowsCart(t *testing.T) {
	b := newTestBot(t, nil)
	c := b.say(t, 3, "/order")
	assert.Equal(t, "Your cart is empty", c.last(t).text)
}

func TestCancelCommandEscapesCheckout(t *testing.T) {
	b := newTestBot(t, nil)
	b.press(t, 4, "add_1")
	b.press(t, 4, "checkout")
	c := b.say(t, 4, "/cancel")
	assert.Contains(t, c.last(t).text, "Checkout cancelled")
}

func TestUnknownCallbackAndText(t *testing.T) {
	b := newTestBot(t, nil)
	assert.Equal(t, []string{"Unsupported action"}, b.press(t, 1, "teleport_1").notices)

	c := b.say(t, 1, "hello there")
	assert.Contains(t, c.last(t).text, "did not understand")
}

func TestStatsIsAdminOnly(t *testing.T) {
	b := newTestBot(t, nil)
	denied := b.say(t, 1, "/stats")
	assert.Equal(t, msgAdminOnly, denied.last(t).text)

	allowed := b.say(t, 99, "/stats")
	assert.Contains(t, allowed.last(t).text, "Products: 2")

	for _, text := range []string{"/stats\u3000", "/stats\u00a0"} {
		c := newFake(1)
		c.text = text
		require.NoError(t, b.routes[tele.OnText](c))
		assert.Equal(t, msgAdminOnly, c.last(t).text, text)
	}
}

func TestMenuLabelIsAcceptedAsDialogueInput(t *testing.T) {
	b := newTestBot(t, nil)
	b.press(t, 5, "add_1")
	b.press(t, 5, "checkout")

	c := newFake(5)
	c.text = storefront.MenuCart
	require.NoError(t, b.routes[tele.OnText](c))
	assert.Equal(t, "Please enter your phone number:", c.last(t).text)
}

type brokenSessions struct{ checkout.Store }

func (brokenSessions) Load(context.Context, int64) (checkout.Session, error) {
	return checkout.Session{}, errors.New("redis down")
}

func TestStorageFailureAnswersNeutrally(t *testing.T) {
	b := newTestBot(t, brokenSessions{checkout.NewMemory()})
	c := newFake(1)
	c.text = "Ann"
	err := b.routes[tele.OnText](c)
	assert.EqualError(t, err, "redis down")
	assert.Equal(t, msgFailure, c.last(t).text)
}

func TestToMarkup(t *testing.T) {
	assert.Nil(t, toMarkup(nil))
	assert.Nil(t, toMarkup(&storefront.Keyboard{}))

	m := toMarkup(&storefront.Keyboard{Inline: [][]storefront.Button{{{Text: "A", Data: "view_1"}}}})
	require.Len(t, m.InlineKeyboard, 1)
	assert.Equal(t, "view_1", m.InlineKeyboard[0][0].Data)

	m = toMarkup(&storefront.Keyboard{Menu: [][]string{{"Catalog"}}})
	assert.True(t, m.ResizeKeyboard)
}
