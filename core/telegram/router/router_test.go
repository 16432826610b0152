package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/shopbot/core/telegram"
)

type fakeContext struct {
	tele.Context
	text     string
	callback *tele.Callback
	store    map[string]any
	notices  []string
}

func newFake(text string) *fakeContext {
	return &fakeContext{text: text, store: map[string]any{}}
}

func (f *fakeContext) Text() string             { return f.text }
func (f *fakeContext) Callback() *tele.Callback { return f.callback }
func (f *fakeContext) Sender() *tele.User       { return &tele.User{ID: 5} }
func (f *fakeContext) Chat() *tele.Chat         { return &tele.Chat{ID: 5} }
func (f *fakeContext) Update() tele.Update      { return tele.Update{ID: 1} }
func (f *fakeContext) Get(key string) any       { return f.store[key] }
func (f *fakeContext) Set(key string, v any)    { f.store[key] = v }
func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) > 0 {
		f.notices = append(f.notices, resp[0].Text)
	}
	return nil
}

type fakeConversation struct {
	consume bool
	err     error
	calls   int
}

func (f *fakeConversation) Consume(tele.Context) (bool, error) {
	f.calls++
	return f.consume, f.err
}

func textHandler(t *testing.T, conv Conversation, reg *tg.Registry, opts TextOptions) tele.HandlerFunc {
	t.Helper()
	routes := TextRoutes(conv, reg, opts)
	require.Len(t, routes, 2)
	require.Equal(t, tele.OnText, routes[0].Endpoint)
	return routes[0].Handler
}

func TestTextRoutesPrefersCommandsOverConversation(t *testing.T) {
	reg := tg.NewRegistry()
	var ran string
	require.NoError(t, reg.RegisterCommand("/cancel", tg.Command{
		Description: "cancel",
		Handler:     func(tele.Context) error { ran = "cancel"; return nil },
	}))
	conv := &fakeConversation{consume: true}

	h := textHandler(t, conv, reg, TextOptions{})
	require.NoError(t, h(newFake("/cancel@shop_bot")))
	assert.Equal(t, "cancel", ran)
	assert.Zero(t, conv.calls)
}

func TestTextRoutesAliasesOutsideDialogue(t *testing.T) {
	var ran int
	opts := TextOptions{
		Aliases: map[string]tele.HandlerFunc{"Cart": func(tele.Context) error { ran++; return nil }},
	}

	idle := &fakeConversation{consume: false}
	require.NoError(t, textHandler(t, idle, tg.NewRegistry(), opts)(newFake(" Cart ")))
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, idle.calls)

	active := &fakeConversation{consume: true}
	require.NoError(t, textHandler(t, active, tg.NewRegistry(), opts)(newFake("Cart")))
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, active.calls)
}

func TestTextRoutesGateAdminCommands(t *testing.T) {
	reg := tg.NewRegistry()
	ran, rejected := 0, 0
	require.NoError(t, reg.RegisterCommand("/stats", tg.Command{
		Description: "stats",
		AdminOnly:   true,
		Handler:     func(tele.Context) error { ran++; return nil },
	}))
	h := textHandler(t, &fakeConversation{}, reg, TextOptions{
		Admin: CommandRouteOptions{
			AdminID:       42,
			OnAdminReject: func(tele.Context) error { rejected++; return nil },
		},
	})

	for _, text := range []string{"/stats", "/stats\u3000", "/stats\u00a0", "/stats@shop_bot now"} {
		require.NoError(t, h(newFake(text)), text)
	}
	assert.Zero(t, ran)
	assert.Equal(t, 4, rejected)
}

func TestTextRoutesConversationThenFallback(t *testing.T) {
	unknown := 0
	opts := TextOptions{UnknownText: func(tele.Context) error { unknown++; return nil }}

	conv := &fakeConversation{consume: true}
	require.NoError(t, textHandler(t, conv, tg.NewRegistry(), opts)(newFake("Ann")))
	assert.Equal(t, 1, conv.calls)
	assert.Zero(t, unknown)

	conv = &fakeConversation{consume: false}
	require.NoError(t, textHandler(t, conv, tg.NewRegistry(), opts)(newFake("hello")))
	assert.Equal(t, 1, unknown)

	boom := errors.New("boom")
	conv = &fakeConversation{err: boom}
	assert.ErrorIs(t, textHandler(t, conv, tg.NewRegistry(), opts)(newFake("x")), boom)
}

func TestCallbackRouteByKey(t *testing.T) {
	reg := tg.NewRegistry()
	var got string
	require.NoError(t, reg.RegisterCallback("view", func(c tele.Context) error {
		got = c.Callback().Data
		return nil
	}))
	h := CallbackRoute(reg, CallbackOptions{}).Handler

	c := newFake("")
	c.callback = &tele.Callback{Data: "view_12"}
	require.NoError(t, h(c))
	assert.Equal(t, "view_12", got)

	c = newFake("")
	c.callback = &tele.Callback{Data: "teleport_1"}
	require.NoError(t, h(c))
	assert.Equal(t, []string{"Unsupported action"}, c.notices)
}

type codedError struct{}

func (codedError) Error() string { return "coded" }
func (codedError) Code() string  { return "out of stock" }

func TestSummaryNames(t *testing.T) {
	assert.Equal(t, "start", handlerName(" /Start "))
	assert.Equal(t, "alias.my_cart", handlerName("alias.My Cart"))
	assert.Equal(t, "unknown", handlerName(""))

	assert.Equal(t, "OUT_OF_STOCK", errorCode(codedError{}))
	assert.Equal(t, "ERRORSTRING", errorCode(errors.New("x")))
}
