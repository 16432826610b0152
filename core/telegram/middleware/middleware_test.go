package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type storeContext struct {
	tele.Context
	update tele.Update
	user   *tele.User
	store  map[string]any
	sent   int
}

func newStoreContext(userID int64, upd tele.Update) *storeContext {
	return &storeContext{update: upd, user: &tele.User{ID: userID}, store: map[string]any{}}
}

func (s *storeContext) Sender() *tele.User           { return s.user }
func (s *storeContext) Chat() *tele.Chat             { return &tele.Chat{ID: s.user.ID} }
func (s *storeContext) Update() tele.Update          { return s.update }
func (s *storeContext) Callback() *tele.Callback     { return s.update.Callback }
func (s *storeContext) Text() string                 { return "" }
func (s *storeContext) Get(key string) any           { return s.store[key] }
func (s *storeContext) Set(key string, v any)        { s.store[key] = v }
func (s *storeContext) Send(any, ...any) error       { s.sent++; return nil }
func (s *storeContext) EditOrSend(any, ...any) error { return errors.New("no message") }

func TestRateLimitDropsBurstsPerUser(t *testing.T) {
	var handled, limited int
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	h := mw(func(tele.Context) error { handled++; return nil })

	msg := tele.Update{Message: &tele.Message{}}
	require.NoError(t, h(newStoreContext(1, msg)))
	require.NoError(t, h(newStoreContext(1, msg)))
	require.NoError(t, h(newStoreContext(2, msg)))
	require.NoError(t, h(newStoreContext(1, tele.Update{Callback: &tele.Callback{}})))

	assert.Equal(t, 3, handled)
	assert.Equal(t, 1, limited)
}

func TestAdminOnly(t *testing.T) {
	var rejected bool
	h := AdminOnlyMiddleware(AdminOptions{
		AdminID:  7,
		OnReject: func(tele.Context) error { rejected = true; return nil },
	})(func(tele.Context) error { return errors.New("reached") })

	assert.EqualError(t, h(newStoreContext(7, tele.Update{})), "reached")
	assert.NoError(t, h(newStoreContext(8, tele.Update{})))
	assert.True(t, rejected)
}

func TestRecoverReturnsPanicAsError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(newStoreContext(1, tele.Update{ID: 3}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMetricsCountsSuccessfulSends(t *testing.T) {
	c := newStoreContext(1, tele.Update{})
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		_ = c.Send("a")
		_ = c.Send("b", &tele.ReplyMarkup{})
		_ = c.EditOrSend("c")
		return nil
	})
	require.NoError(t, h(c))

	n, kb := GetCounters(c)
	assert.Equal(t, 2, n)
	assert.True(t, kb)
	assert.Equal(t, 2, c.sent)
}

func TestLoggerMiddlewareStoresRID(t *testing.T) {
	c := newStoreContext(9, tele.Update{ID: 4})
	var rid any
	h := LoggerMiddleware(func(c tele.Context) error { rid = c.Get("rid"); return nil })
	require.NoError(t, h(c))
	assert.Equal(t, "4:9:9", rid)
	assert.NotNil(t, c.Get("logger_ctx"))
}
