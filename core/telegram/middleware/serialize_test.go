package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/serial"
)

type fakeContext struct {
	tele.Context
	update tele.Update
	sender *tele.User
}

func (f fakeContext) Sender() *tele.User  { return f.sender }
func (f fakeContext) Update() tele.Update { return f.update }

func TestSerializeKeepsPerUserOrder(t *testing.T) {
	lanes := serial.NewLanes(context.Background())

	var (
		mu  sync.Mutex
		got = map[int64][]int{}
	)
	handler := SerializeMiddleware(lanes, nil)(func(c tele.Context) error {
		mu.Lock()
		defer mu.Unlock()
		got[c.Sender().ID] = append(got[c.Sender().ID], c.Update().ID)
		return nil
	})

	for i := 1; i <= 50; i++ {
		uid := int64(i%2 + 1)
		require.NoError(t, handler(fakeContext{update: tele.Update{ID: i}, sender: &tele.User{ID: uid}}))
	}
	lanes.Close()

	for uid, ids := range got {
		for i := 1; i < len(ids); i++ {
			assert.Less(t, ids[i-1], ids[i], "user %d out of order", uid)
		}
	}
	assert.Len(t, got[1], 25)
	assert.Len(t, got[2], 25)
}

func TestSerializeReportsHandlerErrors(t *testing.T) {
	lanes := serial.NewLanes(context.Background())
	boom := errors.New("boom")

	var reported error
	handler := SerializeMiddleware(lanes, func(err error, _ tele.Context) { reported = err })(func(tele.Context) error {
		return boom
	})
	require.NoError(t, handler(fakeContext{sender: &tele.User{ID: 1}}))
	lanes.Close()
	assert.ErrorIs(t, reported, boom)
}

func TestSerializeWithoutSenderRunsInline(t *testing.T) {
	lanes := serial.NewLanes(context.Background())
	defer lanes.Close()
	boom := errors.New("boom")
	handler := SerializeMiddleware(lanes, nil)(func(tele.Context) error { return boom })
	assert.ErrorIs(t, handler(fakeContext{}), boom)
}

func TestSerializeAfterCloseDrops(t *testing.T) {
	lanes := serial.NewLanes(context.Background())
	lanes.Close()
	called := false
	handler := SerializeMiddleware(lanes, nil)(func(tele.Context) error { called = true; return nil })
	assert.NoError(t, handler(fakeContext{sender: &tele.User{ID: 1}}))
	assert.False(t, called)
}
