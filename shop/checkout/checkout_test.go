package checkout

import (
	"context"
	"os"
	"testing"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHappyPathTransitions(t *testing.T) {
	s := Session{}

	s, eff, err := Next(s, Begin{})
	require.NoError(t, err)
	assert.Equal(t, AwaitingName, s.State)
	assert.Equal(t, EffectAskName, eff)

	s, eff, err = Next(s, Input{Text: " Alice "})
	require.NoError(t, err)
	assert.Equal(t, AwaitingPhone, s.State)
	assert.Equal(t, EffectAskPhone, eff)

	s, eff, err = Next(s, Input{Text: "555-1111"})
	require.NoError(t, err)
	assert.Equal(t, AwaitingAddress, s.State)
	assert.Equal(t, EffectAskAddress, eff)

	s, eff, err = Next(s, Input{Text: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, AwaitingConfirmation, s.State)
	assert.Equal(t, EffectReview, eff)
	assert.Equal(t, Draft{Name: "Alice", Phone: "555-1111", Address: "1 Main St"}, s.Draft)

	s, eff, err = Next(s, Confirm{})
	require.NoError(t, err)
	assert.Equal(t, Session{}, s)
	assert.Equal(t, EffectFinalize, eff)
}

func TestBeginWithEmptyCartStaysIdle(t *testing.T) {
	s, eff, err := Next(Session{}, Begin{CartEmpty: true})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, Idle, s.State)
	assert.Equal(t, EffectNone, eff)
}

func TestBeginMidFlowRestarts(t *testing.T) {
	s := Session{State: AwaitingAddress, Draft: Draft{Name: "A", Phone: "1"}}
	s, eff, err := Next(s, Begin{})
	require.NoError(t, err)
	assert.Equal(t, Session{State: AwaitingName}, s)
	assert.Equal(t, EffectAskName, eff)
}

func TestRejectedEventsLeaveSessionUntouched(t *testing.T) {
	review := Session{State: AwaitingConfirmation, Draft: Draft{Name: "A", Phone: "1", Address: "x"}}
	cases := []struct {
		name string
		in   Session
		ev   Event
		want error
	}{
		{"confirm idle", Session{}, Confirm{}, ErrInvalidState},
		{"cancel idle", Session{}, Cancel{}, ErrInvalidState},
		{"confirm mid-flow", Session{State: AwaitingPhone}, Confirm{}, ErrInvalidState},
		{"cancel mid-flow", Session{State: AwaitingName}, Cancel{}, ErrInvalidState},
		{"text idle", Session{}, Input{Text: "hello"}, ErrInvalidState},
		{"text at review", review, Input{Text: "hello"}, ErrInvalidState},
		{"blank name", Session{State: AwaitingName}, Input{Text: "   "}, ErrBlankInput},
		{"abort idle", Session{}, Abort{}, ErrInvalidState},
		{"nil event", review, nil, ErrInvalidState},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, eff, err := Next(tc.in, tc.ev)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.in, got)
			assert.Equal(t, EffectNone, eff)
		})
	}
}

func TestCancelAndAbortDiscardDraft(t *testing.T) {
	review := Session{State: AwaitingConfirmation, Draft: Draft{Name: "A", Phone: "1", Address: "x"}}
	s, eff, err := Next(review, Cancel{})
	require.NoError(t, err)
	assert.Equal(t, Session{}, s)
	assert.Equal(t, EffectCancelled, eff)

	s, eff, err = Next(Session{State: AwaitingPhone, Draft: Draft{Name: "A"}}, Abort{})
	require.NoError(t, err)
	assert.Equal(t, Session{}, s)
	assert.Equal(t, EffectCancelled, eff)
}

func TestStateStringRoundTrip(t *testing.T) {
	for st := Idle; st <= AwaitingConfirmation; st++ {
		got, err := ParseState(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
	_, err := ParseState("shipping")
	assert.Error(t, err)
	assert.Equal(t, "state(9)", State(9).String())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	s, err := m.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Session{}, s)

	active := Session{State: AwaitingPhone, Draft: Draft{Name: "Bob"}}
	require.NoError(t, m.Save(ctx, 1, active))
	require.NoError(t, m.Save(ctx, 2, Session{State: AwaitingName}))
	assert.Equal(t, 2, m.Active())

	s, _ = m.Load(ctx, 1)
	assert.Equal(t, active, s)

	require.NoError(t, m.Save(ctx, 2, Session{}))
	require.NoError(t, m.Reset(ctx, 1))
	assert.Equal(t, 0, m.Active())
}

func TestSessionCodec(t *testing.T) {
	in := Session{State: AwaitingConfirmation, Draft: Draft{Name: "A", Phone: "1", Address: "x"}}
	raw := map[string]string{}
	for k, v := range encodeSession(in) {
		raw[k] = v.(string)
	}
	out, err := decodeSession(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out, err = decodeSession(nil)
	require.NoError(t, err)
	assert.Equal(t, Session{}, out)

	_, err = decodeSession(map[string]string{"state": "bogus"})
	assert.Error(t, err)
	assert.Equal(t, "shop:checkout:42", SessionKey(42))
}

// TestRedisStore runs against a live server when REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := rd.NewClient(&rd.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	uid := time.Now().UnixNano()
	store := NewRedis(rdb, time.Minute)
	t.Cleanup(func() { _ = store.Reset(ctx, uid) })

	active := Session{State: AwaitingAddress, Draft: Draft{Name: "A", Phone: "1"}}
	require.NoError(t, store.Save(ctx, uid, active))
	got, err := store.Load(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, active, got)

	ttl, err := rdb.TTL(ctx, SessionKey(uid)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Save(ctx, uid, Session{}))
	got, err = store.Load(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, Session{}, got)
}
