package checkout

import (
	"context"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// SessionKey is the Redis hash holding a user's checkout session.
func SessionKey(userID int64) string {
	return fmt.Sprintf("shop:checkout:%d", userID)
}

// Redis stores sessions as one hash per user. A positive TTL expires abandoned dialogues.
type Redis struct {
	rdb *rd.Client
	ttl time.Duration
}

// NewRedis returns a Redis store; ttl <= 0 keeps sessions until reset.
func NewRedis(rdb *rd.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

// Load implements Store.
func (r *Redis) Load(ctx context.Context, userID int64) (Session, error) {
	m, err := r.rdb.HGetAll(ctx, SessionKey(userID)).Result()
	if err != nil {
		return Session{}, fmt.Errorf("checkout: load: %w", err)
	}
	return decodeSession(m)
}

// Save implements Store.
func (r *Redis) Save(ctx context.Context, userID int64, s Session) error {
	if !s.Active() {
		return r.Reset(ctx, userID)
	}
	key := SessionKey(userID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, encodeSession(s))
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("checkout: save: %w", err)
	}
	return nil
}

// Reset implements Store.
func (r *Redis) Reset(ctx context.Context, userID int64) error {
	if err := r.rdb.Del(ctx, SessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("checkout: reset: %w", err)
	}
	return nil
}

func encodeSession(s Session) map[string]any {
	return map[string]any{
		"state":   s.State.String(),
		"name":    s.Draft.Name,
		"phone":   s.Draft.Phone,
		"address": s.Draft.Address,
	}
}

func decodeSession(m map[string]string) (Session, error) {
	if len(m) == 0 {
		return Session{}, nil
	}
	st, err := ParseState(m["state"])
	if err != nil {
		return Session{}, err
	}
	return Session{
		State: st,
		Draft: Draft{Name: m["name"], Phone: m["phone"], Address: m["address"]},
	}, nil
}
