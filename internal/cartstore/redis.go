package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"parfumerie/internal/cart"
)

const (
	maxUpdateAttempts = 5
	releaseTimeout    = 2 * time.Second
)

// releaseScript deletes the busy flag only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps carts as JSON under cart:<session> with a sliding TTL.
type RedisStore struct {
	client  redis.UniversalClient
	ttl     time.Duration
	lockTTL time.Duration
	logger  *zap.Logger
}

func NewRedis(client redis.UniversalClient, ttl, lockTTL time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, ttl: ttl, lockTTL: lockTTL, logger: logger}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart store: load: %w", err)
	}
	return decode(data)
}

// Update runs fn inside a WATCH on the cart and busy keys and retries when
// another request wrote the cart first.
func (s *RedisStore) Update(ctx context.Context, sessionID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	key, lock := cartKey(sessionID), lockKey(sessionID)

	var (
		result *cart.Cart
		fnErr  error
	)
	txf := func(tx *redis.Tx) error {
		busy, err := tx.Exists(ctx, lock).Result()
		if err != nil {
			return err
		}
		if busy > 0 {
			return ErrBusy
		}

		working := cart.New()
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if working, err = decode(data); err != nil {
				return err
			}
		}

		if fnErr = fn(working); fnErr != nil {
			return fnErr
		}
		encoded, err := json.Marshal(working)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err == nil {
			result = working
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key, lock)
		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("cart store: update conflict, retrying",
				zap.String("session_id", sessionID), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			if errors.Is(err, ErrBusy) || (fnErr != nil && errors.Is(err, fnErr)) {
				return nil, err
			}
			return nil, fmt.Errorf("cart store: update: %w", err)
		}
		return result, nil
	}
	return nil, fmt.Errorf("cart store: update: %w", redis.TxFailedErr)
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("cart store: delete: %w", err)
	}
	return nil
}

func (s *RedisStore) Acquire(ctx context.Context, sessionID string) (func(), error) {
	key := lockKey(sessionID)
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("cart store: acquire: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}

	return func() {
		rctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := releaseScript.Run(rctx, s.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			s.logger.Warn("cart store: release busy flag failed",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}, nil
}

func decode(data []byte) (*cart.Cart, error) {
	c := cart.New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("cart store: decode: %w", err)
	}
	return c, nil
}
