package token

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"parfumerie/internal/domain"
)

type redisRepo struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedis stores tokens as JSON under session:<token>, expiring with the
// token itself.
func NewRedis(client redis.UniversalClient) Repository {
	return &redisRepo{client: client, now: time.Now}
}

func tokenKey(token string) string {
	return "session:" + token
}

func (r *redisRepo) Create(ctx context.Context, token Token) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.now().UTC()
	}
	ttl := token.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("token already expired")
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, tokenKey(token.Token), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *redisRepo) Get(ctx context.Context, token string) (*Token, error) {
	data, err := r.client.Get(ctx, tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var out Token
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *redisRepo) Delete(ctx context.Context, token string) error {
	n, err := r.client.Del(ctx, tokenKey(token)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
