package implementation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fisiqia-be/internal/entity"
	"fisiqia-be/internal/repository/contract"
	"fisiqia-be/internal/repository/specification"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "fisiqia:session:"

// ExchangeRedisRepository keeps each session as a Redis list of JSON documents.
// RPUSH is atomic, so concurrent appends to one session all land.
type ExchangeRedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewExchangeRedisRepository(client *redis.Client, ttl time.Duration) contract.ExchangeRepository {
	return &ExchangeRedisRepository{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (r *ExchangeRedisRepository) Append(ctx context.Context, exchange *entity.Exchange) error {
	prepare(exchange)
	data, err := json.Marshal(exchange)
	if err != nil {
		return fmt.Errorf("marshal exchange: %w", err)
	}

	key := sessionKey(exchange.SessionId)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	return nil
}

func (r *ExchangeRedisRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Exchange, error) {
	var keys []string
	if sessionID, ok := specification.SessionOf(specs); ok {
		keys = []string{sessionKey(sessionID)}
	} else {
		iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("scan sessions: %w", err)
		}
	}

	var items []*entity.Exchange
	for _, key := range keys {
		raw, err := r.client.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		for _, doc := range raw {
			var e entity.Exchange
			if err := json.Unmarshal([]byte(doc), &e); err != nil {
				return nil, fmt.Errorf("decode exchange in %s: %w", key, err)
			}
			items = append(items, &e)
		}
	}

	if len(keys) > 1 {
		specs = append([]specification.Specification{specification.OrderByCreatedAt{}}, specs...)
	}
	return specification.Evaluate(items, specs...)
}

func (r *ExchangeRedisRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	items, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}
