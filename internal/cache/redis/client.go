package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rfp-brief/backend/internal/extraction"
	"github.com/rfp-brief/backend/pkg/circuitbreaker"
	"github.com/rfp-brief/backend/pkg/logger"
	"github.com/rfp-brief/backend/pkg/retry"
)

const summaryPrefix = "summary"

type Client struct {
	client  redis.UniversalClient
	breaker *circuitbreaker.CircuitBreaker
}

// NewClient connects to redis, retrying the initial ping a few times so the
// service can start alongside a redis container that is still booting.
func NewClient(ctx context.Context, host string, port int, password string, db int) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	retryCfg := retry.DefaultConfig()
	retryCfg.Logger = logger.Named("redis")
	err := retry.Do(ctx, retryCfg, func() error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", addr))

	return Wrap(client), nil
}

// Wrap builds a cache over an existing redis client.
func Wrap(client redis.UniversalClient) *Client {
	return &Client{
		client: client,
		breaker: circuitbreaker.NewCircuitBreaker("redis-cache", circuitbreaker.Config{
			FailureThreshold: 5,
			Timeout:          30 * time.Second,
			Logger:           logger.Named("redis"),
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// SummaryKey is summary:<content hash>:<highlight strategy>.
func SummaryKey(contentHash string, strategy extraction.Strategy) string {
	return fmt.Sprintf("%s:%s:%s", summaryPrefix, contentHash, strategy)
}

func (c *Client) SetSummary(ctx context.Context, contentHash string, strategy extraction.Strategy, res extraction.Result, ttl time.Duration) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	key := SummaryKey(contentHash, strategy)
	err = c.breaker.Execute(ctx, func() error {
		return c.client.Set(ctx, key, data, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set summary cache: %w", err)
	}

	logger.Debug("Summary cached", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetSummary(ctx context.Context, contentHash string, strategy extraction.Strategy) (extraction.Result, bool, error) {
	var res extraction.Result
	var data []byte

	key := SummaryKey(contentHash, strategy)
	err := c.breaker.Execute(ctx, func() error {
		var err error
		data, err = c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		return res, false, fmt.Errorf("failed to get summary cache: %w", err)
	}
	if data == nil {
		return res, false, nil
	}

	if err := json.Unmarshal(data, &res); err != nil {
		return res, false, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	logger.Debug("Summary cache hit", zap.String("key", key))
	return res, true, nil
}

// InvalidateSummaries drops every cached summary, e.g. after the rule tables change.
func (c *Client) InvalidateSummaries(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, summaryPrefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Summary cache invalidated")
	return nil
}
