// Package cache memoizes assembled chart payloads in Redis. The chart
// transforms are pure, so a cached payload stays valid until new sale
// records arrive for the card; the ingestion consumer invalidates then.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardpulse/card-market-service/internal/chart"
)

// ChartCache stores chart payloads keyed by card, range and chart type
type ChartCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and returns a chart cache
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*ChartCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &ChartCache{client: client, ttl: ttl}, nil
}

func chartKey(cardID int, timeRange, chartType string) string {
	return fmt.Sprintf("chart:%d:%s:%s", cardID, timeRange, chartType)
}

// Get returns the cached chart for the key, or nil on a miss
func (c *ChartCache) Get(ctx context.Context, cardID int, timeRange, chartType string) (*chart.Chart, error) {
	data, err := c.client.Get(ctx, chartKey(cardID, timeRange, chartType)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached chart: %w", err)
	}

	var cached chart.Chart
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached chart: %w", err)
	}
	return &cached, nil
}

// Set stores a chart payload with the configured TTL
func (c *ChartCache) Set(ctx context.Context, ch chart.Chart) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("failed to marshal chart: %w", err)
	}

	key := chartKey(ch.CardID, ch.TimeRange, ch.ChartType)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache chart: %w", err)
	}
	return nil
}

// InvalidateCard drops every cached chart for a card
func (c *ChartCache) InvalidateCard(ctx context.Context, cardID int) error {
	pattern := fmt.Sprintf("chart:%d:*", cardID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cached chart %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan chart keys: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *ChartCache) Close() error {
	return c.client.Close()
}
