package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/savings-ledger/internal/domain"
)

// SummaryCache holds meeting summaries between recalculations
type SummaryCache interface {
	// Get returns the cached summary and whether it was present
	Get(ctx context.Context, meetingID uuid.UUID) (*domain.SummaryResponse, bool, error)
	Set(ctx context.Context, summary *domain.SummaryResponse) error
	Invalidate(ctx context.Context, meetingID uuid.UUID) error
}

func summaryKey(meetingID uuid.UUID) string {
	return fmt.Sprintf("meeting_summary:%s", meetingID)
}

type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisSummaryCache) Get(ctx context.Context, meetingID uuid.UUID) (*domain.SummaryResponse, bool, error) {
	raw, err := c.client.Get(ctx, summaryKey(meetingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary domain.SummaryResponse
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, fmt.Errorf("decode cached summary: %w", err)
	}
	return &summary, true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, summary *domain.SummaryResponse) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return c.client.Set(ctx, summaryKey(summary.MeetingID), raw, c.ttl).Err()
}

func (c *RedisSummaryCache) Invalidate(ctx context.Context, meetingID uuid.UUID) error {
	return c.client.Del(ctx, summaryKey(meetingID)).Err()
}

// Ping reports whether redis is reachable, for readiness checks
func (c *RedisSummaryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// NoopSummaryCache is used when redis is disabled; every read is a miss
type NoopSummaryCache struct{}

func (NoopSummaryCache) Get(context.Context, uuid.UUID) (*domain.SummaryResponse, bool, error) {
	return nil, false, nil
}

func (NoopSummaryCache) Set(context.Context, *domain.SummaryResponse) error { return nil }

func (NoopSummaryCache) Invalidate(context.Context, uuid.UUID) error { return nil }
