package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/savings-ledger/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisSummaryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSummaryCache(client, ttl), mr
}

func sampleSummary() *domain.SummaryResponse {
	return &domain.SummaryResponse{
		MeetingID: uuid.New(),
		MeetingSummary: domain.MeetingSummary{
			TotalSharesCollected:  decimal.NewFromInt(800),
			TotalWelfareCollected: decimal.NewFromInt(350),
			TotalLoansIssued:      decimal.NewFromInt(1000),
			TotalLoanPaid:         decimal.Zero,
			TotalFines:            decimal.RequireFromString("20.50"),
		},
		BankBalance: decimal.NewFromInt(1500),
		CashInHand:  decimal.NewFromInt(50),
		TotalCash:   decimal.NewFromInt(1550),
	}
}

func TestRedisSummaryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	summary := sampleSummary()

	require.NoError(t, c.Set(ctx, summary))
	assert.True(t, mr.Exists("meeting_summary:"+summary.MeetingID.String()))

	got, ok, err := c.Get(ctx, summary.MeetingID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, summary.MeetingID, got.MeetingID)
	assert.True(t, got.MeetingSummary.Equal(summary.MeetingSummary))
	assert.True(t, got.TotalCash.Equal(decimal.NewFromInt(1550)))
}

func TestRedisSummaryCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	got, ok, err := c.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedisSummaryCache_Expires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	summary := sampleSummary()

	require.NoError(t, c.Set(ctx, summary))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, summary.MeetingID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSummaryCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Minute)
	summary := sampleSummary()

	require.NoError(t, c.Set(ctx, summary))
	require.NoError(t, c.Invalidate(ctx, summary.MeetingID))

	_, ok, err := c.Get(ctx, summary.MeetingID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSummaryCache_Unreachable(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}

func TestNoopSummaryCache(t *testing.T) {
	var c SummaryCache = NoopSummaryCache{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleSummary()))
	_, ok, err := c.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx, uuid.New()))
}
