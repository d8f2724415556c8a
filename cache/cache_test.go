// Package cache
package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/types"
)

// setupTestCache connects to the Redis named by TEST_REDIS_URI, flushing
// the selected db first. Tests are skipped when the variable is unset.
func setupTestCache(t *testing.T) *Redis {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URI")
	if url == "" {
		t.Skip("TEST_REDIS_URI not set")
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr: url,
		DB:   1,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		t.Fatalf("cannot reach redis: %v", err)
	}
	require.NoError(t, redisClient.FlushDB(context.Background()).Err())

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	client := &Redis{
		cfg: Config{
			EventBuffer:        5,
			DefaultExpiredTime: time.Minute,
		},
		client: redisClient,
		logger: logger.With(zap.String("cache", "redis")),
	}
	return client
}

func TestCache_ProposalRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := setupTestCache(t)

	p := &types.Proposal{ID: 3, Description: "fund the relay", EndTime: 1600003600}
	require.NoError(t, c.UpdateProposal(ctx, p))

	got, err := c.ProposalByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, p.Description, got.Description)
	assert.Equal(t, p.EndTime, got.EndTime)

	_, err = c.ProposalByID(ctx, 4)
	assert.Error(t, err)

	require.NoError(t, c.UpdateProposalCount(ctx, 4))
	assert.Equal(t, uint64(4), c.ProposalCount(ctx))
}

func TestCache_EventRing(t *testing.T) {
	ctx := context.Background()
	c := setupTestCache(t)

	var batch []*types.Event
	for i := uint64(0); i < 8; i++ {
		batch = append(batch, &types.Event{Seq: i, Type: types.EventCredited, Amount: i * 10})
	}
	require.NoError(t, c.PushEvents(ctx, batch))

	// buffer is 5, so only the newest 5 survive
	events, err := c.LatestEvents(ctx, &types.Pagination{Skip: 0, Limit: 5})
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, uint64(7), events[0].Seq)
	assert.Equal(t, uint64(3), events[4].Seq)

	// beyond the cached window the caller must fall back to the database
	_, err = c.LatestEvents(ctx, &types.Pagination{Skip: 4, Limit: 5})
	assert.Error(t, err)

	require.NoError(t, c.SetLatestSeq(ctx, 7))
	seq, err := c.LatestSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), seq)
}

func TestCache_SnapshotAndStatus(t *testing.T) {
	ctx := context.Background()
	c := setupTestCache(t)

	stats := &types.GovernanceStats{ActiveParticipants: 9, TotalDeposited: 4500, OpenProposals: 2}
	require.NoError(t, c.UpdateSnapshot(ctx, stats))
	got, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.ActiveParticipants, got.ActiveParticipants)
	assert.Equal(t, stats.TotalDeposited, got.TotalDeposited)

	status := &types.ServerStatus{Status: "ONLINE", AppVersion: "1.0.0"}
	require.NoError(t, c.UpdateServerStatus(ctx, status))
	gotStatus, err := c.ServerStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ONLINE", gotStatus.Status)
}
