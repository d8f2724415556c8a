// Package cache
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/types"
)

type Adapter string

const (
	RedisAdapter Adapter = "redis"
)

type Config struct {
	Adapter  Adapter
	URL      string
	DB       int
	Password string

	IsFlush bool

	EventBuffer        int64
	DefaultExpiredTime time.Duration

	Logger *zap.Logger
}

type Client interface {
	UpdateProposal(ctx context.Context, proposal *types.Proposal) error
	ProposalByID(ctx context.Context, proposalID uint64) (*types.Proposal, error)
	UpdateProposalCount(ctx context.Context, total uint64) error
	ProposalCount(ctx context.Context) uint64

	PushEvents(ctx context.Context, events []*types.Event) error
	LatestEvents(ctx context.Context, pagination *types.Pagination) ([]*types.Event, error)
	LatestSeq(ctx context.Context) (uint64, error)
	SetLatestSeq(ctx context.Context, seq uint64) error

	UpdateSnapshot(ctx context.Context, stats *types.GovernanceStats) error
	Snapshot(ctx context.Context) (*types.GovernanceStats, error)

	ServerStatus(ctx context.Context) (*types.ServerStatus, error)
	UpdateServerStatus(ctx context.Context, serverStatus *types.ServerStatus) error
}

func New(cfg Config) (Client, error) {
	switch cfg.Adapter {
	case RedisAdapter:
		return newRedis(cfg)
	}
	return nil, errors.New("invalid cache config")
}

func newRedis(cfg Config) (Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		DB:       cfg.DB,
		Password: cfg.Password,
	})

	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	if cfg.IsFlush {
		msg, err := redisClient.FlushAll(context.Background()).Result()
		if err != nil || msg != "OK" {
			return nil, err
		}
	}

	logger := cfg.Logger.With(zap.String("cache", "redis"))
	client := &Redis{
		client: redisClient,
		logger: logger,
	}
	client.cfg = cfg
	return client, nil
}
