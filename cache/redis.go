// Package cache
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/types"
)

const (
	KeyProposal      = "#proposal#%d"
	KeyProposalCount = "#proposals#total"

	KeyLatestEvents = "#events#latest" // List
	KeyLatestSeq    = "#events#latestSeq"

	KeySnapshot = "#governance#snapshot"

	KeyServerStatus = "#server#status"
)

type Redis struct {
	cfg    Config
	client *redis.Client

	logger *zap.Logger
}

func (c *Redis) UpdateProposal(ctx context.Context, proposal *types.Proposal) error {
	keyProposal := fmt.Sprintf(KeyProposal, proposal.ID)
	data, err := json.Marshal(proposal)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, keyProposal, data, c.cfg.DefaultExpiredTime).Err(); err != nil {
		return err
	}
	return nil
}

func (c *Redis) ProposalByID(ctx context.Context, proposalID uint64) (*types.Proposal, error) {
	keyProposal := fmt.Sprintf(KeyProposal, proposalID)
	result, err := c.client.Get(ctx, keyProposal).Result()
	if err != nil {
		return nil, err
	}
	var proposal *types.Proposal
	if err := json.Unmarshal([]byte(result), &proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

func (c *Redis) UpdateProposalCount(ctx context.Context, total uint64) error {
	if err := c.client.Set(ctx, KeyProposalCount, total, 0).Err(); err != nil {
		c.logger.Warn("cannot set total proposals value", zap.Error(err))
		return err
	}
	return nil
}

func (c *Redis) ProposalCount(ctx context.Context) uint64 {
	result, err := c.client.Get(ctx, KeyProposalCount).Uint64()
	if err != nil {
		return 0
	}
	return result
}

// PushEvents prepends the batch to the latest-events list, newest first,
// and trims the list back to the configured buffer.
func (c *Redis) PushEvents(ctx context.Context, events []*types.Event) error {
	if len(events) == 0 {
		return nil
	}
	latestLen, err := c.client.LLen(ctx, KeyLatestEvents).Result()
	if err != nil {
		return err
	}
	for _, ev := range events {
		evStr, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		// pop the oldest once the buffer is full
		if latestLen+1 > c.cfg.EventBuffer && c.cfg.EventBuffer > 0 {
			if err := c.client.RPop(ctx, KeyLatestEvents).Err(); err != nil {
				return err
			}
			latestLen--
		}
		if err := c.client.LPush(ctx, KeyLatestEvents, evStr).Err(); err != nil {
			return err
		}
		latestLen++
	}
	return nil
}

func (c *Redis) LatestEvents(ctx context.Context, pagination *types.Pagination) ([]*types.Event, error) {
	var (
		events     []*types.Event
		startIndex = 0 + int64(pagination.Skip)
		endIndex   = startIndex + int64(pagination.Limit) - 1
	)
	length, err := c.client.LLen(ctx, KeyLatestEvents).Result()
	if err != nil {
		return nil, err
	}
	// out of the cached window, require querying in database instead
	if length == 0 || startIndex >= length || endIndex >= length {
		return nil, errors.New("indexes of latest events out of range in cache")
	}
	marshalledEvents, err := c.client.LRange(ctx, KeyLatestEvents, startIndex, endIndex).Result()
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(marshalledEvents); i++ {
		var ev types.Event
		if err := json.Unmarshal([]byte(marshalledEvents[i]), &ev); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	return events, nil
}

func (c *Redis) LatestSeq(ctx context.Context) (uint64, error) {
	result, err := c.client.Get(ctx, KeyLatestSeq).Uint64()
	if err != nil {
		return 0, err
	}
	return result, nil
}

func (c *Redis) SetLatestSeq(ctx context.Context, seq uint64) error {
	if err := c.client.Set(ctx, KeyLatestSeq, seq, 0).Err(); err != nil {
		c.logger.Warn("cannot set latest seq value", zap.Error(err))
		return err
	}
	return nil
}

func (c *Redis) UpdateSnapshot(ctx context.Context, stats *types.GovernanceStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, KeySnapshot, data, c.cfg.DefaultExpiredTime).Err(); err != nil {
		return err
	}
	return nil
}

func (c *Redis) Snapshot(ctx context.Context) (*types.GovernanceStats, error) {
	result, err := c.client.Get(ctx, KeySnapshot).Result()
	if err != nil {
		return nil, err
	}
	var stats *types.GovernanceStats
	if err := json.Unmarshal([]byte(result), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Redis) UpdateServerStatus(ctx context.Context, serverStatus *types.ServerStatus) error {
	data, err := json.Marshal(serverStatus)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, KeyServerStatus, data, 0).Err(); err != nil {
		return err
	}
	return nil
}

func (c *Redis) ServerStatus(ctx context.Context) (*types.ServerStatus, error) {
	result, err := c.client.Get(ctx, KeyServerStatus).Result()
	if err != nil {
		return nil, err
	}
	var serverStatus *types.ServerStatus
	if err := json.Unmarshal([]byte(result), &serverStatus); err != nil {
		return nil, err
	}
	return serverStatus, nil
}
