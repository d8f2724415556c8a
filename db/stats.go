// Package db
package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/types"
)

const (
	cStats = "Stats"
)

type IStats interface {
	UpdateStats(ctx context.Context, stats *types.GovernanceStats) error
	Stats(ctx context.Context) *types.GovernanceStats
}

func (m *mongoDB) UpdateStats(ctx context.Context, stats *types.GovernanceStats) error {
	if stats.UpdateTime == 0 {
		stats.UpdateTime = time.Now().Unix()
	}
	_, err := m.wrapper.C(cStats).Insert(stats)
	if err != nil {
		return err
	}
	// remove old stats
	if _, err := m.wrapper.C(cStats).RemoveAll(bson.M{"updateTime": bson.M{"$lt": stats.UpdateTime}}); err != nil {
		m.logger.Warn("cannot remove old stats", zap.Error(err), zap.Int64("updateTime", stats.UpdateTime))
		return err
	}
	return nil
}

// Stats returns the newest persisted snapshot. When none exists yet it
// falls back to counting what is already in the collections; token and
// ether totals stay zero until the indexer writes a real snapshot.
func (m *mongoDB) Stats(ctx context.Context) *types.GovernanceStats {
	var stats *types.GovernanceStats
	if err := m.wrapper.C(cStats).FindOne(bson.M{}, m.wrapper.FindOneSetSort("-updateTime")).Decode(&stats); err == nil {
		return stats
	}
	proposalCount, err := m.wrapper.C(cProposals).Count(bson.M{})
	if err != nil {
		m.logger.Warn("Getting stats: cannot count proposals", zap.Error(err))
	}
	openCount, err := m.wrapper.C(cProposals).Count(bson.M{"isFinished": false})
	if err != nil {
		m.logger.Warn("Getting stats: cannot count open proposals", zap.Error(err))
	}
	activeCount, err := m.wrapper.C(cParticipants).Count(bson.M{"balance": bson.M{"$gt": 0}})
	if err != nil {
		m.logger.Warn("Getting stats: cannot count participants", zap.Error(err))
	}
	eventCount, err := m.wrapper.C(cEvents).Count(bson.M{})
	if err != nil {
		m.logger.Warn("Getting stats: cannot count events", zap.Error(err))
	}
	return &types.GovernanceStats{
		ActiveParticipants: uint64(activeCount),
		ProposalCount:      uint64(proposalCount),
		OpenProposals:      uint64(openCount),
		EventCount:         uint64(eventCount),
		UpdateTime:         time.Now().Unix(),
	}
}
