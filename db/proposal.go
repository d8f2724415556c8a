// Package db
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/types"
)

type IProposal interface {
	UpsertProposal(ctx context.Context, proposal *types.Proposal) error
	ProposalByID(ctx context.Context, proposalID uint64) (*types.Proposal, error)
	Proposals(ctx context.Context, filter *types.ProposalsFilter) ([]*types.Proposal, uint64, error)
}

func (m *mongoDB) UpsertProposal(ctx context.Context, proposal *types.Proposal) error {
	proposal.UpdateTime = time.Now().Unix()
	model := []mongo.WriteModel{
		mongo.NewUpdateOneModel().SetUpsert(true).SetFilter(bson.M{"id": proposal.ID}).SetUpdate(bson.M{"$set": proposal}).SetHint(bson.M{"id": -1}),
	}
	if _, err := m.wrapper.C(cProposals).BulkWrite(model); err != nil {
		return err
	}
	return nil
}

func (m *mongoDB) ProposalByID(ctx context.Context, proposalID uint64) (*types.Proposal, error) {
	var result *types.Proposal
	err := m.wrapper.C(cProposals).FindOne(bson.M{"id": proposalID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.ErrRecordNotFound
		}
		return nil, err
	}
	return result, nil
}

func (m *mongoDB) Proposals(ctx context.Context, filter *types.ProposalsFilter) ([]*types.Proposal, uint64, error) {
	var (
		opts      []*options.FindOptions
		proposals []*types.Proposal
	)
	crit := bson.M{}
	if filter != nil {
		switch filter.Status {
		case types.ProposalStatusOpen:
			crit["isFinished"] = false
		case types.ProposalStatusFinished:
			crit["isFinished"] = true
		}
		opts = []*options.FindOptions{
			options.Find().SetSort(bson.M{"id": 1}),
		}
		if filter.Pagination != nil {
			opts = append(opts, options.Find().SetSkip(int64(filter.Pagination.Skip)))
			opts = append(opts, options.Find().SetLimit(int64(filter.Pagination.Limit)))
		}
	}
	cursor, err := m.wrapper.C(cProposals).Find(crit, opts...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get list proposals: %v", err)
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	for cursor.Next(ctx) {
		proposal := &types.Proposal{}
		if err := cursor.Decode(proposal); err != nil {
			return nil, 0, err
		}
		proposals = append(proposals, proposal)
	}
	total, err := m.wrapper.C(cProposals).Count(crit)
	if err != nil {
		return nil, 0, err
	}
	return proposals, uint64(total), nil
}
