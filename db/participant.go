// Package db
package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/types"
)

type IParticipant interface {
	UpsertParticipant(ctx context.Context, participant *types.Participant) error
	UpsertParticipants(ctx context.Context, participants []*types.Participant) error
	ParticipantByAddress(ctx context.Context, address string) (*types.Participant, error)
	Participants(ctx context.Context, filter *types.ParticipantsFilter) ([]*types.Participant, uint64, error)
}

func (m *mongoDB) UpsertParticipant(ctx context.Context, participant *types.Participant) error {
	return m.UpsertParticipants(ctx, []*types.Participant{participant})
}

func (m *mongoDB) UpsertParticipants(ctx context.Context, participants []*types.Participant) error {
	if len(participants) == 0 {
		return nil
	}
	var models []mongo.WriteModel
	for _, p := range participants {
		p.UpdateTime = time.Now().Unix()
		models = append(models, mongo.NewUpdateOneModel().SetUpsert(true).SetFilter(bson.M{"address": p.Address}).SetUpdate(bson.M{"$set": p}))
	}
	if _, err := m.wrapper.C(cParticipants).BulkWrite(models); err != nil {
		return err
	}
	return nil
}

func (m *mongoDB) ParticipantByAddress(ctx context.Context, address string) (*types.Participant, error) {
	var result *types.Participant
	err := m.wrapper.C(cParticipants).FindOne(bson.M{"address": address}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.ErrRecordNotFound
		}
		return nil, err
	}
	return result, nil
}

func (m *mongoDB) Participants(ctx context.Context, filter *types.ParticipantsFilter) ([]*types.Participant, uint64, error) {
	var (
		opts         []*options.FindOptions
		participants []*types.Participant
	)
	crit := bson.M{}
	if filter != nil {
		if filter.ActiveOnly {
			crit["balance"] = bson.M{"$gt": 0}
		}
		opts = []*options.FindOptions{
			options.Find().SetSort(bson.M{"balance": -1}),
		}
		if filter.Pagination != nil {
			opts = append(opts, options.Find().SetSkip(int64(filter.Pagination.Skip)))
			opts = append(opts, options.Find().SetLimit(int64(filter.Pagination.Limit)))
		}
	}
	cursor, err := m.wrapper.C(cParticipants).Find(crit, opts...)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	for cursor.Next(ctx) {
		participant := &types.Participant{}
		if err := cursor.Decode(participant); err != nil {
			return nil, 0, err
		}
		participants = append(participants, participant)
	}
	total, err := m.wrapper.C(cParticipants).Count(crit)
	if err != nil {
		return nil, 0, err
	}
	return participants, uint64(total), nil
}
