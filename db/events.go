// Package db
package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/commondao/governance-backend/types"
)

type IEvent interface {
	InsertEvents(ctx context.Context, events []*types.Event) error
	Events(ctx context.Context, filter *types.EventsFilter) ([]*types.Event, uint64, error)
	LatestSeq(ctx context.Context) (uint64, error)
}

// InsertEvents writes a batch of journal events. Batches are replayed after
// a restart, so each write is an upsert keyed by seq rather than a plain
// insert.
func (m *mongoDB) InsertEvents(ctx context.Context, events []*types.Event) error {
	if len(events) == 0 {
		return nil
	}
	var models []mongo.WriteModel
	for _, ev := range events {
		models = append(models, mongo.NewUpdateOneModel().SetUpsert(true).SetFilter(bson.M{"seq": ev.Seq}).SetUpdate(bson.M{"$set": ev}))
	}
	if _, err := m.wrapper.C(cEvents).BulkWrite(models); err != nil {
		return err
	}
	return nil
}

func (m *mongoDB) Events(ctx context.Context, filter *types.EventsFilter) ([]*types.Event, uint64, error) {
	var (
		opts = []*options.FindOptions{
			m.wrapper.FindSetSort("-seq"),
		}
		events []*types.Event
	)
	var and []bson.M
	if filter != nil {
		if filter.ProposalID != nil {
			and = append(and, bson.M{"proposalID": *filter.ProposalID})
		}
		if filter.Address != "" {
			and = append(and, bson.M{"address": filter.Address})
		}
		if filter.Type != "" {
			and = append(and, bson.M{"type": filter.Type})
		}
		if filter.Pagination != nil {
			opts = append(opts, options.Find().SetSkip(int64(filter.Pagination.Skip)))
			opts = append(opts, options.Find().SetLimit(int64(filter.Pagination.Limit)))
		}
	}
	crit := bson.M{}
	if len(and) > 0 {
		crit = bson.M{"$and": and}
	}
	cursor, err := m.wrapper.C(cEvents).Find(crit, opts...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get governance events: %v", err)
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	for cursor.Next(ctx) {
		event := &types.Event{}
		if err := cursor.Decode(event); err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}
	total, err := m.wrapper.C(cEvents).Count(crit)
	if err != nil {
		return nil, 0, err
	}
	return events, uint64(total), nil
}

// LatestSeq returns the highest persisted journal sequence. An empty
// collection reports types.ErrRecordNotFound so the caller can start the
// stream from zero.
func (m *mongoDB) LatestSeq(ctx context.Context) (uint64, error) {
	var latest *types.Event
	err := m.wrapper.C(cEvents).FindOne(bson.M{}, m.wrapper.FindOneSetSort("-seq")).Decode(&latest)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, types.ErrRecordNotFound
		}
		return 0, err
	}
	return latest.Seq, nil
}
