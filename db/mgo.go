/*
 *  Copyright 2021 CommonDAO
 *  This file is part of the governance-backend library.
 *
 *  The governance-backend library is free software: you can redistribute it and/or modify
 *  it under the terms of the GNU Lesser General Public License as published by
 *  the Free Software Foundation, either version 3 of the License, or
 *  (at your option) any later version.
 *
 *  The governance-backend library is distributed in the hope that it will be useful,
 *  but WITHOUT ANY WARRANTY; without even the implied warranty of
 *  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 *  GNU Lesser General Public License for more details.
 *
 *  You should have received a copy of the GNU Lesser General Public License
 *  along with the governance-backend library. If not, see <http://www.gnu.org/licenses/>.
 */
// Package db
package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	cProposals    = "Proposals"
	cParticipants = "Participants"
	cEvents       = "GovernanceEvents"
)

type mongoDB struct {
	logger  *zap.Logger
	wrapper *DaoMgo
}

func newMongoDB(cfg Config) (*mongoDB, error) {
	ctx := context.Background()
	dbClient := &mongoDB{
		logger:  cfg.Logger,
		wrapper: &DaoMgo{},
	}
	mgoOptions := options.Client()
	mgoOptions.ApplyURI(cfg.URL)
	mgoOptions.SetMinPoolSize(uint64(cfg.MinConn))
	mgoOptions.SetMaxPoolSize(uint64(cfg.MaxConn))
	mgoClient, err := mongo.NewClient(mgoOptions)
	if err != nil {
		return nil, err
	}

	if err := mgoClient.Connect(context.Background()); err != nil {
		return nil, err
	}

	dbClient.wrapper.Database(mgoClient.Database(cfg.DbName))

	if cfg.FlushDB {
		cfg.Logger.Info("Start flush database")
		if err := mgoClient.Database(cfg.DbName).Drop(ctx); err != nil {
			return nil, err
		}
	}
	_ = createIndexes(dbClient)

	return dbClient, nil
}

func createIndexes(dbClient *mongoDB) error {
	type CIndex struct {
		c     string
		model []mongo.IndexModel
	}

	indexes := []CIndex{
		// proposals are keyed by their ballot id
		{c: cProposals, model: []mongo.IndexModel{{Keys: bson.M{"id": -1}, Options: options.Index().SetUnique(true).SetSparse(true)}}},
		{c: cProposals, model: []mongo.IndexModel{{Keys: bson.M{"isFinished": 1}, Options: options.Index().SetSparse(true)}}},
		{c: cProposals, model: []mongo.IndexModel{{Keys: bson.M{"endTime": -1}, Options: options.Index().SetSparse(true)}}},
		// one document per participant address
		{c: cParticipants, model: []mongo.IndexModel{{Keys: bson.M{"address": 1}, Options: options.Index().SetUnique(true).SetSparse(true)}}},
		{c: cParticipants, model: []mongo.IndexModel{{Keys: bson.M{"balance": -1}, Options: options.Index().SetSparse(true)}}},
		// the event journal replays are made idempotent through the unique seq key
		{c: cEvents, model: []mongo.IndexModel{{Keys: bson.M{"seq": -1}, Options: options.Index().SetUnique(true).SetSparse(true)}}},
		{c: cEvents, model: []mongo.IndexModel{{Keys: bson.M{"type": 1}, Options: options.Index().SetSparse(true)}}},
		{c: cEvents, model: []mongo.IndexModel{{Keys: bson.M{"proposalID": 1}, Options: options.Index().SetSparse(true)}}},
		{c: cEvents, model: []mongo.IndexModel{{Keys: bson.D{{Key: "address", Value: 1}, {Key: "time", Value: -1}}, Options: options.Index().SetSparse(true)}}},
	}
	for _, cIdx := range indexes {
		if err := dbClient.wrapper.C(cIdx.c).EnsureIndex(cIdx.model); err != nil {
			return err
		}
	}
	return nil
}

//region General

func (m *mongoDB) ping() error {
	return m.wrapper.Ping(context.Background())
}

func (m *mongoDB) dropCollection(collectionName string) {
	if _, err := m.wrapper.C(collectionName).RemoveAll(bson.M{}); err != nil {
		return
	}
}

func (m *mongoDB) dropDatabase(ctx context.Context) error {
	return m.wrapper.DropDatabase(ctx)
}

//endregion General
